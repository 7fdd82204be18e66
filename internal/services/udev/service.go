// Package udev installs device-attach rules for profiles scheduled to run
// when their backup destination drive is connected.
package udev

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// Service defines the interface for the device-trigger installer. It is an
// explicitly passed collaborator; callers own resolving the destination
// path and caching identifiers.
type Service interface {
	ResolveUUID(path string) (string, error)
	AddRule(uuid, command string) error
	Save() (bool, error)
	Clean() error
}

const (
	defaultMountsPath = "/proc/self/mounts"
	defaultByUUIDDir  = "/dev/disk/by-uuid"

	// maxRuleCommandLength bounds the RUN command embedded in a rule;
	// udev truncates longer lines silently.
	maxRuleCommandLength = 4096
)

var uuidPattern = regexp.MustCompile(`^[a-fA-F0-9-]+$`)

type rule struct {
	uuid    string
	command string
}

// Impl implements the udev Service interface.
type Impl struct {
	mountsPath string
	byUUIDDir  string
	rulesPath  string
	rules      []rule
	logger     zerolog.Logger
}

// New creates a udev service writing the per-user rules file.
func New(logger zerolog.Logger, userName string) *Impl {
	return &Impl{
		mountsPath: defaultMountsPath,
		byUUIDDir:  defaultByUUIDDir,
		rulesPath:  filepath.Join("/etc/udev/rules.d", "99-snapsched-"+userName+".rules"),
		logger:     logger,
	}
}

// NewWithPaths creates a udev service with custom system paths (for
// testing).
func NewWithPaths(logger zerolog.Logger, mountsPath, byUUIDDir, rulesPath string) *Impl {
	return &Impl{
		mountsPath: mountsPath,
		byUUIDDir:  byUUIDDir,
		rulesPath:  rulesPath,
		logger:     logger,
	}
}

// ResolveUUID returns the filesystem UUID of the device the path lives on.
func (s *Impl) ResolveUUID(path string) (string, error) {
	device, err := s.deviceForPath(path)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(s.byUUIDDir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", s.byUUIDDir, err)
	}

	for _, entry := range entries {
		link := filepath.Join(s.byUUIDDir, entry.Name())
		target, err := filepath.EvalSymlinks(link)
		if err != nil {
			continue
		}
		if target == device {
			return entry.Name(), nil
		}
	}

	return "", fmt.Errorf("no UUID found for device %s", device)
}

// deviceForPath finds the device of the longest mount point containing
// path.
func (s *Impl) deviceForPath(path string) (string, error) {
	content, err := os.ReadFile(s.mountsPath)
	if err != nil {
		return "", fmt.Errorf("reading mounts: %w", err)
	}

	var device, mountPoint string
	for _, line := range strings.Split(string(content), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		mp := unescapeMountPoint(fields[1])
		if !pathHasPrefix(path, mp) {
			continue
		}
		if len(mp) > len(mountPoint) {
			device = fields[0]
			mountPoint = mp
		}
	}

	if device == "" {
		return "", fmt.Errorf("no mount point found for %s", path)
	}

	resolved, err := filepath.EvalSymlinks(device)
	if err != nil {
		// Virtual filesystems have no node to resolve.
		return device, nil
	}
	return resolved, nil
}

func pathHasPrefix(path, prefix string) bool {
	if prefix == "/" {
		return strings.HasPrefix(path, "/")
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// unescapeMountPoint decodes the octal escapes used in the mounts table
// for spaces and tabs.
func unescapeMountPoint(mp string) string {
	replacer := strings.NewReplacer(`\040`, " ", `\011`, "\t", `\012`, "\n", `\134`, `\`)
	return replacer.Replace(mp)
}

// AddRule queues a device-attach rule running command when the filesystem
// with the given UUID appears.
func (s *Impl) AddRule(uuid, command string) error {
	if !uuidPattern.MatchString(uuid) {
		return fmt.Errorf("invalid device UUID %q", uuid)
	}
	if strings.ContainsAny(command, "\"\n") {
		return fmt.Errorf("invalid character in rule command %q", command)
	}
	if len(command) > maxRuleCommandLength {
		return fmt.Errorf("rule command exceeds %d characters", maxRuleCommandLength)
	}

	s.rules = append(s.rules, rule{uuid: uuid, command: command})
	return nil
}

// Save writes the queued rules to the rules file. It returns true when the
// file was created or changed. With no queued rules any existing file is
// removed instead.
func (s *Impl) Save() (bool, error) {
	if len(s.rules) == 0 {
		return false, s.Clean()
	}

	var b strings.Builder
	for _, r := range s.rules {
		fmt.Fprintf(&b, "ACTION==\"add|change\", ENV{ID_FS_UUID}==\"%s\", RUN+=\"%s\"\n",
			r.uuid, r.command)
	}

	current, err := os.ReadFile(s.rulesPath)
	if err == nil && string(current) == b.String() {
		return false, nil
	}

	if err := os.WriteFile(s.rulesPath, []byte(b.String()), 0o644); err != nil {
		return false, fmt.Errorf("writing udev rules: %w", err)
	}

	s.logger.Debug().Str("path", s.rulesPath).Int("rules", len(s.rules)).
		Msg("udev rules written")
	return true, nil
}

// Clean removes the rules file.
func (s *Impl) Clean() error {
	err := os.Remove(s.rulesPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing udev rules: %w", err)
	}
	return nil
}
