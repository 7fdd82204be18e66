package models

import "strings"

// JobCommand describes the command line a trigger runs for one profile.
// The command text itself is opaque to the schedule compiler; it is
// composed here once and treated as a single token when building trigger
// lines.
type JobCommand struct {
	// Executable is the full path of the snapsched binary.
	Executable string

	// ProfileID selects the profile. The implicit first profile ("1")
	// omits the flag entirely.
	ProfileID string

	// ConfigPath is added as --config only when it differs from the
	// default config location.
	ConfigPath        string
	DefaultConfigPath string

	Debug bool

	// RedirectStdout and RedirectStderr send the respective stream to
	// /dev/null in the generated shell line.
	RedirectStdout bool
	RedirectStderr bool

	// Ionice and Nice wrap the command with the given helper binaries.
	// Empty paths disable the wrapper.
	IonicePath string
	NicePath   string
}

// Tokens compiles the command as an argument vector, without shell
// redirection. This form is used where the command is executed directly,
// e.g. from a device-attach rule.
func (c JobCommand) Tokens() []string {
	var argv []string

	if c.NicePath != "" {
		argv = append(argv, c.NicePath, "-n19")
	}
	if c.IonicePath != "" {
		argv = append(argv, c.IonicePath, "-c2", "-n7")
	}

	argv = append(argv, c.Executable)

	if c.ProfileID != "" && c.ProfileID != "1" {
		argv = append(argv, "--profile-id", c.ProfileID)
	}
	if c.ConfigPath != "" && c.ConfigPath != c.DefaultConfigPath {
		argv = append(argv, "--config", c.ConfigPath)
	}
	if c.Debug {
		argv = append(argv, "--debug")
	}

	argv = append(argv, "backup-job")
	return argv
}

// ShellString compiles the command as a single shell line including
// stdout/stderr redirection. This form is embedded in trigger lines
// consumed by the periodic job runner.
func (c JobCommand) ShellString() string {
	cmd := strings.Join(c.Tokens(), " ")

	if c.RedirectStdout {
		cmd += " >/dev/null"
	}
	if c.RedirectStderr {
		if c.RedirectStdout {
			cmd += " 2>&1"
		} else {
			cmd += " 2>/dev/null"
		}
	}

	return cmd
}
