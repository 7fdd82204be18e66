// Package config provides the persistent key/value configuration store,
// its schema migrations and the typed per-profile accessors.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
)

// Store is a flat key/value configuration with per-profile namespacing.
// Keys are dotted lowercase strings; profile-scoped keys live under a
// "profile<N>." prefix. Parsing is done by the java-properties parser,
// which keeps the key set flat: dots are part of the key name, never
// nesting, so a key can coexist with another key it is a prefix of
// (snapshots.path next to snapshots.path.uuid). Mutation and persistence
// operate on the same flat key set so that schema migrations can rename
// and remove raw keys.
type Store struct {
	values map[string]string
	path   string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// LoadFile loads the configuration from a properties file. A missing file
// yields an empty store so that a fresh installation starts from defaults.
func LoadFile(path string) (*Store, error) {
	s := NewStore()
	s.path = path

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := s.load(string(content)); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadReader loads the configuration from a string (useful for testing).
func LoadReader(content string) (*Store, error) {
	s := NewStore()
	if err := s.load(content); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(content string) error {
	// Values are opaque strings; ${...} must not be interpreted.
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes([]byte(content))
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		s.values[key] = value
	}
	return nil
}

// Path returns the file path the store was loaded from, if any.
func (s *Store) Path() string {
	return s.path
}

// SetPath changes the file path used by Save.
func (s *Store) SetPath(path string) {
	s.path = path
}

// Save writes the configuration back to its file as sorted key=value
// lines.
func (s *Store) Save() error {
	if s.path == "" {
		return fmt.Errorf("config store has no file path")
	}

	keys := s.Keys()
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s.values[k])
		b.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing config file: %w", err)
	}
	return nil
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasKey reports whether the key is set.
func (s *Store) HasKey(key string) bool {
	_, ok := s.values[key]
	return ok
}

// StrValue returns the string value of key, or def when unset.
func (s *Store) StrValue(key, def string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// SetStrValue sets key to value.
func (s *Store) SetStrValue(key, value string) {
	s.values[key] = value
}

// IntValue returns the integer value of key, or def when unset or not a
// number.
func (s *Store) IntValue(key string, def int) int {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// SetIntValue sets key to an integer value.
func (s *Store) SetIntValue(key string, value int) {
	s.values[key] = strconv.Itoa(value)
}

// BoolValue returns the boolean value of key, or def when unset or not
// parseable.
func (s *Store) BoolValue(key string, def bool) bool {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// SetBoolValue sets key to a boolean value.
func (s *Store) SetBoolValue(key string, value bool) {
	s.values[key] = strconv.FormatBool(value)
}

// RemoveKey deletes the key.
func (s *Store) RemoveKey(key string) {
	delete(s.values, key)
}

// RemoveKeysStartsWith deletes every key sharing the prefix.
func (s *Store) RemoveKeysStartsWith(prefix string) {
	for k := range s.values {
		if strings.HasPrefix(k, prefix) {
			delete(s.values, k)
		}
	}
}

// RemapKey renames oldKey to newKey, preserving the value. A missing
// oldKey is a no-op; an existing newKey is overwritten.
func (s *Store) RemapKey(oldKey, newKey string) {
	v, ok := s.values[oldKey]
	if !ok {
		return
	}
	s.values[newKey] = v
	delete(s.values, oldKey)
}

// RemapKeyRegex renames every key matching pattern, substituting the match
// with repl inside the key name.
func (s *Store) RemapKeyRegex(pattern, repl string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compiling key pattern: %w", err)
	}
	for _, k := range s.Keys() {
		if !re.MatchString(k) {
			continue
		}
		s.RemapKey(k, re.ReplaceAllString(k, repl))
	}
	return nil
}

// profileKey prefixes key with the profile namespace.
func profileKey(profileID, key string) string {
	return "profile" + profileID + "." + key
}

// Profiles returns the list of profile IDs, at least ["1"].
func (s *Store) Profiles() []string {
	v := s.StrValue("profiles", "1")
	ids := strings.Split(v, ":")
	out := ids[:0]
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		out = append(out, "1")
	}
	return out
}

// ProfileName returns the display name of a profile.
func (s *Store) ProfileName(profileID string) string {
	def := "Main profile"
	if profileID != "1" {
		def = "Profile " + profileID
	}
	return s.ProfileStrValue("name", def, profileID)
}

// HasProfileKey reports whether the profile-scoped key is set.
func (s *Store) HasProfileKey(key, profileID string) bool {
	return s.HasKey(profileKey(profileID, key))
}

// ProfileStrValue returns a profile-scoped string value.
func (s *Store) ProfileStrValue(key, def, profileID string) string {
	return s.StrValue(profileKey(profileID, key), def)
}

// SetProfileStrValue sets a profile-scoped string value.
func (s *Store) SetProfileStrValue(key, value, profileID string) {
	s.SetStrValue(profileKey(profileID, key), value)
}

// ProfileIntValue returns a profile-scoped integer value.
func (s *Store) ProfileIntValue(key string, def int, profileID string) int {
	return s.IntValue(profileKey(profileID, key), def)
}

// SetProfileIntValue sets a profile-scoped integer value.
func (s *Store) SetProfileIntValue(key string, value int, profileID string) {
	s.SetIntValue(profileKey(profileID, key), value)
}

// ProfileBoolValue returns a profile-scoped boolean value.
func (s *Store) ProfileBoolValue(key string, def bool, profileID string) bool {
	return s.BoolValue(profileKey(profileID, key), def)
}

// SetProfileBoolValue sets a profile-scoped boolean value.
func (s *Store) SetProfileBoolValue(key string, value bool, profileID string) {
	s.SetBoolValue(profileKey(profileID, key), value)
}

// RemoveProfileKey deletes a profile-scoped key.
func (s *Store) RemoveProfileKey(key, profileID string) {
	s.RemoveKey(profileKey(profileID, key))
}

// RemapProfileKey renames a profile-scoped key.
func (s *Store) RemapProfileKey(oldKey, newKey, profileID string) {
	s.RemapKey(profileKey(profileID, oldKey), profileKey(profileID, newKey))
}

// PathEntry is one element of a typed path list: the path itself plus a
// type flag (0 = folder, 1 = file).
type PathEntry struct {
	Value string
	Type  int
}

// ProfilePathList reads a list stored as <key>.size plus numbered
// <key>.<i>.value / <key>.<i>.type entries.
func (s *Store) ProfilePathList(key, profileID string) []PathEntry {
	base := profileKey(profileID, key)
	size := s.IntValue(base+".size", 0)
	entries := make([]PathEntry, 0, size)
	for i := 1; i <= size; i++ {
		prefix := fmt.Sprintf("%s.%d.", base, i)
		entries = append(entries, PathEntry{
			Value: s.StrValue(prefix+"value", ""),
			Type:  s.IntValue(prefix+"type", 0),
		})
	}
	return entries
}

// SetProfilePathList replaces the stored list under key.
func (s *Store) SetProfilePathList(key string, entries []PathEntry, profileID string) {
	base := profileKey(profileID, key)
	s.RemoveKeysStartsWith(base + ".")
	s.SetIntValue(base+".size", len(entries))
	for i, e := range entries {
		prefix := fmt.Sprintf("%s.%d.", base, i+1)
		s.SetStrValue(prefix+"value", e.Value)
		s.SetIntValue(prefix+"type", e.Type)
	}
}

// ProfileStringList reads a list stored as <key>.size plus numbered
// <key>.<i>.value entries.
func (s *Store) ProfileStringList(key, profileID string) []string {
	base := profileKey(profileID, key)
	size := s.IntValue(base+".size", 0)
	values := make([]string, 0, size)
	for i := 1; i <= size; i++ {
		values = append(values, s.StrValue(fmt.Sprintf("%s.%d.value", base, i), ""))
	}
	return values
}

// SetProfileStringList replaces the stored list under key.
func (s *Store) SetProfileStringList(key string, values []string, profileID string) {
	base := profileKey(profileID, key)
	s.RemoveKeysStartsWith(base + ".")
	s.SetIntValue(base+".size", len(values))
	for i, v := range values {
		s.SetStrValue(fmt.Sprintf("%s.%d.value", base, i+1), v)
	}
}
