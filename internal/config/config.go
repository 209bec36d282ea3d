// Package config provides the credential store: an INI file of named
// sections holding per-environment authentication material.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/pardotkit/pardotctl/internal/output"
)

// DefaultFileName is the credential file looked up in the user's home
// directory when no --config flag is given. It lives outside the repository
// on purpose; see pardot_demo.example.ini at the repository root.
const DefaultFileName = "pardot_demo.ini"

// DefaultPath returns the default credential file path.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, DefaultFileName)
}

// Store is a read-only view over the parsed credential file.
type Store struct {
	file *ini.File
	path string
}

// Load parses the credential file at path.
func Load(path string) (*Store, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, output.ErrUsageHint(
			"cannot read config file "+path,
			err.Error(),
		)
	}
	return &Store{file: f, path: path}, nil
}

// LoadBytes parses credential data from memory, for tests.
func LoadBytes(data []byte) (*Store, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, output.ErrUsageHint("cannot parse config data", err.Error())
	}
	return &Store{file: f, path: "<memory>"}, nil
}

// Path returns the file path the store was loaded from.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value for key in section. Absent sections and keys are
// missing_config errors naming what is missing; credential values are
// returned exactly as written, with no normalization.
func (s *Store) Get(section, key string) (string, error) {
	sec, err := s.file.GetSection(section)
	if err != nil {
		return "", output.ErrMissingSection(section)
	}
	if !sec.HasKey(key) {
		return "", output.ErrMissingConfigField(section, key)
	}
	return sec.Key(key).String(), nil
}

// GetDefault returns the value for key in section, or fallback when the
// section or key is absent.
func (s *Store) GetDefault(section, key, fallback string) string {
	v, err := s.Get(section, key)
	if err != nil {
		return fallback
	}
	return v
}

// HasSections reports whether every named section exists.
func (s *Store) HasSections(names ...string) bool {
	for _, name := range names {
		if _, err := s.file.GetSection(name); err != nil {
			return false
		}
	}
	return true
}

// MissingSections returns the subset of names absent from the file,
// in input order.
func (s *Store) MissingSections(names ...string) []string {
	var missing []string
	for _, name := range names {
		if _, err := s.file.GetSection(name); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}
