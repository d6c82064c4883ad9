// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads credentials from a directory of plain-text files,
// one secret per file: the file name is the key, the trimmed contents the
// value. The CLI reads .secrets/ so tokens stay out of trendscope.yaml.
package secrets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Known keys.
const (
	// APIToken is a bearer token adopted for the run without being saved.
	APIToken = "api-token"
)

// Set maps secret names to values.
type Set map[string]string

// Warning reports a secret file that was skipped or is too widely readable.
type Warning struct {
	Name string
	Err  error
}

func (w Warning) String() string { return fmt.Sprintf("secret %s: %v", w.Name, w.Err) }

// Load reads every regular, non-hidden file in dir. A missing directory is
// an empty set. Unreadable files are skipped and reported as warnings, as
// are files readable by group or others.
func Load(dir string) (Set, []Warning, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil, nil
		}
		return nil, nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := Set{}
	var warnings []Warning
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, Warning{Name: name, Err: err})
			continue
		}
		if info, err := entry.Info(); err == nil && info.Mode().Perm()&0o077 != 0 {
			warnings = append(warnings, Warning{Name: name, Err: fmt.Errorf("mode %v is readable by others", info.Mode().Perm()&fs.ModePerm)})
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, warnings, nil
}

// Value returns explicit when set, otherwise the secret stored under key.
func (s Set) Value(key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return s[key]
}

// Keys returns the loaded secret names, sorted.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
