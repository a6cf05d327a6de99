package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultEnvFile is the env file looked up when ENV_FILE is not set.
const DefaultEnvFile = "config.env"

// Assignment is a single KEY=VALUE pair read from an env file.
type Assignment struct {
	Key   string
	Value string
}

// EnvFile describes the outcome of loading an env file into the process
// environment.
type EnvFile struct {
	Path    string
	Found   bool
	Applied []string // keys that were not set before loading
	Skipped int      // non-blank, non-comment lines that were ignored
}

// ParseEnv splits env file content into assignments. Blank lines, comments
// and lines without '=' are skipped; the second return value counts the
// skipped lines that were not blank or comments.
func ParseEnv(content string) ([]Assignment, int) {
	var (
		assignments []Assignment
		skipped     int
	)

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			skipped++
			continue
		}

		assignments = append(assignments, Assignment{
			Key:   key,
			Value: unquote(strings.TrimSpace(value)),
		})
	}

	return assignments, skipped
}

// unquote drops one leading and one trailing double quote, then one leading
// and one trailing single quote from what is left.
func unquote(value string) string {
	value = strings.TrimSuffix(strings.TrimPrefix(value, `"`), `"`)
	value = strings.TrimSuffix(strings.TrimPrefix(value, `'`), `'`)
	return value
}

// LoadEnvFile reads KEY=VALUE lines from path into the process environment.
// Keys that are already set, even to an empty string, keep their value.
// A missing file is not an error.
func LoadEnvFile(path string) (*EnvFile, error) {
	result := &EnvFile{Path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	result.Found = true

	assignments, skipped := ParseEnv(string(content))
	result.Skipped = skipped

	for _, a := range assignments {
		if _, set := os.LookupEnv(a.Key); set {
			continue
		}
		if err := os.Setenv(a.Key, a.Value); err != nil {
			// keys os.Setenv rejects are treated like any other malformed line
			result.Skipped++
			continue
		}
		result.Applied = append(result.Applied, a.Key)
	}

	return result, nil
}

// resolvePath finds a relative file in the working directory first and next
// to the executable second. Absolute paths are returned unchanged.
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	if _, err := os.Stat(path); err == nil {
		return path
	}

	execPath, err := os.Executable()
	if err != nil {
		return path
	}
	return filepath.Join(filepath.Dir(execPath), path)
}

// NewEnvFile loads the env file named by ENV_FILE, or config.env, before any
// other configuration is resolved.
func NewEnvFile() (*EnvFile, error) {
	path := DefaultEnvFile
	if p := strings.TrimSpace(os.Getenv("ENV_FILE")); p != "" {
		path = p
	}

	return LoadEnvFile(resolvePath(path))
}
