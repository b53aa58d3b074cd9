// Package secrets reads credential pairs from a flat tagged key/value file.
// Each line has the form "tag:value"; a line matches a tag when it begins
// with that tag.
package secrets

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrNotFound is returned when the secrets file does not exist.
	ErrNotFound = errors.New("secrets file not found")
	// ErrMissingTag is returned when a requested tag is absent after
	// scanning the whole file.
	ErrMissingTag = errors.New("tag not found in secrets file")
)

// Credentials is a username/password pair resolved from a secrets file. It
// is read fresh for every send and only held in memory for the duration of
// one send.
type Credentials struct {
	Username string
	Password string
}

// Load scans the file at path line by line and returns the values for the
// given username and password tags. The value is everything after the first
// ':' separator, trimmed of surrounding whitespace. The first line yielding
// a non-empty value for a tag wins; later matching lines are ignored.
func Load(path, usernameTag, passwordTag string) (Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, fmt.Errorf("%w: %q", ErrNotFound, path)
		}
		return Credentials{}, fmt.Errorf("secrets: open %q: %w", path, err)
	}
	defer f.Close()

	var creds Credentials
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if creds.Username == "" && strings.HasPrefix(line, usernameTag) {
			creds.Username = tagValue(line)
		}
		if creds.Password == "" && strings.HasPrefix(line, passwordTag) {
			creds.Password = tagValue(line)
		}
	}
	if err := sc.Err(); err != nil {
		return Credentials{}, fmt.Errorf("secrets: read %q: %w", path, err)
	}

	if creds.Username == "" {
		return Credentials{}, fmt.Errorf("%w: username tag %q in %q", ErrMissingTag, usernameTag, path)
	}
	if creds.Password == "" {
		return Credentials{}, fmt.Errorf("%w: password tag %q in %q", ErrMissingTag, passwordTag, path)
	}

	return creds, nil
}

// tagValue returns the trimmed remainder after the first ':'. Lines without
// a separator yield an empty value, which counts as no match.
func tagValue(line string) string {
	_, value, found := strings.Cut(line, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(value)
}
