package mailer

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrFileNotFound is returned when a message file does not exist.
var ErrFileNotFound = errors.New("message file not found")

// FileMessage holds the parts parsed from a message file: line one is a
// comma-separated recipient list, line two is the subject, and the remaining
// contents are the body (trailing newline preserved).
type FileMessage struct {
	Recipients []string
	Subject    string
	Body       string
}

// ParseMessageFile reads and splits a message file. A blank or empty first
// line yields ErrNoRecipients.
func ParseMessageFile(path string) (FileMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return FileMessage{}, fmt.Errorf("%w: %q", ErrFileNotFound, path)
		}
		return FileMessage{}, fmt.Errorf("message file %q: %w", path, err)
	}

	first, rest, _ := strings.Cut(string(data), "\n")
	recipients := splitRecipients(strings.TrimRight(first, "\r"))
	if len(recipients) == 0 {
		return FileMessage{}, fmt.Errorf("%w: first line of %q is empty", ErrNoRecipients, path)
	}

	subjectLine, body, _ := strings.Cut(rest, "\n")

	return FileMessage{
		Recipients: recipients,
		Subject:    strings.TrimSpace(strings.TrimRight(subjectLine, "\r")),
		Body:       body,
	}, nil
}

func splitRecipients(line string) []string {
	parts := strings.Split(line, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		addr := strings.TrimSpace(part)
		if addr != "" {
			result = append(result, addr)
		}
	}
	return result
}
