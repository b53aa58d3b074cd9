// Package mailer composes multipart email messages and submits them through
// an SMTP endpoint, one message per invocation.
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	mail "gopkg.in/mail.v2"
)

// DebugRecipient is the sentinel recipient value that addresses the message
// to its own sender.
const DebugRecipient = "DEBUG"

// ErrNoRecipients is returned when a message would be sent to nobody.
var ErrNoRecipients = errors.New("no recipients")

// Message is one outbound email. It is constructed once per send, serialized
// to transport bytes and then discarded.
type Message struct {
	From        string
	To          []string
	Subject     string
	Body        string
	HTML        bool
	Attachments []string
}

// ResolveRecipients returns the effective recipient list: the sole sentinel
// value DebugRecipient resolves to the sender, and an empty list is an
// error.
func ResolveRecipients(recipients []string, sender string) ([]string, error) {
	if len(recipients) == 1 && recipients[0] == DebugRecipient {
		return []string{sender}, nil
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	return recipients, nil
}

// Compose serializes the message into wire format: From/To/Subject headers
// plus a generated Message-Id, one text/plain or text/html body part, and
// one base64-encoded application/octet-stream part per attachment carrying
// the attachment's base name. An unreadable attachment aborts composition
// so nothing partial is ever handed to the transport.
func (m *Message) Compose() ([]byte, error) {
	if len(m.To) == 0 {
		return nil, ErrNoRecipients
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To...)
	msg.SetHeader("Subject", m.Subject)
	msg.SetHeader("Message-Id", fmt.Sprintf("<%s@%s>", uuid.NewString(), messageIDDomain(m.From)))

	if m.HTML {
		msg.SetBody("text/html", m.Body)
	} else {
		msg.SetBody("text/plain", m.Body)
	}

	for _, path := range m.Attachments {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("attachment %q: %w", path, err)
		}
		name := filepath.Base(path)
		msg.AttachReader(name, bytes.NewReader(data), mail.SetHeader(map[string][]string{
			"Content-Type": {fmt.Sprintf("application/octet-stream; name=%q", name)},
		}))
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	return buf.Bytes(), nil
}

func messageIDDomain(from string) string {
	if _, domain, ok := strings.Cut(from, "@"); ok && domain != "" {
		return domain
	}
	return "localhost"
}
