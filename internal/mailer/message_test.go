package mailer_test

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/gmailer/internal/mailer"
)

func TestResolveRecipients(t *testing.T) {
	tests := []struct {
		name       string
		recipients []string
		want       []string
		wantErr    error
	}{
		{
			name:       "debug sentinel resolves to sender",
			recipients: []string{"DEBUG"},
			want:       []string{"alice@example.com"},
		},
		{
			name:       "explicit recipients pass through",
			recipients: []string{"bob@example.com", "carol@example.com"},
			want:       []string{"bob@example.com", "carol@example.com"},
		},
		{
			name:       "empty list fails",
			recipients: nil,
			wantErr:    mailer.ErrNoRecipients,
		},
		{
			name:       "debug among others is not a sentinel",
			recipients: []string{"DEBUG", "bob@example.com"},
			want:       []string{"DEBUG", "bob@example.com"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := mailer.ResolveRecipients(tc.recipients, "alice@example.com")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Fatalf("unexpected recipients: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestComposeBodyFormat(t *testing.T) {
	msg := mailer.Message{
		From:    "alice@example.com",
		To:      []string{"bob@example.com"},
		Subject: "Hello",
		Body:    "<b>Hi</b>",
	}

	raw, err := msg.Compose()
	if err != nil {
		t.Fatalf("unexpected compose error: %v", err)
	}
	if !strings.Contains(string(raw), "Content-Type: text/plain") {
		t.Fatalf("expected plain text body part, got:\n%s", raw)
	}

	msg.HTML = true
	raw, err = msg.Compose()
	if err != nil {
		t.Fatalf("unexpected compose error: %v", err)
	}
	if !strings.Contains(string(raw), "Content-Type: text/html") {
		t.Fatalf("expected html body part, got:\n%s", raw)
	}
}

func TestComposeHeaders(t *testing.T) {
	msg := mailer.Message{
		From:    "alice@example.com",
		To:      []string{"bob@example.com", "carol@example.com"},
		Subject: "Greetings",
		Body:    "hi",
	}

	raw, err := msg.Compose()
	if err != nil {
		t.Fatalf("unexpected compose error: %v", err)
	}
	text := string(raw)

	for _, want := range []string{
		"From: alice@example.com",
		"To: bob@example.com, carol@example.com",
		"Subject: Greetings",
		"Message-Id: <",
		"@example.com>",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in message:\n%s", want, text)
		}
	}
}

func TestComposeAttachments(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "data.txt")
	second := filepath.Join(dir, "more.bin")
	firstContent := []byte("attachment data\n")
	secondContent := []byte{0x00, 0x01, 0x02, 0xff}
	if err := os.WriteFile(first, firstContent, 0o600); err != nil {
		t.Fatalf("writing attachment: %v", err)
	}
	if err := os.WriteFile(second, secondContent, 0o600); err != nil {
		t.Fatalf("writing attachment: %v", err)
	}

	msg := mailer.Message{
		From:        "alice@example.com",
		To:          []string{"bob@example.com"},
		Subject:     "With files",
		Body:        "see attached",
		Attachments: []string{first, second},
	}

	raw, err := msg.Compose()
	if err != nil {
		t.Fatalf("unexpected compose error: %v", err)
	}
	text := string(raw)

	if got := strings.Count(text, "Content-Disposition: attachment"); got != 2 {
		t.Fatalf("expected 2 attachment parts, got %d:\n%s", got, text)
	}
	for _, name := range []string{`filename="data.txt"`, `filename="more.bin"`} {
		if !strings.Contains(text, name) {
			t.Fatalf("expected %s in message:\n%s", name, text)
		}
	}
	if !strings.Contains(text, "application/octet-stream") {
		t.Fatalf("expected octet-stream attachment parts:\n%s", text)
	}
	for _, content := range [][]byte{firstContent, secondContent} {
		encoded := base64.StdEncoding.EncodeToString(content)
		if !strings.Contains(text, encoded) {
			t.Fatalf("expected base64 content %q in message:\n%s", encoded, text)
		}
	}
}

func TestComposeUnreadableAttachment(t *testing.T) {
	msg := mailer.Message{
		From:        "alice@example.com",
		To:          []string{"bob@example.com"},
		Subject:     "broken",
		Body:        "x",
		Attachments: []string{filepath.Join(t.TempDir(), "missing.txt")},
	}

	if _, err := msg.Compose(); err == nil {
		t.Fatal("expected error for unreadable attachment")
	}
}

func TestComposeNoRecipients(t *testing.T) {
	msg := mailer.Message{From: "alice@example.com", Subject: "x", Body: "y"}
	if _, err := msg.Compose(); !errors.Is(err, mailer.ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
}
