package mailer

import (
	"context"
	"os"
	"strings"

	"github.com/example/gmailer/internal/logger"
	"github.com/example/gmailer/internal/secrets"
)

const (
	testSubject        = "Test Email"
	testBody           = "This is a test."
	testAttachmentBody = "This is a test attachment.\n"
)

// Sender delivers a serialized message. *SMTPSender is the production
// implementation.
type Sender interface {
	Send(ctx context.Context, creds secrets.Credentials, recipients []string, message []byte) error
}

// Request describes one send operation.
type Request struct {
	Recipients  []string
	Subject     string
	Body        string
	HTML        bool
	Attachments []string
	SecretsFile string
	UsernameTag string
	PasswordTag string
}

// TestRequest describes one self-test send.
type TestRequest struct {
	SecretsFile       string
	UsernameTag       string
	PasswordTag       string
	IncludeAttachment bool
}

// Mailer orchestrates one send: resolve credentials, resolve recipients,
// compose, deliver.
type Mailer struct {
	sender Sender
	log    *logger.Logger
}

// New constructs a Mailer delivering through sender.
func New(sender Sender, log *logger.Logger) *Mailer {
	if log == nil {
		log = logger.Discard()
	}
	return &Mailer{sender: sender, log: log}
}

// Send resolves credentials from the request's secrets file, resolves the
// effective recipient list, composes the message and submits it. Every
// failure is logged and returned; nothing is retried.
func (m *Mailer) Send(ctx context.Context, req Request) error {
	m.log.Infof("Loading secrets for %q from %q...", req.UsernameTag, req.SecretsFile)
	creds, err := secrets.Load(req.SecretsFile, req.UsernameTag, req.PasswordTag)
	if err != nil {
		m.log.Error(err.Error())
		return err
	}
	m.log.Info("Secrets loaded successfully!")

	recipients, err := ResolveRecipients(req.Recipients, creds.Username)
	if err != nil {
		m.log.Error(err.Error())
		return err
	}

	m.log.Infof("Creating new email to recipient(s): %s...", strings.Join(recipients, ", "))
	for _, attachment := range req.Attachments {
		m.log.Debugf("Attaching %q to email...", attachment)
	}

	msg := Message{
		From:        creds.Username,
		To:          recipients,
		Subject:     req.Subject,
		Body:        req.Body,
		HTML:        req.HTML,
		Attachments: req.Attachments,
	}
	raw, err := msg.Compose()
	if err != nil {
		m.log.Error(err.Error())
		return err
	}

	if err := m.sender.Send(ctx, creds, recipients, raw); err != nil {
		m.log.Error(err.Error())
		return err
	}

	m.log.Info("Email sent successfully!")
	return nil
}

// SendTest sends a canned test message to the sender's own address,
// optionally with an autogenerated attachment written to a unique temporary
// file and removed afterwards. Send-time failures are logged, never
// returned, so a test run cannot crash the process.
func (m *Mailer) SendTest(ctx context.Context, req TestRequest) {
	m.log.Info("====== INITIALIZING... ======")
	m.log.Info("Attempting to send test email...")

	send := Request{
		Recipients:  []string{DebugRecipient},
		Subject:     testSubject,
		Body:        testBody,
		SecretsFile: req.SecretsFile,
		UsernameTag: req.UsernameTag,
		PasswordTag: req.PasswordTag,
	}

	if req.IncludeAttachment {
		path, err := writeTestAttachment()
		if err != nil {
			m.log.Errorf("Creating test attachment failed: %v", err)
			m.log.Info("====== TERMINATED ======")
			return
		}
		defer os.Remove(path)
		send.Attachments = []string{path}
	}

	if err := m.Send(ctx, send); err != nil {
		m.log.Errorf("Sending test email failed: %v", err)
	}

	m.log.Info("====== TERMINATED ======")
}

func writeTestAttachment() (string, error) {
	f, err := os.CreateTemp("", "gmailer-test-*.txt")
	if err != nil {
		return "", err
	}
	path := f.Name()

	_, werr := f.WriteString(testAttachmentBody)
	cerr := f.Close()
	if werr != nil {
		os.Remove(path)
		return "", werr
	}
	if cerr != nil {
		os.Remove(path)
		return "", cerr
	}
	return path, nil
}
