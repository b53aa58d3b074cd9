package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/example/gmailer/internal/config"
	"github.com/example/gmailer/internal/logger"
	"github.com/example/gmailer/internal/secrets"
)

// Option configures the behaviour of the SMTP sender.
type Option func(*SMTPSender)

// WithTLSConfig overrides the TLS configuration used when negotiating
// STARTTLS. Passing nil disables STARTTLS entirely.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(s *SMTPSender) {
		s.tlsConfig = cfg
	}
}

// WithDialer swaps the network dialer used to establish SMTP connections.
func WithDialer(d Dialer) Option {
	return func(s *SMTPSender) {
		if d != nil {
			s.dialer = d
		}
	}
}

// WithHelloName customises the EHLO/HELO identity presented to the server.
func WithHelloName(name string) Option {
	return func(s *SMTPSender) {
		if strings.TrimSpace(name) != "" {
			s.helloName = strings.TrimSpace(name)
		}
	}
}

// Dialer abstracts net.Dialer to simplify testing.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// SMTPSender submits serialized messages to an SMTP endpoint over a single
// session per call: EHLO, STARTTLS when offered, AUTH PLAIN with the
// per-send credentials, then MAIL/RCPT/DATA/QUIT. No state survives a call.
type SMTPSender struct {
	log       *logger.Logger
	host      string
	port      int
	tlsConfig *tls.Config
	dialer    Dialer
	helloName string
}

// NewSMTPSender constructs a sender for the given submission endpoint.
func NewSMTPSender(cfg config.SMTPConfig, log *logger.Logger, opts ...Option) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp sender: host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("smtp sender: invalid port %d", cfg.Port)
	}
	if log == nil {
		log = logger.Discard()
	}

	s := &SMTPSender{
		log:       log,
		host:      cfg.Host,
		port:      cfg.Port,
		dialer:    &net.Dialer{Timeout: 30 * time.Second},
		helloName: "localhost",
	}

	s.tlsConfig = &tls.Config{
		ServerName: cfg.Host,
		MinVersion: tls.VersionTLS12,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s, nil
}

// Send submits message to all recipients in one SMTP session, authenticating
// with the supplied credentials. The sender address is the credential
// username. Delivery is all-or-nothing per the underlying transport; there is
// no retry and no partial-recipient reporting.
func (s *SMTPSender) Send(ctx context.Context, creds secrets.Credentials, recipients []string, message []byte) error {
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	from, err := normalizeEnvelopeAddress(creds.Username)
	if err != nil {
		return fmt.Errorf("smtp sender: invalid sender address: %w", err)
	}

	envelopeRecipients, err := normalizeEnvelopeList(recipients)
	if err != nil {
		return fmt.Errorf("smtp sender: invalid recipient: %w", err)
	}

	var auth smtp.Auth
	if creds.Password != "" {
		auth = smtp.PlainAuth("", creds.Username, creds.Password, s.host)
	}

	s.log.Debugf("Opening SMTP session with %s:%d...", s.host, s.port)
	return s.deliver(ctx, from, envelopeRecipients, auth, message)
}

func (s *SMTPSender) deliver(ctx context.Context, from string, recipients []string, auth smtp.Auth, message []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	conn, err := s.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp sender: dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer close(done)

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("smtp sender: new client: %w", err)
	}
	defer client.Close()

	if err := client.Hello(s.helloName); err != nil {
		return fmt.Errorf("smtp sender: hello: %w", err)
	}

	if cfg := s.sessionTLSConfig(); cfg != nil {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(cfg); err != nil {
				return fmt.Errorf("smtp sender: starttls: %w", err)
			}
		}
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("smtp sender: auth: %w", err)
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("smtp sender: mail from: %w", err)
	}

	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp sender: rcpt to %s: %w", rcpt, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp sender: data: %w", err)
	}

	if _, err := writer.Write(message); err != nil {
		_ = writer.Close()
		return fmt.Errorf("smtp sender: data write: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("smtp sender: data close: %w", err)
	}

	if err := client.Quit(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("smtp sender: quit: %w", err)
	}

	return ctx.Err()
}

func (s *SMTPSender) sessionTLSConfig() *tls.Config {
	if s.tlsConfig == nil {
		return nil
	}
	cfg := s.tlsConfig.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = s.host
	}
	return cfg
}

func normalizeEnvelopeList(addresses []string) ([]string, error) {
	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		parsed, err := normalizeEnvelopeAddress(addr)
		if err != nil {
			return nil, err
		}
		result = append(result, parsed)
	}
	return result, nil
}

func normalizeEnvelopeAddress(value string) (string, error) {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return "", err
	}
	if addr.Address == "" {
		return "", errors.New("empty address")
	}
	return addr.Address, nil
}
