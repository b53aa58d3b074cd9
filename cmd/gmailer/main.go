// Package main is the entry point for the gmailer CLI, which sends a single
// email per invocation through an SMTP submission endpoint.
package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/example/gmailer/internal/config"
	"github.com/example/gmailer/internal/logger"
	"github.com/example/gmailer/internal/mailer"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "gmailer",
		Usage: "send a single email through an SMTP submission endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Value: logger.Stdout,
				Usage: "log destination: 'stdout' or a file path",
			},
		},
		Commands: []*cli.Command{
			messageCommand(),
			testCommand(),
		},
	}
}

// setup loads configuration and wires the logger and mailer for a command.
// Configuration is resolved once here and passed down explicitly.
func setup(c *cli.Context) (*config.Config, *logger.Logger, *mailer.Mailer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	lg, err := logger.New(c.String("log-file"), cfg.App.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	sender, err := mailer.NewSMTPSender(cfg.SMTP, lg)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, lg, mailer.New(sender, lg), nil
}

// orDefault returns value unless it is empty, in which case def is used.
func orDefault(value, def string) string {
	if value != "" {
		return value
	}
	return def
}
