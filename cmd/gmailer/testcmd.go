package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/example/gmailer/internal/mailer"
)

func testCommand() *cli.Command {
	return &cli.Command{
		Name:  "test",
		Usage: "send a test email to the sender's own address, optionally with a test attachment",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "secrets-file",
				Required: true,
				Usage:    "file containing credentials for the email sender",
			},
			&cli.StringFlag{
				Name:  "username-tag",
				Usage: "tag for the email username in the secrets file",
			},
			&cli.StringFlag{
				Name:  "password-tag",
				Usage: "tag for the email password in the secrets file",
			},
			&cli.BoolFlag{
				Name:  "include-attachment",
				Usage: "include a simple test attachment in the test email",
			},
		},
		Action: runTest,
	}
}

func runTest(c *cli.Context) error {
	cfg, _, m, err := setup(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, time.Duration(cfg.Timeouts.SendTimeoutSeconds)*time.Second)
	defer cancel()

	// Send failures are logged inside SendTest and never crash a test run.
	m.SendTest(ctx, mailer.TestRequest{
		SecretsFile:       c.String("secrets-file"),
		UsernameTag:       orDefault(c.String("username-tag"), cfg.Tags.Username),
		PasswordTag:       orDefault(c.String("password-tag"), cfg.Tags.Password),
		IncludeAttachment: c.Bool("include-attachment"),
	})

	return nil
}
