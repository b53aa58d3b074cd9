package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/example/gmailer/internal/mailer"
)

func messageCommand() *cli.Command {
	return &cli.Command{
		Name: "message",
		Usage: "send an email with recipients, subject and body given as flags " +
			"or read from a file, with optional attachments",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage: "read recipients, subject and body from a file: line 1 is a " +
					"comma-separated recipient list, line 2 the subject, the rest the body",
			},
			&cli.StringSliceFlag{
				Name:  "recipients",
				Usage: "email address(es) to send to",
			},
			&cli.StringFlag{
				Name:  "subject",
				Usage: "subject of the email",
			},
			&cli.StringFlag{
				Name:  "body",
				Usage: "body of the email",
			},
			&cli.BoolFlag{
				Name:  "html",
				Usage: "send the body as HTML instead of plain text",
			},
			&cli.StringSliceFlag{
				Name:  "attachments",
				Usage: "files to attach to the email",
			},
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
		},
		Action: runMessage,
	}
}

func runMessage(c *cli.Context) error {
	if c.String("file") == "" && len(c.StringSlice("recipients")) == 0 {
		return cli.Exit("recipients must be specified either in a file or with --recipients", 2)
	}

	cfg, lg, m, err := setup(c)
	if err != nil {
		return err
	}

	lg.Info("====== INITIALIZING... ======")

	req := mailer.Request{
		HTML:        c.Bool("html"),
		Attachments: c.StringSlice("attachments"),
		SecretsFile: c.String("secrets-file"),
		UsernameTag: orDefault(c.String("username-tag"), cfg.Tags.Username),
		PasswordTag: orDefault(c.String("password-tag"), cfg.Tags.Password),
	}

	if path := c.String("file"); path != "" {
		fm, err := mailer.ParseMessageFile(path)
		if err != nil {
			lg.Error(err.Error())
			return err
		}
		req.Recipients = fm.Recipients
		req.Subject = fm.Subject
		req.Body = fm.Body
	} else {
		req.Recipients = c.StringSlice("recipients")
		req.Subject = c.String("subject")
		req.Body = c.String("body")
	}

	ctx, cancel := context.WithTimeout(c.Context, time.Duration(cfg.Timeouts.SendTimeoutSeconds)*time.Second)
	defer cancel()

	if err := m.Send(ctx, req); err != nil {
		return err
	}

	lg.Info("====== TERMINATED ======")
	return nil
}
