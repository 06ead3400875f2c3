package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/securelink/cmd/app/commands"
	cryptoService "github.com/allisson/securelink/internal/crypto/service"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-link-key",
			Usage: "Generate a new link key for sealing link envelopes",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "id",
					Aliases: []string{"i"},
					Value:   "",
					Usage:   "Link key ID (e.g., prod-link-key-2026)",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "Optional KMS key URI to wrap the key (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunCreateLinkKey(
					ctx,
					cryptoService.NewKMSService(),
					commandLogger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "rotate-link-key",
			Usage: "Rotate the link key by generating a new key and combining with existing keys",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "id",
					Aliases: []string{"i"},
					Value:   "",
					Usage:   "New link key ID (e.g., prod-link-key-2027)",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "Optional KMS key URI to wrap the key (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunRotateLinkKey(
					ctx,
					cryptoService.NewKMSService(),
					commandLogger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("kms-key-uri"),
					os.Getenv("LINK_KEYS"),
					os.Getenv("ACTIVE_LINK_KEY_ID"),
				)
			},
		},
	}
}

// commandLogger builds a quiet text logger for one-shot key commands so the
// env var output stays copy-pasteable.
func commandLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
