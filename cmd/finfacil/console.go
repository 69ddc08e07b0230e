package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finfacil/internal/cli"
)

func consoleCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Chat with the assistant from the terminal",
		Long: `Run the same dialogs the Telegram bot offers, reading messages from stdin.
Use "/foto <id>" to send a receipt and "/sair" to quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Console").HandleInterrupts(cmd.Context())

			st, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					slog.Error("failed to close storage", "error", err)
				}
			}()

			return cli.NewConsole(newEngine(st), cmd.InOrStdin(), cmd.OutOrStdout(), userID).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "console", "user id the console speaks as")

	return cmd
}
