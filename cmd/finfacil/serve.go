package main

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/Veraticus/finfacil/internal/cli"
	"github.com/Veraticus/finfacil/internal/common"
	"github.com/Veraticus/finfacil/internal/telegram"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		Long: `Connect to Telegram with the configured token and answer messages until
interrupted. The token is read from telegram.token, FINFACIL_TELEGRAM_TOKEN or BOT_TOKEN.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireToken(); err != nil {
		return common.NewUserError("Configure o token do bot em telegram.token ou BOT_TOKEN.", err)
	}

	ctx := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Bot").HandleInterrupts(cmd.Context())

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("failed to close storage", "error", err)
		}
	}()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", err)
	}
	api.Debug = cfg.Telegram.Debug

	slog.Info("bot authorized",
		"bot", api.Self.UserName,
		"backend", cfg.Storage.Backend)

	bot := telegram.NewBot(api, newEngine(st), telegram.WithPollTimeout(cfg.Telegram.PollTimeout))
	return bot.Run(ctx)
}
