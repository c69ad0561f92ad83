package main

import (
	"fmt"

	"github.com/sglre6355/todbot/internal/bot"
	_ "github.com/sglre6355/todbot/internal/modules/truth_or_dare"
	"github.com/spf13/cobra"
)

var registerCommandsCmd = &cobra.Command{
	Use:   "register-commands",
	Short: "Overwrite the global slash commands with those of the loaded modules",
	Args:  cobra.NoArgs,
	RunE:  runRegisterCommands,
}

func runRegisterCommands(cmd *cobra.Command, args []string) error {
	cfg, err := bot.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.RegisterCommands = true

	b := bot.NewBot(cfg, logger)
	b.LoadModules()

	if err := b.Start(cmd.Context()); err != nil {
		return err
	}
	return b.Stop(cmd.Context())
}
