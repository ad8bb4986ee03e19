package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ramanchaudhary2058/sajilobackend/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sajilo",
		Short: "Sajilo rooms listing service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// initialize the application
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

			if err := config.LoadConfig(); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			level, err := zerolog.ParseLevel(config.Conf.App.LogLevel)
			if err != nil || level == zerolog.NoLevel {
				level = zerolog.InfoLevel
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
		SilenceUsage: true,
	}

	serve := serveCmd()
	rootCmd.AddCommand(serve, migrateCmd())
	// running the binary without a subcommand serves
	rootCmd.RunE = serve.RunE

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
