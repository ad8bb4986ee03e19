package main

import (
	"fmt"

	"github.com/ramanchaudhary2058/sajilobackend/config"
	"github.com/ramanchaudhary2058/sajilobackend/internal/entity"
	"github.com/ramanchaudhary2058/sajilobackend/state"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the rooms table",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, sqlDB, err := state.InitPostgres(config.Conf.DATABASE.Postgres.DSN)
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			if err := db.WithContext(cmd.Context()).AutoMigrate(&entity.Room{}); err != nil {
				return fmt.Errorf("failed to migrate rooms: %w", err)
			}

			log.Info().Msg("rooms table is up to date")
			return nil
		},
	}
}
