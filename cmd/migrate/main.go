package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"beproductive/backend/internal/config"
	"beproductive/backend/internal/db"
	"beproductive/backend/internal/repository"
	"beproductive/backend/internal/service"
)

func main() {
	var backfill bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), config.Load(), backfill)
		},
	}
	cmd.Flags().BoolVar(&backfill, "backfill", false, "create focus sessions missing for already completed pomodoros")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config, backfill bool) error {
	database, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		return err
	}
	log.Println("migrations applied successfully")

	if !backfill {
		return nil
	}
	created, err := service.BackfillFocusSessions(
		ctx,
		repository.NewTaskRepository(database),
		repository.NewFocusSessionRepository(database),
	)
	if err != nil {
		return err
	}
	log.Printf("backfilled %d focus sessions", created)
	return nil
}
