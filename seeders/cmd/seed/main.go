package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"calibrify/pkg/config"
	"calibrify/pkg/database/postgresql"
	"calibrify/seeders"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.New()

	root := &cobra.Command{
		Use:           "seed",
		Short:         "Миграции и наполнение БД calibrify",
		SilenceUsage:  true,
	}

	root.AddCommand(newMigrateCmd(cfg), newAdminCmd(cfg), newDemoCmd(cfg))
	return root
}

// withDB открывает пул на время выполнения команды.
func withDB(cfg *config.Config, fn func(ctx context.Context, db *pgxpool.Pool) error) error {
	ctx := context.Background()
	log.Println("📦 Подключение к БД...")
	db, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, db)
}

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Применить, откатить или показать миграции",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cfg, func(ctx context.Context, db *pgxpool.Pool) error {
				switch args[0] {
				case "up":
					return postgresql.Migrate(ctx, db)
				case "down":
					return postgresql.MigrateDown(ctx, db)
				case "status":
					return postgresql.MigrationStatus(ctx, db)
				}
				return fmt.Errorf("неизвестная команда миграции: %s", args[0])
			})
		},
	}
}

func newAdminCmd(cfg *config.Config) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Создать администратора (is_staff)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cfg, func(ctx context.Context, db *pgxpool.Pool) error {
				return seeders.SeedAdmin(ctx, db, username, password)
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "admin", "логин администратора")
	cmd.Flags().StringVar(&password, "password", "", "пароль администратора")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newDemoCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Добавить демонстрационное оборудование",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cfg, func(ctx context.Context, db *pgxpool.Pool) error {
				return seeders.SeedDemoEquipment(ctx, db, cfg.Location())
			})
		},
	}
}
