package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hearthside/mealplan/internal/config"
	"github.com/hearthside/mealplan/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "mealplan",
	Short: "Household meal planning against a live pantry",
	Long:  "Parses free-text ingredient lines, tracks pantry stock with exact unit conversion, and deducts or restores inventory as meals are planned and unplanned.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// openStore opens the configured backend and runs migrations. The caller
// closes it.
func openStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}

	var (
		s   store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		s, err = store.NewSQLite(cfg.Store.Path)
	case "postgres":
		s, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, poolConfig())
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func poolConfig() *store.PoolConfig {
	if cfg.Store.Pool == nil {
		return nil
	}
	return &store.PoolConfig{
		MaxConns: cfg.Store.Pool.MaxConns,
		MinConns: cfg.Store.Pool.MinConns,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
