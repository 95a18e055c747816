package cli

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/config"
	"github.com/Atif-Muhammad/psc-portal-sub000/migrations"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := migrations.Apply(ctx, pool); err != nil {
				return err
			}
			log.Printf("migrations applied")
			return nil
		},
	}
}
