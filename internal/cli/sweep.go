package cli

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/app"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/clock"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/config"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/storage/postgres"
)

// The sweep is pure hygiene: expired holds are already invisible to
// every read, and lapsed unconfirmed bookings never block anything.
// Running it just keeps the tables tidy and closes out dead vouchers.
func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired holds and cancel lapsed unconfirmed bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			clk := clock.NewSystem()
			catalogRepo := postgres.NewCatalogRepository(pool, clk)
			holdRepo := postgres.NewHoldRepository(pool, catalogRepo)
			claimRepo := postgres.NewClaimRepository(pool)

			availability := app.NewAvailabilityService(claimRepo, clk)
			holdSvc := app.NewHoldService(holdRepo, availability, clk)

			result, err := holdSvc.Sweep(ctx)
			if err != nil {
				return err
			}
			log.Printf("sweep done expired_holds=%d lapsed_bookings=%d", result.ExpiredHolds, result.LapsedBookings)
			return nil
		},
	}
}
