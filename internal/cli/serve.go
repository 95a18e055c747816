package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/app"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/clock"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/config"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/ledgerpost"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/storage/postgres"
	transporthttp "github.com/Atif-Muhammad/psc-portal-sub000/internal/transport/http"
	"github.com/Atif-Muhammad/psc-portal-sub000/migrations"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the occupancy API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.Default()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			startupCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			pool, err := openPool(startupCtx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if !skipMigrate {
				if err := migrations.Apply(startupCtx, pool); err != nil {
					return err
				}
			}

			clk := clock.NewSystem()

			catalogRepo := postgres.NewCatalogRepository(pool, clk)
			claimRepo := postgres.NewClaimRepository(pool)
			holdRepo := postgres.NewHoldRepository(pool, catalogRepo)
			bookingRepo := postgres.NewBookingRepository(pool, catalogRepo)
			reservationRepo := postgres.NewReservationRepository(pool, catalogRepo)
			blackoutRepo := postgres.NewBlackoutRepository(pool, catalogRepo)

			var poster app.LedgerPoster
			if cfg.LedgerPostURL != "" {
				poster = ledgerpost.NewClient(cfg.LedgerPostURL)
			} else {
				logger.Printf("WARN: LEDGER_POSTER_URL not set, logging postings locally")
				poster = ledgerpost.Noop{Logger: logger}
			}

			availability := app.NewAvailabilityService(claimRepo, clk)
			holdSvc := app.NewHoldService(holdRepo, availability, clk,
				app.WithHoldTTL(time.Duration(cfg.HoldTTLMinutes)*time.Minute))
			bookingSvc := app.NewBookingService(bookingRepo, availability, holdSvc, poster, clk, logger)
			reservationSvc := app.NewReservationService(reservationRepo, availability, clk)
			blackoutSvc := app.NewBlackoutService(blackoutRepo, claimRepo, clk)
			calendarSvc := app.NewCalendarService(claimRepo)
			catalogSvc := app.NewCatalogService(catalogRepo)

			mux := http.NewServeMux()
			mux.HandleFunc("/health", transporthttp.HealthHandler)
			mux.Handle("/bookings", transporthttp.HandleCreateBooking(bookingSvc))
			mux.Handle("/bookings/", transporthttp.HandleBookingAction(bookingSvc))
			mux.Handle("/calendar", transporthttp.HandleCalendar(calendarSvc))
			mux.Handle("/resources", transporthttp.HandleResources(catalogSvc))
			mux.Handle("/resources/", transporthttp.HandleResource(catalogSvc))
			mux.Handle("/admin/reservations/bulk", transporthttp.HandleReserveBulk(reservationSvc))
			mux.Handle("/admin/blackouts", transporthttp.HandleBlackouts(blackoutSvc))
			mux.Handle("/admin/blackouts/", transporthttp.HandleBlackouts(blackoutSvc))
			mux.Handle("/", transporthttp.NotFoundHandler())

			handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.AllowedOrigins(), mux), logger)

			server := &http.Server{
				Addr:    cfg.Addr(),
				Handler: handler,
			}

			logger.Printf("api listening on %s", cfg.Addr())

			srvErr := make(chan error, 1)
			go func() {
				srvErr <- server.ListenAndServe()
			}()

			select {
			case err := <-srvErr:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-cmd.Context().Done():
				logger.Printf("shutdown signal received, stopping server")
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("server shutdown error: %v", err)
			}
			logger.Printf("server stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations on startup")

	return cmd
}
