package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/clock"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

type BlackoutRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetResource(ctx context.Context, id string) (domain.Resource, error)
	CreateBlackout(ctx context.Context, blackout domain.Blackout) error
	DeleteBlackout(ctx context.Context, id string) error
}

// BlackoutService manages maintenance/out-of-service periods.
type BlackoutService struct {
	repo   BlackoutRepository
	claims ClaimReader
	clock  clock.Clock
}

func NewBlackoutService(repo BlackoutRepository, claims ClaimReader, clk clock.Clock) *BlackoutService {
	return &BlackoutService{repo: repo, claims: claims, clock: clk}
}

// CreateBlackout declares a maintenance period. It is refused when it
// intersects a committed booking, an administrative reservation or a
// live hold: a live hold protects a pending booking whose payment may
// still land, and confirming that booking under a blackout would leave
// two claims on the same extent. Expired holds are no claim at all.
func (s *BlackoutService) CreateBlackout(ctx context.Context, resourceID string, extent domain.Extent, reason string) (domain.Blackout, error) {
	if extent.Start.IsZero() || extent.End.IsZero() {
		return domain.Blackout{}, domain.ValidationError{Field: "dates", Reason: "start and end dates are required"}
	}
	if extent.End.Before(extent.Start) {
		return domain.Blackout{}, domain.ValidationError{Field: "end_date", Reason: "end date before start date"}
	}
	if reason == "" {
		return domain.Blackout{}, domain.ValidationError{Field: "reason", Reason: "reason is required"}
	}

	res, err := s.repo.GetResource(ctx, resourceID)
	if err != nil {
		return domain.Blackout{}, err
	}

	now := s.clock.Now()
	var blackout domain.Blackout

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		bookings, err := s.claims.ListBookingClaims(txCtx, res.ID, extent.Start, extent.End)
		if err != nil {
			return err
		}
		for _, bc := range bookings {
			if domain.BlackoutOverlaps(res.Kind, extent.Start, extent.End, bc.Extent) {
				return domain.ConflictError{
					ResourceID:   res.ID,
					ResourceName: res.Name,
					Kind:         domain.ClaimBooking,
					Extent:       bc.Extent,
				}
			}
		}
		reservations, err := s.claims.ListReservations(txCtx, res.ID, extent.Start, extent.End)
		if err != nil {
			return err
		}
		for _, ar := range reservations {
			if domain.BlackoutOverlaps(res.Kind, extent.Start, extent.End, ar.Extent) {
				return domain.ConflictError{
					ResourceID:   res.ID,
					ResourceName: res.Name,
					Kind:         domain.ClaimReservation,
					Extent:       ar.Extent,
					Detail:       "placed by " + ar.ReservedBy,
				}
			}
		}

		holds, err := s.claims.ListActiveHolds(txCtx, res.ID, now)
		if err != nil {
			return err
		}
		for _, h := range holds {
			if h.Extent == nil || domain.BlackoutOverlaps(res.Kind, extent.Start, extent.End, *h.Extent) {
				conflict := domain.ConflictError{
					ResourceID:   res.ID,
					ResourceName: res.Name,
					Kind:         domain.ClaimHold,
				}
				if h.Extent != nil {
					conflict.Extent = *h.Extent
				}
				return conflict
			}
		}

		blackout = domain.Blackout{
			ID:         uuid.NewString(),
			ResourceID: res.ID,
			Start:      domain.Day(extent.Start),
			End:        domain.Day(extent.End),
			Reason:     reason,
			CreatedAt:  now,
		}
		return s.repo.CreateBlackout(txCtx, blackout)
	})
	if err != nil {
		return domain.Blackout{}, err
	}
	return blackout, nil
}

// DeleteBlackout lifts a maintenance period.
func (s *BlackoutService) DeleteBlackout(ctx context.Context, id string) error {
	return s.repo.DeleteBlackout(ctx, id)
}
