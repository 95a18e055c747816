package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/clock"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// ClaimReader loads the four claim kinds for one resource. Every
// implementation must already filter cancelled bookings, unconfirmed
// bookings (whose extent is protected by their hold alone) and expired
// holds.
type ClaimReader interface {
	ListBlackouts(ctx context.Context, resourceID string, from, to time.Time) ([]domain.Blackout, error)
	ListBookingClaims(ctx context.Context, resourceID string, from, to time.Time) ([]domain.BookingClaim, error)
	ListReservations(ctx context.Context, resourceID string, from, to time.Time) ([]domain.AdminReservation, error)
	ListActiveHolds(ctx context.Context, resourceID string, now time.Time) ([]domain.Hold, error)
}

// AvailabilityService is the conflict detector: it decides whether a
// candidate extent collides with any existing claim on a resource.
type AvailabilityService struct {
	claims ClaimReader
	clock  clock.Clock
}

func NewAvailabilityService(claims ClaimReader, clk clock.Clock) *AvailabilityService {
	return &AvailabilityService{claims: claims, clock: clk}
}

// CheckOptions tweaks a single conflict evaluation.
type CheckOptions struct {
	// ClaimantID identifies the requester; their own holds never
	// conflict (re-requesting replaces the hold instead).
	ClaimantID string
	// ExcludeReservationID drops one reservation from consideration,
	// used when re-validating an exact-match reservation toggle so it
	// does not conflict with itself.
	ExcludeReservationID string
}

// CheckConflict evaluates the candidate extent against every claim on
// the resource in fixed order: blackout, confirmed booking,
// administrative reservation, unexpired hold by a different claimant.
// The first collision is returned; nil means the extent is free.
func (s *AvailabilityService) CheckConflict(ctx context.Context, res domain.Resource, extent domain.Extent, opts CheckOptions) (*domain.ConflictError, error) {
	now := s.clock.Now()
	from, to := extent.Start, extent.End

	blackouts, err := s.claims.ListBlackouts(ctx, res.ID, from, to)
	if err != nil {
		return nil, err
	}
	for _, b := range blackouts {
		if domain.BlackoutOverlaps(res.Kind, b.Start, b.End, extent) {
			return &domain.ConflictError{
				ResourceID:   res.ID,
				ResourceName: res.Name,
				Kind:         domain.ClaimBlackout,
				Extent:       domain.Extent{Start: b.Start, End: b.End},
				Detail:       b.Reason,
			}, nil
		}
	}

	bookings, err := s.claims.ListBookingClaims(ctx, res.ID, from, to)
	if err != nil {
		return nil, err
	}
	for _, bc := range bookings {
		if domain.Overlaps(res.Kind, bc.Extent, extent) {
			return &domain.ConflictError{
				ResourceID:   res.ID,
				ResourceName: res.Name,
				Kind:         domain.ClaimBooking,
				Extent:       bc.Extent,
			}, nil
		}
	}

	reservations, err := s.claims.ListReservations(ctx, res.ID, from, to)
	if err != nil {
		return nil, err
	}
	for _, ar := range reservations {
		if opts.ExcludeReservationID != "" && ar.ID == opts.ExcludeReservationID {
			continue
		}
		if domain.Overlaps(res.Kind, ar.Extent, extent) {
			return &domain.ConflictError{
				ResourceID:   res.ID,
				ResourceName: res.Name,
				Kind:         domain.ClaimReservation,
				Extent:       ar.Extent,
				Detail:       fmt.Sprintf("placed by %s", ar.ReservedBy),
			}, nil
		}
	}

	holds, err := s.claims.ListActiveHolds(ctx, res.ID, now)
	if err != nil {
		return nil, err
	}
	for _, h := range holds {
		if h.Expired(now) {
			continue
		}
		if opts.ClaimantID != "" && h.ClaimantID == opts.ClaimantID {
			continue
		}
		conflictExtent := extent
		if h.Extent != nil {
			if !domain.Overlaps(res.Kind, *h.Extent, extent) {
				continue
			}
			conflictExtent = *h.Extent
		}
		// A nil extent is a legacy whole-resource hold: it blocks
		// everything until it lapses.
		return &domain.ConflictError{
			ResourceID:   res.ID,
			ResourceName: res.Name,
			Kind:         domain.ClaimHold,
			Extent:       conflictExtent,
			Detail:       fmt.Sprintf("held for another member until %s", h.ExpiresAt.Format(time.RFC3339)),
		}, nil
	}

	return nil, nil
}

// CheckAll evaluates every resource and aggregates all conflicts
// instead of stopping at the first, so a bulk caller can report every
// offender at once.
func (s *AvailabilityService) CheckAll(ctx context.Context, resources []domain.Resource, extent domain.Extent, opts CheckOptions) ([]domain.ConflictError, error) {
	var conflicts []domain.ConflictError
	for _, res := range resources {
		c, err := s.CheckConflict(ctx, res, extent, opts)
		if err != nil {
			return nil, err
		}
		if c != nil {
			conflicts = append(conflicts, *c)
		}
	}
	return conflicts, nil
}
