package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/clock"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

type HoldRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetResource(ctx context.Context, id string) (domain.Resource, error)
	CreateHold(ctx context.Context, hold domain.Hold) error
	DeleteHoldsByClaimantExtent(ctx context.Context, resourceID, claimantID string, extent *domain.Extent) (int64, error)
	DeleteHoldsByBooking(ctx context.Context, bookingID string) (int64, error)
	DeleteExpiredHolds(ctx context.Context, now time.Time) (int64, error)
	CancelLapsedBookings(ctx context.Context, now time.Time) (int64, error)
}

// HoldService manages short-lived exclusive claims. Expiry is lazy:
// readers filter on expires_at, and physical deletion is hygiene only.
type HoldService struct {
	repo         HoldRepository
	availability *AvailabilityService
	clock        clock.Clock
	holdTTL      time.Duration
}

const defaultHoldTTL = 60 * time.Minute

func NewHoldService(repo HoldRepository, availability *AvailabilityService, clk clock.Clock, opts ...HoldServiceOption) *HoldService {
	svc := &HoldService{
		repo:         repo,
		availability: availability,
		clock:        clk,
		holdTTL:      defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type HoldServiceOption func(*HoldService)

// WithHoldTTL overrides the default expiry window for new holds.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

type AcquireHoldInput struct {
	ResourceID string
	ClaimantID string
	BookingID  string
	// Extent nil requests a legacy whole-resource hold.
	Extent *domain.Extent
	// TTL zero uses the service default.
	TTL time.Duration
}

// Acquire conflict-checks the requested extent and inserts a hold. An
// existing hold by the same claimant for the same extent is replaced,
// never extended: expires_at is immutable once set.
func (s *HoldService) Acquire(ctx context.Context, in AcquireHoldInput) (domain.Hold, error) {
	res, err := s.repo.GetResource(ctx, in.ResourceID)
	if err != nil {
		return domain.Hold{}, err
	}

	ttl := in.TTL
	if ttl <= 0 {
		ttl = s.holdTTL
	}
	now := s.clock.Now()

	var hold domain.Hold
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.DeleteHoldsByClaimantExtent(txCtx, in.ResourceID, in.ClaimantID, in.Extent); err != nil {
			return err
		}

		extent := wholeResourceExtent(now)
		if in.Extent != nil {
			extent = *in.Extent
		}
		conflict, err := s.availability.CheckConflict(txCtx, res, extent, CheckOptions{ClaimantID: in.ClaimantID})
		if err != nil {
			return err
		}
		if conflict != nil {
			return *conflict
		}

		hold = domain.Hold{
			ID:         uuid.NewString(),
			ResourceID: in.ResourceID,
			BookingID:  in.BookingID,
			ClaimantID: in.ClaimantID,
			Extent:     in.Extent,
			ExpiresAt:  now.Add(ttl),
			CreatedAt:  now,
		}
		return s.repo.CreateHold(txCtx, hold)
	})
	if err != nil {
		return domain.Hold{}, err
	}
	return hold, nil
}

// Promote discharges every hold backing a booking. An absent hold is a
// no-op so duplicate payment callbacks stay harmless.
func (s *HoldService) Promote(ctx context.Context, bookingID string) error {
	_, err := s.repo.DeleteHoldsByBooking(ctx, bookingID)
	return err
}

// SweepResult reports what a hygiene pass removed.
type SweepResult struct {
	ExpiredHolds   int64
	LapsedBookings int64
}

// Sweep physically deletes expired holds and cancels unconfirmed
// bookings whose every hold has lapsed. Correctness never depends on
// it; reads already treat expired holds as absent.
func (s *HoldService) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.clock.Now()
	var result SweepResult
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		lapsed, err := s.repo.CancelLapsedBookings(txCtx, now)
		if err != nil {
			return err
		}
		expired, err := s.repo.DeleteExpiredHolds(txCtx, now)
		if err != nil {
			return err
		}
		result = SweepResult{ExpiredHolds: expired, LapsedBookings: lapsed}
		return nil
	})
	if err != nil {
		return SweepResult{}, err
	}
	return result, nil
}

// wholeResourceExtent is the widest window a legacy hold must be
// checked against: slotless, so it collides with any slot on a venue
// and any night range on lodging.
func wholeResourceExtent(now time.Time) domain.Extent {
	start := domain.Day(now)
	return domain.Extent{Start: start, End: start.AddDate(10, 0, 0), Slot: domain.SlotNone}
}
