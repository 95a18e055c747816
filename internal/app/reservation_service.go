package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/clock"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetResource(ctx context.Context, id string) (domain.Resource, error)
	CreateReservation(ctx context.Context, reservation domain.AdminReservation) error
	// DeleteExactReservations removes reservations matching the extent
	// and slot exactly, together with their claim atoms, and returns
	// how many were removed.
	DeleteExactReservations(ctx context.Context, resourceIDs []string, extent domain.Extent) (int64, error)
	InsertClaimAtoms(ctx context.Context, resourceID string, kind domain.ClaimKind, claimID string, atoms []domain.Atom) error
}

// ReservationService handles bulk staff blocking and unblocking of
// resources for a date range and slot.
type ReservationService struct {
	repo         ReservationRepository
	availability *AvailabilityService
	clock        clock.Clock
}

func NewReservationService(repo ReservationRepository, availability *AvailabilityService, clk clock.Clock) *ReservationService {
	return &ReservationService{repo: repo, availability: availability, clock: clk}
}

type ReserveBulkInput struct {
	ResourceIDs []string
	Extent      domain.Extent
	ReservedBy  string
	Remarks     string
	Reserve     bool
}

type ReserveBulkResult struct {
	Message string
	Count   int
}

// ReserveBulk applies or removes one administrative reservation per
// resource, all-or-nothing. Re-applying the identical reservation is
// idempotent: the exact match is removed first so it cannot conflict
// with itself, and exactly one row per resource remains afterwards.
func (s *ReservationService) ReserveBulk(ctx context.Context, in ReserveBulkInput) (ReserveBulkResult, error) {
	if len(in.ResourceIDs) == 0 {
		return ReserveBulkResult{}, domain.ErrNoResourcesRequested
	}
	if in.Reserve && in.ReservedBy == "" {
		return ReserveBulkResult{}, domain.ValidationError{Field: "reserved_by", Reason: "staff identity is required"}
	}

	now := s.clock.Now()
	var result ReserveBulkResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		removed, err := s.repo.DeleteExactReservations(txCtx, in.ResourceIDs, in.Extent)
		if err != nil {
			return err
		}

		if !in.Reserve {
			result = ReserveBulkResult{
				Message: fmt.Sprintf("released %d reservation(s)", removed),
				Count:   int(removed),
			}
			return nil
		}

		resources := make([]domain.Resource, 0, len(in.ResourceIDs))
		for _, id := range in.ResourceIDs {
			res, err := s.repo.GetResource(txCtx, id)
			if err != nil {
				return err
			}
			if err := domain.ValidateExtent(res.Kind, in.Extent, now); err != nil {
				return err
			}
			resources = append(resources, res)
		}

		conflicts, err := s.availability.CheckAll(txCtx, resources, in.Extent, CheckOptions{})
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return domain.BulkConflictError{Conflicts: conflicts}
		}

		for _, res := range resources {
			reservation := domain.AdminReservation{
				ID:         uuid.NewString(),
				ResourceID: res.ID,
				Extent:     in.Extent,
				ReservedBy: in.ReservedBy,
				Remarks:    in.Remarks,
				CreatedAt:  now,
			}
			if err := s.repo.CreateReservation(txCtx, reservation); err != nil {
				return err
			}
			atoms := in.Extent.Atoms(res.Kind.Lodging())
			if err := s.repo.InsertClaimAtoms(txCtx, res.ID, domain.ClaimReservation, reservation.ID, atoms); err != nil {
				return err
			}
		}

		result = ReserveBulkResult{
			Message: fmt.Sprintf("reserved %d resource(s)", len(resources)),
			Count:   len(resources),
		}
		return nil
	})
	if err != nil {
		return ReserveBulkResult{}, err
	}
	return result, nil
}
