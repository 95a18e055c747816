package app

import (
	"context"
	"time"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

type CalendarRepository interface {
	ListBookingsInRange(ctx context.Context, resourceIDs []string, from, to time.Time) ([]domain.BookingClaim, error)
	ListReservationsInRange(ctx context.Context, resourceIDs []string, from, to time.Time) ([]domain.AdminReservation, error)
	ListBlackoutsInRange(ctx context.Context, resourceIDs []string, from, to time.Time) ([]domain.Blackout, error)
}

// DateStatuses is the flattened calendar view: every committed claim
// touching the window, each carrying its own range and slot.
type DateStatuses struct {
	Bookings     []domain.BookingClaim
	Reservations []domain.AdminReservation
	Blackouts    []domain.Blackout
}

// CalendarService serves the read-only calendar query surface.
type CalendarService struct {
	repo CalendarRepository
}

func NewCalendarService(repo CalendarRepository) *CalendarService {
	return &CalendarService{repo: repo}
}

func (s *CalendarService) GetDateStatuses(ctx context.Context, resourceIDs []string, from, to time.Time) (DateStatuses, error) {
	if len(resourceIDs) == 0 {
		return DateStatuses{}, domain.ErrNoResourcesRequested
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return DateStatuses{}, domain.ValidationError{Field: "range", Reason: "from/to window is malformed"}
	}

	bookings, err := s.repo.ListBookingsInRange(ctx, resourceIDs, from, to)
	if err != nil {
		return DateStatuses{}, err
	}
	reservations, err := s.repo.ListReservationsInRange(ctx, resourceIDs, from, to)
	if err != nil {
		return DateStatuses{}, err
	}
	blackouts, err := s.repo.ListBlackoutsInRange(ctx, resourceIDs, from, to)
	if err != nil {
		return DateStatuses{}, err
	}

	return DateStatuses{
		Bookings:     bookings,
		Reservations: reservations,
		Blackouts:    blackouts,
	}, nil
}
