package app

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/clock"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetResource(ctx context.Context, id string) (domain.Resource, error)
	ListUnitsByType(ctx context.Context, kind domain.ResourceKind, typeCode string) ([]domain.Resource, error)
	GetMember(ctx context.Context, id string) (domain.Member, error)
	CreateBooking(ctx context.Context, booking domain.Booking) error
	AddBookingUnit(ctx context.Context, bookingID, resourceID string) error
	InsertClaimAtoms(ctx context.Context, resourceID string, kind domain.ClaimKind, claimID string, atoms []domain.Atom) error
	DeleteClaimAtoms(ctx context.Context, claimID string) error
	CreateVoucher(ctx context.Context, voucher domain.Voucher) error
	GetBookingForUpdate(ctx context.Context, id string) (domain.Booking, error)
	GetBooking(ctx context.Context, id string) (domain.Booking, error)
	MarkBookingConfirmed(ctx context.Context, id string) error
	MarkBookingCancelled(ctx context.Context, id string) error
	HasLiveHolds(ctx context.Context, bookingID string, now time.Time) (bool, error)
	GetVoucherByBooking(ctx context.Context, bookingID string) (domain.Voucher, error)
	AdvanceVoucher(ctx context.Context, bookingID string, from, to domain.VoucherState, at time.Time) (bool, error)
}

// LedgerPoster is the external voucher/ledger collaborator. Both calls
// are one-way: the engine never reads anything back.
type LedgerPoster interface {
	EmitVoucher(ctx context.Context, kind domain.ResourceKind, voucher domain.Voucher) error
	PostLedger(ctx context.Context, claimantID string, amount decimal.Decimal) error
}

// BookingService drives the booking workflow: validate, conflict-check,
// hold, emit a voucher, and later confirm or cancel.
type BookingService struct {
	repo         BookingRepository
	availability *AvailabilityService
	holds        *HoldService
	poster       LedgerPoster
	clock        clock.Clock
	logger       *log.Logger
}

func NewBookingService(repo BookingRepository, availability *AvailabilityService, holds *HoldService, poster LedgerPoster, clk clock.Clock, logger *log.Logger) *BookingService {
	if logger == nil {
		logger = log.Default()
	}
	return &BookingService{
		repo:         repo,
		availability: availability,
		holds:        holds,
		poster:       poster,
		clock:        clk,
		logger:       logger,
	}
}

type CreateBookingInput struct {
	// ResourceID claims one specific resource. For lodging, TypeCode
	// may be given instead to let the engine pick Units available units
	// of that type.
	ResourceID string
	TypeCode   string
	ClaimantID string
	Pricing    domain.PricingType
	Extent     domain.Extent
	Guests     int
	Units      int
}

type CreateBookingResult struct {
	Booking domain.Booking
	Voucher domain.Voucher
}

func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (CreateBookingResult, error) {
	if in.ClaimantID == "" {
		return CreateBookingResult{}, domain.ValidationError{Field: "claimant_id", Reason: "claimant is required"}
	}
	if in.ResourceID == "" && in.TypeCode == "" {
		return CreateBookingResult{}, domain.ValidationError{Field: "resource_id", Reason: "resource or unit type is required"}
	}
	if in.Pricing != domain.PricingMember && in.Pricing != domain.PricingGuest {
		return CreateBookingResult{}, domain.ValidationError{Field: "pricing", Reason: "pricing must be MEMBER or GUEST"}
	}

	now := s.clock.Now()

	member, err := s.repo.GetMember(ctx, in.ClaimantID)
	if err != nil {
		return CreateBookingResult{}, err
	}
	if in.Pricing == domain.PricingMember && member.Standing != domain.StandingActive {
		return CreateBookingResult{}, domain.ErrMembershipNotActive
	}

	var result CreateBookingResult
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		units, err := s.resolveUnits(txCtx, in, now)
		if err != nil {
			return err
		}
		primary := units[0]

		if !primary.Kind.Lodging() {
			if in.Guests < primary.CapacityMin || in.Guests > primary.CapacityMax {
				return domain.ValidationError{
					Field:  "guests",
					Reason: "guest count outside resource capacity bounds",
				}
			}
		}

		price := bookingPrice(primary, in.Pricing, in.Extent, len(units))

		booking := domain.Booking{
			ID:           uuid.NewString(),
			ResourceKind: primary.Kind,
			ClaimantID:   in.ClaimantID,
			Pricing:      in.Pricing,
			Extent:       in.Extent,
			Guests:       in.Guests,
			Units:        len(units),
			Price:        price,
			PaymentState: domain.PaymentUnpaid,
			Confirmed:    false,
			Cancelled:    false,
			CreatedAt:    now,
		}
		if err := s.repo.CreateBooking(txCtx, booking); err != nil {
			return err
		}

		for _, unit := range units {
			booking.UnitIDs = append(booking.UnitIDs, unit.ID)
			if err := s.repo.AddBookingUnit(txCtx, booking.ID, unit.ID); err != nil {
				return err
			}
			extent := in.Extent
			if _, err := s.holds.Acquire(txCtx, AcquireHoldInput{
				ResourceID: unit.ID,
				ClaimantID: in.ClaimantID,
				BookingID:  booking.ID,
				Extent:     &extent,
			}); err != nil {
				return err
			}
		}

		voucher := domain.Voucher{
			ID:         uuid.NewString(),
			BookingID:  booking.ID,
			ClaimantID: in.ClaimantID,
			Amount:     price,
			State:      domain.VoucherPending,
			CreatedAt:  now,
		}
		if err := s.repo.CreateVoucher(txCtx, voucher); err != nil {
			return err
		}

		result = CreateBookingResult{Booking: booking, Voucher: voucher}
		return nil
	})
	if err != nil {
		return CreateBookingResult{}, err
	}

	if err := s.poster.EmitVoucher(ctx, result.Booking.ResourceKind, result.Voucher); err != nil {
		s.logger.Printf("WARN: emit voucher %s: %v", result.Voucher.ID, err)
	}
	return result, nil
}

// resolveUnits picks the concrete resource units a booking will claim.
// An explicit resource ID claims exactly that unit; a lodging type code
// claims the first N conflict-free units, lowest unit number first.
func (s *BookingService) resolveUnits(ctx context.Context, in CreateBookingInput, now time.Time) ([]domain.Resource, error) {
	if in.ResourceID != "" {
		res, err := s.repo.GetResource(ctx, in.ResourceID)
		if err != nil {
			return nil, err
		}
		if !res.Bookable() {
			return nil, domain.ErrResourceUnavailable
		}
		if err := domain.ValidateExtent(res.Kind, in.Extent, now); err != nil {
			return nil, err
		}
		conflict, err := s.availability.CheckConflict(ctx, res, in.Extent, CheckOptions{ClaimantID: in.ClaimantID})
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, *conflict
		}
		return []domain.Resource{res}, nil
	}

	wanted := in.Units
	if wanted <= 0 {
		wanted = 1
	}
	if err := domain.ValidateExtent(domain.KindRoom, in.Extent, now); err != nil {
		return nil, err
	}

	all, err := s.repo.ListUnitsByType(ctx, domain.KindRoom, in.TypeCode)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, domain.ErrResourceNotFound
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UnitNo < all[j].UnitNo })

	var available []domain.Resource
	for _, unit := range all {
		if !unit.Bookable() {
			continue
		}
		conflict, err := s.availability.CheckConflict(ctx, unit, in.Extent, CheckOptions{ClaimantID: in.ClaimantID})
		if err != nil {
			return nil, err
		}
		if conflict == nil {
			available = append(available, unit)
		}
		if len(available) == wanted {
			break
		}
	}
	if len(available) < wanted {
		return nil, domain.ErrInsufficientUnits
	}
	return available, nil
}

// bookingPrice is rate x nights x units for lodging, or a flat
// per-booking rate for venues and studios.
func bookingPrice(res domain.Resource, pricing domain.PricingType, extent domain.Extent, units int) decimal.Decimal {
	rate := res.Rate(pricing)
	if res.Kind.Lodging() {
		return rate.Mul(decimal.NewFromInt(int64(extent.Nights()))).Mul(decimal.NewFromInt(int64(units)))
	}
	return rate
}

type ConfirmResult struct {
	Booking domain.Booking
	// Promoted is false when the call was a duplicate or the booking
	// had already lapsed or been cancelled; nothing was posted then.
	Promoted bool
}

// Confirm is the payment-gateway callback: it promotes the booking's
// holds, flips payment state, confirms the voucher and posts the amount
// to the member ledger exactly once. Duplicate callbacks, cancelled
// bookings and lapsed holds are all quiet no-ops.
func (s *BookingService) Confirm(ctx context.Context, kind domain.ResourceKind, bookingID string) (ConfirmResult, error) {
	now := s.clock.Now()
	var result ConfirmResult
	var voucher domain.Voucher

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if kind != "" && booking.ResourceKind != kind {
			return domain.ErrBookingNotFound
		}
		if booking.Cancelled || booking.Confirmed {
			result = ConfirmResult{Booking: booking, Promoted: false}
			return nil
		}

		live, err := s.repo.HasLiveHolds(txCtx, bookingID, now)
		if err != nil {
			return err
		}
		if !live {
			// The hold lapsed before payment arrived; the extent may
			// already belong to someone else, so the booking stays
			// unconfirmed.
			result = ConfirmResult{Booking: booking, Promoted: false}
			return nil
		}

		advanced, err := s.repo.AdvanceVoucher(txCtx, bookingID, domain.VoucherPending, domain.VoucherConfirmed, now)
		if err != nil {
			return err
		}
		if !advanced {
			result = ConfirmResult{Booking: booking, Promoted: false}
			return nil
		}

		if err := s.repo.MarkBookingConfirmed(txCtx, bookingID); err != nil {
			return err
		}
		// Atoms are recorded only for committed claims; until now the
		// extent was protected by the holds alone, so a lapsed booking
		// never blocks a later claimant.
		atoms := booking.Extent.Atoms(booking.ResourceKind.Lodging())
		for _, unitID := range booking.UnitIDs {
			if err := s.repo.InsertClaimAtoms(txCtx, unitID, domain.ClaimBooking, booking.ID, atoms); err != nil {
				return err
			}
		}
		if err := s.holds.Promote(txCtx, bookingID); err != nil {
			return err
		}

		voucher, err = s.repo.GetVoucherByBooking(txCtx, bookingID)
		if err != nil {
			return err
		}
		booking.Confirmed = true
		booking.PaymentState = domain.PaymentPaid
		result = ConfirmResult{Booking: booking, Promoted: true}
		return nil
	})
	if err != nil {
		return ConfirmResult{}, err
	}

	if result.Promoted {
		if err := s.poster.PostLedger(ctx, result.Booking.ClaimantID, result.Booking.Price); err != nil {
			s.logger.Printf("WARN: post ledger for booking %s: %v", bookingID, err)
		}
		if err := s.poster.EmitVoucher(ctx, result.Booking.ResourceKind, voucher); err != nil {
			s.logger.Printf("WARN: emit voucher %s: %v", voucher.ID, err)
		}
	}
	return result, nil
}

// Cancel marks the booking inert without deleting it, releases its
// atoms and holds, and voids the voucher. Already-cancelled bookings
// are a no-op.
func (s *BookingService) Cancel(ctx context.Context, bookingID string) (domain.Booking, error) {
	now := s.clock.Now()
	var result domain.Booking

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.GetBookingForUpdate(txCtx, bookingID)
		if err != nil {
			return err
		}
		if booking.Cancelled {
			result = booking
			return nil
		}
		if err := s.repo.MarkBookingCancelled(txCtx, bookingID); err != nil {
			return err
		}
		if err := s.repo.DeleteClaimAtoms(txCtx, bookingID); err != nil {
			return err
		}
		if err := s.holds.Promote(txCtx, bookingID); err != nil {
			return err
		}
		if _, err := s.repo.AdvanceVoucher(txCtx, bookingID, domain.VoucherPending, domain.VoucherCancelled, now); err != nil {
			return err
		}
		if _, err := s.repo.AdvanceVoucher(txCtx, bookingID, domain.VoucherConfirmed, domain.VoucherCancelled, now); err != nil {
			return err
		}
		booking.Cancelled = true
		result = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return result, nil
}

// Get returns a booking with its claimed units.
func (s *BookingService) Get(ctx context.Context, bookingID string) (domain.Booking, error) {
	return s.repo.GetBooking(ctx, bookingID)
}
