package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

// fakeStore backs every repository interface with in-memory state so
// the services can be exercised without Postgres.
type fakeStore struct {
	mu sync.Mutex

	resources    map[string]domain.Resource
	members      map[string]domain.Member
	bookings     map[string]*domain.Booking
	holds        []domain.Hold
	reservations []domain.AdminReservation
	blackouts    []domain.Blackout
	vouchers     map[string]*domain.Voucher
	// atoms maps "resourceID|day|slot" to the owning claim ID.
	atoms map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		resources: make(map[string]domain.Resource),
		members:   make(map[string]domain.Member),
		bookings:  make(map[string]*domain.Booking),
		vouchers:  make(map[string]*domain.Voucher),
		atoms:     make(map[string]string),
	}
}

func (f *fakeStore) addResource(res domain.Resource) {
	f.resources[res.ID] = res
}

func (f *fakeStore) addMember(m domain.Member) {
	f.members[m.ID] = m
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) GetResource(_ context.Context, id string) (domain.Resource, error) {
	res, ok := f.resources[id]
	if !ok {
		return domain.Resource{}, domain.ErrResourceNotFound
	}
	return res, nil
}

func (f *fakeStore) ListUnitsByType(_ context.Context, kind domain.ResourceKind, typeCode string) ([]domain.Resource, error) {
	var out []domain.Resource
	for _, res := range f.resources {
		if res.Kind == kind && res.TypeCode == typeCode {
			out = append(out, res)
		}
	}
	return out, nil
}

func (f *fakeStore) GetMember(_ context.Context, id string) (domain.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return domain.Member{}, domain.ErrMemberNotFound
	}
	return m, nil
}

func (f *fakeStore) CreateBooking(_ context.Context, booking domain.Booking) error {
	b := booking
	f.bookings[b.ID] = &b
	return nil
}

func (f *fakeStore) AddBookingUnit(_ context.Context, bookingID, resourceID string) error {
	b, ok := f.bookings[bookingID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.UnitIDs = append(b.UnitIDs, resourceID)
	return nil
}

func atomKey(resourceID string, a domain.Atom) string {
	return fmt.Sprintf("%s|%s|%s", resourceID, a.Day.Format(domain.DateLayout), a.Slot)
}

func (f *fakeStore) InsertClaimAtoms(_ context.Context, resourceID string, _ domain.ClaimKind, claimID string, atoms []domain.Atom) error {
	for _, a := range atoms {
		key := atomKey(resourceID, a)
		if owner, taken := f.atoms[key]; taken && owner != claimID {
			return domain.ErrExtentTaken
		}
		f.atoms[key] = claimID
	}
	return nil
}

func (f *fakeStore) DeleteClaimAtoms(_ context.Context, claimID string) error {
	for key, owner := range f.atoms {
		if owner == claimID {
			delete(f.atoms, key)
		}
	}
	return nil
}

func (f *fakeStore) CreateVoucher(_ context.Context, voucher domain.Voucher) error {
	v := voucher
	f.vouchers[v.BookingID] = &v
	return nil
}

func (f *fakeStore) GetBookingForUpdate(ctx context.Context, id string) (domain.Booking, error) {
	return f.GetBooking(ctx, id)
}

func (f *fakeStore) GetBooking(_ context.Context, id string) (domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return *b, nil
}

func (f *fakeStore) MarkBookingConfirmed(_ context.Context, id string) error {
	b, ok := f.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Confirmed = true
	b.PaymentState = domain.PaymentPaid
	return nil
}

func (f *fakeStore) MarkBookingCancelled(_ context.Context, id string) error {
	b, ok := f.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Cancelled = true
	return nil
}

func (f *fakeStore) HasLiveHolds(_ context.Context, bookingID string, now time.Time) (bool, error) {
	for _, h := range f.holds {
		if h.BookingID == bookingID && h.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) GetVoucherByBooking(_ context.Context, bookingID string) (domain.Voucher, error) {
	v, ok := f.vouchers[bookingID]
	if !ok {
		return domain.Voucher{}, domain.ErrBookingNotFound
	}
	return *v, nil
}

func (f *fakeStore) AdvanceVoucher(_ context.Context, bookingID string, from, to domain.VoucherState, at time.Time) (bool, error) {
	v, ok := f.vouchers[bookingID]
	if !ok || v.State != from {
		return false, nil
	}
	v.State = to
	if to == domain.VoucherConfirmed {
		t := at
		v.ConfirmedAt = &t
	}
	return true, nil
}

func (f *fakeStore) CreateHold(_ context.Context, hold domain.Hold) error {
	f.holds = append(f.holds, hold)
	return nil
}

func (f *fakeStore) DeleteHoldsByClaimantExtent(_ context.Context, resourceID, claimantID string, extent *domain.Extent) (int64, error) {
	var kept []domain.Hold
	var removed int64
	for _, h := range f.holds {
		match := h.ResourceID == resourceID && h.ClaimantID == claimantID
		if match {
			if extent == nil {
				match = h.Extent == nil
			} else {
				match = h.Extent != nil && domain.SameExtent(*h.Extent, *extent)
			}
		}
		if match {
			removed++
			continue
		}
		kept = append(kept, h)
	}
	f.holds = kept
	return removed, nil
}

func (f *fakeStore) DeleteHoldsByBooking(_ context.Context, bookingID string) (int64, error) {
	var kept []domain.Hold
	var removed int64
	for _, h := range f.holds {
		if h.BookingID == bookingID {
			removed++
			continue
		}
		kept = append(kept, h)
	}
	f.holds = kept
	return removed, nil
}

func (f *fakeStore) DeleteExpiredHolds(_ context.Context, now time.Time) (int64, error) {
	var kept []domain.Hold
	var removed int64
	for _, h := range f.holds {
		if h.Expired(now) {
			removed++
			continue
		}
		kept = append(kept, h)
	}
	f.holds = kept
	return removed, nil
}

func (f *fakeStore) CancelLapsedBookings(ctx context.Context, now time.Time) (int64, error) {
	var lapsed int64
	for id, b := range f.bookings {
		if b.Confirmed || b.Cancelled {
			continue
		}
		live, _ := f.HasLiveHolds(ctx, id, now)
		if live {
			continue
		}
		b.Cancelled = true
		lapsed++
		_ = f.DeleteClaimAtoms(ctx, id)
		_, _ = f.AdvanceVoucher(ctx, id, domain.VoucherPending, domain.VoucherCancelled, now)
	}
	return lapsed, nil
}

func (f *fakeStore) CreateReservation(_ context.Context, reservation domain.AdminReservation) error {
	f.reservations = append(f.reservations, reservation)
	return nil
}

func (f *fakeStore) DeleteExactReservations(ctx context.Context, resourceIDs []string, extent domain.Extent) (int64, error) {
	ids := make(map[string]bool, len(resourceIDs))
	for _, id := range resourceIDs {
		ids[id] = true
	}
	var kept []domain.AdminReservation
	var removed int64
	for _, ar := range f.reservations {
		if ids[ar.ResourceID] && domain.SameExtent(ar.Extent, extent) {
			removed++
			_ = f.DeleteClaimAtoms(ctx, ar.ID)
			continue
		}
		kept = append(kept, ar)
	}
	f.reservations = kept
	return removed, nil
}

func (f *fakeStore) CreateBlackout(_ context.Context, blackout domain.Blackout) error {
	f.blackouts = append(f.blackouts, blackout)
	return nil
}

func (f *fakeStore) DeleteBlackout(_ context.Context, id string) error {
	for i, b := range f.blackouts {
		if b.ID == id {
			f.blackouts = append(f.blackouts[:i], f.blackouts[i+1:]...)
			return nil
		}
	}
	return domain.ErrBlackoutNotFound
}

func (f *fakeStore) ListBlackouts(_ context.Context, resourceID string, _, _ time.Time) ([]domain.Blackout, error) {
	var out []domain.Blackout
	for _, b := range f.blackouts {
		if b.ResourceID == resourceID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) ListBookingClaims(_ context.Context, resourceID string, _, _ time.Time) ([]domain.BookingClaim, error) {
	var out []domain.BookingClaim
	for _, b := range f.bookings {
		if !b.Confirmed || b.Cancelled {
			continue
		}
		for _, unitID := range b.UnitIDs {
			if unitID == resourceID {
				out = append(out, domain.BookingClaim{
					BookingID:  b.ID,
					ResourceID: unitID,
					ClaimantID: b.ClaimantID,
					Extent:     b.Extent,
				})
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListReservations(_ context.Context, resourceID string, _, _ time.Time) ([]domain.AdminReservation, error) {
	var out []domain.AdminReservation
	for _, ar := range f.reservations {
		if ar.ResourceID == resourceID {
			out = append(out, ar)
		}
	}
	return out, nil
}

func (f *fakeStore) ListActiveHolds(_ context.Context, resourceID string, now time.Time) ([]domain.Hold, error) {
	var out []domain.Hold
	for _, h := range f.holds {
		if h.ResourceID == resourceID && h.ExpiresAt.After(now) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeStore) ListBookingsInRange(ctx context.Context, resourceIDs []string, from, to time.Time) ([]domain.BookingClaim, error) {
	var out []domain.BookingClaim
	for _, id := range resourceIDs {
		claims, _ := f.ListBookingClaims(ctx, id, from, to)
		out = append(out, claims...)
	}
	return out, nil
}

func (f *fakeStore) ListReservationsInRange(ctx context.Context, resourceIDs []string, from, to time.Time) ([]domain.AdminReservation, error) {
	var out []domain.AdminReservation
	for _, id := range resourceIDs {
		rs, _ := f.ListReservations(ctx, id, from, to)
		out = append(out, rs...)
	}
	return out, nil
}

func (f *fakeStore) ListBlackoutsInRange(ctx context.Context, resourceIDs []string, from, to time.Time) ([]domain.Blackout, error) {
	var out []domain.Blackout
	for _, id := range resourceIDs {
		bs, _ := f.ListBlackouts(ctx, id, from, to)
		out = append(out, bs...)
	}
	return out, nil
}

// fakePoster records voucher emissions and ledger postings.
type fakePoster struct {
	emitted []domain.Voucher
	posted  []decimal.Decimal
}

func (p *fakePoster) EmitVoucher(_ context.Context, _ domain.ResourceKind, voucher domain.Voucher) error {
	p.emitted = append(p.emitted, voucher)
	return nil
}

func (p *fakePoster) PostLedger(_ context.Context, _ string, amount decimal.Decimal) error {
	p.posted = append(p.posted, amount)
	return nil
}
