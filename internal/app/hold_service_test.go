package app

import (
	"context"
	"testing"
	"time"

	"github.com/Atif-Muhammad/psc-portal-sub000/internal/clock"
	"github.com/Atif-Muhammad/psc-portal-sub000/internal/domain"
)

func TestHoldService_Acquire(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	room := domain.Resource{ID: "room-1", Kind: domain.KindRoom, Name: "Room 101", Active: true}
	extent := domain.NewExtent(date(2025, 6, 10), date(2025, 6, 12), domain.SlotNone)

	makeSvc := func(clk clock.Clock) (*HoldService, *fakeStore) {
		store := newFakeStore()
		store.addResource(room)
		availability := NewAvailabilityService(store, clk)
		return NewHoldService(store, availability, clk), store
	}

	t.Run("acquires hold with default expiry", func(t *testing.T) {
		svc, store := makeSvc(clock.NewFake(now))

		hold, err := svc.Acquire(context.Background(), AcquireHoldInput{
			ResourceID: room.ID,
			ClaimantID: "member-1",
			Extent:     &extent,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if hold.ID == "" {
			t.Fatalf("expected hold ID to be set")
		}
		if !hold.ExpiresAt.Equal(now.Add(defaultHoldTTL)) {
			t.Fatalf("expected expiry %v, got %v", now.Add(defaultHoldTTL), hold.ExpiresAt)
		}
		if len(store.holds) != 1 {
			t.Fatalf("expected 1 hold, got %d", len(store.holds))
		}
	})

	t.Run("re-request replaces instead of extending", func(t *testing.T) {
		clk := clock.NewFake(now)
		svc, store := makeSvc(clk)

		first, err := svc.Acquire(context.Background(), AcquireHoldInput{
			ResourceID: room.ID, ClaimantID: "member-1", Extent: &extent,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		clk.Advance(10 * time.Minute)
		second, err := svc.Acquire(context.Background(), AcquireHoldInput{
			ResourceID: room.ID, ClaimantID: "member-1", Extent: &extent,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(store.holds) != 1 {
			t.Fatalf("expected old hold replaced, got %d holds", len(store.holds))
		}
		if second.ID == first.ID {
			t.Fatalf("expected a new hold row, got the same ID")
		}
		if !second.ExpiresAt.After(first.ExpiresAt) {
			t.Fatalf("expected replacement to carry a fresh expiry")
		}
	})

	t.Run("blocked while another claimant's hold is live, free after it lapses", func(t *testing.T) {
		clk := clock.NewFake(now)
		svc, _ := makeSvc(clk)

		if _, err := svc.Acquire(context.Background(), AcquireHoldInput{
			ResourceID: room.ID, ClaimantID: "member-1", Extent: &extent,
		}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		clk.Advance(30 * time.Minute)
		_, err := svc.Acquire(context.Background(), AcquireHoldInput{
			ResourceID: room.ID, ClaimantID: "member-2", Extent: &extent,
		})
		if !domain.IsConflict(err) {
			t.Fatalf("expected conflict at T+30m, got %v", err)
		}

		clk.Advance(31 * time.Minute)
		if _, err := svc.Acquire(context.Background(), AcquireHoldInput{
			ResourceID: room.ID, ClaimantID: "member-2", Extent: &extent,
		}); err != nil {
			t.Fatalf("expected extent free at T+61m, got %v", err)
		}
	})

	t.Run("unknown resource", func(t *testing.T) {
		svc, _ := makeSvc(clock.NewFake(now))
		_, err := svc.Acquire(context.Background(), AcquireHoldInput{
			ResourceID: "nope", ClaimantID: "member-1", Extent: &extent,
		})
		if err != domain.ErrResourceNotFound {
			t.Fatalf("expected ErrResourceNotFound, got %v", err)
		}
	})
}

func TestHoldService_Promote(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	extent := domain.NewExtent(date(2025, 6, 10), date(2025, 6, 12), domain.SlotNone)
	store.holds = append(store.holds, domain.Hold{
		ID: "h-1", ResourceID: "room-1", BookingID: "bk-1", ClaimantID: "member-1",
		Extent: &extent, ExpiresAt: now.Add(time.Hour),
	})
	clk := clock.NewFake(now)
	svc := NewHoldService(store, NewAvailabilityService(store, clk), clk)

	if err := svc.Promote(context.Background(), "bk-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(store.holds) != 0 {
		t.Fatalf("expected holds discharged, got %d", len(store.holds))
	}

	// A second promotion finds nothing and stays quiet.
	if err := svc.Promote(context.Background(), "bk-1"); err != nil {
		t.Fatalf("expected duplicate promote to be a no-op, got %v", err)
	}
}

func TestHoldService_Sweep(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	extent := domain.NewExtent(date(2025, 6, 10), date(2025, 6, 12), domain.SlotNone)

	store := newFakeStore()
	store.bookings["bk-lapsed"] = &domain.Booking{ID: "bk-lapsed", Extent: extent, UnitIDs: []string{"room-1"}}
	store.bookings["bk-live"] = &domain.Booking{ID: "bk-live", Extent: extent, UnitIDs: []string{"room-2"}}
	store.vouchers["bk-lapsed"] = &domain.Voucher{ID: "v-1", BookingID: "bk-lapsed", State: domain.VoucherPending}
	store.holds = append(store.holds,
		domain.Hold{ID: "h-dead", ResourceID: "room-1", BookingID: "bk-lapsed", ClaimantID: "member-1", Extent: &extent, ExpiresAt: now.Add(-time.Minute)},
		domain.Hold{ID: "h-live", ResourceID: "room-2", BookingID: "bk-live", ClaimantID: "member-2", Extent: &extent, ExpiresAt: now.Add(time.Hour)},
	)

	clk := clock.NewFake(now)
	svc := NewHoldService(store, NewAvailabilityService(store, clk), clk)

	result, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.ExpiredHolds != 1 {
		t.Fatalf("expected 1 expired hold removed, got %d", result.ExpiredHolds)
	}
	if result.LapsedBookings != 1 {
		t.Fatalf("expected 1 lapsed booking cancelled, got %d", result.LapsedBookings)
	}
	if !store.bookings["bk-lapsed"].Cancelled {
		t.Fatalf("expected lapsed booking to be cancelled")
	}
	if store.bookings["bk-live"].Cancelled {
		t.Fatalf("expected live booking untouched")
	}
	if store.vouchers["bk-lapsed"].State != domain.VoucherCancelled {
		t.Fatalf("expected pending voucher voided, got %s", store.vouchers["bk-lapsed"].State)
	}
}
