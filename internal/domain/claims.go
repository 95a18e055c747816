package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimKind identifies which table a time-bounded claim lives in. The
// conflict detector evaluates kinds in the order listed here.
type ClaimKind string

const (
	ClaimBlackout    ClaimKind = "blackout"
	ClaimBooking     ClaimKind = "booking"
	ClaimReservation ClaimKind = "admin_reservation"
	ClaimHold        ClaimKind = "hold"
)

type PaymentState string

const (
	PaymentUnpaid  PaymentState = "UNPAID"
	PaymentPartial PaymentState = "PARTIAL"
	PaymentPaid    PaymentState = "PAID"
)

// Booking is a member claim on one or more resource units. It is
// created unconfirmed at hold time, promoted on payment confirmation,
// and marked cancelled (never deleted) so the audit trail survives.
type Booking struct {
	ID           string
	ResourceKind ResourceKind
	ClaimantID   string
	Pricing      PricingType
	Extent       Extent
	Guests       int
	Units        int
	Price        decimal.Decimal
	PaymentState PaymentState
	Confirmed    bool
	Cancelled    bool
	CreatedAt    time.Time

	// UnitIDs lists the claimed resource units, lowest unit number first.
	UnitIDs []string
}

// BookingClaim is a booking's occupancy on a single resource unit, as
// seen by the conflict detector.
type BookingClaim struct {
	BookingID  string
	ResourceID string
	ClaimantID string
	Extent     Extent
}

// Hold is a short-lived exclusive claim created while payment is
// pending. A nil Extent is a legacy whole-resource hold that blocks
// every extent until it expires. Expiry is evaluated lazily: a hold
// with ExpiresAt <= now is treated as absent by every read.
type Hold struct {
	ID         string
	ResourceID string
	BookingID  string
	ClaimantID string
	Extent     *Extent
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Expired reports whether the hold is dead at the given instant.
func (h Hold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

// AdminReservation blocks a resource for staff purposes, independent of
// the member payment flow.
type AdminReservation struct {
	ID         string
	ResourceID string
	Extent     Extent
	ReservedBy string
	Remarks    string
	CreatedAt  time.Time
}

// Blackout is a maintenance/out-of-service period. Its date range is
// inclusive of both endpoints and carries no slot: it blocks every slot
// on every covered day.
type Blackout struct {
	ID         string
	ResourceID string
	Start      time.Time
	End        time.Time
	Reason     string
	CreatedAt  time.Time
}

type VoucherState string

const (
	VoucherPending   VoucherState = "PENDING"
	VoucherConfirmed VoucherState = "CONFIRMED"
	VoucherCancelled VoucherState = "CANCELLED"
)

// Voucher is the payment-request record tracked alongside a pending
// booking. The PENDING -> CONFIRMED transition is the dedup guard that
// keeps ledger posting exactly-once under duplicate gateway callbacks.
type Voucher struct {
	ID          string
	BookingID   string
	ClaimantID  string
	Amount      decimal.Decimal
	State       VoucherState
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}
