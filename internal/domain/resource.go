package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ResourceKind string

const (
	KindRoom   ResourceKind = "ROOM"
	KindHall   ResourceKind = "HALL"
	KindLawn   ResourceKind = "LAWN"
	KindStudio ResourceKind = "STUDIO"
)

// Lodging reports whether the kind occupies continuous night ranges
// rather than discrete day slots.
func (k ResourceKind) Lodging() bool {
	return k == KindRoom
}

func ParseResourceKind(s string) (ResourceKind, bool) {
	switch ResourceKind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindRoom:
		return KindRoom, true
	case KindHall:
		return KindHall, true
	case KindLawn:
		return KindLawn, true
	case KindStudio:
		return KindStudio, true
	}
	return "", false
}

type PricingType string

const (
	PricingMember PricingType = "MEMBER"
	PricingGuest  PricingType = "GUEST"
)

func ParsePricingType(s string) (PricingType, bool) {
	switch PricingType(strings.ToUpper(strings.TrimSpace(s))) {
	case PricingMember:
		return PricingMember, true
	case PricingGuest:
		return PricingGuest, true
	}
	return "", false
}

// Resource is a bookable facility unit. Rates and capacity bounds come
// from the catalog; Reserved and BlackedOut are computed from the claim
// tables at read time, never stored.
type Resource struct {
	ID          string
	Kind        ResourceKind
	TypeCode    string
	Name        string
	UnitNo      int
	CapacityMin int
	CapacityMax int
	MemberRate  decimal.Decimal
	GuestRate   decimal.Decimal
	Active      bool
	Reserved    bool
	BlackedOut  bool
	CreatedAt   time.Time
}

// Rate returns the per-unit rate for the pricing type.
func (r Resource) Rate(p PricingType) decimal.Decimal {
	if p == PricingGuest {
		return r.GuestRate
	}
	return r.MemberRate
}

// Bookable reports whether the resource can accept new claims right now.
// A blackout covering today overrides the catalog's active flag.
func (r Resource) Bookable() bool {
	return r.Active && !r.BlackedOut
}

type MemberStanding string

const (
	StandingActive    MemberStanding = "ACTIVE"
	StandingSuspended MemberStanding = "SUSPENDED"
	StandingDefaulted MemberStanding = "DEFAULTED"
)

type Member struct {
	ID        string
	Name      string
	Standing  MemberStanding
	CreatedAt time.Time
}
