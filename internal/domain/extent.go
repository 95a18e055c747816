package domain

import (
	"fmt"
	"strings"
	"time"
)

type Slot string

const (
	SlotMorning Slot = "MORNING"
	SlotEvening Slot = "EVENING"
	SlotNight   Slot = "NIGHT"
	// SlotNone marks lodging extents and blackout extents, which occupy
	// whole days rather than a single slot.
	SlotNone Slot = ""
)

func ParseSlot(s string) (Slot, bool) {
	switch Slot(strings.ToUpper(strings.TrimSpace(s))) {
	case SlotMorning:
		return SlotMorning, true
	case SlotEvening:
		return SlotEvening, true
	case SlotNight:
		return SlotNight, true
	case SlotNone:
		return SlotNone, true
	}
	return "", false
}

// Norm returns the canonical upper-case form; slot comparison is
// case-insensitive everywhere.
func (s Slot) Norm() Slot {
	return Slot(strings.ToUpper(string(s)))
}

const DateLayout = "2006-01-02"

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Extent is the time window a claim occupies. Lodging extents are
// half-open night ranges [Start, End) with no slot; venue extents cover
// every day from Start through End inclusive at a single slot.
type Extent struct {
	Start time.Time
	End   time.Time
	Slot  Slot
}

func NewExtent(start, end time.Time, slot Slot) Extent {
	return Extent{Start: Day(start), End: Day(end), Slot: slot.Norm()}
}

// Nights returns the number of occupied nights for a lodging extent.
func (e Extent) Nights() int {
	n := int(e.End.Sub(e.Start).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// Days returns the number of covered days for a venue extent (inclusive
// of both endpoints).
func (e Extent) Days() int {
	n := int(e.End.Sub(e.Start).Hours()/24) + 1
	if n < 0 {
		return 0
	}
	return n
}

func (e Extent) String() string {
	s := e.Start.Format(DateLayout)
	if !e.End.Equal(e.Start) {
		s += ".." + e.End.Format(DateLayout)
	}
	if e.Slot != SlotNone {
		s += " " + string(e.Slot)
	}
	return s
}

// SameExtent reports exact equality of range and slot, used for the
// idempotent unreserve/re-reserve match.
func SameExtent(a, b Extent) bool {
	return a.Start.Equal(b.Start) && a.End.Equal(b.End) && a.Slot.Norm() == b.Slot.Norm()
}

// Atom is a single occupancy unit: one calendar day at one slot.
// Lodging claims decompose into one atom per occupied night with no
// slot; venue claims into one atom per covered day at their slot.
type Atom struct {
	Day  time.Time
	Slot Slot
}

// Atoms decomposes the extent for the given occupancy regime.
func (e Extent) Atoms(lodging bool) []Atom {
	var atoms []Atom
	if lodging {
		for d := Day(e.Start); d.Before(Day(e.End)); d = d.AddDate(0, 0, 1) {
			atoms = append(atoms, Atom{Day: d, Slot: SlotNone})
		}
		return atoms
	}
	for d := Day(e.Start); !d.After(Day(e.End)); d = d.AddDate(0, 0, 1) {
		atoms = append(atoms, Atom{Day: d, Slot: e.Slot.Norm()})
	}
	return atoms
}

// nightsOverlap implements the half-open range rule: a checkout day may
// equal another claim's checkin day without conflict.
func nightsOverlap(a, b Extent) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// slotsOverlap implements the discrete day+slot rule. An extent with no
// slot (a blackout) collides with any slot on a shared day.
func slotsOverlap(a, b Extent) bool {
	if a.Slot != SlotNone && b.Slot != SlotNone && a.Slot.Norm() != b.Slot.Norm() {
		return false
	}
	return !Day(a.Start).After(Day(b.End)) && !Day(b.Start).After(Day(a.End))
}

// Overlaps reports whether two extents on the same resource collide
// under the resource kind's occupancy regime.
func Overlaps(kind ResourceKind, a, b Extent) bool {
	if kind.Lodging() {
		return nightsOverlap(a, b)
	}
	return slotsOverlap(a, b)
}

// BlackoutOverlaps widens a blackout's inclusive date range against a
// claim extent. For lodging the blackout blocks every night from its
// start through its end day inclusive.
func BlackoutOverlaps(kind ResourceKind, blackoutStart, blackoutEnd time.Time, claim Extent) bool {
	if kind.Lodging() {
		b := Extent{Start: Day(blackoutStart), End: Day(blackoutEnd).AddDate(0, 0, 1)}
		return nightsOverlap(b, claim)
	}
	b := Extent{Start: Day(blackoutStart), End: Day(blackoutEnd), Slot: SlotNone}
	return slotsOverlap(b, claim)
}

// ValidateExtent checks the basic shape of a requested extent for the
// resource kind. It does not consult any claims.
func ValidateExtent(kind ResourceKind, e Extent, today time.Time) error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ValidationError{Field: "dates", Reason: "start and end dates are required"}
	}
	if Day(e.Start).Before(Day(today)) {
		return ValidationError{Field: "start_date", Reason: "date is in the past"}
	}
	if kind.Lodging() {
		if e.Slot != SlotNone {
			return ValidationError{Field: "slot", Reason: fmt.Sprintf("%s bookings do not take a slot", kind)}
		}
		if !e.End.After(e.Start) {
			return ValidationError{Field: "end_date", Reason: "checkout must be after checkin"}
		}
		return nil
	}
	if e.Slot != SlotMorning && e.Slot != SlotEvening && e.Slot != SlotNight {
		return ValidationError{Field: "slot", Reason: "slot must be MORNING, EVENING or NIGHT"}
	}
	if e.End.Before(e.Start) {
		return ValidationError{Field: "end_date", Reason: "end date before start date"}
	}
	return nil
}
