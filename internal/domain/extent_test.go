package domain

import (
	"testing"
	"time"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps_Lodging(t *testing.T) {
	t.Parallel()

	base := Extent{Start: d(2025, 6, 10), End: d(2025, 6, 13)}

	tests := []struct {
		name  string
		other Extent
		want  bool
	}{
		{"identical range", Extent{Start: d(2025, 6, 10), End: d(2025, 6, 13)}, true},
		{"contained", Extent{Start: d(2025, 6, 11), End: d(2025, 6, 12)}, true},
		{"overlaps tail", Extent{Start: d(2025, 6, 12), End: d(2025, 6, 15)}, true},
		{"checkin on checkout day", Extent{Start: d(2025, 6, 13), End: d(2025, 6, 15)}, false},
		{"checkout on checkin day", Extent{Start: d(2025, 6, 8), End: d(2025, 6, 10)}, false},
		{"disjoint after", Extent{Start: d(2025, 6, 20), End: d(2025, 6, 22)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(KindRoom, base, tt.other); got != tt.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", base, tt.other, got, tt.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(KindRoom, tt.other, base); got != tt.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tt.other, base, got, tt.want)
			}
		})
	}
}

func TestOverlaps_Venue(t *testing.T) {
	t.Parallel()

	base := Extent{Start: d(2025, 6, 10), End: d(2025, 6, 12), Slot: SlotMorning}

	tests := []struct {
		name  string
		other Extent
		want  bool
	}{
		{"same day same slot", Extent{Start: d(2025, 6, 10), End: d(2025, 6, 10), Slot: SlotMorning}, true},
		{"same day different slot", Extent{Start: d(2025, 6, 10), End: d(2025, 6, 10), Slot: SlotEvening}, false},
		{"shared end day", Extent{Start: d(2025, 6, 12), End: d(2025, 6, 14), Slot: SlotMorning}, true},
		{"slot case-insensitive", Extent{Start: d(2025, 6, 10), End: d(2025, 6, 10), Slot: "morning"}, true},
		{"slotless blocks any slot", Extent{Start: d(2025, 6, 11), End: d(2025, 6, 11), Slot: SlotNone}, true},
		{"disjoint days", Extent{Start: d(2025, 6, 13), End: d(2025, 6, 14), Slot: SlotMorning}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(KindHall, base, tt.other); got != tt.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", base, tt.other, got, tt.want)
			}
		})
	}
}

func TestBlackoutOverlaps(t *testing.T) {
	t.Parallel()

	t.Run("lodging blackout blocks its last day's night", func(t *testing.T) {
		// Blackout through 6/12 inclusive collides with a stay whose
		// first night is 6/12.
		stay := Extent{Start: d(2025, 6, 12), End: d(2025, 6, 14)}
		if !BlackoutOverlaps(KindRoom, d(2025, 6, 10), d(2025, 6, 12), stay) {
			t.Fatalf("expected inclusive blackout end to block the night of its last day")
		}
		later := Extent{Start: d(2025, 6, 13), End: d(2025, 6, 15)}
		if BlackoutOverlaps(KindRoom, d(2025, 6, 10), d(2025, 6, 12), later) {
			t.Fatalf("expected stay after the blackout to be free")
		}
	})

	t.Run("venue blackout blocks every slot", func(t *testing.T) {
		claim := Extent{Start: d(2025, 6, 11), End: d(2025, 6, 11), Slot: SlotNight}
		if !BlackoutOverlaps(KindHall, d(2025, 6, 10), d(2025, 6, 12), claim) {
			t.Fatalf("expected slotless blackout to block NIGHT slot")
		}
	})
}

func TestExtentAtoms(t *testing.T) {
	t.Parallel()

	t.Run("lodging yields one slotless atom per night", func(t *testing.T) {
		e := Extent{Start: d(2025, 6, 10), End: d(2025, 6, 13)}
		atoms := e.Atoms(true)
		if len(atoms) != 3 {
			t.Fatalf("expected 3 atoms, got %d", len(atoms))
		}
		if !atoms[0].Day.Equal(d(2025, 6, 10)) || !atoms[2].Day.Equal(d(2025, 6, 12)) {
			t.Fatalf("unexpected atom days: %v", atoms)
		}
		for _, a := range atoms {
			if a.Slot != SlotNone {
				t.Fatalf("expected slotless atoms, got %q", a.Slot)
			}
		}
	})

	t.Run("venue yields inclusive days at the slot", func(t *testing.T) {
		e := Extent{Start: d(2025, 6, 10), End: d(2025, 6, 12), Slot: SlotEvening}
		atoms := e.Atoms(false)
		if len(atoms) != 3 {
			t.Fatalf("expected 3 atoms, got %d", len(atoms))
		}
		if !atoms[2].Day.Equal(d(2025, 6, 12)) || atoms[2].Slot != SlotEvening {
			t.Fatalf("unexpected last atom: %v", atoms[2])
		}
	})
}

func TestValidateExtent(t *testing.T) {
	t.Parallel()

	today := d(2025, 6, 1)

	tests := []struct {
		name    string
		kind    ResourceKind
		extent  Extent
		wantErr bool
	}{
		{"valid stay", KindRoom, Extent{Start: d(2025, 6, 10), End: d(2025, 6, 12)}, false},
		{"stay starting today", KindRoom, Extent{Start: d(2025, 6, 1), End: d(2025, 6, 2)}, false},
		{"past checkin", KindRoom, Extent{Start: d(2025, 5, 20), End: d(2025, 5, 22)}, true},
		{"zero nights", KindRoom, Extent{Start: d(2025, 6, 10), End: d(2025, 6, 10)}, true},
		{"checkout before checkin", KindRoom, Extent{Start: d(2025, 6, 12), End: d(2025, 6, 10)}, true},
		{"room with slot", KindRoom, Extent{Start: d(2025, 6, 10), End: d(2025, 6, 12), Slot: SlotMorning}, true},
		{"valid single-day slot", KindHall, Extent{Start: d(2025, 6, 10), End: d(2025, 6, 10), Slot: SlotEvening}, false},
		{"venue without slot", KindHall, Extent{Start: d(2025, 6, 10), End: d(2025, 6, 10)}, true},
		{"venue range backwards", KindLawn, Extent{Start: d(2025, 6, 12), End: d(2025, 6, 10), Slot: SlotMorning}, true},
		{"missing dates", KindHall, Extent{Slot: SlotMorning}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExtent(tt.kind, tt.extent, today)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error for %v", tt.extent)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestExtentNightsAndDays(t *testing.T) {
	t.Parallel()

	stay := Extent{Start: d(2025, 6, 10), End: d(2025, 6, 13)}
	if got := stay.Nights(); got != 3 {
		t.Fatalf("expected 3 nights, got %d", got)
	}
	day := Extent{Start: d(2025, 6, 10), End: d(2025, 6, 10), Slot: SlotMorning}
	if got := day.Days(); got != 1 {
		t.Fatalf("expected 1 day, got %d", got)
	}
}

func TestSameExtent(t *testing.T) {
	t.Parallel()

	a := Extent{Start: d(2025, 6, 10), End: d(2025, 6, 12), Slot: SlotMorning}
	b := Extent{Start: d(2025, 6, 10), End: d(2025, 6, 12), Slot: "morning"}
	if !SameExtent(a, b) {
		t.Fatalf("expected slot comparison to be case-insensitive")
	}
	c := Extent{Start: d(2025, 6, 10), End: d(2025, 6, 12), Slot: SlotEvening}
	if SameExtent(a, c) {
		t.Fatalf("expected different slots to differ")
	}
}
