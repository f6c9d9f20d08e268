package model

// SlotID is a non-negative integer encoding a day and session (spec.md §6).
//
// Day index = slot / 2. Session is AM iff slot is even, PM iff odd. The
// canonical scheduling form used by this engine is AM-only: every slot the
// driver ever emits is even. Odd slots are accepted by the data model so a
// future PM extension does not require a format change, but nothing in this
// package currently produces them.
type SlotID int

// Day returns the zero-based day index for the slot.
func (s SlotID) Day() int { return int(s) / 2 }

// IsAM reports whether the slot is a morning (even) slot.
func (s SlotID) IsAM() bool { return int(s)%2 == 0 }

// Session returns "AM" or "PM".
func (s SlotID) Session() string {
	if s.IsAM() {
		return "AM"
	}
	return "PM"
}

// AMSlot returns the canonical even SlotID for day index d.
func AMSlot(day int) SlotID { return SlotID(2 * day) }

// BaseSlots returns the canonical AM-only slot domain for D scheduling days:
// 0, 2, 4, ..., 2*(D-1).
func BaseSlots(days int) []SlotID {
	out := make([]SlotID, days)
	for d := 0; d < days; d++ {
		out[d] = AMSlot(d)
	}
	return out
}
