// Package sloteng generates the slot-order permutations the driver restarts
// over (spec.md §4.2). Orderings are deterministic given the day count D;
// diversifying the order the DSATUR colourer and the repair pass see changes
// which assignments are reachable and how "three consecutive days" falls out
// of the day-index axis.
package sloteng

import "github.com/rehan-shafi/exam-scheduler-streamlit/internal/model"

// Name identifies one of the five orderings spec.md §4.2 specifies.
type Name string

const (
	Linear         Name = "linear"
	SplitInterleave Name = "split-interleave"
	OutsideIn      Name = "outside-in"
	Stride5        Name = "stride-5"
	ExpandingMiddle Name = "expanding-middle"
)

// All returns the five orderings keyed by name, each a permutation of
// BaseSlots(days). A map has no order; Ordered gives the fixed sequence the
// driver restarts over.
func All(days int) map[Name][]model.SlotID {
	base := model.BaseSlots(days)
	return map[Name][]model.SlotID{
		Linear:          linear(base),
		SplitInterleave: splitInterleave(base),
		OutsideIn:       outsideIn(base),
		Stride5:         stride5(base),
		ExpandingMiddle: expandingMiddle(base),
	}
}

// Ordered returns the five orderings as a slice in a fixed, deterministic
// traversal order, for restart loops that iterate (order x seed) pairs.
func Ordered(days int) []struct {
	Name  Name
	Slots []model.SlotID
} {
	m := All(days)
	names := []Name{Linear, SplitInterleave, OutsideIn, Stride5, ExpandingMiddle}
	out := make([]struct {
		Name  Name
		Slots []model.SlotID
	}, len(names))
	for i, name := range names {
		out[i].Name = name
		out[i].Slots = m[name]
	}
	return out
}

func linear(base []model.SlotID) []model.SlotID {
	out := make([]model.SlotID, len(base))
	copy(out, base)
	return out
}

// splitInterleave zips the first half of the slots with the second half:
// [0,1,2,3,4,5] -> [0,3,1,4,2,5].
func splitInterleave(base []model.SlotID) []model.SlotID {
	n := len(base)
	mid := n / 2
	left, right := base[:mid], base[mid:]
	out := make([]model.SlotID, 0, n)
	for i := 0; i < len(left) && i < len(right); i++ {
		out = append(out, left[i], right[i])
	}
	if len(left) > len(right) {
		out = append(out, left[len(right):]...)
	} else if len(right) > len(left) {
		out = append(out, right[len(left):]...)
	}
	return out
}

// outsideIn alternates from both ends inward: [0,1,2,3,4] -> [0,4,1,3,2].
func outsideIn(base []model.SlotID) []model.SlotID {
	out := make([]model.SlotID, 0, len(base))
	l, r := 0, len(base)-1
	for l <= r {
		out = append(out, base[l])
		if l != r {
			out = append(out, base[r])
		}
		l++
		r--
	}
	return out
}

// stride5 concatenates sub-sequences starting at offsets 0, 5, 2, 7, 4 with
// stride 5, deduplicating, then appends any slots the strides missed.
func stride5(base []model.SlotID) []model.SlotID {
	offsets := []int{0, 5, 2, 7, 4}
	seen := make(map[model.SlotID]bool, len(base))
	out := make([]model.SlotID, 0, len(base))
	for _, start := range offsets {
		for i := start; i < len(base); i += 5 {
			if s := base[i]; !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	for _, s := range base {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// expandingMiddle starts at the middle index and alternates outward:
// [0,1,2,3,4] -> [2,1,3,0,4].
func expandingMiddle(base []model.SlotID) []model.SlotID {
	n := len(base)
	if n == 0 {
		return nil
	}
	mid := n / 2
	out := []model.SlotID{base[mid]}
	for offset := 1; ; offset++ {
		left := mid - offset
		right := mid + offset
		if left < 0 && right >= n {
			break
		}
		if left >= 0 {
			out = append(out, base[left])
		}
		if right < n {
			out = append(out, base[right])
		}
	}
	return out
}

// DayIndexMap returns the slot->day and day->slot maps induced by a chosen
// slot order (spec.md §4.5: "consecutive" is defined over the day-index
// axis, not raw slot ids).
func DayIndexMap(order []model.SlotID) (slotToDay map[model.SlotID]int, dayToSlot []model.SlotID) {
	slotToDay = make(map[model.SlotID]int, len(order))
	dayToSlot = make([]model.SlotID, len(order))
	for day, slot := range order {
		slotToDay[slot] = day
		dayToSlot[day] = slot
	}
	return
}
