package scheduler

import (
	"sort"

	"github.com/hackgods/salon-scheduling/internal/salon"
)

// BuildBusy turns one master's appointments on one date into busy intervals
// sorted by start. Cancelled appointments never block time. Only the
// time-of-day part is used; callers pass appointments of a single date.
func BuildBusy(appts []salon.Appointment) []Interval {
	busy := make([]Interval, 0, len(appts))
	for _, a := range appts {
		if a.Status == salon.StatusCancelled {
			continue
		}
		busy = append(busy, Interval{Start: MinuteOfDay(a.StartsAt), End: MinuteOfDay(a.EndsAt)})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start < busy[j].Start })
	return busy
}

// Overlaps reports whether [start, end) intersects any interval of busy.
// busy must be sorted by Start. Intervals that only touch do not overlap.
func Overlaps(busy []Interval, start, end int) bool {
	for _, b := range busy {
		if b.Start >= end {
			return false
		}
		if b.End > start && b.Start < end {
			return true
		}
	}
	return false
}
