package scheduler

import (
	"github.com/google/uuid"

	"github.com/hackgods/salon-scheduling/internal/salon"
)

// WorkingSlotLookup finds the working slot of a master on a date.
// salon.Indexes answers from a map, salon.WorkingSlots by linear scan.
type WorkingSlotLookup interface {
	WorkingSlot(masterID uuid.UUID, date string) (salon.WorkingSlot, bool)
}

// ResolveWindow returns the working window of a master on date. It reports
// false when no slot is configured or the day is marked off; the bounds
// stored on a day-off row are ignored.
func ResolveWindow(lookup WorkingSlotLookup, masterID uuid.UUID, date string) (Window, bool) {
	if lookup == nil {
		return Window{}, false
	}
	ws, ok := lookup.WorkingSlot(masterID, date)
	if !ok || ws.IsDayOff {
		return Window{}, false
	}
	return Window{StartMin: ToMinutes(ws.StartTime), EndMin: ToMinutes(ws.EndTime)}, true
}
