package scheduler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hackgods/salon-scheduling/internal/salon"
)

func TestResolveWindow(t *testing.T) {
	master := uuid.New()
	other := uuid.New()
	slots := salon.WorkingSlots{
		{MasterID: master, Date: "2026-03-02", StartTime: "10:00", EndTime: "18:00"},
		{MasterID: master, Date: "2026-03-08", StartTime: "00:00", EndTime: "00:00", IsDayOff: true},
		{MasterID: other, Date: "2026-03-03", StartTime: "09:00", EndTime: "13:00"},
	}
	ix := salon.BuildIndexes(&salon.Snapshot{WorkingSlots: slots})

	lookups := map[string]WorkingSlotLookup{
		"linear scan": slots,
		"index":       ix,
	}
	for name, lookup := range lookups {
		t.Run(name, func(t *testing.T) {
			w, ok := ResolveWindow(lookup, master, "2026-03-02")
			assert.True(t, ok)
			assert.Equal(t, Window{StartMin: 600, EndMin: 1080}, w)

			_, ok = ResolveWindow(lookup, master, "2026-03-08")
			assert.False(t, ok, "day off must not produce a window")

			_, ok = ResolveWindow(lookup, master, "2026-03-03")
			assert.False(t, ok, "slot of another master must not match")

			_, ok = ResolveWindow(lookup, master, "2026-03-04")
			assert.False(t, ok)
		})
	}
}

func TestResolveWindowNilLookup(t *testing.T) {
	_, ok := ResolveWindow(nil, uuid.New(), "2026-03-02")
	assert.False(t, ok)
}
