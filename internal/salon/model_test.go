package salon

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	got, err := ParseDateTime("2026-03-02T10:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC), got)

	got, err = ParseDateTime("2026-03-02T10:30")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, 30, got.Minute())

	for _, bad := range []string{"", "2026-03-02", "2026-03-02 10:30", "2026-13-02T10:30"} {
		_, err := ParseDateTime(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidDateAndTime(t *testing.T) {
	assert.True(t, ValidDate("2026-03-02"))
	assert.False(t, ValidDate("2026-02-30"))
	assert.False(t, ValidDate("02.03.2026"))

	assert.True(t, ValidTimeOfDay("09:05"))
	assert.True(t, ValidTimeOfDay("00:00"))
	assert.False(t, ValidTimeOfDay("9:05"))
	assert.False(t, ValidTimeOfDay("24:00"))
	assert.False(t, ValidTimeOfDay("10:60"))
}

func TestStatusValid(t *testing.T) {
	for _, s := range []AppointmentStatus{StatusBooked, StatusCompleted, StatusCancelled, StatusNoShow} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, AppointmentStatus("pending").Valid())
	assert.False(t, AppointmentStatus("").Valid())
}

func TestSumDurationIgnoresNonPositive(t *testing.T) {
	total := SumDuration([]Service{{DurationMin: 60}, {DurationMin: 45}, {DurationMin: -10}, {DurationMin: 0}})
	assert.Equal(t, 105, total)
	assert.Zero(t, SumDuration(nil))
}

func TestBuildIndexes(t *testing.T) {
	anna, oleg := uuid.New(), uuid.New()
	haircut, manicure := uuid.New(), uuid.New()
	client := uuid.New()
	appt := uuid.New()

	snap := &Snapshot{
		Masters:  []Master{{ID: anna, FullName: "Anna"}, {ID: oleg, FullName: "Oleg"}},
		Services: []Service{{ID: haircut, Name: "Haircut"}, {ID: manicure, Name: "Manicure"}},
		MasterServices: []MasterService{
			{MasterID: anna, ServiceID: haircut},
			{MasterID: oleg, ServiceID: manicure},
		},
		WorkingSlots: WorkingSlots{
			{MasterID: anna, Date: "2026-03-02", StartTime: "10:00", EndTime: "18:00"},
		},
		Clients: []Client{{ID: client, Phone: "+10000000001"}, {ID: uuid.New()}},
		AppointmentItems: []AppointmentItem{
			{AppointmentID: appt, ServiceID: haircut},
			{AppointmentID: appt, ServiceID: manicure},
		},
	}

	ix := BuildIndexes(snap)

	assert.Len(t, ix.MastersByID, 2)
	assert.Equal(t, "Manicure", ix.ServicesByID[manicure].Name)
	assert.Equal(t, client, ix.ClientIDByPhone["+10000000001"])
	assert.Len(t, ix.ClientIDByPhone, 1)
	assert.Len(t, ix.ItemsByAppointmentID[appt], 2)

	assert.True(t, ix.MasterProvides(anna, haircut))
	assert.False(t, ix.MasterProvides(anna, manicure))
	assert.False(t, ix.MasterProvides(uuid.New(), haircut))

	ws, ok := ix.WorkingSlot(anna, "2026-03-02")
	require.True(t, ok)
	assert.Equal(t, "18:00", ws.EndTime)
	_, ok = ix.WorkingSlot(oleg, "2026-03-02")
	assert.False(t, ok)

	linear, ok := snap.WorkingSlots.WorkingSlot(anna, "2026-03-02")
	require.True(t, ok)
	assert.Equal(t, ws, linear)
}
