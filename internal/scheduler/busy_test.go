package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hackgods/salon-scheduling/internal/salon"
)

const testDate = "2026-03-02"

func appt(t *testing.T, start, end string, status salon.AppointmentStatus) salon.Appointment {
	t.Helper()
	s, err := time.Parse(salon.DateTimeLayout, DateTime(testDate, start))
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	e, err := time.Parse(salon.DateTimeLayout, DateTime(testDate, end))
	if err != nil {
		t.Fatalf("parse end: %v", err)
	}
	return salon.Appointment{ID: uuid.New(), StartsAt: s, EndsAt: e, Status: status}
}

func TestBuildBusySortsAndSkipsCancelled(t *testing.T) {
	appts := []salon.Appointment{
		appt(t, "15:00", "16:00", salon.StatusBooked),
		appt(t, "10:00", "11:00", salon.StatusCancelled),
		appt(t, "12:00", "12:30", salon.StatusCompleted),
		appt(t, "11:00", "11:45", salon.StatusNoShow),
	}

	busy := BuildBusy(appts)

	assert.Equal(t, []Interval{
		{Start: 660, End: 705},
		{Start: 720, End: 750},
		{Start: 900, End: 960},
	}, busy)
}

func TestBuildBusyEmpty(t *testing.T) {
	assert.Empty(t, BuildBusy(nil))
}

func TestOverlaps(t *testing.T) {
	busy := []Interval{{Start: 60, End: 120}, {Start: 300, End: 360}}

	tests := []struct {
		name       string
		start, end int
		want       bool
	}{
		{"before first", 0, 30, false},
		{"touching first start", 0, 60, false},
		{"touching first end", 120, 180, false},
		{"inside first", 70, 110, true},
		{"covering first", 30, 150, true},
		{"partial left", 30, 61, true},
		{"partial right", 119, 200, true},
		{"between", 120, 300, false},
		{"inside second", 310, 320, true},
		{"after last", 400, 460, false},
		{"touching last end", 360, 420, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(busy, tt.start, tt.end))
		})
	}
}

func TestOverlapsAdjacency(t *testing.T) {
	busy := []Interval{{Start: 60, End: 120}}
	assert.False(t, Overlaps(busy, 120, 180))
	assert.False(t, Overlaps(busy, 0, 60))
}

func TestOverlapsEmptyBusy(t *testing.T) {
	assert.False(t, Overlaps(nil, 0, 1440))
}
