package salon

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Wall-clock layouts. Values are naive local times, no zone is attached.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = "2006-01-02T15:04:05"
)

type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "booked"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusBooked, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Salon struct {
	ID      uuid.UUID
	Name    string
	Address string
}

type Master struct {
	ID             uuid.UUID
	SalonID        uuid.UUID
	FullName       string
	Specialization string
	Phone          string
	Active         bool
}

type Service struct {
	ID          uuid.UUID
	SalonID     uuid.UUID
	Name        string
	DurationMin int
	Price       int64
	Active      bool
}

type MasterService struct {
	MasterID  uuid.UUID
	ServiceID uuid.UUID
}

// WorkingSlot is the working-hours window of one master on one date.
// A day-off row keeps 00:00-00:00 as its bounds.
type WorkingSlot struct {
	ID        uuid.UUID
	MasterID  uuid.UUID
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM
	EndTime   string // HH:MM
	IsDayOff  bool
}

type Client struct {
	ID        uuid.UUID
	FullName  string
	Phone     string
	CreatedAt time.Time
}

type Appointment struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	MasterID  uuid.UUID
	StartsAt  time.Time
	EndsAt    time.Time
	Status    AppointmentStatus
	Comment   string
	CreatedAt time.Time
}

type AppointmentItem struct {
	ID                uuid.UUID
	AppointmentID     uuid.UUID
	ServiceID         uuid.UUID
	PriceAtTime       int64
	DurationMinAtTime int
}

// Snapshot is the whole data set at one revision.
type Snapshot struct {
	Salons           []Salon
	Masters          []Master
	Services         []Service
	MasterServices   []MasterService
	WorkingSlots     WorkingSlots
	Clients          []Client
	Appointments     []Appointment
	AppointmentItems []AppointmentItem
	Rev              int64
}

// SumDuration returns the total duration of the given services in minutes.
func SumDuration(services []Service) int {
	total := 0
	for _, s := range services {
		if s.DurationMin > 0 {
			total += s.DurationMin
		}
	}
	return total
}

// DateOf returns the YYYY-MM-DD part of an instant.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateTime accepts YYYY-MM-DDTHH:MM:SS and YYYY-MM-DDTHH:MM.
func ParseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(DateTimeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse datetime %q: %w", s, err)
	}
	return t, nil
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidTimeOfDay reports whether s is a zero-padded 24h HH:MM value.
func ValidTimeOfDay(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}
