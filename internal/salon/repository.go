package salon

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrClientNotFound      = errors.New("client not found")
	ErrMasterNotFound      = errors.New("master not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrWorkingSlotNotFound = errors.New("working slot not found")
	ErrReferenceNotFound   = errors.New("referenced record not found")
	ErrNoSalon             = errors.New("no salon configured")
)

// NewAppointment is the payload for CreateAppointment.
type NewAppointment struct {
	ClientID uuid.UUID
	MasterID uuid.UUID
	StartsAt time.Time
	EndsAt   time.Time
	Comment  string
	Items    []AppointmentItem
}

// Repository contains all DB interactions needed by the booking service.
// Every mutating call bumps the data revision in the same transaction.
type Repository interface {
	Revision(ctx context.Context) (int64, error)
	Snapshot(ctx context.Context) (*Snapshot, error)
	ReplaceAll(ctx context.Context, snap *Snapshot) error

	// Clients
	UpsertClient(ctx context.Context, fullName, phone string) (*Client, error)
	GetClientByPhone(ctx context.Context, phone string) (*Client, error)
	ListAppointmentsByClient(ctx context.Context, clientID uuid.UUID, status *AppointmentStatus) ([]Appointment, error)

	// Masters
	GetMaster(ctx context.Context, id uuid.UUID) (*Master, error)
	ListMasters(ctx context.Context, includeInactive bool) ([]Master, error)
	CreateMaster(ctx context.Context, m Master) (*Master, error)
	ToggleMasterActive(ctx context.Context, id uuid.UUID) error
	DeleteMaster(ctx context.Context, id uuid.UUID) error

	// Services
	ListServices(ctx context.Context, includeInactive bool) ([]Service, error)
	ListServicesByMaster(ctx context.Context, masterID uuid.UUID) ([]Service, error)
	GetServicesByIDs(ctx context.Context, ids []uuid.UUID) ([]Service, error)
	CreateService(ctx context.Context, s Service) (*Service, error)
	ToggleServiceActive(ctx context.Context, id uuid.UUID) error
	DeleteService(ctx context.Context, id uuid.UUID) error
	SetMasterService(ctx context.Context, masterID, serviceID uuid.UUID, enabled bool) error

	// Working hours
	GetWorkingSlot(ctx context.Context, masterID uuid.UUID, date string) (*WorkingSlot, error)
	UpsertWorkingSlot(ctx context.Context, ws WorkingSlot) (*WorkingSlot, error)
	EnsureWorkingSlots(ctx context.Context, slots WorkingSlots) (int, error)

	// Appointments
	ListAppointmentsByMasterAndDate(ctx context.Context, masterID uuid.UUID, date string) ([]Appointment, error)
	ListAppointmentsByMasterRange(ctx context.Context, masterID uuid.UUID, from, to string) ([]Appointment, error)
	HasConflict(ctx context.Context, masterID uuid.UUID, startsAt, endsAt time.Time) (bool, error)
	CreateAppointment(ctx context.Context, in NewAppointment) (*Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) error
}
