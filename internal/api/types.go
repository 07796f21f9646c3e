package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/salon-scheduling/internal/salon"
	"github.com/hackgods/salon-scheduling/internal/scheduler"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Requests

type UpsertClientRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type CreateAppointmentRequest struct {
	ClientID   string   `json:"client_id"`
	MasterID   string   `json:"master_id"`
	StartDT    string   `json:"start_dt"`
	EndDT      string   `json:"end_dt"`
	Comment    string   `json:"comment"`
	ServiceIDs []string `json:"service_ids"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type CreateMasterRequest struct {
	SalonID        string `json:"salon_id"`
	FullName       string `json:"full_name"`
	Specialization string `json:"specialization"`
	Phone          string `json:"phone"`
}

type CreateServiceRequest struct {
	SalonID     string `json:"salon_id"`
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
	Price       int64  `json:"price"`
}

type MasterServiceRequest struct {
	MasterID  string `json:"master_id"`
	ServiceID string `json:"service_id"`
	Enabled   bool   `json:"enabled"`
}

type WorkingSlotRequest struct {
	MasterID  string `json:"master_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsDayOff  bool   `json:"is_day_off"`
}

// Responses

type SalonResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
}

type MasterResponse struct {
	ID             uuid.UUID `json:"id"`
	SalonID        uuid.UUID `json:"salon_id"`
	FullName       string    `json:"full_name"`
	Specialization string    `json:"specialization"`
	Phone          string    `json:"phone"`
	IsActive       bool      `json:"is_active"`
}

type ServiceResponse struct {
	ID          uuid.UUID `json:"id"`
	SalonID     uuid.UUID `json:"salon_id"`
	Name        string    `json:"name"`
	DurationMin int       `json:"duration_min"`
	Price       int64     `json:"price"`
	IsActive    bool      `json:"is_active"`
}

type MasterServiceResponse struct {
	MasterID  uuid.UUID `json:"master_id"`
	ServiceID uuid.UUID `json:"service_id"`
}

type WorkingSlotResponse struct {
	ID        uuid.UUID `json:"id"`
	MasterID  uuid.UUID `json:"master_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsDayOff  bool      `json:"is_day_off"`
}

type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	ClientID  uuid.UUID `json:"client_id"`
	MasterID  uuid.UUID `json:"master_id"`
	StartDT   string    `json:"start_dt"`
	EndDT     string    `json:"end_dt"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type AppointmentItemResponse struct {
	ID                uuid.UUID `json:"id"`
	AppointmentID     uuid.UUID `json:"appointment_id"`
	ServiceID         uuid.UUID `json:"service_id"`
	PriceAtTime       int64     `json:"price_at_time"`
	DurationMinAtTime int       `json:"duration_min_at_time"`
}

type SnapshotResponse struct {
	Rev              int64                     `json:"rev"`
	Salons           []SalonResponse           `json:"salons"`
	Masters          []MasterResponse          `json:"masters"`
	Services         []ServiceResponse         `json:"services"`
	MasterServices   []MasterServiceResponse   `json:"master_services"`
	WorkingSlots     []WorkingSlotResponse     `json:"working_slots"`
	Clients          []ClientResponse          `json:"clients"`
	Appointments     []AppointmentResponse     `json:"appointments"`
	AppointmentItems []AppointmentItemResponse `json:"appointment_items"`
}

type AvailabilityResponse struct {
	MasterID    uuid.UUID        `json:"master_id"`
	Date        string           `json:"date"`
	DurationMin int              `json:"duration_min"`
	StepMin     int              `json:"step_min"`
	FromCache   bool             `json:"from_cache"`
	Slots       []scheduler.Slot `json:"slots"`
}

type ClientHistoryResponse struct {
	Client *ClientResponse       `json:"client"`
	Items  []AppointmentResponse `json:"items"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// Mappers

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

func toSalon(s salon.Salon) SalonResponse {
	return SalonResponse{ID: s.ID, Name: s.Name, Address: s.Address}
}

func toMaster(m salon.Master) MasterResponse {
	return MasterResponse{
		ID:             m.ID,
		SalonID:        m.SalonID,
		FullName:       m.FullName,
		Specialization: m.Specialization,
		Phone:          m.Phone,
		IsActive:       m.Active,
	}
}

func toService(s salon.Service) ServiceResponse {
	return ServiceResponse{
		ID:          s.ID,
		SalonID:     s.SalonID,
		Name:        s.Name,
		DurationMin: s.DurationMin,
		Price:       s.Price,
		IsActive:    s.Active,
	}
}

func toMasterService(ms salon.MasterService) MasterServiceResponse {
	return MasterServiceResponse{MasterID: ms.MasterID, ServiceID: ms.ServiceID}
}

func toWorkingSlot(ws salon.WorkingSlot) WorkingSlotResponse {
	return WorkingSlotResponse{
		ID:        ws.ID,
		MasterID:  ws.MasterID,
		Date:      ws.Date,
		StartTime: ws.StartTime,
		EndTime:   ws.EndTime,
		IsDayOff:  ws.IsDayOff,
	}
}

func toClient(c salon.Client) ClientResponse {
	return ClientResponse{ID: c.ID, FullName: c.FullName, Phone: c.Phone, CreatedAt: c.CreatedAt}
}

func toAppointment(a salon.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		ClientID:  a.ClientID,
		MasterID:  a.MasterID,
		StartDT:   a.StartsAt.Format(salon.DateTimeLayout),
		EndDT:     a.EndsAt.Format(salon.DateTimeLayout),
		Status:    string(a.Status),
		Comment:   a.Comment,
		CreatedAt: a.CreatedAt,
	}
}

func toAppointmentItem(it salon.AppointmentItem) AppointmentItemResponse {
	return AppointmentItemResponse{
		ID:                it.ID,
		AppointmentID:     it.AppointmentID,
		ServiceID:         it.ServiceID,
		PriceAtTime:       it.PriceAtTime,
		DurationMinAtTime: it.DurationMinAtTime,
	}
}

func toSnapshot(s *salon.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		Rev:              s.Rev,
		Salons:           mapSlice(s.Salons, toSalon),
		Masters:          mapSlice(s.Masters, toMaster),
		Services:         mapSlice(s.Services, toService),
		MasterServices:   mapSlice(s.MasterServices, toMasterService),
		WorkingSlots:     mapSlice([]salon.WorkingSlot(s.WorkingSlots), toWorkingSlot),
		Clients:          mapSlice(s.Clients, toClient),
		Appointments:     mapSlice(s.Appointments, toAppointment),
		AppointmentItems: mapSlice(s.AppointmentItems, toAppointmentItem),
	}
}
