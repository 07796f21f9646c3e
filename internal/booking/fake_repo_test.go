package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/salon-scheduling/internal/salon"
)

// memRepo is an in-memory salon.Repository. Every mutation bumps rev.
type memRepo struct {
	mu   sync.Mutex
	snap salon.Snapshot
	// calls counts HasConflict invocations.
	calls int
}

func newMemRepo(snap *salon.Snapshot) *memRepo {
	r := &memRepo{}
	if snap != nil {
		r.snap = *snap
	}
	r.snap.Rev = 1
	return r
}

func (r *memRepo) bump() { r.snap.Rev++ }

func (r *memRepo) Revision(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap.Rev, nil
}

func (r *memRepo) Snapshot(ctx context.Context) (*salon.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := r.snap
	return &cp, nil
}

func (r *memRepo) ReplaceAll(ctx context.Context, snap *salon.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev := r.snap.Rev
	r.snap = *snap
	r.snap.Rev = rev + 1
	return nil
}

func (r *memRepo) UpsertClient(ctx context.Context, fullName, phone string) (*salon.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.bump()
	for i := range r.snap.Clients {
		if r.snap.Clients[i].Phone == phone {
			r.snap.Clients[i].FullName = fullName
			c := r.snap.Clients[i]
			return &c, nil
		}
	}
	c := salon.Client{ID: uuid.New(), FullName: fullName, Phone: phone, CreatedAt: time.Now()}
	r.snap.Clients = append(r.snap.Clients, c)
	return &c, nil
}

func (r *memRepo) GetClientByPhone(ctx context.Context, phone string) (*salon.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.snap.Clients {
		if c.Phone == phone {
			return &c, nil
		}
	}
	return nil, salon.ErrClientNotFound
}

func (r *memRepo) ListAppointmentsByClient(ctx context.Context, clientID uuid.UUID, status *salon.AppointmentStatus) ([]salon.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []salon.Appointment{}
	for _, a := range r.snap.Appointments {
		if a.ClientID != clientID {
			continue
		}
		if status != nil && a.Status != *status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	return out, nil
}

func (r *memRepo) GetMaster(ctx context.Context, id uuid.UUID) (*salon.Master, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.snap.Masters {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, salon.ErrMasterNotFound
}

func (r *memRepo) ListMasters(ctx context.Context, includeInactive bool) ([]salon.Master, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []salon.Master{}
	for _, m := range r.snap.Masters {
		if includeInactive || m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) CreateMaster(ctx context.Context, m salon.Master) (*salon.Master, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snap.Salons) == 0 {
		return nil, salon.ErrNoSalon
	}
	m.ID = uuid.New()
	m.SalonID = r.snap.Salons[0].ID
	m.Active = true
	r.snap.Masters = append(r.snap.Masters, m)
	r.bump()
	return &m, nil
}

func (r *memRepo) ToggleMasterActive(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.snap.Masters {
		if r.snap.Masters[i].ID == id {
			r.snap.Masters[i].Active = !r.snap.Masters[i].Active
			r.bump()
			return nil
		}
	}
	return salon.ErrMasterNotFound
}

func (r *memRepo) DeleteMaster(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.snap.Masters {
		if m.ID == id {
			r.snap.Masters = append(r.snap.Masters[:i], r.snap.Masters[i+1:]...)
			r.bump()
			return nil
		}
	}
	return salon.ErrMasterNotFound
}

func (r *memRepo) ListServices(ctx context.Context, includeInactive bool) ([]salon.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []salon.Service{}
	for _, s := range r.snap.Services {
		if includeInactive || s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memRepo) ListServicesByMaster(ctx context.Context, masterID uuid.UUID) ([]salon.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []salon.Service{}
	for _, ms := range r.snap.MasterServices {
		if ms.MasterID != masterID {
			continue
		}
		for _, s := range r.snap.Services {
			if s.ID == ms.ServiceID && s.Active {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func (r *memRepo) GetServicesByIDs(ctx context.Context, ids []uuid.UUID) ([]salon.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []salon.Service{}
	for _, s := range r.snap.Services {
		for _, id := range ids {
			if s.ID == id {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func (r *memRepo) CreateService(ctx context.Context, s salon.Service) (*salon.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snap.Salons) == 0 {
		return nil, salon.ErrNoSalon
	}
	s.ID = uuid.New()
	s.SalonID = r.snap.Salons[0].ID
	s.Active = true
	r.snap.Services = append(r.snap.Services, s)
	r.bump()
	return &s, nil
}

func (r *memRepo) ToggleServiceActive(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.snap.Services {
		if r.snap.Services[i].ID == id {
			r.snap.Services[i].Active = !r.snap.Services[i].Active
			r.bump()
			return nil
		}
	}
	return salon.ErrServiceNotFound
}

func (r *memRepo) DeleteService(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.snap.Services {
		if s.ID == id {
			r.snap.Services = append(r.snap.Services[:i], r.snap.Services[i+1:]...)
			r.bump()
			return nil
		}
	}
	return salon.ErrServiceNotFound
}

func (r *memRepo) SetMasterService(ctx context.Context, masterID, serviceID uuid.UUID, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.snap.MasterServices[:0]
	for _, ms := range r.snap.MasterServices {
		if ms.MasterID == masterID && ms.ServiceID == serviceID {
			continue
		}
		kept = append(kept, ms)
	}
	if enabled {
		kept = append(kept, salon.MasterService{MasterID: masterID, ServiceID: serviceID})
	}
	r.snap.MasterServices = kept
	r.bump()
	return nil
}

func (r *memRepo) GetWorkingSlot(ctx context.Context, masterID uuid.UUID, date string) (*salon.WorkingSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.snap.WorkingSlots.WorkingSlot(masterID, date)
	if !ok {
		return nil, salon.ErrWorkingSlotNotFound
	}
	return &ws, nil
}

func (r *memRepo) UpsertWorkingSlot(ctx context.Context, ws salon.WorkingSlot) (*salon.WorkingSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.bump()
	for i, existing := range r.snap.WorkingSlots {
		if existing.MasterID == ws.MasterID && existing.Date == ws.Date {
			ws.ID = existing.ID
			r.snap.WorkingSlots[i] = ws
			return &ws, nil
		}
	}
	ws.ID = uuid.New()
	r.snap.WorkingSlots = append(r.snap.WorkingSlots, ws)
	return &ws, nil
}

func (r *memRepo) EnsureWorkingSlots(ctx context.Context, slots salon.WorkingSlots) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inserted := 0
	for _, ws := range slots {
		if _, ok := r.snap.WorkingSlots.WorkingSlot(ws.MasterID, ws.Date); ok {
			continue
		}
		r.snap.WorkingSlots = append(r.snap.WorkingSlots, ws)
		inserted++
	}
	if inserted > 0 {
		r.bump()
	}
	return inserted, nil
}

func (r *memRepo) ListAppointmentsByMasterAndDate(ctx context.Context, masterID uuid.UUID, date string) ([]salon.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []salon.Appointment{}
	for _, a := range r.snap.Appointments {
		if a.MasterID == masterID && salon.DateOf(a.StartsAt) == date {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) ListAppointmentsByMasterRange(ctx context.Context, masterID uuid.UUID, from, to string) ([]salon.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []salon.Appointment{}
	for _, a := range r.snap.Appointments {
		d := salon.DateOf(a.StartsAt)
		if a.MasterID == masterID && d >= from && d <= to {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *memRepo) HasConflict(ctx context.Context, masterID uuid.UUID, startsAt, endsAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	for _, a := range r.snap.Appointments {
		if a.MasterID != masterID || a.Status == salon.StatusCancelled {
			continue
		}
		if a.StartsAt.Before(endsAt) && a.EndsAt.After(startsAt) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) CreateAppointment(ctx context.Context, in salon.NewAppointment) (*salon.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := salon.Appointment{
		ID:        uuid.New(),
		ClientID:  in.ClientID,
		MasterID:  in.MasterID,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
		Status:    salon.StatusBooked,
		Comment:   in.Comment,
		CreatedAt: time.Now(),
	}
	r.snap.Appointments = append(r.snap.Appointments, a)
	for _, item := range in.Items {
		item.ID = uuid.New()
		item.AppointmentID = a.ID
		r.snap.AppointmentItems = append(r.snap.AppointmentItems, item)
	}
	r.bump()
	return &a, nil
}

func (r *memRepo) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status salon.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.snap.Appointments {
		if r.snap.Appointments[i].ID == id {
			r.snap.Appointments[i].Status = status
			r.bump()
			return nil
		}
	}
	return salon.ErrAppointmentNotFound
}
