package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/salon-scheduling/internal/config"
	redisclient "github.com/hackgods/salon-scheduling/internal/redis"
	"github.com/hackgods/salon-scheduling/internal/salon"
	"github.com/hackgods/salon-scheduling/internal/scheduler"
	"github.com/hackgods/salon-scheduling/internal/seed"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrTimeSlotConflict    = errors.New("time slot conflict")
	ErrSlotBeingBooked     = errors.New("time slot is currently being booked, please retry")
	ErrOutsideWorkingHours = errors.New("requested time is outside working hours")
	ErrMasterInactive      = errors.New("master is inactive")
	ErrServiceNotProvided  = errors.New("service is not provided by master")
)

const (
	seedClients     = 10
	defaultDayStart = "10:00"
	defaultDayEnd   = "18:00"
	dayOffTimeOfDay = "00:00"
	minutesPerDay   = 24 * 60
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

type Service struct {
	repo   salon.Repository
	locker redisclient.Locker
	sched  *scheduler.Scheduler
	cfg    config.Config
	logger *zap.Logger
}

func NewService(repo salon.Repository, locker redisclient.Locker, sched *scheduler.Scheduler, cfg config.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		locker: locker,
		sched:  sched,
		cfg:    cfg,
		logger: logger.Named("booking"),
	}
}

// InvalidateCache clears the scheduler caches. Revision-keyed entries go
// stale on their own; this is the explicit reset for everything else.
func (s *Service) InvalidateCache() {
	s.sched.InvalidateAll()
}

// changed is called after every successful mutation.
func (s *Service) changed(op string) {
	s.InvalidateCache()
	s.logger.Debug("data changed", zap.String("op", op))
}

func (s *Service) Snapshot(ctx context.Context) (*salon.Snapshot, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// Reset replaces all data with a freshly seeded salon.
func (s *Service) Reset(ctx context.Context) error {
	snap := seed.Build(seed.Options{
		From:    time.Now(),
		Days:    s.cfg.SeedDays,
		Clients: seedClients,
	})
	if err := s.repo.ReplaceAll(ctx, snap); err != nil {
		return fmt.Errorf("reseed: %w", err)
	}
	s.changed("reset")
	s.logger.Info("data reset",
		zap.Int("masters", len(snap.Masters)),
		zap.Int("services", len(snap.Services)),
		zap.Int("working_slots", len(snap.WorkingSlots)))
	return nil
}

// Availability

type AvailabilityQuery struct {
	MasterID    uuid.UUID
	Date        string
	DurationMin int
	ServiceIDs  []uuid.UUID // used when DurationMin is 0
	StepMin     int
}

// AvailableSlots returns bookable windows for a master on a date.
func (s *Service) AvailableSlots(ctx context.Context, q AvailabilityQuery) (scheduler.Result, error) {
	if !salon.ValidDate(q.Date) {
		return scheduler.Result{}, invalid("date must be YYYY-MM-DD")
	}
	if q.DurationMin < 0 || q.StepMin < 0 {
		return scheduler.Result{}, invalid("duration_min and step_min must not be negative")
	}
	if q.DurationMin > minutesPerDay || q.StepMin > minutesPerDay {
		return scheduler.Result{}, invalid("duration_min and step_min must not exceed %d", minutesPerDay)
	}

	master, err := s.repo.GetMaster(ctx, q.MasterID)
	if err != nil {
		return scheduler.Result{}, fmt.Errorf("load master: %w", err)
	}
	if !master.Active {
		return scheduler.Result{}, ErrMasterInactive
	}

	duration := q.DurationMin
	if duration == 0 && len(q.ServiceIDs) > 0 {
		services, err := s.masterServices(ctx, q.MasterID, q.ServiceIDs)
		if err != nil {
			return scheduler.Result{}, err
		}
		duration = salon.SumDuration(services)
	}

	step := q.StepMin
	if step == 0 {
		step = s.cfg.SlotStepMin
	}

	// The revision is read before the data it describes, so a cache entry
	// never holds data older than its key.
	rev, err := s.repo.Revision(ctx)
	if err != nil {
		return scheduler.Result{}, err
	}

	var lookup salon.WorkingSlots
	ws, err := s.repo.GetWorkingSlot(ctx, q.MasterID, q.Date)
	switch {
	case err == nil:
		lookup = salon.WorkingSlots{*ws}
	case errors.Is(err, salon.ErrWorkingSlotNotFound):
	default:
		return scheduler.Result{}, fmt.Errorf("load working slot: %w", err)
	}

	appts, err := s.repo.ListAppointmentsByMasterAndDate(ctx, q.MasterID, q.Date)
	if err != nil {
		return scheduler.Result{}, fmt.Errorf("load appointments: %w", err)
	}

	res := s.sched.AvailableSlots(lookup, scheduler.Request{
		Revision:     rev,
		MasterID:     q.MasterID,
		Date:         q.Date,
		DurationMin:  duration,
		StepMin:      step,
		Appointments: appts,
	})
	return res, nil
}

// masterServices loads the given services and checks the master provides
// each of them.
func (s *Service) masterServices(ctx context.Context, masterID uuid.UUID, ids []uuid.UUID) ([]salon.Service, error) {
	services, err := s.repo.GetServicesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	if len(services) != len(uniqueIDs(ids)) {
		return nil, salon.ErrServiceNotFound
	}

	provided, err := s.repo.ListServicesByMaster(ctx, masterID)
	if err != nil {
		return nil, fmt.Errorf("load master services: %w", err)
	}
	offered := make(map[uuid.UUID]struct{}, len(provided))
	for _, p := range provided {
		offered[p.ID] = struct{}{}
	}
	for _, svc := range services {
		if _, ok := offered[svc.ID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrServiceNotProvided, svc.Name)
		}
	}
	return services, nil
}

func uniqueIDs(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Appointments

type CreateAppointmentInput struct {
	ClientID   uuid.UUID
	MasterID   uuid.UUID
	StartDT    string
	EndDT      string
	Comment    string
	ServiceIDs []uuid.UUID
}

// CreateAppointment books a time range for a client. A Redis lock per
// master and date serializes the conflict check and the insert, so two
// concurrent requests cannot both take overlapping time.
func (s *Service) CreateAppointment(ctx context.Context, in CreateAppointmentInput) (*salon.Appointment, error) {
	startsAt, err := salon.ParseDateTime(in.StartDT)
	if err != nil {
		return nil, invalid("start_dt must be YYYY-MM-DDTHH:MM[:SS]")
	}
	endsAt, err := salon.ParseDateTime(in.EndDT)
	if err != nil {
		return nil, invalid("end_dt must be YYYY-MM-DDTHH:MM[:SS]")
	}
	if !endsAt.After(startsAt) {
		return nil, invalid("end_dt must be after start_dt")
	}
	date := salon.DateOf(startsAt)
	if salon.DateOf(endsAt) != date {
		return nil, invalid("appointment must start and end on the same date")
	}
	if len(in.ServiceIDs) == 0 {
		return nil, invalid("at least one service is required")
	}

	master, err := s.repo.GetMaster(ctx, in.MasterID)
	if err != nil {
		return nil, fmt.Errorf("load master: %w", err)
	}
	if !master.Active {
		return nil, ErrMasterInactive
	}

	services, err := s.masterServices(ctx, in.MasterID, in.ServiceIDs)
	if err != nil {
		return nil, err
	}
	items := make([]salon.AppointmentItem, 0, len(services))
	for _, svc := range services {
		items = append(items, salon.AppointmentItem{
			ServiceID:         svc.ID,
			PriceAtTime:       svc.Price,
			DurationMinAtTime: svc.DurationMin,
		})
	}

	if err := s.checkWorkingHours(ctx, in.MasterID, date, startsAt, endsAt); err != nil {
		return nil, err
	}

	var created *salon.Appointment

	err = s.locker.WithLock(ctx, redisclient.BookingLockKey(in.MasterID, date), func(lockCtx context.Context) error {
		// Inside the critical section re-check for overlapping appointments
		conflict, err := s.repo.HasConflict(lockCtx, in.MasterID, startsAt, endsAt)
		if err != nil {
			return err
		}
		if conflict {
			return ErrTimeSlotConflict
		}

		appt, err := s.repo.CreateAppointment(lockCtx, salon.NewAppointment{
			ClientID: in.ClientID,
			MasterID: in.MasterID,
			StartsAt: startsAt,
			EndsAt:   endsAt,
			Comment:  strings.TrimSpace(in.Comment),
			Items:    items,
		})
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		created = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	s.changed("create_appointment")
	s.logger.Info("appointment booked",
		zap.Stringer("appointment_id", created.ID),
		zap.Stringer("master_id", created.MasterID),
		zap.String("start", in.StartDT),
		zap.String("end", in.EndDT))

	return created, nil
}

func (s *Service) checkWorkingHours(ctx context.Context, masterID uuid.UUID, date string, startsAt, endsAt time.Time) error {
	ws, err := s.repo.GetWorkingSlot(ctx, masterID, date)
	if err != nil {
		if errors.Is(err, salon.ErrWorkingSlotNotFound) {
			return ErrOutsideWorkingHours
		}
		return fmt.Errorf("load working slot: %w", err)
	}

	window, ok := s.sched.ResolveWorkingWindow(salon.WorkingSlots{*ws}, masterID, date)
	if !ok {
		return ErrOutsideWorkingHours
	}
	if scheduler.MinuteOfDay(startsAt) < window.StartMin || scheduler.MinuteOfDay(endsAt) > window.EndMin {
		return ErrOutsideWorkingHours
	}
	return nil
}

func (s *Service) SetAppointmentStatus(ctx context.Context, id uuid.UUID, status salon.AppointmentStatus) error {
	if !status.Valid() {
		return invalid("unknown status %q", status)
	}
	if err := s.repo.UpdateAppointmentStatus(ctx, id, status); err != nil {
		return err
	}
	s.changed("set_appointment_status")
	return nil
}

// MasterSchedule lists a master's appointments between two dates inclusive.
func (s *Service) MasterSchedule(ctx context.Context, masterID uuid.UUID, from, to string) ([]salon.Appointment, error) {
	if !salon.ValidDate(from) || !salon.ValidDate(to) {
		return nil, invalid("from and to must be YYYY-MM-DD")
	}
	if to < from {
		return nil, invalid("to must not be before from")
	}
	appts, err := s.repo.ListAppointmentsByMasterRange(ctx, masterID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list master schedule: %w", err)
	}
	return appts, nil
}

// Clients

func (s *Service) UpsertClient(ctx context.Context, fullName, phone string) (*salon.Client, error) {
	fullName = strings.TrimSpace(fullName)
	phone = strings.TrimSpace(phone)
	if fullName == "" || phone == "" {
		return nil, invalid("full_name and phone are required")
	}
	client, err := s.repo.UpsertClient(ctx, fullName, phone)
	if err != nil {
		return nil, err
	}
	s.changed("upsert_client")
	return client, nil
}

// ClientHistory returns the client with the given phone and their
// appointments, newest first. An unknown phone yields a nil client and no
// appointments. status "" or "all" disables filtering.
func (s *Service) ClientHistory(ctx context.Context, phone, status string) (*salon.Client, []salon.Appointment, error) {
	var filter *salon.AppointmentStatus
	if status != "" && status != "all" {
		st := salon.AppointmentStatus(status)
		if !st.Valid() {
			return nil, nil, invalid("unknown status %q", status)
		}
		filter = &st
	}

	client, err := s.repo.GetClientByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, salon.ErrClientNotFound) {
			return nil, []salon.Appointment{}, nil
		}
		return nil, nil, fmt.Errorf("load client: %w", err)
	}

	appts, err := s.repo.ListAppointmentsByClient(ctx, client.ID, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("list client appointments: %w", err)
	}
	return client, appts, nil
}

// Admin: masters

func (s *Service) ListMasters(ctx context.Context, includeInactive bool) ([]salon.Master, error) {
	return s.repo.ListMasters(ctx, includeInactive)
}

func (s *Service) CreateMaster(ctx context.Context, m salon.Master) (*salon.Master, error) {
	m.FullName = strings.TrimSpace(m.FullName)
	m.Specialization = strings.TrimSpace(m.Specialization)
	m.Phone = strings.TrimSpace(m.Phone)
	if m.FullName == "" || m.Specialization == "" {
		return nil, invalid("full_name and specialization are required")
	}
	m.Active = true
	created, err := s.repo.CreateMaster(ctx, m)
	if err != nil {
		return nil, err
	}
	s.changed("create_master")
	return created, nil
}

func (s *Service) ToggleMasterActive(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.ToggleMasterActive(ctx, id); err != nil {
		return err
	}
	s.changed("toggle_master")
	return nil
}

func (s *Service) DeleteMaster(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteMaster(ctx, id); err != nil {
		return err
	}
	s.changed("delete_master")
	return nil
}

// Admin: services

func (s *Service) ListServices(ctx context.Context, includeInactive bool) ([]salon.Service, error) {
	return s.repo.ListServices(ctx, includeInactive)
}

func (s *Service) ListServicesByMaster(ctx context.Context, masterID uuid.UUID) ([]salon.Service, error) {
	return s.repo.ListServicesByMaster(ctx, masterID)
}

func (s *Service) CreateService(ctx context.Context, svc salon.Service) (*salon.Service, error) {
	svc.Name = strings.TrimSpace(svc.Name)
	if svc.Name == "" {
		return nil, invalid("name is required")
	}
	if svc.DurationMin <= 0 {
		return nil, invalid("duration_min must be > 0")
	}
	if svc.Price < 0 {
		return nil, invalid("price must be >= 0")
	}
	svc.Active = true
	created, err := s.repo.CreateService(ctx, svc)
	if err != nil {
		return nil, err
	}
	s.changed("create_service")
	return created, nil
}

func (s *Service) ToggleServiceActive(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.ToggleServiceActive(ctx, id); err != nil {
		return err
	}
	s.changed("toggle_service")
	return nil
}

func (s *Service) DeleteService(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return err
	}
	s.changed("delete_service")
	return nil
}

func (s *Service) SetMasterService(ctx context.Context, masterID, serviceID uuid.UUID, enabled bool) error {
	if err := s.repo.SetMasterService(ctx, masterID, serviceID, enabled); err != nil {
		return err
	}
	s.changed("set_master_service")
	return nil
}

// Admin: working hours

type WorkingSlotInput struct {
	MasterID  uuid.UUID
	Date      string
	StartTime string
	EndTime   string
	IsDayOff  bool
}

// UpsertWorkingSlot sets the working hours of a master on a date. Missing
// bounds default to 10:00-18:00; a day off is stored as 00:00-00:00.
func (s *Service) UpsertWorkingSlot(ctx context.Context, in WorkingSlotInput) (*salon.WorkingSlot, error) {
	if !salon.ValidDate(in.Date) {
		return nil, invalid("date must be YYYY-MM-DD")
	}

	ws := salon.WorkingSlot{
		MasterID:  in.MasterID,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		IsDayOff:  in.IsDayOff,
	}
	if ws.IsDayOff {
		ws.StartTime, ws.EndTime = dayOffTimeOfDay, dayOffTimeOfDay
	} else {
		if ws.StartTime == "" {
			ws.StartTime = defaultDayStart
		}
		if ws.EndTime == "" {
			ws.EndTime = defaultDayEnd
		}
		if !salon.ValidTimeOfDay(ws.StartTime) || !salon.ValidTimeOfDay(ws.EndTime) {
			return nil, invalid("start_time and end_time must be HH:MM")
		}
		if scheduler.ToMinutes(ws.StartTime) >= scheduler.ToMinutes(ws.EndTime) {
			return nil, invalid("start_time must be before end_time")
		}
	}

	saved, err := s.repo.UpsertWorkingSlot(ctx, ws)
	if err != nil {
		return nil, err
	}
	s.changed("upsert_working_slot")
	return saved, nil
}

// ExtendSchedule makes sure every active master has working hours for the
// configured number of days starting at from. Days already present, edited
// ones included, are kept as they are.
func (s *Service) ExtendSchedule(ctx context.Context, from time.Time) (int, error) {
	masters, err := s.repo.ListMasters(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("list masters: %w", err)
	}
	if len(masters) == 0 {
		return 0, nil
	}

	inserted, err := s.repo.EnsureWorkingSlots(ctx, seed.WorkingSlots(masters, from, s.cfg.SeedDays))
	if err != nil {
		return 0, fmt.Errorf("ensure working slots: %w", err)
	}
	if inserted > 0 {
		s.changed("extend_schedule")
	}
	return inserted, nil
}
