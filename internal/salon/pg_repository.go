package salon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is the subset of *pgxpool.Pool the repository uses.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	pool Pool
}

func NewPgRepository(pool Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const (
	masterColumns      = `id, salon_id, full_name, specialization, phone, active`
	serviceColumns     = `id, salon_id, name, duration_min, price, active`
	clientColumns      = `id, full_name, phone, created_at`
	workingSlotColumns = `id, master_id, to_char(date, 'YYYY-MM-DD'), start_time, end_time, is_day_off`
	appointmentColumns = `id, client_id, master_id, starts_at, ends_at, status, comment, created_at`
)

// Helpers

func scanMaster(row pgx.Row) (*Master, error) {
	var m Master
	err := row.Scan(&m.ID, &m.SalonID, &m.FullName, &m.Specialization, &m.Phone, &m.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMasterNotFound
		}
		return nil, err
	}
	return &m, nil
}

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.SalonID, &s.Name, &s.DurationMin, &s.Price, &s.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &s, nil
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.FullName, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

func scanWorkingSlot(row pgx.Row) (*WorkingSlot, error) {
	var ws WorkingSlot
	err := row.Scan(&ws.ID, &ws.MasterID, &ws.Date, &ws.StartTime, &ws.EndTime, &ws.IsDayOff)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkingSlotNotFound
		}
		return nil, err
	}
	return &ws, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ClientID, &a.MasterID, &a.StartsAt, &a.EndsAt, &a.Status, &a.Comment, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]T, error) {
	defer rows.Close()

	var result []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// isForeignKeyViolation reports a 23503 error from Postgres.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func bumpRevision(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `UPDATE data_revision SET rev = rev + 1 WHERE id = 1`); err != nil {
		return fmt.Errorf("bump revision: %w", err)
	}
	return nil
}

// mutate runs fn in a transaction and bumps the data revision before commit.
func (r *PgRepository) mutate(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func requireRow(tag pgconn.CommandTag, notFound error) error {
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

// Revision and snapshot

func (r *PgRepository) Revision(ctx context.Context) (int64, error) {
	var rev int64
	if err := r.pool.QueryRow(ctx, `SELECT rev FROM data_revision WHERE id = 1`).Scan(&rev); err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	return rev, nil
}

func (r *PgRepository) Snapshot(ctx context.Context) (*Snapshot, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	snap := &Snapshot{}

	if err := tx.QueryRow(ctx, `SELECT rev FROM data_revision WHERE id = 1`).Scan(&snap.Rev); err != nil {
		return nil, fmt.Errorf("read revision: %w", err)
	}

	rows, err := tx.Query(ctx, `SELECT id, name, address FROM salons ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("load salons: %w", err)
	}
	if snap.Salons, err = collect(rows, func(row pgx.Row) (*Salon, error) {
		var s Salon
		if err := row.Scan(&s.ID, &s.Name, &s.Address); err != nil {
			return nil, err
		}
		return &s, nil
	}); err != nil {
		return nil, fmt.Errorf("load salons: %w", err)
	}

	if rows, err = tx.Query(ctx, `SELECT `+masterColumns+` FROM masters ORDER BY full_name`); err != nil {
		return nil, fmt.Errorf("load masters: %w", err)
	}
	if snap.Masters, err = collect(rows, scanMaster); err != nil {
		return nil, fmt.Errorf("load masters: %w", err)
	}

	if rows, err = tx.Query(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY name`); err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	if snap.Services, err = collect(rows, scanService); err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}

	if rows, err = tx.Query(ctx, `SELECT master_id, service_id FROM master_services`); err != nil {
		return nil, fmt.Errorf("load master services: %w", err)
	}
	if snap.MasterServices, err = collect(rows, func(row pgx.Row) (*MasterService, error) {
		var ms MasterService
		if err := row.Scan(&ms.MasterID, &ms.ServiceID); err != nil {
			return nil, err
		}
		return &ms, nil
	}); err != nil {
		return nil, fmt.Errorf("load master services: %w", err)
	}

	if rows, err = tx.Query(ctx, `SELECT `+workingSlotColumns+` FROM working_slots ORDER BY date, master_id`); err != nil {
		return nil, fmt.Errorf("load working slots: %w", err)
	}
	if snap.WorkingSlots, err = collect(rows, scanWorkingSlot); err != nil {
		return nil, fmt.Errorf("load working slots: %w", err)
	}

	if rows, err = tx.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}
	if snap.Clients, err = collect(rows, scanClient); err != nil {
		return nil, fmt.Errorf("load clients: %w", err)
	}

	if rows, err = tx.Query(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY starts_at`); err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	if snap.Appointments, err = collect(rows, scanAppointment); err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}

	if rows, err = tx.Query(ctx, `
		SELECT id, appointment_id, service_id, price_at_time, duration_min_at_time
		FROM appointment_items
	`); err != nil {
		return nil, fmt.Errorf("load appointment items: %w", err)
	}
	if snap.AppointmentItems, err = collect(rows, func(row pgx.Row) (*AppointmentItem, error) {
		var it AppointmentItem
		if err := row.Scan(&it.ID, &it.AppointmentID, &it.ServiceID, &it.PriceAtTime, &it.DurationMinAtTime); err != nil {
			return nil, err
		}
		return &it, nil
	}); err != nil {
		return nil, fmt.Errorf("load appointment items: %w", err)
	}

	return snap, nil
}

// ReplaceAll wipes every table and loads snap in one transaction.
func (r *PgRepository) ReplaceAll(ctx context.Context, snap *Snapshot) error {
	return r.mutate(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			TRUNCATE appointment_items, appointments, clients, working_slots,
			         master_services, services, masters, salons
		`); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}

		copies := []struct {
			table   string
			columns []string
			rows    [][]any
		}{
			{"salons", []string{"id", "name", "address"}, salonRows(snap.Salons)},
			{"masters", []string{"id", "salon_id", "full_name", "specialization", "phone", "active"}, masterRows(snap.Masters)},
			{"services", []string{"id", "salon_id", "name", "duration_min", "price", "active"}, serviceRows(snap.Services)},
			{"master_services", []string{"master_id", "service_id"}, masterServiceRows(snap.MasterServices)},
			{"working_slots", []string{"id", "master_id", "date", "start_time", "end_time", "is_day_off"}, workingSlotRows(snap.WorkingSlots)},
			{"clients", []string{"id", "full_name", "phone", "created_at"}, clientRows(snap.Clients)},
			{"appointments", []string{"id", "client_id", "master_id", "starts_at", "ends_at", "status", "comment", "created_at"}, appointmentRows(snap.Appointments)},
			{"appointment_items", []string{"id", "appointment_id", "service_id", "price_at_time", "duration_min_at_time"}, appointmentItemRows(snap.AppointmentItems)},
		}
		for _, c := range copies {
			if len(c.rows) == 0 {
				continue
			}
			if _, err := tx.CopyFrom(ctx, pgx.Identifier{c.table}, c.columns, pgx.CopyFromRows(c.rows)); err != nil {
				return fmt.Errorf("copy %s: %w", c.table, err)
			}
		}
		return nil
	})
}

func salonRows(in []Salon) [][]any {
	out := make([][]any, 0, len(in))
	for _, s := range in {
		out = append(out, []any{s.ID, s.Name, s.Address})
	}
	return out
}

func masterRows(in []Master) [][]any {
	out := make([][]any, 0, len(in))
	for _, m := range in {
		out = append(out, []any{m.ID, m.SalonID, m.FullName, m.Specialization, m.Phone, m.Active})
	}
	return out
}

func serviceRows(in []Service) [][]any {
	out := make([][]any, 0, len(in))
	for _, s := range in {
		out = append(out, []any{s.ID, s.SalonID, s.Name, s.DurationMin, s.Price, s.Active})
	}
	return out
}

func masterServiceRows(in []MasterService) [][]any {
	out := make([][]any, 0, len(in))
	for _, ms := range in {
		out = append(out, []any{ms.MasterID, ms.ServiceID})
	}
	return out
}

// COPY uses the binary protocol, so dates go over the wire as time.Time.
func workingSlotRows(in []WorkingSlot) [][]any {
	out := make([][]any, 0, len(in))
	for _, ws := range in {
		day, _ := time.Parse(DateLayout, ws.Date)
		out = append(out, []any{ws.ID, ws.MasterID, day, ws.StartTime, ws.EndTime, ws.IsDayOff})
	}
	return out
}

func clientRows(in []Client) [][]any {
	out := make([][]any, 0, len(in))
	for _, c := range in {
		out = append(out, []any{c.ID, c.FullName, c.Phone, c.CreatedAt})
	}
	return out
}

func appointmentRows(in []Appointment) [][]any {
	out := make([][]any, 0, len(in))
	for _, a := range in {
		out = append(out, []any{a.ID, a.ClientID, a.MasterID, a.StartsAt, a.EndsAt, string(a.Status), a.Comment, a.CreatedAt})
	}
	return out
}

func appointmentItemRows(in []AppointmentItem) [][]any {
	out := make([][]any, 0, len(in))
	for _, it := range in {
		out = append(out, []any{it.ID, it.AppointmentID, it.ServiceID, it.PriceAtTime, it.DurationMinAtTime})
	}
	return out
}

// Clients

func (r *PgRepository) UpsertClient(ctx context.Context, fullName, phone string) (*Client, error) {
	var client *Client
	err := r.mutate(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO clients (id, full_name, phone, created_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (phone) DO UPDATE SET full_name = EXCLUDED.full_name
			RETURNING `+clientColumns,
			uuid.New(), fullName, phone)
		c, err := scanClient(row)
		if err != nil {
			return fmt.Errorf("upsert client: %w", err)
		}
		client = c
		return nil
	})
	return client, err
}

func (r *PgRepository) GetClientByPhone(ctx context.Context, phone string) (*Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE phone = $1`, phone)
	return scanClient(row)
}

func (r *PgRepository) ListAppointmentsByClient(ctx context.Context, clientID uuid.UUID, status *AppointmentStatus) ([]Appointment, error) {
	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE client_id = $1
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY starts_at DESC
	`, clientID, statusArg)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAppointment)
}

// Masters

func (r *PgRepository) GetMaster(ctx context.Context, id uuid.UUID) (*Master, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+masterColumns+` FROM masters WHERE id = $1`, id)
	return scanMaster(row)
}

func (r *PgRepository) ListMasters(ctx context.Context, includeInactive bool) ([]Master, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+masterColumns+`
		FROM masters
		WHERE $1 OR active
		ORDER BY full_name
	`, includeInactive)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMaster)
}

// CreateMaster inserts m. A nil SalonID attaches the master to the first salon.
func (r *PgRepository) CreateMaster(ctx context.Context, m Master) (*Master, error) {
	var created *Master
	err := r.mutate(ctx, func(tx pgx.Tx) error {
		salonID, err := resolveSalon(ctx, tx, m.SalonID)
		if err != nil {
			return err
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO masters (id, salon_id, full_name, specialization, phone, active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+masterColumns,
			uuid.New(), salonID, m.FullName, m.Specialization, m.Phone, m.Active)
		created, err = scanMaster(row)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrReferenceNotFound
			}
			return fmt.Errorf("insert master: %w", err)
		}
		return nil
	})
	return created, err
}

func resolveSalon(ctx context.Context, tx pgx.Tx, id uuid.UUID) (uuid.UUID, error) {
	if id != uuid.Nil {
		return id, nil
	}
	var salonID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM salons ORDER BY name LIMIT 1`).Scan(&salonID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNoSalon
		}
		return uuid.Nil, fmt.Errorf("resolve salon: %w", err)
	}
	return salonID, nil
}

func (r *PgRepository) ToggleMasterActive(ctx context.Context, id uuid.UUID) error {
	return r.mutate(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE masters SET active = NOT active WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("toggle master: %w", err)
		}
		return requireRow(tag, ErrMasterNotFound)
	})
}

// DeleteMaster removes the master; assignments, working slots and
// appointments go with it through ON DELETE CASCADE.
func (r *PgRepository) DeleteMaster(ctx context.Context, id uuid.UUID) error {
	return r.mutate(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM masters WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete master: %w", err)
		}
		return requireRow(tag, ErrMasterNotFound)
	})
}

// Services

func (r *PgRepository) ListServices(ctx context.Context, includeInactive bool) ([]Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE $1 OR active
		ORDER BY name
	`, includeInactive)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanService)
}

func (r *PgRepository) ListServicesByMaster(ctx context.Context, masterID uuid.UUID) ([]Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.salon_id, s.name, s.duration_min, s.price, s.active
		FROM services s
		JOIN master_services ms ON ms.service_id = s.id
		WHERE ms.master_id = $1 AND s.active
		ORDER BY s.name
	`, masterID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanService)
}

func (r *PgRepository) GetServicesByIDs(ctx context.Context, ids []uuid.UUID) ([]Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE id = ANY($1)
		ORDER BY name
	`, ids)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanService)
}

func (r *PgRepository) CreateService(ctx context.Context, s Service) (*Service, error) {
	var created *Service
	err := r.mutate(ctx, func(tx pgx.Tx) error {
		salonID, err := resolveSalon(ctx, tx, s.SalonID)
		if err != nil {
			return err
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO services (id, salon_id, name, duration_min, price, active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+serviceColumns,
			uuid.New(), salonID, s.Name, s.DurationMin, s.Price, s.Active)
		created, err = scanService(row)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrReferenceNotFound
			}
			return fmt.Errorf("insert service: %w", err)
		}
		return nil
	})
	return created, err
}

func (r *PgRepository) ToggleServiceActive(ctx context.Context, id uuid.UUID) error {
	return r.mutate(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE services SET active = NOT active WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("toggle service: %w", err)
		}
		return requireRow(tag, ErrServiceNotFound)
	})
}

func (r *PgRepository) DeleteService(ctx context.Context, id uuid.UUID) error {
	return r.mutate(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete service: %w", err)
		}
		return requireRow(tag, ErrServiceNotFound)
	})
}

func (r *PgRepository) SetMasterService(ctx context.Context, masterID, serviceID uuid.UUID, enabled bool) error {
	return r.mutate(ctx, func(tx pgx.Tx) error {
		var err error
		if enabled {
			_, err = tx.Exec(ctx, `
				INSERT INTO master_services (master_id, service_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, masterID, serviceID)
		} else {
			_, err = tx.Exec(ctx, `
				DELETE FROM master_services
				WHERE master_id = $1 AND service_id = $2
			`, masterID, serviceID)
		}
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrReferenceNotFound
			}
			return fmt.Errorf("set master service: %w", err)
		}
		return nil
	})
}

// Working hours

func (r *PgRepository) GetWorkingSlot(ctx context.Context, masterID uuid.UUID, date string) (*WorkingSlot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+workingSlotColumns+`
		FROM working_slots
		WHERE master_id = $1 AND date = $2::date
	`, masterID, date)
	return scanWorkingSlot(row)
}

func (r *PgRepository) UpsertWorkingSlot(ctx context.Context, ws WorkingSlot) (*WorkingSlot, error) {
	var saved *WorkingSlot
	err := r.mutate(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO working_slots (id, master_id, date, start_time, end_time, is_day_off)
			VALUES ($1, $2, $3::date, $4, $5, $6)
			ON CONFLICT (master_id, date) DO UPDATE SET
				start_time = EXCLUDED.start_time,
				end_time   = EXCLUDED.end_time,
				is_day_off = EXCLUDED.is_day_off
			RETURNING `+workingSlotColumns,
			uuid.New(), ws.MasterID, ws.Date, ws.StartTime, ws.EndTime, ws.IsDayOff)
		var err error
		saved, err = scanWorkingSlot(row)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrMasterNotFound
			}
			return fmt.Errorf("upsert working slot: %w", err)
		}
		return nil
	})
	return saved, err
}

// EnsureWorkingSlots inserts the slots that do not exist yet and leaves
// existing days untouched. The revision moves only when a row was added.
func (r *PgRepository) EnsureWorkingSlots(ctx context.Context, slots WorkingSlots) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, ws := range slots {
		tag, err := tx.Exec(ctx, `
			INSERT INTO working_slots (id, master_id, date, start_time, end_time, is_day_off)
			VALUES ($1, $2, $3::date, $4, $5, $6)
			ON CONFLICT (master_id, date) DO NOTHING`,
			uuid.New(), ws.MasterID, ws.Date, ws.StartTime, ws.EndTime, ws.IsDayOff)
		if err != nil {
			if isForeignKeyViolation(err) {
				return 0, ErrMasterNotFound
			}
			return 0, fmt.Errorf("insert working slot: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if inserted == 0 {
		return 0, nil
	}

	if err := bumpRevision(ctx, tx); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

// Appointments

func (r *PgRepository) ListAppointmentsByMasterAndDate(ctx context.Context, masterID uuid.UUID, date string) ([]Appointment, error) {
	return r.ListAppointmentsByMasterRange(ctx, masterID, date, date)
}

// ListAppointmentsByMasterRange returns appointments starting on any date in [from, to].
func (r *PgRepository) ListAppointmentsByMasterRange(ctx context.Context, masterID uuid.UUID, from, to string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE master_id = $1
		  AND starts_at >= $2::date
		  AND starts_at < $3::date + 1
		ORDER BY starts_at
	`, masterID, from, to)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAppointment)
}

// HasConflict reports whether a non-cancelled appointment of the master
// overlaps [startsAt, endsAt). Touching endpoints do not overlap.
func (r *PgRepository) HasConflict(ctx context.Context, masterID uuid.UUID, startsAt, endsAt time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM appointments
			WHERE master_id = $1
			  AND status <> 'cancelled'
			  AND starts_at < $3
			  AND ends_at > $2
		)
	`, masterID, startsAt, endsAt).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check conflict: %w", err)
	}
	return exists, nil
}

func (r *PgRepository) CreateAppointment(ctx context.Context, in NewAppointment) (*Appointment, error) {
	var created *Appointment
	err := r.mutate(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO appointments (id, client_id, master_id, starts_at, ends_at, status, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, 'booked', $6, now())
			RETURNING `+appointmentColumns,
			uuid.New(), in.ClientID, in.MasterID, in.StartsAt, in.EndsAt, in.Comment)
		appt, err := scanAppointment(row)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrReferenceNotFound
			}
			return fmt.Errorf("insert appointment: %w", err)
		}

		for _, it := range in.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO appointment_items (id, appointment_id, service_id, price_at_time, duration_min_at_time)
				VALUES ($1, $2, $3, $4, $5)
			`, uuid.New(), appt.ID, it.ServiceID, it.PriceAtTime, it.DurationMinAtTime)
			if err != nil {
				if isForeignKeyViolation(err) {
					return ErrServiceNotFound
				}
				return fmt.Errorf("insert appointment item: %w", err)
			}
		}

		created = appt
		return nil
	})
	return created, err
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) error {
	return r.mutate(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE appointments SET status = $2 WHERE id = $1`, id, status)
		if err != nil {
			return fmt.Errorf("update appointment status: %w", err)
		}
		return requireRow(tag, ErrAppointmentNotFound)
	})
}
