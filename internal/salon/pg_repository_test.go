package salon

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	masterCols      = []string{"id", "salon_id", "full_name", "specialization", "phone", "active"}
	serviceCols     = []string{"id", "salon_id", "name", "duration_min", "price", "active"}
	clientCols      = []string{"id", "full_name", "phone", "created_at"}
	workingSlotCols = []string{"id", "master_id", "date", "start_time", "end_time", "is_day_off"}
	appointmentCols = []string{"id", "client_id", "master_id", "starts_at", "ends_at", "status", "comment", "created_at"}
)

func newMockRepo(t *testing.T) (*PgRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPgRepository(mock), mock
}

func expectBump(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec("UPDATE data_revision SET rev = rev \\+ 1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
}

func TestRevision(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT rev FROM data_revision").
		WillReturnRows(pgxmock.NewRows([]string{"rev"}).AddRow(int64(42)))

	rev, err := repo.Revision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), rev)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMasterNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("FROM masters WHERE id").WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetMaster(context.Background(), id)
	assert.ErrorIs(t, err, ErrMasterNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertClientBumpsRevision(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO clients").
		WithArgs(pgxmock.AnyArg(), "Maria Ivanova", "+10000000001").
		WillReturnRows(pgxmock.NewRows(clientCols).AddRow(id, "Maria Ivanova", "+10000000001", now))
	expectBump(mock)
	mock.ExpectCommit()

	c, err := repo.UpsertClient(context.Background(), "Maria Ivanova", "+10000000001")
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, "+10000000001", c.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleMasterNotFoundRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE masters SET active = NOT active").WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.ToggleMasterActive(context.Background(), id)
	assert.ErrorIs(t, err, ErrMasterNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMasterResolvesSalon(t *testing.T) {
	repo, mock := newMockRepo(t)
	salonID, masterID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM salons").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(salonID))
	mock.ExpectQuery("INSERT INTO masters").
		WithArgs(pgxmock.AnyArg(), salonID, "Oleg", "Barber", "", true).
		WillReturnRows(pgxmock.NewRows(masterCols).AddRow(masterID, salonID, "Oleg", "Barber", "", true))
	expectBump(mock)
	mock.ExpectCommit()

	m, err := repo.CreateMaster(context.Background(), Master{FullName: "Oleg", Specialization: "Barber", Active: true})
	require.NoError(t, err)
	assert.Equal(t, masterID, m.ID)
	assert.Equal(t, salonID, m.SalonID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMasterWithoutSalon(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM salons").WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.CreateMaster(context.Background(), Master{FullName: "Oleg", Specialization: "Barber"})
	assert.ErrorIs(t, err, ErrNoSalon)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWorkingSlot(t *testing.T) {
	repo, mock := newMockRepo(t)
	master := uuid.New()

	mock.ExpectQuery("FROM working_slots").WithArgs(master, "2026-03-02").
		WillReturnRows(pgxmock.NewRows(workingSlotCols).AddRow(uuid.New(), master, "2026-03-02", "10:00", "18:00", false))

	ws, err := repo.GetWorkingSlot(context.Background(), master, "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, "10:00", ws.StartTime)
	assert.Equal(t, "18:00", ws.EndTime)

	mock.ExpectQuery("FROM working_slots").WithArgs(master, "2026-03-03").WillReturnError(pgx.ErrNoRows)
	_, err = repo.GetWorkingSlot(context.Background(), master, "2026-03-03")
	assert.ErrorIs(t, err, ErrWorkingSlotNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureWorkingSlots(t *testing.T) {
	master := uuid.New()
	slots := WorkingSlots{
		{MasterID: master, Date: "2026-03-02", StartTime: "10:00", EndTime: "18:00"},
		{MasterID: master, Date: "2026-03-03", StartTime: "10:00", EndTime: "18:00"},
	}

	t.Run("inserts missing days", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO working_slots").
			WithArgs(pgxmock.AnyArg(), master, "2026-03-02", "10:00", "18:00", false).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectExec("INSERT INTO working_slots").
			WithArgs(pgxmock.AnyArg(), master, "2026-03-03", "10:00", "18:00", false).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		expectBump(mock)
		mock.ExpectCommit()

		n, err := repo.EnsureWorkingSlots(context.Background(), slots)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing new keeps revision", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO working_slots").WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectExec("INSERT INTO working_slots").WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectRollback()

		n, err := repo.EnsureWorkingSlots(context.Background(), slots)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHasConflict(t *testing.T) {
	repo, mock := newMockRepo(t)
	master := uuid.New()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectQuery("SELECT EXISTS").WithArgs(master, start, end).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	conflict, err := repo.HasConflict(context.Background(), master, start, end)
	require.NoError(t, err)
	assert.True(t, conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppointmentsByMasterAndDate(t *testing.T) {
	repo, mock := newMockRepo(t)
	master, client := uuid.New(), uuid.New()
	start := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM appointments").WithArgs(master, "2026-03-02", "2026-03-02").
		WillReturnRows(pgxmock.NewRows(appointmentCols).
			AddRow(uuid.New(), client, master, start, start.Add(time.Hour), StatusBooked, "", start).
			AddRow(uuid.New(), client, master, start.Add(2*time.Hour), start.Add(3*time.Hour), StatusCancelled, "moved", start))

	appts, err := repo.ListAppointmentsByMasterAndDate(context.Background(), master, "2026-03-02")
	require.NoError(t, err)
	require.Len(t, appts, 2)
	assert.Equal(t, StatusBooked, appts[0].Status)
	assert.Equal(t, StatusCancelled, appts[1].Status)
	assert.Equal(t, "moved", appts[1].Comment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAppointmentWithItems(t *testing.T) {
	repo, mock := newMockRepo(t)
	apptID, client, master := uuid.New(), uuid.New(), uuid.New()
	haircut, styling := uuid.New(), uuid.New()
	start := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	end := start.Add(105 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), client, master, start, end, "first visit").
		WillReturnRows(pgxmock.NewRows(appointmentCols).
			AddRow(apptID, client, master, start, end, StatusBooked, "first visit", start))
	mock.ExpectExec("INSERT INTO appointment_items").
		WithArgs(pgxmock.AnyArg(), apptID, haircut, int64(1500), 60).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO appointment_items").
		WithArgs(pgxmock.AnyArg(), apptID, styling, int64(1200), 45).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	expectBump(mock)
	mock.ExpectCommit()

	appt, err := repo.CreateAppointment(context.Background(), NewAppointment{
		ClientID: client,
		MasterID: master,
		StartsAt: start,
		EndsAt:   end,
		Comment:  "first visit",
		Items: []AppointmentItem{
			{ServiceID: haircut, PriceAtTime: 1500, DurationMinAtTime: 60},
			{ServiceID: styling, PriceAtTime: 1200, DurationMinAtTime: 45},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, apptID, appt.ID)
	assert.Equal(t, StatusBooked, appt.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAppointmentUnknownClient(t *testing.T) {
	repo, mock := newMockRepo(t)
	start := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO appointments").
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"})
	mock.ExpectRollback()

	_, err := repo.CreateAppointment(context.Background(), NewAppointment{
		ClientID: uuid.New(),
		MasterID: uuid.New(),
		StartsAt: start,
		EndsAt:   start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrReferenceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAppointmentStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointments SET status").WithArgs(id, StatusCancelled).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectBump(mock)
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateAppointmentStatus(context.Background(), id, StatusCancelled))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshot(t *testing.T) {
	repo, mock := newMockRepo(t)
	salonID, master, service, client := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	apptID := uuid.New()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	mock.ExpectQuery("SELECT rev FROM data_revision").
		WillReturnRows(pgxmock.NewRows([]string{"rev"}).AddRow(int64(9)))
	mock.ExpectQuery("FROM salons").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "address"}).AddRow(salonID, "Test Salon", "Main st. 1"))
	mock.ExpectQuery("FROM masters").
		WillReturnRows(pgxmock.NewRows(masterCols).AddRow(master, salonID, "Anna", "Hairdresser", "", true))
	mock.ExpectQuery("FROM services").
		WillReturnRows(pgxmock.NewRows(serviceCols).AddRow(service, salonID, "Haircut", 60, int64(1500), true))
	mock.ExpectQuery("FROM master_services").
		WillReturnRows(pgxmock.NewRows([]string{"master_id", "service_id"}).AddRow(master, service))
	mock.ExpectQuery("FROM working_slots").
		WillReturnRows(pgxmock.NewRows(workingSlotCols).AddRow(uuid.New(), master, "2026-03-02", "10:00", "18:00", false))
	mock.ExpectQuery("FROM clients").
		WillReturnRows(pgxmock.NewRows(clientCols).AddRow(client, "Maria", "+1", start))
	mock.ExpectQuery("FROM appointments").
		WillReturnRows(pgxmock.NewRows(appointmentCols).AddRow(apptID, client, master, start, start.Add(time.Hour), StatusBooked, "", start))
	mock.ExpectQuery("FROM appointment_items").
		WillReturnRows(pgxmock.NewRows([]string{"id", "appointment_id", "service_id", "price_at_time", "duration_min_at_time"}).
			AddRow(uuid.New(), apptID, service, int64(1500), 60))
	mock.ExpectRollback()

	snap, err := repo.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(9), snap.Rev)
	assert.Len(t, snap.Salons, 1)
	assert.Len(t, snap.Masters, 1)
	assert.Len(t, snap.Services, 1)
	assert.Len(t, snap.MasterServices, 1)
	assert.Len(t, snap.WorkingSlots, 1)
	assert.Len(t, snap.Clients, 1)
	assert.Len(t, snap.Appointments, 1)
	assert.Len(t, snap.AppointmentItems, 1)

	ws, ok := snap.WorkingSlots.WorkingSlot(master, "2026-03-02")
	assert.True(t, ok)
	assert.Equal(t, "18:00", ws.EndTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll(t *testing.T) {
	repo, mock := newMockRepo(t)
	salonID, master := uuid.New(), uuid.New()

	snap := &Snapshot{
		Salons:  []Salon{{ID: salonID, Name: "Test Salon"}},
		Masters: []Master{{ID: master, SalonID: salonID, FullName: "Anna", Specialization: "Hairdresser", Active: true}},
		WorkingSlots: WorkingSlots{
			{ID: uuid.New(), MasterID: master, Date: "2026-03-02", StartTime: "10:00", EndTime: "18:00"},
			{ID: uuid.New(), MasterID: master, Date: "2026-03-08", StartTime: "00:00", EndTime: "00:00", IsDayOff: true},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("TRUNCATE").WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"salons"}, []string{"id", "name", "address"}).WillReturnResult(1)
	mock.ExpectCopyFrom(pgx.Identifier{"masters"}, masterCols).WillReturnResult(1)
	mock.ExpectCopyFrom(pgx.Identifier{"working_slots"}, workingSlotCols).WillReturnResult(2)
	expectBump(mock)
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceAll(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}
