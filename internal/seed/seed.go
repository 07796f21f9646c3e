// Package seed builds a demo salon: masters, services, assignments and a
// rolling window of working slots.
package seed

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/hackgods/salon-scheduling/internal/salon"
)

const (
	dayStart = "10:00"
	dayEnd   = "18:00"
)

type catalogEntry struct {
	name        string
	durationMin int
	price       int64
}

// Specializations and the services each one provides.
var catalog = []struct {
	specialization string
	services       []catalogEntry
}{
	{"Hairdresser", []catalogEntry{
		{"Women's haircut", 60, 1500},
		{"Hair coloring", 120, 4500},
		{"Styling", 45, 1200},
	}},
	{"Manicurist", []catalogEntry{
		{"Manicure", 60, 1700},
		{"Gel polish", 45, 1400},
	}},
	{"Barber", []catalogEntry{
		{"Men's haircut", 45, 1200},
		{"Beard trim", 30, 800},
	}},
}

type Options struct {
	From    time.Time // first working day, time of day ignored
	Days    int       // number of days of working slots
	Clients int       // number of demo clients
	Seed    uint64    // faker seed, 0 picks a random one
}

// Build returns a fresh snapshot. Sundays are days off, every other day
// runs 10:00-18:00.
func Build(opts Options) *salon.Snapshot {
	f := gofakeit.New(opts.Seed)

	salonID := uuid.New()
	snap := &salon.Snapshot{
		Salons: []salon.Salon{{ID: salonID, Name: f.Company() + " Beauty", Address: f.Street()}},
	}

	serviceIDs := make(map[string]uuid.UUID)
	for _, spec := range catalog {
		master := salon.Master{
			ID:             uuid.New(),
			SalonID:        salonID,
			FullName:       f.Name(),
			Specialization: spec.specialization,
			Phone:          f.Phone(),
			Active:         true,
		}
		snap.Masters = append(snap.Masters, master)

		for _, entry := range spec.services {
			id, ok := serviceIDs[entry.name]
			if !ok {
				id = uuid.New()
				serviceIDs[entry.name] = id
				snap.Services = append(snap.Services, salon.Service{
					ID:          id,
					SalonID:     salonID,
					Name:        entry.name,
					DurationMin: entry.durationMin,
					Price:       entry.price,
					Active:      true,
				})
			}
			snap.MasterServices = append(snap.MasterServices, salon.MasterService{MasterID: master.ID, ServiceID: id})
		}
	}

	// every master can also do styling
	if styling, ok := serviceIDs["Styling"]; ok {
		for _, m := range snap.Masters[1:] {
			snap.MasterServices = append(snap.MasterServices, salon.MasterService{MasterID: m.ID, ServiceID: styling})
		}
	}

	snap.WorkingSlots = WorkingSlots(snap.Masters, opts.From, opts.Days)

	now := time.Now().UTC()
	phones := make(map[string]struct{}, opts.Clients)
	for len(snap.Clients) < opts.Clients {
		phone := f.Phone()
		if _, dup := phones[phone]; dup {
			continue
		}
		phones[phone] = struct{}{}
		snap.Clients = append(snap.Clients, salon.Client{
			ID:        uuid.New(),
			FullName:  f.Name(),
			Phone:     phone,
			CreatedAt: now,
		})
	}

	return snap
}

// WorkingSlots generates one slot per master per day starting at from.
func WorkingSlots(masters []salon.Master, from time.Time, days int) salon.WorkingSlots {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)

	slots := make(salon.WorkingSlots, 0, days*len(masters))
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		dayOff := day.Weekday() == time.Sunday

		for _, m := range masters {
			ws := salon.WorkingSlot{
				ID:        uuid.New(),
				MasterID:  m.ID,
				Date:      day.Format(salon.DateLayout),
				StartTime: dayStart,
				EndTime:   dayEnd,
			}
			if dayOff {
				ws.StartTime, ws.EndTime, ws.IsDayOff = "00:00", "00:00", true
			}
			slots = append(slots, ws)
		}
	}
	return slots
}
