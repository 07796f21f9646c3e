package salon

import "github.com/google/uuid"

type workingSlotKey struct {
	masterID uuid.UUID
	date     string
}

// Indexes are lookup tables derived from a Snapshot. They are rebuilt
// whenever a new snapshot is loaded and never mutated afterwards.
type Indexes struct {
	MastersByID            map[uuid.UUID]Master
	ServicesByID           map[uuid.UUID]Service
	ClientsByID            map[uuid.UUID]Client
	ClientIDByPhone        map[string]uuid.UUID
	ServiceIDsByMasterID   map[uuid.UUID]map[uuid.UUID]struct{}
	ItemsByAppointmentID   map[uuid.UUID][]AppointmentItem
	workingSlotByMasterDay map[workingSlotKey]WorkingSlot
}

func BuildIndexes(snap *Snapshot) *Indexes {
	ix := &Indexes{
		MastersByID:            make(map[uuid.UUID]Master, len(snap.Masters)),
		ServicesByID:           make(map[uuid.UUID]Service, len(snap.Services)),
		ClientsByID:            make(map[uuid.UUID]Client, len(snap.Clients)),
		ClientIDByPhone:        make(map[string]uuid.UUID, len(snap.Clients)),
		ServiceIDsByMasterID:   make(map[uuid.UUID]map[uuid.UUID]struct{}),
		ItemsByAppointmentID:   make(map[uuid.UUID][]AppointmentItem),
		workingSlotByMasterDay: make(map[workingSlotKey]WorkingSlot, len(snap.WorkingSlots)),
	}

	for _, m := range snap.Masters {
		ix.MastersByID[m.ID] = m
	}
	for _, s := range snap.Services {
		ix.ServicesByID[s.ID] = s
	}
	for _, c := range snap.Clients {
		ix.ClientsByID[c.ID] = c
		if c.Phone != "" {
			ix.ClientIDByPhone[c.Phone] = c.ID
		}
	}
	for _, ms := range snap.MasterServices {
		set, ok := ix.ServiceIDsByMasterID[ms.MasterID]
		if !ok {
			set = make(map[uuid.UUID]struct{})
			ix.ServiceIDsByMasterID[ms.MasterID] = set
		}
		set[ms.ServiceID] = struct{}{}
	}
	for _, ws := range snap.WorkingSlots {
		ix.workingSlotByMasterDay[workingSlotKey{masterID: ws.MasterID, date: ws.Date}] = ws
	}
	for _, it := range snap.AppointmentItems {
		ix.ItemsByAppointmentID[it.AppointmentID] = append(ix.ItemsByAppointmentID[it.AppointmentID], it)
	}

	return ix
}

// WorkingSlot looks up the working slot of a master on a date.
func (ix *Indexes) WorkingSlot(masterID uuid.UUID, date string) (WorkingSlot, bool) {
	ws, ok := ix.workingSlotByMasterDay[workingSlotKey{masterID: masterID, date: date}]
	return ws, ok
}

// MasterProvides reports whether the master is assigned the service.
func (ix *Indexes) MasterProvides(masterID, serviceID uuid.UUID) bool {
	_, ok := ix.ServiceIDsByMasterID[masterID][serviceID]
	return ok
}

// WorkingSlots is a plain list of working slots. Its WorkingSlot method is a
// linear scan for callers that hold no index.
type WorkingSlots []WorkingSlot

func (ws WorkingSlots) WorkingSlot(masterID uuid.UUID, date string) (WorkingSlot, bool) {
	for _, s := range ws {
		if s.MasterID == masterID && s.Date == date {
			return s, true
		}
	}
	return WorkingSlot{}, false
}
