package scheduler

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/salon-scheduling/internal/salon"
)

const (
	DefaultSlotCacheSize = 120
	DefaultBusyCacheSize = 200

	slotCacheName = "slots"
	busyCacheName = "busy"
)

type Config struct {
	SlotCacheSize int
	BusyCacheSize int
}

// Request describes one availability query. Appointments must be the
// master's appointments on Date; Revision is the data revision they were
// read at. StepMin <= 0 means DefaultStepMin.
type Request struct {
	Revision     int64
	MasterID     uuid.UUID
	Date         string
	DurationMin  int
	StepMin      int
	Appointments []salon.Appointment
}

// Result carries the slots plus the duration and step they were computed
// with, after defaulting.
type Result struct {
	Slots       []Slot
	DurationMin int
	StepMin     int
	FromCache   bool
}

type busyKey struct {
	masterID uuid.UUID
	date     string
	revision int64
}

type slotKey struct {
	masterID    uuid.UUID
	date        string
	durationMin int
	stepMin     int
	revision    int64
}

// Scheduler computes bookable slots and memoizes busy intervals and slot
// lists per data revision. A new revision yields new keys, so stale
// entries are never served; they age out through LRU eviction.
//
// Lookups share mu for reading; InvalidateAll takes it exclusively so both
// caches are emptied as one step relative to readers.
type Scheduler struct {
	mu     sync.RWMutex
	slots  *lruCache[slotKey, []Slot]
	busy   *lruCache[busyKey, []Interval]
	logger *zap.Logger
}

func New(cfg Config, metrics *Metrics, logger *zap.Logger) (*Scheduler, error) {
	if cfg.SlotCacheSize <= 0 {
		cfg.SlotCacheSize = DefaultSlotCacheSize
	}
	if cfg.BusyCacheSize <= 0 {
		cfg.BusyCacheSize = DefaultBusyCacheSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	slots, err := newLRUCache[slotKey, []Slot](slotCacheName, cfg.SlotCacheSize, metrics)
	if err != nil {
		return nil, err
	}
	busy, err := newLRUCache[busyKey, []Interval](busyCacheName, cfg.BusyCacheSize, metrics)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		slots:  slots,
		busy:   busy,
		logger: logger.Named("scheduler"),
	}, nil
}

// ResolveWorkingWindow is ResolveWindow for callers holding a Scheduler.
func (s *Scheduler) ResolveWorkingWindow(lookup WorkingSlotLookup, masterID uuid.UUID, date string) (Window, bool) {
	return ResolveWindow(lookup, masterID, date)
}

// AvailableSlots returns the bookable slots for req. The returned slice may
// be shared with the cache and must not be modified.
func (s *Scheduler) AvailableSlots(lookup WorkingSlotLookup, req Request) Result {
	step := normalizeStep(req.StepMin)
	empty := Result{Slots: []Slot{}, DurationMin: req.DurationMin, StepMin: step}
	if req.DurationMin <= 0 {
		return empty
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := slotKey{
		masterID:    req.MasterID,
		date:        req.Date,
		durationMin: req.DurationMin,
		stepMin:     step,
		revision:    req.Revision,
	}
	if slots, ok := s.slots.Get(key); ok {
		return Result{Slots: slots, DurationMin: req.DurationMin, StepMin: step, FromCache: true}
	}

	window, ok := ResolveWindow(lookup, req.MasterID, req.Date)
	if !ok {
		s.logger.Debug("no working window",
			zap.Stringer("master_id", req.MasterID),
			zap.String("date", req.Date))
		return empty
	}

	bk := busyKey{masterID: req.MasterID, date: req.Date, revision: req.Revision}
	busy, ok := s.busy.Get(bk)
	if !ok {
		busy = BuildBusy(req.Appointments)
		s.busy.Set(bk, busy)
	}

	slots := GenerateSlots(req.Date, window, req.DurationMin, step, busy)
	s.slots.Set(key, slots)

	s.logger.Debug("slots computed",
		zap.Stringer("master_id", req.MasterID),
		zap.String("date", req.Date),
		zap.Int("duration_min", req.DurationMin),
		zap.Int("step_min", step),
		zap.Int64("revision", req.Revision),
		zap.Int("busy", len(busy)),
		zap.Int("slots", len(slots)))

	return Result{Slots: slots, DurationMin: req.DurationMin, StepMin: step}
}

// InvalidateAll empties both caches.
func (s *Scheduler) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots.Clear()
	s.busy.Clear()
	s.logger.Debug("caches invalidated")
}
