package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/salon-scheduling/internal/config"
	"github.com/hackgods/salon-scheduling/internal/db"
	"github.com/hackgods/salon-scheduling/internal/logging"
	"github.com/hackgods/salon-scheduling/internal/salon"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	Days         int
	BookingRatio float64
	CancelRatio  float64
	ReadRatio    float64
	PostgresDSN  string
}

// target is one bookable (master, service, date) combination.
type target struct {
	MasterID    uuid.UUID
	ServiceID   uuid.UUID
	DurationMin int
	Date        string
}

type DataPool struct {
	Clients      []salon.Client
	Targets      []target
	mu           sync.RWMutex
	appointments []uuid.UUID // Thread-safe list of created appointment IDs
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) GetRandomAppointment(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	logger  *zap.Logger
	metrics Metrics
}

func main() {
	cfg, baseCfg := loadConfig()

	logger, err := logging.New(baseCfg.Env, baseCfg.LogLevel)
	if err != nil {
		panic("logger init error: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if err := validateConfig(cfg); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	logger.Info("simulator starting",
		zap.Duration("duration", cfg.Duration),
		zap.Int("workers", cfg.Workers),
		zap.Float64("booking", cfg.BookingRatio),
		zap.Float64("cancel", cfg.CancelRatio),
		zap.Float64("read", cfg.ReadRatio))

	// Load data from Postgres
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.PoolOptions{MaxConns: baseCfg.PGMaxConns, MinConns: baseCfg.PGMinConns}, logger)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pgPool.Close()

	snap, err := salon.NewPgRepository(pgPool).Snapshot(ctx)
	if err != nil {
		logger.Fatal("load snapshot", zap.Error(err))
	}

	dataPool, err := buildDataPool(snap, time.Now(), cfg.Days)
	if err != nil {
		logger.Fatal("build data pool", zap.Error(err))
	}

	logger.Info("data loaded",
		zap.Int64("revision", snap.Rev),
		zap.Int("clients", len(dataPool.Clients)),
		zap.Int("targets", len(dataPool.Targets)))

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	// Run simulation
	sim.Run()

	// Print report
	sim.PrintReport()
}

func loadConfig() (SimConfig, config.Config) {
	baseCfg, err := config.Load()
	if err != nil {
		panic("failed to load base config: " + err.Error())
	}

	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:"+baseCfg.HTTPPort),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		Days:         getInt("SIM_DAYS", 7),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.4),
		CancelRatio:  getFloat("SIM_CANCEL_RATIO", 0.1),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.5),
		PostgresDSN:  baseCfg.PostgresDSN,
	}

	// Normalize ratios
	total := cfg.BookingRatio + cfg.CancelRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.CancelRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg, baseCfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Days <= 0 {
		return fmt.Errorf("SIM_DAYS must be > 0")
	}
	return nil
}

// buildDataPool collects every active master/service pair on each working
// day in [from, from+days).
func buildDataPool(snap *salon.Snapshot, from time.Time, days int) (*DataPool, error) {
	ix := salon.BuildIndexes(snap)
	dataPool := &DataPool{Clients: snap.Clients}

	for _, m := range snap.Masters {
		if !m.Active {
			continue
		}
		for serviceID := range ix.ServiceIDsByMasterID[m.ID] {
			svc, ok := ix.ServicesByID[serviceID]
			if !ok || !svc.Active {
				continue
			}
			for d := 0; d < days; d++ {
				date := salon.DateOf(from.AddDate(0, 0, d))
				ws, ok := ix.WorkingSlot(m.ID, date)
				if !ok || ws.IsDayOff {
					continue
				}
				dataPool.Targets = append(dataPool.Targets, target{
					MasterID:    m.ID,
					ServiceID:   serviceID,
					DurationMin: svc.DurationMin,
					Date:        date,
				})
			}
		}
	}

	if len(dataPool.Clients) == 0 {
		return nil, fmt.Errorf("no clients loaded")
	}
	if len(dataPool.Targets) == 0 {
		return nil, fmt.Errorf("no working days with services found")
	}

	return dataPool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.logger.Info("starting simulation", zap.Duration("duration", s.config.Duration), zap.Int("workers", s.config.Workers))

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.logger.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			// Select operation based on ratios
			r := rng.Float64()
			switch {
			case r < s.config.BookingRatio:
				s.doBooking(ctx, rng)
			case r < s.config.BookingRatio+s.config.CancelRatio:
				s.doCancel(ctx, rng)
			default:
				if rng.Intn(2) == 0 {
					t := s.pool.Targets[rng.Intn(len(s.pool.Targets))]
					s.doAvailability(ctx, t)
				} else {
					s.doHistory(ctx, rng)
				}
			}
		}
	}
}

type slotResponse struct {
	StartDT string `json:"start_dt"`
	EndDT   string `json:"end_dt"`
}

// doAvailability queries free slots for t and returns them.
func (s *Simulator) doAvailability(ctx context.Context, t target) []slotResponse {
	q := url.Values{}
	q.Set("master_id", t.MasterID.String())
	q.Set("date", t.Date)
	q.Set("duration_min", strconv.Itoa(t.DurationMin))

	start := time.Now()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+"/api/availability?"+q.Encode(), nil)
	resp, err := s.client.Do(req)
	latency := time.Since(start)

	if err != nil {
		s.metrics.Availability.Record(latency, false, false)
		return nil
	}
	defer resp.Body.Close()

	var body struct {
		FromCache bool           `json:"from_cache"`
		Slots     []slotResponse `json:"slots"`
	}
	ok := resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(&body) == nil
	s.metrics.Availability.Record(latency, ok, false)
	if ok && body.FromCache {
		atomic.AddInt64(&s.metrics.CacheHits, 1)
	}
	return body.Slots
}

// doBooking asks for availability and books the first free slot. Concurrent
// workers race for the same slots, which exercises the booking lock.
func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	t := s.pool.Targets[rng.Intn(len(s.pool.Targets))]
	client := s.pool.Clients[rng.Intn(len(s.pool.Clients))]

	slots := s.doAvailability(ctx, t)
	if len(slots) == 0 {
		return
	}
	slot := slots[0]

	start := time.Now()

	reqBody := map[string]any{
		"client_id":   client.ID.String(),
		"master_id":   t.MasterID.String(),
		"start_dt":    slot.StartDT,
		"end_dt":      slot.EndDT,
		"service_ids": []string{t.ServiceID.String()},
		"comment":     "load test",
	}
	body, _ := json.Marshal(reqBody)

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/api/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	conflict := false

	if err == nil {
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusCreated:
			success = true
			var apptResp struct {
				ID uuid.UUID `json:"id"`
			}
			if json.NewDecoder(resp.Body).Decode(&apptResp) == nil && apptResp.ID != uuid.Nil {
				s.pool.AddAppointment(apptResp.ID)
			}
		case http.StatusConflict:
			conflict = true
		}
	}

	s.metrics.Booking.Record(latency, success, conflict)
}

func (s *Simulator) doCancel(ctx context.Context, rng *rand.Rand) {
	apptID, ok := s.pool.GetRandomAppointment(rng)
	if !ok {
		return
	}

	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, http.MethodPatch,
		fmt.Sprintf("%s/api/appointments/%s/status", s.config.APIBaseURL, apptID),
		strings.NewReader(`{"status":"cancelled"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.Cancel.Record(latency, success, false)
}

func (s *Simulator) doHistory(ctx context.Context, rng *rand.Rand) {
	client := s.pool.Clients[rng.Intn(len(s.pool.Clients))]

	start := time.Now()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet,
		s.config.APIBaseURL+"/api/clients/history?phone="+url.QueryEscape(client.Phone), nil)

	resp, err := s.client.Do(req)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	s.metrics.History.Record(latency, success, false)
}

func (s *Simulator) PrintReport() {
	out := os.Stdout
	fmt.Fprintln(out, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(out, "SIMULATION REPORT")
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintf(out, "Duration: %s\n", s.config.Duration)
	fmt.Fprintf(out, "Workers: %d\n", s.config.Workers)
	fmt.Fprintln(out)

	writeOperationReport(out, "Availability", &s.metrics.Availability)
	writeOperationReport(out, "Booking", &s.metrics.Booking)
	writeOperationReport(out, "Cancel", &s.metrics.Cancel)
	writeOperationReport(out, "Client history", &s.metrics.History)

	if total := atomic.LoadInt64(&s.metrics.Availability.Total); total > 0 {
		hits := atomic.LoadInt64(&s.metrics.CacheHits)
		fmt.Fprintf(out, "Availability cache hits: %d (%.1f%%)\n", hits, float64(hits)/float64(total)*100)
	}
}

// Helper functions

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
