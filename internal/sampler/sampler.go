// Package sampler schedules the per-sensor pipelines. Every sensor
// gets its own goroutine and ticker, so a slow or retrying sensor
// never stalls the others; the only shared state is the read-only
// configuration and the snapshot map guarded here.
package sampler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/banshee-data/thermal.report/internal/config"
	"github.com/banshee-data/thermal.report/internal/monitoring"
	"github.com/banshee-data/thermal.report/internal/thermal"
	"github.com/banshee-data/thermal.report/internal/timeutil"
)

// Snapshot is the most recent successful cycle of one sensor.
type Snapshot struct {
	Sensor config.Sensor
	Frame  thermal.Frame
	Crop   thermal.Region
	Alerts []thermal.AlertResult
	At     time.Time
}

// AlertFunc receives every snapshot whose cycle fired at least one
// alert. Sinks run on the sensor's own goroutine and should hand
// long-running work off elsewhere.
type AlertFunc func(Snapshot)

type runner struct {
	sensor   config.Sensor
	pipeline *thermal.Pipeline
}

// Sampler polls a set of sensors and fans alerting cycles out to the
// registered sinks.
type Sampler struct {
	mu      sync.RWMutex
	clock   timeutil.Clock
	runners []runner
	latest  map[int]Snapshot
	counts  map[int]map[string]int
	onAlert []AlertFunc
}

// New returns an empty sampler driven by the wall clock.
func New() *Sampler {
	return &Sampler{
		clock:  timeutil.RealClock{},
		latest: map[int]Snapshot{},
		counts: map[int]map[string]int{},
	}
}

// Add registers a sensor and the capture primitive serving it. Must be
// called before Run.
func (s *Sampler) Add(sensor config.Sensor, fetcher thermal.Fetcher) {
	s.runners = append(s.runners, runner{
		sensor:   sensor,
		pipeline: thermal.NewPipeline(fetcher, sensor.PipelineConfig()),
	})
}

// OnAlert registers a sink for alerting cycles. Must be called before
// Run.
func (s *Sampler) OnAlert(fn AlertFunc) {
	s.onAlert = append(s.onAlert, fn)
}

// Run polls every registered sensor until the context is cancelled.
func (s *Sampler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, r := range s.runners {
		wg.Add(1)
		go func(r runner) {
			defer wg.Done()
			s.poll(ctx, r)
		}(r)
	}
	wg.Wait()
}

func (s *Sampler) poll(ctx context.Context, r runner) {
	name := r.sensor.Name()
	monitoring.Logf("sampler: polling %s every %s", name, r.sensor.SampleInterval)

	ticker := s.clock.NewTicker(r.sensor.SampleInterval)
	defer ticker.Stop()

	for {
		s.cycle(ctx, r)
		select {
		case <-ctx.Done():
			monitoring.Logf("sampler: %s stopped", name)
			return
		case <-ticker.C():
		}
	}
}

func (s *Sampler) cycle(ctx context.Context, r runner) {
	if ctx.Err() != nil {
		return
	}

	res, err := r.pipeline.Cycle(ctx)
	if err != nil {
		// Soft outcomes: nothing this cycle.
		switch {
		case errors.Is(err, thermal.ErrNoFrame):
			monitoring.Logf("sampler: %s: %v", r.sensor.Name(), err)
		case errors.Is(err, thermal.ErrInvalidFrame):
			monitoring.Logf("sampler: %s: discarding frame: %v", r.sensor.Name(), err)
		}
		return
	}

	snap := Snapshot{
		Sensor: r.sensor,
		Frame:  res.Frame,
		Crop:   res.Crop,
		Alerts: res.Alerts,
		At:     s.clock.Now(),
	}

	s.mu.Lock()
	s.latest[r.sensor.Addr] = snap
	for _, a := range res.Alerts {
		byName := s.counts[r.sensor.Addr]
		if byName == nil {
			byName = map[string]int{}
			s.counts[r.sensor.Addr] = byName
		}
		byName[a.Name]++
	}
	s.mu.Unlock()

	if len(res.Alerts) > 0 {
		for _, a := range res.Alerts {
			off := a.Offender()
			monitoring.Logf("sampler: %s: alert %q fired by %s with value %.2f (%d triggers)",
				r.sensor.Name(), a.Name, off.Stat, off.Value, s.TriggerCount(r.sensor.Addr, a.Name))
		}
		for _, fn := range s.onAlert {
			fn(snap)
		}
	}
}

// Latest returns the most recent snapshot for a sensor address.
func (s *Sampler) Latest(addr int) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.latest[addr]
	return snap, ok
}

// Snapshots returns the most recent snapshot of every sensor that has
// produced one.
func (s *Sampler) Snapshots() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, 0, len(s.latest))
	for _, snap := range s.latest {
		out = append(out, snap)
	}
	return out
}

// TriggerCount returns how many times the named alert has fired for a
// sensor since startup.
func (s *Sampler) TriggerCount(addr int, alert string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[addr][alert]
}
