package sampler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/thermal.report/internal/config"
	"github.com/banshee-data/thermal.report/internal/thermal"
	"github.com/banshee-data/thermal.report/internal/timeutil"
)

func testSensor(addr int, interval time.Duration) config.Sensor {
	return config.Sensor{
		Addr:             addr,
		Cols:             4,
		Rows:             4,
		Attempts:         2,
		OutlierThreshold: 1000,
		MinTemp:          -40,
		MaxTemp:          300,
		SampleInterval:   interval,
	}
}

func uniformFetcher(cols, rows int, v float64) thermal.Fetcher {
	return thermal.FetcherFunc(func(ctx context.Context) (thermal.Frame, error) {
		values := make([]float64, cols*rows)
		for i := range values {
			values[i] = v
		}
		return thermal.NewFrame(values, cols, rows)
	})
}

func TestSampler_PublishesSnapshots(t *testing.T) {
	t.Parallel()

	s := New()
	s.Add(testSensor(0x33, 5*time.Millisecond), uniformFetcher(4, 4, 22))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	snap, ok := s.Latest(0x33)
	require.True(t, ok)
	assert.Equal(t, 0x33, snap.Sensor.Addr)
	assert.InDelta(t, 22, snap.Frame.Avg(), 1e-9)
	assert.Empty(t, snap.Alerts)
	assert.Len(t, s.Snapshots(), 1)
}

func TestSampler_AlertSinkAndTriggerCount(t *testing.T) {
	t.Parallel()

	sensor := testSensor(0x34, 5*time.Millisecond)
	sensor.Alerts = []thermal.AlertSpec{{Name: "fever", Max: thermal.Scalar(38)}}

	var mu sync.Mutex
	var fired []Snapshot

	s := New()
	s.Add(sensor, uniformFetcher(4, 4, 39))
	s.OnAlert(func(snap Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		fired = append(fired, snap)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, fired)
	assert.Equal(t, "fever", fired[0].Alerts[0].Name)
	assert.Equal(t, len(fired), s.TriggerCount(0x34, "fever"))
	assert.Zero(t, s.TriggerCount(0x34, "unknown"))
}

func TestSampler_FailingSensorDoesNotStallOthers(t *testing.T) {
	t.Parallel()

	s := New()
	s.Add(testSensor(0x33, 5*time.Millisecond), thermal.FetcherFunc(
		func(ctx context.Context) (thermal.Frame, error) {
			return thermal.Frame{}, errors.New("bus stuck")
		}))
	s.Add(testSensor(0x34, 5*time.Millisecond), uniformFetcher(4, 4, 25))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	_, ok := s.Latest(0x33)
	assert.False(t, ok, "the failing sensor never publishes")

	snap, ok := s.Latest(0x34)
	require.True(t, ok, "the healthy sensor keeps publishing")
	assert.InDelta(t, 25, snap.Frame.Avg(), 1e-9)
}

func TestSampler_SnapshotTimeComesFromClock(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := timeutil.NewMockClock(base)

	s := New()
	s.clock = clock
	s.Add(testSensor(0x33, time.Hour), uniformFetcher(4, 4, 21))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// The first cycle runs before any tick.
	require.Eventually(t, func() bool {
		_, ok := s.Latest(0x33)
		return ok
	}, time.Second, time.Millisecond)

	snap, _ := s.Latest(0x33)
	assert.Equal(t, base, snap.At)

	cancel()
	<-done
}

func TestSampler_RunReturnsOnCancel(t *testing.T) {
	t.Parallel()

	s := New()
	s.Add(testSensor(0x33, time.Millisecond), uniformFetcher(4, 4, 20))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
