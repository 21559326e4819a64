package thermal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticFetcher always returns the same frame.
type staticFetcher struct{ frame Frame }

func (s staticFetcher) Fetch(ctx context.Context) (Frame, error) { return s.frame, nil }

func defaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Attempts:         3,
		OutlierThreshold: 50,
		MinTemp:          -40,
		MaxTemp:          300,
	}
}

func TestPipeline_CleanCycle(t *testing.T) {
	t.Parallel()

	cfg := defaultPipelineConfig()
	cfg.Alerts = []AlertSpec{{Name: "fever", Max: Scalar(38)}}

	p := NewPipeline(staticFetcher{uniformFrame(4, 4, 22)}, cfg)
	res, err := p.Cycle(context.Background())

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, res.Frame.FullRegion(), res.Crop)
	assert.Empty(t, res.Alerts)
}

func TestPipeline_AlertFires(t *testing.T) {
	t.Parallel()

	cfg := defaultPipelineConfig()
	cfg.Alerts = []AlertSpec{{Name: "fever", Max: Scalar(38)}}

	p := NewPipeline(staticFetcher{uniformFrame(4, 4, 39.5)}, cfg)
	res, err := p.Cycle(context.Background())

	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, "fever", res.Alerts[0].Name)
	assert.InDelta(t, 39.5, res.Alerts[0].Offender().Value, 1e-9)
}

func TestPipeline_InvalidFrameDiscarded(t *testing.T) {
	t.Parallel()

	// One pixel at 400 with the default (-40, 300) threshold: the
	// frame is discarded and no alert is evaluated.
	values := make([]float64, 16)
	for i := range values {
		values[i] = 25
	}
	values[5] = 400
	frame := MustFrame(values, 4, 4)

	cfg := defaultPipelineConfig()
	cfg.OutlierThreshold = 1000 // keep the outlier filter out of the way
	cfg.Alerts = []AlertSpec{{Name: "always", Max: Scalar(-273)}}

	p := NewPipeline(staticFetcher{frame}, cfg)
	res, err := p.Cycle(context.Background())

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidFrame)
}

func TestPipeline_OutlierRepairRescuesFrame(t *testing.T) {
	t.Parallel()

	// The 400 spike deviates far from the mean, so the filter folds it
	// back before validation and the frame survives.
	values := make([]float64, 16)
	for i := range values {
		values[i] = 25
	}
	values[5] = 400
	frame := MustFrame(values, 4, 4)

	p := NewPipeline(staticFetcher{frame}, defaultPipelineConfig())
	res, err := p.Cycle(context.Background())

	require.NoError(t, err)
	assert.LessOrEqual(t, res.Frame.Max(), 300.0)
}

func TestPipeline_CaptureExhaustion(t *testing.T) {
	t.Parallel()

	failing := FetcherFunc(func(ctx context.Context) (Frame, error) {
		return Frame{}, errors.New("bus error")
	})

	p := NewPipeline(failing, defaultPipelineConfig())
	res, err := p.Cycle(context.Background())

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoFrame)
}

func TestPipeline_OffsetAppliedBeforeValidation(t *testing.T) {
	t.Parallel()

	cfg := defaultPipelineConfig()
	cfg.Offset = 10
	cfg.MaxTemp = 305

	p := NewPipeline(staticFetcher{uniformFrame(4, 4, 298)}, cfg)
	res, err := p.Cycle(context.Background())

	require.NoError(t, err)
	assert.InDelta(t, 308, res.Frame.Max(), 1e-9)

	// Push the corrected reading past the maximum and the frame drops.
	cfg.MaxTemp = 300
	p = NewPipeline(staticFetcher{uniformFrame(4, 4, 298)}, cfg)
	_, err = p.Cycle(context.Background())
	assert.ErrorIs(t, err, ErrInvalidFrame)
}

func TestPipeline_CroppedAlertEvaluation(t *testing.T) {
	t.Parallel()

	// Hot blob inside the crop, cold elsewhere. An alert on the
	// cropped region must see only the blob.
	f := blobFrame()
	cfg := defaultPipelineConfig()
	cfg.OutlierThreshold = 1000
	cfg.Crop = CropSpec{
		X: AxisSpec{Fixed: &FixedBounds{Lo: 2, Hi: 5}},
		Y: AxisSpec{Fixed: &FixedBounds{Lo: 1, Hi: 4}},
	}
	cfg.Alerts = []AlertSpec{{Name: "blob-min", Min: Window(70, 100)}}

	p := NewPipeline(staticFetcher{f}, cfg)
	res, err := p.Cycle(context.Background())

	require.NoError(t, err)
	assert.Empty(t, res.Alerts, "cropped min is 80, inside the window")
	assert.Equal(t, Region{X1: 2, Y1: 1, X2: 5, Y2: 4}, res.Crop)
}

func TestPipeline_ZeroAttemptsClamped(t *testing.T) {
	t.Parallel()

	// A zero attempt budget is clamped to one so the pipeline still
	// captures.
	p := NewPipeline(staticFetcher{uniformFrame(2, 2, 20)}, PipelineConfig{MinTemp: -40, MaxTemp: 300})
	res, err := p.Cycle(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, res)
}
