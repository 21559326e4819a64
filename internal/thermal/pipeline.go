package thermal

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoFrame is the soft miss reported when every capture attempt in a
// cycle failed. Like ErrInvalidFrame it is an expected outcome, not a
// fault: the sampler logs it and moves on to the next interval.
var ErrNoFrame = errors.New("no frame captured this cycle")

// PipelineConfig carries the per-sensor parameters of one pipeline. It
// is resolved once at startup and read-only afterwards.
type PipelineConfig struct {
	Attempts         int
	Offset           float64
	OutlierThreshold float64
	MinTemp          float64
	MaxTemp          float64
	Crop             CropSpec
	Alerts           []AlertSpec
}

// CycleResult is the product of one successful sampling cycle.
type CycleResult struct {
	Frame  Frame
	Crop   Region
	Alerts []AlertResult
}

// Pipeline runs capture, outlier repair, offset correction, range
// validation, crop resolution and alert evaluation for one sensor.
// Pipelines share no mutable state; each sensor runs its own.
type Pipeline struct {
	fetcher Fetcher
	cfg     PipelineConfig
}

// NewPipeline wires a pipeline to its capture primitive.
func NewPipeline(fetcher Fetcher, cfg PipelineConfig) *Pipeline {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	return &Pipeline{fetcher: fetcher, cfg: cfg}
}

// Cycle runs one sampling cycle. Capture exhaustion returns ErrNoFrame
// and a frame outside the valid range returns an error wrapping
// ErrInvalidFrame; both are expected per-cycle outcomes the caller
// should treat as "nothing this time".
//
// The configured offset is applied after outlier repair and before
// range validation, so the threshold judges the corrected readings.
func (p *Pipeline) Cycle(ctx context.Context) (*CycleResult, error) {
	raw, ok := Capture(ctx, p.fetcher, p.cfg.Attempts)
	if !ok {
		return nil, fmt.Errorf("%w (after %d attempts)", ErrNoFrame, p.cfg.Attempts)
	}

	frame := ReplaceOutliers(raw, p.cfg.OutlierThreshold).AddOffset(p.cfg.Offset)

	if err := ValidateRange(frame, p.cfg.MinTemp, p.cfg.MaxTemp); err != nil {
		return nil, err
	}

	crop := ResolveCrop(frame, p.cfg.Crop)
	evalFrame := frame
	if !p.cfg.Crop.IsZero() {
		evalFrame = frame.Crop(crop)
	}

	return &CycleResult{
		Frame:  frame,
		Crop:   crop,
		Alerts: EvaluateAlerts(evalFrame, p.cfg.Alerts),
	}, nil
}
