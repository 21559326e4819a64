package config

import (
	"fmt"
	"time"

	"github.com/banshee-data/thermal.report/internal/thermal"
)

// Fallbacks for fields that neither the sensor nor the default block
// sets. They match the conservative values the capture hardware ships
// with.
const (
	fallbackAttempts         = 10
	fallbackOutlierThreshold = 1.5
	fallbackMinTemp          = -40.0
	fallbackMaxTemp          = 300.0
)

// pick returns the sensor's value when present, then the default
// block's, then the fallback. This is the per-field merge: a sensor
// never inherits the default block wholesale, only the fields it left
// out.
func pick[T any](sensor, def *T, fallback T) T {
	if sensor != nil {
		return *sensor
	}
	if def != nil {
		return *def
	}
	return fallback
}

func resolveSensor(s, def SensorOverlay) (Sensor, error) {
	if s.Addr == nil {
		return Sensor{}, fmt.Errorf("missing required addr")
	}

	resolved := Sensor{
		Addr:             int(*s.Addr),
		Port:             pick(s.Port, def.Port, ""),
		Cols:             pick(s.Cols, def.Cols, thermal.DefaultCols),
		Rows:             pick(s.Rows, def.Rows, thermal.DefaultRows),
		Attempts:         pick(s.Attempts, def.Attempts, fallbackAttempts),
		Offset:           pick(s.Offset, def.Offset, 0),
		OutlierThreshold: pick(s.OutlierThreshold, def.OutlierThreshold, fallbackOutlierThreshold),
	}

	if resolved.Addr <= 0 {
		return Sensor{}, fmt.Errorf("addr must be positive, got %d", resolved.Addr)
	}
	if resolved.Attempts < 1 {
		return Sensor{}, fmt.Errorf("attempts must be at least 1, got %d", resolved.Attempts)
	}
	if resolved.Cols <= 0 || resolved.Rows <= 0 {
		return Sensor{}, fmt.Errorf("invalid grid %dx%d", resolved.Cols, resolved.Rows)
	}

	threshold := s.Threshold
	if threshold == nil {
		threshold = def.Threshold
	}
	switch {
	case threshold == nil:
		resolved.MinTemp, resolved.MaxTemp = fallbackMinTemp, fallbackMaxTemp
	case len(threshold) != 2:
		return Sensor{}, fmt.Errorf("threshold must be a [min, max] pair, got %d values", len(threshold))
	case threshold[0] >= threshold[1]:
		return Sensor{}, fmt.Errorf("threshold min %.2f must be below max %.2f", threshold[0], threshold[1])
	default:
		resolved.MinTemp, resolved.MaxTemp = threshold[0], threshold[1]
	}

	crop := s.Crop
	if crop == nil {
		crop = def.Crop
	}
	spec, err := resolveCrop(crop, resolved.Cols, resolved.Rows)
	if err != nil {
		return Sensor{}, err
	}
	resolved.Crop = spec

	alerts := s.Alerts
	if alerts == nil {
		alerts = def.Alerts
	}
	resolved.Alerts = resolveAlerts(alerts)

	interval := pick(s.SampleInterval, def.SampleInterval, "")
	if interval == "" {
		resolved.SampleInterval = DefaultSampleInterval
	} else {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return Sensor{}, fmt.Errorf("invalid sample_interval %q: %w", interval, err)
		}
		if d <= 0 {
			return Sensor{}, fmt.Errorf("sample_interval must be positive, got %s", d)
		}
		resolved.SampleInterval = d
	}

	return resolved, nil
}

// resolveCrop turns the raw crop block into a tagged per-axis spec.
// Each axis resolves either to fixed coordinates (both ends given) or
// to a gradient scan (anchor line + penalty): the x span scans along
// the row index in "row", the y span down the column index in "col".
func resolveCrop(c *CropOverlay, cols, rows int) (thermal.CropSpec, error) {
	var spec thermal.CropSpec
	if c == nil {
		return spec, nil
	}

	x, err := resolveCropAxis("x", c.X1, c.X2, c.Row, c.Penalty, cols, rows)
	if err != nil {
		return spec, err
	}
	y, err := resolveCropAxis("y", c.Y1, c.Y2, c.Col, c.Penalty, rows, cols)
	if err != nil {
		return spec, err
	}
	spec.X, spec.Y = x, y

	if c.Penalty != nil && spec.X.Scan == nil && spec.Y.Scan == nil {
		return spec, fmt.Errorf("crop penalty given but neither row nor col anchors a dynamic axis")
	}
	return spec, nil
}

// resolveCropAxis resolves one axis. extent is the axis's own dimension
// (for fixed bound checks); lineExtent is the opposite dimension the
// anchoring line index must fall in.
func resolveCropAxis(axis string, lo, hi, anchor *int, penalty *float64, extent, lineExtent int) (thermal.AxisSpec, error) {
	switch {
	case lo != nil && hi != nil:
		if *lo < 0 || *lo >= *hi || *hi > extent {
			return thermal.AxisSpec{}, fmt.Errorf("crop %s bounds [%d, %d) invalid for dimension %d", axis, *lo, *hi, extent)
		}
		return thermal.AxisSpec{Fixed: &thermal.FixedBounds{Lo: *lo, Hi: *hi}}, nil
	case lo != nil || hi != nil:
		return thermal.AxisSpec{}, fmt.Errorf("crop %s1 and %s2 must be given together", axis, axis)
	case anchor != nil:
		if penalty == nil {
			return thermal.AxisSpec{}, fmt.Errorf("crop %s axis anchor requires a penalty", axis)
		}
		if *anchor < 0 || *anchor >= lineExtent {
			return thermal.AxisSpec{}, fmt.Errorf("crop %s axis anchor line %d out of range [0, %d)", axis, *anchor, lineExtent)
		}
		if *penalty < 0 {
			return thermal.AxisSpec{}, fmt.Errorf("crop penalty must be non-negative, got %v", *penalty)
		}
		return thermal.AxisSpec{Scan: &thermal.GradientScan{Line: *anchor, Penalty: *penalty}}, nil
	default:
		// Axis left at full extent.
		return thermal.AxisSpec{}, nil
	}
}

func resolveAlerts(entries []AlertEntry) []thermal.AlertSpec {
	if len(entries) == 0 {
		return nil
	}
	specs := make([]thermal.AlertSpec, 0, len(entries))
	for i, e := range entries {
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("alert-%d", i)
		}
		specs = append(specs, thermal.AlertSpec{
			Name: name,
			Min:  e.Min.Bound(),
			Avg:  e.Avg.Bound(),
			Max:  e.Max.Bound(),
		})
	}
	return specs
}
