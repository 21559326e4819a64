// Package config loads and validates the sensor configuration file.
//
// The file carries a "default" block and a list of sensors; any field a
// sensor omits is resolved from the default, field by field, at load
// time. Sampling code only ever sees fully resolved, immutable Sensor
// values.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/thermal.report/internal/thermal"
)

// DefaultSampleInterval is used when the config does not set one.
const DefaultSampleInterval = time.Second

// File mirrors the on-disk JSON structure.
type File struct {
	Default SensorOverlay   `json:"default"`
	Sensors []SensorOverlay `json:"sensors"`
}

// SensorOverlay is the raw, partially specified form of one sensor (or
// of the default block). All fields are optional pointers so that an
// omitted field is distinguishable from a zero one and can fall back to
// the default block.
type SensorOverlay struct {
	Addr             *Address     `json:"addr,omitempty"`
	Port             *string      `json:"port,omitempty"`
	Cols             *int         `json:"cols,omitempty"`
	Rows             *int         `json:"rows,omitempty"`
	Attempts         *int         `json:"attempts,omitempty"`
	Offset           *float64     `json:"offset,omitempty"`
	OutlierThreshold *float64     `json:"outlier_threshold,omitempty"`
	Threshold        []float64    `json:"threshold,omitempty"`
	Crop             *CropOverlay `json:"crop,omitempty"`
	Alerts           []AlertEntry `json:"alerts,omitempty"`
	SampleInterval   *string      `json:"sample_interval,omitempty"`
}

// CropOverlay is the raw crop block: any subset of the four fixed
// coordinates, plus row/col/penalty for dynamically resolved axes.
type CropOverlay struct {
	X1      *int     `json:"x1,omitempty"`
	Y1      *int     `json:"y1,omitempty"`
	X2      *int     `json:"x2,omitempty"`
	Y2      *int     `json:"y2,omitempty"`
	Row     *int     `json:"row,omitempty"`
	Col     *int     `json:"col,omitempty"`
	Penalty *float64 `json:"penalty,omitempty"`
}

// AlertEntry is the raw form of one alert rule.
type AlertEntry struct {
	Name string     `json:"name,omitempty"`
	Min  *BoundSpec `json:"min,omitempty"`
	Avg  *BoundSpec `json:"avg,omitempty"`
	Max  *BoundSpec `json:"max,omitempty"`
}

// Sensor is one fully resolved sensor configuration. It is built once
// at startup and never mutated afterwards.
type Sensor struct {
	Addr             int
	Port             string // optional serial port pin, empty = discover
	Cols             int
	Rows             int
	Attempts         int
	Offset           float64
	OutlierThreshold float64
	MinTemp          float64
	MaxTemp          float64
	Crop             thermal.CropSpec
	Alerts           []thermal.AlertSpec
	SampleInterval   time.Duration
}

// Name returns the sensor's display name, the hexadecimal notation of
// its address.
func (s Sensor) Name() string { return fmt.Sprintf("0x%02x", s.Addr) }

// PipelineConfig converts the sensor into the pipeline's parameter set.
func (s Sensor) PipelineConfig() thermal.PipelineConfig {
	return thermal.PipelineConfig{
		Attempts:         s.Attempts,
		Offset:           s.Offset,
		OutlierThreshold: s.OutlierThreshold,
		MinTemp:          s.MinTemp,
		MaxTemp:          s.MaxTemp,
		Crop:             s.Crop,
		Alerts:           s.Alerts,
	}
}

// Config is the resolved configuration for the whole process.
type Config struct {
	Sensors []Sensor
}

// Load reads, merges and validates the configuration file. A malformed
// top-level structure fails the whole load; a broken individual sensor
// fails with an error naming its position so the process can refuse to
// start it.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a resolved Config from raw JSON.
func Parse(data []byte) (*Config, error) {
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if len(file.Sensors) == 0 {
		return nil, fmt.Errorf("config declares no sensors")
	}

	cfg := &Config{Sensors: make([]Sensor, 0, len(file.Sensors))}
	for i, overlay := range file.Sensors {
		sensor, err := resolveSensor(overlay, file.Default)
		if err != nil {
			return nil, fmt.Errorf("sensor %d: %w", i, err)
		}
		cfg.Sensors = append(cfg.Sensors, sensor)
	}
	return cfg, nil
}

// SensorByAddr returns the resolved config for an address.
func (c *Config) SensorByAddr(addr int) (Sensor, bool) {
	for _, s := range c.Sensors {
		if s.Addr == addr {
			return s, true
		}
	}
	return Sensor{}, false
}
