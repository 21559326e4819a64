package config

import (
	"encoding/json"
	"fmt"

	"github.com/banshee-data/thermal.report/internal/thermal"
)

// BoundSpec is one alert bound as written in the config: either a bare
// number (scalar upper limit) or a two-element [low, high] array.
type BoundSpec struct {
	bound thermal.Bound
}

// UnmarshalJSON accepts `5.0` or `[low, high]`.
func (b *BoundSpec) UnmarshalJSON(data []byte) error {
	var scalar float64
	if err := json.Unmarshal(data, &scalar); err == nil {
		b.bound = *thermal.Scalar(scalar)
		return nil
	}
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("bound must be a number or a [low, high] pair, got %s", data)
	}
	if len(pair) != 2 {
		return fmt.Errorf("bound pair must have exactly 2 elements, got %d", len(pair))
	}
	if pair[0] > pair[1] {
		return fmt.Errorf("bound pair [%v, %v] is not ordered", pair[0], pair[1])
	}
	b.bound = *thermal.Window(pair[0], pair[1])
	return nil
}

// MarshalJSON writes the form the bound was declared in.
func (b BoundSpec) MarshalJSON() ([]byte, error) {
	if b.bound.IsRange {
		return json.Marshal([2]float64{b.bound.Low, b.bound.High})
	}
	return json.Marshal(b.bound.High)
}

// Bound returns the evaluator's view of the bound.
func (b *BoundSpec) Bound() *thermal.Bound {
	if b == nil {
		return nil
	}
	bb := b.bound
	return &bb
}
