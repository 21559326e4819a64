// Package thermal implements the per-frame processing pipeline for
// infrared thermal-array sensors: capture retry, outlier repair, range
// validation, crop resolution and threshold alerting.
package thermal

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Default grid dimensions for the MLX90640 sensor family.
const (
	DefaultCols = 32
	DefaultRows = 24
)

// Frame is one full grid of temperature readings from a sensor at one
// sampling instant. Values are stored row-major and are immutable once
// the frame is constructed; every transformation returns a new Frame.
type Frame struct {
	cols   int
	rows   int
	values []float64
}

// NewFrame builds a frame from row-major values. The slice is copied so
// the caller (typically the driver's read buffer) may reuse it.
func NewFrame(values []float64, cols, rows int) (Frame, error) {
	if cols <= 0 || rows <= 0 {
		return Frame{}, fmt.Errorf("invalid frame dimensions %dx%d", cols, rows)
	}
	if len(values) != cols*rows {
		return Frame{}, fmt.Errorf("frame has %d values, expected %dx%d=%d", len(values), cols, rows, cols*rows)
	}
	v := make([]float64, len(values))
	copy(v, values)
	return Frame{cols: cols, rows: rows, values: v}, nil
}

// MustFrame is NewFrame for fixtures and tests; panics on bad dimensions.
func MustFrame(values []float64, cols, rows int) Frame {
	f, err := NewFrame(values, cols, rows)
	if err != nil {
		panic(err)
	}
	return f
}

// Cols returns the number of columns in the grid.
func (f Frame) Cols() int { return f.cols }

// Rows returns the number of rows in the grid.
func (f Frame) Rows() int { return f.rows }

// Len returns the total number of pixels.
func (f Frame) Len() int { return len(f.values) }

// IsZero reports whether the frame holds no data.
func (f Frame) IsZero() bool { return len(f.values) == 0 }

// At returns the value at the given row and column.
func (f Frame) At(row, col int) float64 {
	return f.values[f.index(row, col)]
}

func (f Frame) index(row, col int) int {
	if row < 0 || row >= f.rows {
		panic(fmt.Sprintf("row index %d out of range [0,%d)", row, f.rows))
	}
	if col < 0 || col >= f.cols {
		panic(fmt.Sprintf("col index %d out of range [0,%d)", col, f.cols))
	}
	return row*f.cols + col
}

// Values returns a copy of the row-major pixel values.
func (f Frame) Values() []float64 {
	v := make([]float64, len(f.values))
	copy(v, f.values)
	return v
}

// Row returns a copy of one horizontal line of the grid.
func (f Frame) Row(row int) []float64 {
	out := make([]float64, f.cols)
	copy(out, f.values[f.index(row, 0):f.index(row, 0)+f.cols])
	return out
}

// Col returns a copy of one vertical line of the grid.
func (f Frame) Col(col int) []float64 {
	out := make([]float64, f.rows)
	for r := 0; r < f.rows; r++ {
		out[r] = f.values[f.index(r, col)]
	}
	return out
}

// Min returns the minimum pixel value.
func (f Frame) Min() float64 { return floats.Min(f.values) }

// Max returns the maximum pixel value.
func (f Frame) Max() float64 { return floats.Max(f.values) }

// Avg returns the mean pixel value.
func (f Frame) Avg() float64 { return stat.Mean(f.values, nil) }

// Med returns the median pixel value. For even pixel counts the two
// middle values are averaged.
func (f Frame) Med() float64 {
	s := make([]float64, len(f.values))
	copy(s, f.values)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 0 {
		return (s[n/2] + s[(n-1)/2]) / 2
	}
	return s[n/2]
}

// AddOffset returns a new frame with delta added to every pixel. Sensor
// offset correction is applied through this method by the pipeline; the
// frame itself never applies configuration.
func (f Frame) AddOffset(delta float64) Frame {
	if delta == 0 {
		return f
	}
	v := make([]float64, len(f.values))
	for i, x := range f.values {
		v[i] = x + delta
	}
	return Frame{cols: f.cols, rows: f.rows, values: v}
}

// Region is a sub-rectangle of a frame. X addresses columns, Y rows;
// X2/Y2 are exclusive. A region is advisory metadata: resolving one
// never modifies the frame it was resolved against.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// FullRegion returns the region covering the whole frame.
func (f Frame) FullRegion() Region {
	return Region{X1: 0, Y1: 0, X2: f.cols, Y2: f.rows}
}

// IsFull reports whether r covers the entire given dimensions.
func (r Region) IsFull(cols, rows int) bool {
	return r.X1 == 0 && r.Y1 == 0 && r.X2 == cols && r.Y2 == rows
}

// Width returns the number of columns covered by the region.
func (r Region) Width() int { return r.X2 - r.X1 }

// Height returns the number of rows covered by the region.
func (r Region) Height() int { return r.Y2 - r.Y1 }

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
}

// Crop returns a new frame restricted to the region. Coordinates are
// clamped to the frame bounds, matching the tolerant behaviour of the
// capture hardware tooling this replaces.
func (f Frame) Crop(r Region) Frame {
	x1 := max(0, r.X1)
	y1 := max(0, r.Y1)
	x2 := min(f.cols, r.X2)
	y2 := min(f.rows, r.Y2)
	if x1 >= x2 || y1 >= y2 {
		return Frame{}
	}
	v := make([]float64, 0, (x2-x1)*(y2-y1))
	for row := y1; row < y2; row++ {
		v = append(v, f.values[row*f.cols+x1:row*f.cols+x2]...)
	}
	return Frame{cols: x2 - x1, rows: y2 - y1, values: v}
}
