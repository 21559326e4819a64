package thermal

import "math"

// FixedBounds pins one axis of the crop region to explicit coordinates.
// Hi is exclusive.
type FixedBounds struct {
	Lo int
	Hi int
}

// GradientScan resolves one axis of the crop region by walking a single
// grid line and looking for hot edges. Line is the index of the
// anchoring line on the opposite axis: the x span scans along a row,
// the y span scans along a column. Penalty is the adjacent-pixel
// difference a gradient must strictly exceed to count as an edge.
type GradientScan struct {
	Line    int
	Penalty float64
}

// AxisSpec selects the resolution mode for one axis. Exactly one of
// Fixed and Scan may be set; with neither set the axis resolves to its
// full extent.
type AxisSpec struct {
	Fixed *FixedBounds
	Scan  *GradientScan
}

// CropSpec describes how the region of interest is resolved, each axis
// independently. The zero value resolves to the full frame.
type CropSpec struct {
	X AxisSpec
	Y AxisSpec
}

// IsZero reports whether the spec leaves both axes at full extent.
func (s CropSpec) IsZero() bool {
	return s.X.Fixed == nil && s.X.Scan == nil && s.Y.Fixed == nil && s.Y.Scan == nil
}

// ResolveCrop determines the rectangular region of interest for a
// frame. Fixed axes use their coordinates directly, regardless of frame
// content. Dynamic axes scan their anchor line for the contiguous range
// of gradients exceeding the penalty; when no gradient on the line
// exceeds it, that axis falls back to the full extent, signalling "no
// hot region found" rather than failing. The frame is never modified;
// the region is advisory metadata for the caller.
func ResolveCrop(f Frame, spec CropSpec) Region {
	x1, x2 := resolveAxis(spec.X, f.cols, func(line int) []float64 { return f.Row(clampIndex(line, f.rows)) })
	y1, y2 := resolveAxis(spec.Y, f.rows, func(line int) []float64 { return f.Col(clampIndex(line, f.cols)) })
	return Region{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func resolveAxis(spec AxisSpec, extent int, line func(int) []float64) (int, int) {
	switch {
	case spec.Fixed != nil:
		return spec.Fixed.Lo, spec.Fixed.Hi
	case spec.Scan != nil:
		return scanForEdges(line(spec.Scan.Line), spec.Scan.Penalty, extent)
	default:
		return 0, extent
	}
}

// scanForEdges computes the 1-D gradient of successive absolute
// differences along one grid line and brackets the minimal contiguous
// range containing every gradient that strictly exceeds penalty. The
// gradient at index i sits between pixels i and i+1, so the bracketing
// bounds are [lo, hi+2) clamped to the line length: the pixels on the
// cold side of the first and last detected edges are included.
func scanForEdges(seq []float64, penalty float64, extent int) (int, int) {
	lo, hi := -1, -1
	for i := 0; i+1 < len(seq); i++ {
		if math.Abs(seq[i+1]-seq[i]) > penalty {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	if lo < 0 {
		// No hot edge on this line.
		return 0, extent
	}
	return lo, min(hi+2, extent)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
