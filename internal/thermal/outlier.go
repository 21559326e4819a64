package thermal

import "math"

// ReplaceOutliers repairs dead pixels: any pixel whose absolute
// deviation from the frame mean strictly exceeds threshold is replaced
// with that mean. The mean is computed once over the original values,
// so replacements never feed back into later comparisons. A threshold
// of zero replaces nothing except pixels with non-zero deviation, which
// in practice means every pixel not exactly at the mean; negative
// thresholds are clamped to zero.
//
// The input frame is left untouched; a corrected frame of identical
// dimensions is returned.
func ReplaceOutliers(f Frame, threshold float64) Frame {
	if f.IsZero() {
		return f
	}
	if threshold < 0 {
		threshold = 0
	}
	mean := f.Avg()
	v := make([]float64, len(f.values))
	for i, x := range f.values {
		if math.Abs(x-mean) > threshold {
			v[i] = mean
		} else {
			v[i] = x
		}
	}
	return Frame{cols: f.cols, rows: f.rows, values: v}
}
