package thermal

import (
	"errors"
	"fmt"
)

// ErrInvalidFrame marks a frame with readings outside the physically
// plausible range. It is an expected outcome: callers drop the frame
// and wait for the next sampling cycle.
var ErrInvalidFrame = errors.New("frame outside valid temperature range")

// ValidateRange checks that every pixel lies within the inclusive
// [minTemp, maxTemp] range. On success the frame passes through
// unchanged; on failure the returned error wraps ErrInvalidFrame and
// names the first offending pixel.
func ValidateRange(f Frame, minTemp, maxTemp float64) error {
	for i, x := range f.values {
		if x < minTemp || x > maxTemp {
			return fmt.Errorf("%w: pixel %d (row %d, col %d) = %.2f, want [%.2f, %.2f]",
				ErrInvalidFrame, i, i/f.cols, i%f.cols, x, minTemp, maxTemp)
		}
	}
	return nil
}
