// Package render draws frames as heatmap images for the persistence
// sink: when an alert fires, the offending frame is saved as a PNG
// next to its database event.
package render

import (
	"fmt"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/thermal.report/internal/fsutil"
	"github.com/banshee-data/thermal.report/internal/security"
	"github.com/banshee-data/thermal.report/internal/thermal"
)

// frameGrid adapts a thermal frame to the plotter's grid interface.
// Row 0 of the frame is drawn at the top, matching the sensor's
// orientation.
type frameGrid struct {
	frame thermal.Frame
}

func (g frameGrid) Dims() (int, int)   { return g.frame.Cols(), g.frame.Rows() }
func (g frameGrid) X(c int) float64    { return float64(c) }
func (g frameGrid) Y(r int) float64    { return float64(r) }
func (g frameGrid) Z(c, r int) float64 { return g.frame.At(g.frame.Rows()-1-r, c) }

// Heatmap renders the frame into a plot titled with the sensor name
// and the frame's summary statistics.
func Heatmap(f thermal.Frame, sensor string) (*plot.Plot, error) {
	if f.IsZero() {
		return nil, fmt.Errorf("cannot render an empty frame")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s  min %.1f  avg %.1f  max %.1f", sensor, f.Min(), f.Avg(), f.Max())
	p.X.Label.Text = "col"
	p.Y.Label.Text = "row"

	colors := moreland.SmoothBlueRed().Palette(255)
	hm := plotter.NewHeatMap(frameGrid{frame: f}, colors)
	p.Add(hm)

	return p, nil
}

// Saver writes heatmap PNGs into a directory. The filesystem is
// injectable so tests can render without touching disk.
type Saver struct {
	FS  fsutil.FileSystem
	Dir string
}

// NewSaver returns a Saver backed by the real filesystem.
func NewSaver(dir string) *Saver {
	return &Saver{FS: fsutil.OSFileSystem{}, Dir: dir}
}

// SavePNG renders the frame to <dir>/<sensor>_<timestamp>.png, creating
// the directory if needed, and returns the written path.
func (s *Saver) SavePNG(f thermal.Frame, sensor string, at time.Time) (string, error) {
	p, err := Heatmap(f, sensor)
	if err != nil {
		return "", err
	}

	if err := s.FS.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.png", security.SanitizeFilename(sensor), at.UTC().Format("20060102T150405.000"))
	path := filepath.Join(s.Dir, name)

	wt, err := p.WriterTo(16*vg.Centimeter, 12*vg.Centimeter, "png")
	if err != nil {
		return "", fmt.Errorf("failed to render heatmap: %w", err)
	}
	out, err := s.FS.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(out); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
