// Package monitor exposes the read-only HTTP surface of the daemon:
// resolved sensor configs, latest frame snapshots, recent alert events,
// saved alert images and a debugging heatmap page.
package monitor

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/thermal.report/internal/config"
	"github.com/banshee-data/thermal.report/internal/db"
	"github.com/banshee-data/thermal.report/internal/httputil"
	"github.com/banshee-data/thermal.report/internal/sampler"
	"github.com/banshee-data/thermal.report/internal/security"
	"github.com/banshee-data/thermal.report/internal/thermal"
	"github.com/banshee-data/thermal.report/internal/units"
	"github.com/banshee-data/thermal.report/internal/version"
)

// WebServer serves the monitor endpoints. All state it reads is owned
// elsewhere (sampler snapshots, alert store, resolved config).
type WebServer struct {
	cfg       *config.Config
	sampler   *sampler.Sampler
	store     *db.DB
	imagesDir string
}

// NewWebServer wires the monitor to its data sources. store may be nil
// when the daemon runs without persistence; imagesDir may be empty when
// alert images are not saved.
func NewWebServer(cfg *config.Config, s *sampler.Sampler, store *db.DB, imagesDir string) *WebServer {
	return &WebServer{cfg: cfg, sampler: s, store: store, imagesDir: imagesDir}
}

// ServeMux returns the monitor's route table.
func (ws *WebServer) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", ws.handleHome)
	mux.HandleFunc("/api/sensors", ws.handleSensors)
	mux.HandleFunc("/api/frames/latest", ws.handleLatestFrames)
	mux.HandleFunc("/api/alerts", ws.handleAlerts)
	mux.HandleFunc("/images/", ws.handleImage)
	mux.HandleFunc("/debug/heatmap", ws.handleHeatmap)
	return mux
}

func (ws *WebServer) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprintf(w, "thermal.report monitor %s (%s)\n", version.Version, version.GitSHA)
}

type sensorView struct {
	Addr     string  `json:"addr"`
	Attempts int     `json:"attempts"`
	Offset   float64 `json:"offset"`
	MinTemp  float64 `json:"min_temp"`
	MaxTemp  float64 `json:"max_temp"`
	Cols     int     `json:"cols"`
	Rows     int     `json:"rows"`
	Alerts   int     `json:"alerts"`
	Interval string  `json:"sample_interval"`
}

func (ws *WebServer) handleSensors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	views := make([]sensorView, 0, len(ws.cfg.Sensors))
	for _, s := range ws.cfg.Sensors {
		views = append(views, sensorView{
			Addr:     s.Name(),
			Attempts: s.Attempts,
			Offset:   s.Offset,
			MinTemp:  s.MinTemp,
			MaxTemp:  s.MaxTemp,
			Cols:     s.Cols,
			Rows:     s.Rows,
			Alerts:   len(s.Alerts),
			Interval: s.SampleInterval.String(),
		})
	}
	httputil.WriteJSONOK(w, views)
}

type frameView struct {
	Addr   string                `json:"addr"`
	At     time.Time             `json:"at"`
	Min    float64               `json:"min"`
	Avg    float64               `json:"avg"`
	Max    float64               `json:"max"`
	MaxF   float64               `json:"max_fahrenheit"`
	Crop   thermal.Region        `json:"crop"`
	Alerts []thermal.AlertResult `json:"alerts,omitempty"`
	Values []float64             `json:"values"`
	Cols   int                   `json:"cols"`
	Rows   int                   `json:"rows"`
}

func (ws *WebServer) handleLatestFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	snaps := ws.sampler.Snapshots()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Sensor.Addr < snaps[j].Sensor.Addr })

	views := make([]frameView, 0, len(snaps))
	for _, snap := range snaps {
		views = append(views, frameView{
			Addr:   snap.Sensor.Name(),
			At:     snap.At,
			Min:    snap.Frame.Min(),
			Avg:    snap.Frame.Avg(),
			Max:    snap.Frame.Max(),
			MaxF:   units.CelsiusToFahrenheit(snap.Frame.Max()),
			Crop:   snap.Crop,
			Alerts: snap.Alerts,
			Values: snap.Frame.Values(),
			Cols:   snap.Frame.Cols(),
			Rows:   snap.Frame.Rows(),
		})
	}
	httputil.WriteJSONOK(w, views)
}

func (ws *WebServer) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.store == nil {
		httputil.NotFound(w, "persistence is disabled")
		return
	}

	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	events, err := ws.store.RecentAlertEvents(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load events: %v", err))
		return
	}
	if events == nil {
		events = []db.AlertEvent{}
	}
	httputil.WriteJSONOK(w, events)
}

// handleImage serves saved alert snapshots from the images directory.
// Paths are validated so a crafted URL cannot escape it.
func (ws *WebServer) handleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if ws.imagesDir == "" {
		httputil.NotFound(w, "image storage is disabled")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/images/")
	if name == "" {
		httputil.BadRequest(w, "missing image name")
		return
	}

	path := filepath.Join(ws.imagesDir, filepath.FromSlash(name))
	if err := security.ValidatePathWithinDirectory(path, ws.imagesDir); err != nil {
		httputil.BadRequest(w, "invalid image path")
		return
	}
	http.ServeFile(w, r, path)
}
