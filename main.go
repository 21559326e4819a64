package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/thermal.report/internal/config"
	"github.com/banshee-data/thermal.report/internal/db"
	"github.com/banshee-data/thermal.report/internal/mlx90640"
	"github.com/banshee-data/thermal.report/internal/monitor"
	"github.com/banshee-data/thermal.report/internal/render"
	"github.com/banshee-data/thermal.report/internal/sampler"
)

var (
	configPath = flag.String("config", "config/config.json", "Sensor configuration file")
	dbFile     = flag.String("db", "thermal_data.db", "SQLite database path (empty disables persistence)")
	imageDir   = flag.String("images", "alerts", "Directory for alert heatmap PNGs")
	listen     = flag.String("listen", ":8080", "Listen address for the monitor server")
	devMode    = flag.Bool("dev", false, "Run against a mock interface board")
)

// openDevices maps every configured sensor to an open device, one per
// serial port. Sensors without a pinned port are probed across the
// host's ports.
func openDevices(cfg *config.Config) (map[int]*mlx90640.Device, func(), error) {
	byPort := map[string]*mlx90640.Device{}
	bySensor := map[int]*mlx90640.Device{}

	closeAll := func() {
		for _, dev := range byPort {
			dev.Close()
		}
	}

	for _, sensor := range cfg.Sensors {
		portName := sensor.Port
		if portName == "" {
			found, err := mlx90640.Discover(sensor.Addr, sensor.Cols, sensor.Rows, mlx90640.PortOptions{})
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			portName = found
		}

		dev, ok := byPort[portName]
		if !ok {
			var err error
			dev, err = mlx90640.Open(portName, mlx90640.PortOptions{})
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			byPort[portName] = dev
			log.Printf("Opened %s on %s", sensor.Name(), portName)
		}
		bySensor[sensor.Addr] = dev
	}
	return bySensor, closeAll, nil
}

// mockDevices serves every configured sensor from one in-memory board,
// so the whole stack runs without hardware.
func mockDevices(cfg *config.Config) map[int]*mlx90640.Device {
	bySensor := map[int]*mlx90640.Device{}
	for _, sensor := range cfg.Sensors {
		port := mlx90640.NewMockPort(sensor.Cols, sensor.Rows)
		port.SetUniform(sensor.Addr, 23.5)
		bySensor[sensor.Addr] = mlx90640.NewDevice(port)
	}
	return bySensor
}

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var devices map[int]*mlx90640.Device
	if *devMode {
		devices = mockDevices(cfg)
		log.Printf("Running in dev mode with %d mock sensors", len(cfg.Sensors))
	} else {
		var closeAll func()
		devices, closeAll, err = openDevices(cfg)
		if err != nil {
			log.Fatalf("Failed to open sensors: %v", err)
		}
		defer closeAll()
	}

	var store *db.DB
	if *dbFile != "" {
		store, err = db.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer store.Close()
	}

	s := sampler.New()
	for _, sensor := range cfg.Sensors {
		dev := devices[sensor.Addr]
		s.Add(sensor, dev.Fetcher(sensor.Addr, sensor.Cols, sensor.Rows))
	}

	// Persistence sink: save a heatmap PNG and record one event per
	// fired alert.
	if store != nil {
		saver := render.NewSaver(*imageDir)
		s.OnAlert(func(snap sampler.Snapshot) {
			path, err := saver.SavePNG(snap.Frame, snap.Sensor.Name(), snap.At)
			if err != nil {
				log.Printf("Failed to render alert heatmap: %v", err)
			}
			for _, alert := range snap.Alerts {
				off := alert.Offender()
				if _, err := store.RecordAlertEvent(db.AlertEvent{
					SensorAddr: snap.Sensor.Addr,
					AlertName:  alert.Name,
					Offender:   string(off.Stat),
					Value:      off.Value,
					FrameMin:   snap.Frame.Min(),
					FrameAvg:   snap.Frame.Avg(),
					FrameMax:   snap.Frame.Max(),
					Crop:       snap.Crop,
					ImagePath:  path,
				}); err != nil {
					log.Printf("Failed to record alert event: %v", err)
				}
			}
		})
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run the per-sensor sampling pipelines.
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Run(ctx)
	}()

	// Run the monitor HTTP server.
	server := &http.Server{
		Addr:    *listen,
		Handler: monitor.NewWebServer(cfg, s, store, *imageDir).ServeMux(),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("Monitor listening on %s", *listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Monitor server error: %v", err)
		}
	}()

	// Shut the HTTP server down when the context is cancelled.
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Monitor shutdown error: %v", err)
		}
	}()

	wg.Wait()
}
