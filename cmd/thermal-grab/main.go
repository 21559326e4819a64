// thermal-grab captures a single frame from one sensor and writes it
// out as a heatmap PNG, printing the frame statistics to stdout.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/banshee-data/thermal.report/internal/config"
	"github.com/banshee-data/thermal.report/internal/mlx90640"
	"github.com/banshee-data/thermal.report/internal/render"
	"github.com/banshee-data/thermal.report/internal/thermal"
	"github.com/banshee-data/thermal.report/internal/units"
)

var (
	port     = flag.String("port", "", "Serial port of the interface board (empty probes all ports)")
	addrFlag = flag.String("addr", "0x33", "Sensor I2C address (decimal or 0x hex)")
	cols     = flag.Int("cols", thermal.DefaultCols, "Sensor grid columns")
	rows     = flag.Int("rows", thermal.DefaultRows, "Sensor grid rows")
	attempts = flag.Int("attempts", 10, "Capture attempts before giving up")
	outDir   = flag.String("out", ".", "Directory for the output PNG")
	unit     = flag.String("unit", units.Celsius, "Display unit: celsius, fahrenheit or kelvin")
)

func main() {
	flag.Parse()

	if !units.IsValid(*unit) {
		log.Fatalf("Invalid unit %q", *unit)
	}

	addr, err := config.ParseAddress(*addrFlag)
	if err != nil {
		log.Fatalf("Invalid addr: %v", err)
	}

	portName := *port
	if portName == "" {
		portName, err = mlx90640.Discover(int(addr), *cols, *rows, mlx90640.PortOptions{})
		if err != nil {
			log.Fatalf("Discovery failed: %v", err)
		}
		log.Printf("Found %s on %s", addr, portName)
	}

	dev, err := mlx90640.Open(portName, mlx90640.PortOptions{})
	if err != nil {
		log.Fatalf("Failed to open %s: %v", portName, err)
	}
	defer dev.Close()

	var frame thermal.Frame
	captured := false
	for i := 0; i < *attempts; i++ {
		frame, err = dev.Fetch(int(addr), *cols, *rows)
		if err == nil {
			captured = true
			break
		}
	}
	if !captured {
		log.Fatalf("No frame after %d attempts, last error: %v", *attempts, err)
	}

	fmt.Printf("sensor %s: min %s  avg %s  max %s\n",
		addr,
		units.Format(frame.Min(), *unit),
		units.Format(frame.Avg(), *unit),
		units.Format(frame.Max(), *unit))

	path, err := render.NewSaver(*outDir).SavePNG(frame, addr.String(), time.Now())
	if err != nil {
		log.Fatalf("Failed to save heatmap: %v", err)
	}
	fmt.Println(path)
}
