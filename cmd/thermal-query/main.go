// thermal-query lists the host's serial ports and probes each for a
// responding sensor, to help fill in the "port" fields of a config.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/banshee-data/thermal.report/internal/config"
	"github.com/banshee-data/thermal.report/internal/mlx90640"
	"github.com/banshee-data/thermal.report/internal/thermal"
)

var (
	addrFlag = flag.String("addr", "", "Probe for this sensor address (decimal or 0x hex); empty lists ports only")
	cols     = flag.Int("cols", thermal.DefaultCols, "Sensor grid columns")
	rows     = flag.Int("rows", thermal.DefaultRows, "Sensor grid rows")
)

func main() {
	flag.Parse()

	ports, err := mlx90640.ListPorts()
	if err != nil {
		log.Fatalf("Failed to list serial ports: %v", err)
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return
	}
	for _, p := range ports {
		fmt.Println(p)
	}

	if *addrFlag == "" {
		return
	}

	addr, err := config.ParseAddress(*addrFlag)
	if err != nil {
		log.Fatalf("Invalid addr: %v", err)
	}

	found, err := mlx90640.Discover(int(addr), *cols, *rows, mlx90640.PortOptions{})
	if err != nil {
		log.Fatalf("Probe failed: %v", err)
	}
	fmt.Printf("sensor %s answers on %s\n", addr, found)
}
