package mlx90640

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/banshee-data/thermal.report/internal/thermal"

	"go.bug.st/serial"
)

// Wire framing between host and interface board. A frame request is
// two bytes (magic + I2C address); the response echoes a magic and the
// address, carries the grid dimensions, then rows*cols big-endian
// int16 values in centi-degrees Celsius.
const (
	reqMagic  = 0xA5
	respMagic = 0x5A
)

const respHeaderLen = 4 // magic, addr, rows, cols

// Device is one open serial link to an interface board. Multiple
// sensors may sit behind one board on the I2C bus; concurrent fetches
// are serialised on the link, so per-sensor pipelines never interleave
// wire traffic.
type Device struct {
	mu       sync.Mutex
	port     Porter
	portName string
}

// Open connects to the interface board on the named serial port.
func Open(portName string, opts PortOptions) (*Device, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	norm, _ := opts.Normalize()
	if err := port.SetReadTimeout(norm.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}

	return &Device{port: port, portName: portName}, nil
}

// NewDevice wraps an already-open port. Used by tests and the dev-mode
// mock transport.
func NewDevice(port Porter) *Device {
	return &Device{port: port, portName: "mock"}
}

// PortName returns the serial port this device is attached to.
func (d *Device) PortName() string { return d.portName }

// Close releases the serial link.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.port.Close()
}

// Fetch requests one frame from the sensor at addr and decodes it into
// a cols x rows grid. Any framing or transport problem is returned as
// an error; the capture layer treats each as one consumed attempt.
func (d *Device) Fetch(addr, cols, rows int) (thermal.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.port.Write([]byte{reqMagic, byte(addr)}); err != nil {
		return thermal.Frame{}, fmt.Errorf("frame request to 0x%02x failed: %w", addr, err)
	}

	header := make([]byte, respHeaderLen)
	if _, err := io.ReadFull(d.port, header); err != nil {
		return thermal.Frame{}, fmt.Errorf("short frame header from 0x%02x: %w", addr, err)
	}
	if header[0] != respMagic {
		return thermal.Frame{}, fmt.Errorf("bad frame magic 0x%02x from 0x%02x", header[0], addr)
	}
	if int(header[1]) != addr {
		return thermal.Frame{}, fmt.Errorf("frame for 0x%02x answered request for 0x%02x", header[1], addr)
	}
	if int(header[2]) != rows || int(header[3]) != cols {
		return thermal.Frame{}, fmt.Errorf("sensor 0x%02x reports %dx%d grid, expected %dx%d",
			addr, int(header[3]), int(header[2]), cols, rows)
	}

	payload := make([]byte, cols*rows*2)
	if _, err := io.ReadFull(d.port, payload); err != nil {
		return thermal.Frame{}, fmt.Errorf("short frame payload from 0x%02x: %w", addr, err)
	}

	values := make([]float64, cols*rows)
	for i := range values {
		centi := int16(binary.BigEndian.Uint16(payload[i*2:]))
		values[i] = float64(centi) / 100
	}
	return thermal.NewFrame(values, cols, rows)
}

// Fetcher adapts one sensor on this device to the pipeline's capture
// primitive.
func (d *Device) Fetcher(addr, cols, rows int) thermal.Fetcher {
	return thermal.FetcherFunc(func(ctx context.Context) (thermal.Frame, error) {
		if err := ctx.Err(); err != nil {
			return thermal.Frame{}, err
		}
		return d.Fetch(addr, cols, rows)
	})
}

// Discover probes the host's serial ports for a board with a sensor
// responding at addr, returning the first port that answers.
func Discover(addr, cols, rows int, opts PortOptions) (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	for _, name := range ports {
		dev, err := Open(name, opts)
		if err != nil {
			continue
		}
		_, fetchErr := dev.Fetch(addr, cols, rows)
		dev.Close()
		if fetchErr == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no serial port answered for sensor 0x%02x", addr)
}
