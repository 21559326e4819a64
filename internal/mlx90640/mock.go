package mlx90640

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
)

// MockPort implements Porter for tests and dev mode. It answers frame
// requests from a canned set of per-address frames, with optional
// error injection.
type MockPort struct {
	mu sync.Mutex

	frames   map[int][]float64 // values served per address
	cols     int
	rows     int
	pending  []byte // response bytes queued for reading
	FailNext int    // number of requests to fail before answering
	Closed   bool

	WriteError error
	ReadError  error
}

// NewMockPort builds a mock board serving cols x rows frames.
func NewMockPort(cols, rows int) *MockPort {
	return &MockPort{
		frames: map[int][]float64{},
		cols:   cols,
		rows:   rows,
	}
}

// SetFrame installs the values the mock serves for an address. A short
// slice is padded by repeating its last value, so tests can write
// `SetFrame(addr, 25)` style fixtures via SetUniform instead.
func (m *MockPort) SetFrame(addr int, values []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]float64, m.cols*m.rows)
	for i := range v {
		if i < len(values) {
			v[i] = values[i]
		} else if len(values) > 0 {
			v[i] = values[len(values)-1]
		}
	}
	m.frames[addr] = v
}

// SetUniform installs a flat frame for an address.
func (m *MockPort) SetUniform(addr int, value float64) {
	m.SetFrame(addr, []float64{value})
}

func (m *MockPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteError != nil {
		return 0, m.WriteError
	}
	if len(p) != 2 || p[0] != reqMagic {
		return len(p), nil // not a frame request; swallow
	}
	if m.FailNext > 0 {
		m.FailNext--
		m.pending = nil // request goes unanswered
		return len(p), nil
	}

	addr := int(p[1])
	values, ok := m.frames[addr]
	if !ok {
		m.pending = nil
		return len(p), nil
	}

	resp := make([]byte, respHeaderLen+len(values)*2)
	resp[0] = respMagic
	resp[1] = byte(addr)
	resp[2] = byte(m.rows)
	resp[3] = byte(m.cols)
	for i, v := range values {
		binary.BigEndian.PutUint16(resp[respHeaderLen+i*2:], uint16(int16(math.Round(v*100))))
	}
	m.pending = resp
	return len(p), nil
}

func (m *MockPort) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReadError != nil {
		return 0, m.ReadError
	}
	if len(m.pending) == 0 {
		return 0, io.EOF
	}
	n := copy(p, m.pending)
	m.pending = m.pending[n:]
	return n, nil
}

func (m *MockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
