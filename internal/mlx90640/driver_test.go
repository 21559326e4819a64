package mlx90640

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevice_FetchDecodesFrame(t *testing.T) {
	t.Parallel()

	port := NewMockPort(4, 3)
	port.SetFrame(0x33, []float64{21.5, 22.25, -1.75})
	dev := NewDevice(port)

	frame, err := dev.Fetch(0x33, 4, 3)
	require.NoError(t, err)

	assert.Equal(t, 4, frame.Cols())
	assert.Equal(t, 3, frame.Rows())
	assert.InDelta(t, 21.5, frame.At(0, 0), 1e-9)
	assert.InDelta(t, 22.25, frame.At(0, 1), 1e-9)
	assert.InDelta(t, -1.75, frame.At(0, 2), 1e-9)
}

func TestDevice_FetchUnknownAddress(t *testing.T) {
	t.Parallel()

	port := NewMockPort(4, 3)
	port.SetUniform(0x33, 20)
	dev := NewDevice(port)

	_, err := dev.Fetch(0x34, 4, 3)
	assert.Error(t, err, "an unpopulated address must not answer")
}

func TestDevice_FetchDimensionMismatch(t *testing.T) {
	t.Parallel()

	port := NewMockPort(4, 3)
	port.SetUniform(0x33, 20)
	dev := NewDevice(port)

	_, err := dev.Fetch(0x33, 32, 24)
	assert.ErrorContains(t, err, "grid")
}

func TestDevice_FetcherRetriesThroughCapturePath(t *testing.T) {
	t.Parallel()

	port := NewMockPort(2, 2)
	port.SetUniform(0x33, 25)
	port.FailNext = 2
	dev := NewDevice(port)

	fetcher := dev.Fetcher(0x33, 2, 2)

	// First two fetches fail at the transport, third succeeds.
	_, err := fetcher.Fetch(context.Background())
	assert.Error(t, err)
	_, err = fetcher.Fetch(context.Background())
	assert.Error(t, err)
	frame, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25.0, frame.At(1, 1))
}

func TestDevice_FetcherHonoursContext(t *testing.T) {
	t.Parallel()

	port := NewMockPort(2, 2)
	port.SetUniform(0x33, 25)
	dev := NewDevice(port)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dev.Fetcher(0x33, 2, 2).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPortOptions_Normalize(t *testing.T) {
	t.Parallel()

	opts, err := PortOptions{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, 921600, opts.BaudRate)
	assert.Equal(t, 8, opts.DataBits)
	assert.Equal(t, 1, opts.StopBits)
	assert.Equal(t, "N", opts.Parity)

	_, err = PortOptions{DataBits: 3}.Normalize()
	assert.Error(t, err)

	_, err = PortOptions{StopBits: 5}.Normalize()
	assert.Error(t, err)

	_, err = PortOptions{Parity: "maybe"}.Normalize()
	assert.Error(t, err)

	opts, err = PortOptions{Parity: "even"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "E", opts.Parity)
}

func TestPortOptions_SerialMode(t *testing.T) {
	t.Parallel()

	mode, err := PortOptions{BaudRate: 115200, Parity: "O", StopBits: 2}.SerialMode()
	require.NoError(t, err)
	assert.Equal(t, 115200, mode.BaudRate)
}
