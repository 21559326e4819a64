package thermal

import "context"

// Fetcher is the single capture primitive owned by the driver. A fetch
// either returns one raw frame or an error; errors are recoverable and
// simply consume one attempt.
type Fetcher interface {
	Fetch(ctx context.Context) (Frame, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) (Frame, error)

// Fetch calls fn.
func (fn FetcherFunc) Fetch(ctx context.Context) (Frame, error) { return fn(ctx) }

// Capture calls the fetcher up to attempts times and returns the first
// frame obtained. Exhausting every attempt is an expected soft miss,
// reported as ok=false rather than an error: the sampling loop carries
// on with the next cycle. Cancellation is honoured between attempts,
// never mid-fetch; the fetch itself is opaque here.
func Capture(ctx context.Context, fetcher Fetcher, attempts int) (Frame, bool) {
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return Frame{}, false
		}
		frame, err := fetcher.Fetch(ctx)
		if err != nil {
			continue
		}
		return frame, true
	}
	return Frame{}, false
}
