// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code
// duplication across test files.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banshee-data/thermal.report/internal/thermal"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// UniformFrame builds a cols x rows frame with every pixel set to v.
func UniformFrame(t *testing.T, cols, rows int, v float64) thermal.Frame {
	t.Helper()
	values := make([]float64, cols*rows)
	for i := range values {
		values[i] = v
	}
	f, err := thermal.NewFrame(values, cols, rows)
	if err != nil {
		t.Fatalf("failed to build fixture frame: %v", err)
	}
	return f
}

// RampFrame builds a cols x rows frame whose values increase by step
// per pixel in row-major order, starting at base.
func RampFrame(t *testing.T, cols, rows int, base, step float64) thermal.Frame {
	t.Helper()
	values := make([]float64, cols*rows)
	for i := range values {
		values[i] = base + float64(i)*step
	}
	f, err := thermal.NewFrame(values, cols, rows)
	if err != nil {
		t.Fatalf("failed to build fixture frame: %v", err)
	}
	return f
}
