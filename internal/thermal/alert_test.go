package thermal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAlerts_ScalarMax(t *testing.T) {
	t.Parallel()

	f := uniformFrame(4, 4, 10)

	t.Run("fires when max exceeds bound", func(t *testing.T) {
		results := EvaluateAlerts(f, []AlertSpec{{Name: "hot", Max: Scalar(5)}})
		require.Len(t, results, 1)
		assert.Equal(t, "hot", results[0].Name)
		require.Len(t, results[0].Violations, 1)
		assert.Equal(t, StatMax, results[0].Violations[0].Stat)
		assert.Equal(t, 10.0, results[0].Violations[0].Value)
	})

	t.Run("holds when bound not exceeded", func(t *testing.T) {
		assert.Empty(t, EvaluateAlerts(f, []AlertSpec{{Name: "hot", Max: Scalar(15)}}))
	})

	t.Run("holds at the exact bound", func(t *testing.T) {
		assert.Empty(t, EvaluateAlerts(f, []AlertSpec{{Name: "hot", Max: Scalar(10)}}))
	})
}

func TestEvaluateAlerts_WindowBounds(t *testing.T) {
	t.Parallel()

	f := MustFrame([]float64{5, 10, 15, 20}, 2, 2) // min 5, avg 12.5, max 20

	t.Run("avg inside window holds", func(t *testing.T) {
		assert.Empty(t, EvaluateAlerts(f, []AlertSpec{{Name: "band", Avg: Window(10, 15)}}))
	})

	t.Run("avg outside window fires", func(t *testing.T) {
		results := EvaluateAlerts(f, []AlertSpec{{Name: "band", Avg: Window(0, 10)}})
		require.Len(t, results, 1)
		assert.Equal(t, StatAvg, results[0].Offender().Stat)
		assert.InDelta(t, 12.5, results[0].Offender().Value, 1e-9)
	})

	t.Run("min below window fires", func(t *testing.T) {
		results := EvaluateAlerts(f, []AlertSpec{{Name: "cold", Min: Window(8, 30)}})
		require.Len(t, results, 1)
		assert.Equal(t, StatMin, results[0].Offender().Stat)
		assert.Equal(t, 5.0, results[0].Offender().Value)
	})
}

func TestEvaluateAlerts_MultipleSpecsInOrder(t *testing.T) {
	t.Parallel()

	f := uniformFrame(4, 4, 50)
	specs := []AlertSpec{
		{Name: "first", Max: Scalar(40)},
		{Name: "quiet", Max: Scalar(60)},
		{Name: "second", Avg: Scalar(45), Max: Scalar(45)},
	}

	results := EvaluateAlerts(f, specs)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Name)
	assert.Equal(t, "second", results[1].Name)
	assert.Len(t, results[1].Violations, 2, "both declared bounds fired")
}

func TestEvaluateAlerts_NoBoundsNeverFires(t *testing.T) {
	t.Parallel()

	f := uniformFrame(4, 4, 500)
	assert.Empty(t, EvaluateAlerts(f, []AlertSpec{{Name: "empty"}}))
}

func TestEvaluateAlerts_ZeroFrame(t *testing.T) {
	t.Parallel()

	assert.Empty(t, EvaluateAlerts(Frame{}, []AlertSpec{{Name: "hot", Max: Scalar(0)}}))
}
