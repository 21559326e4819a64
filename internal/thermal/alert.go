package thermal

import "fmt"

// Statistic names a frame statistic checked by an alert bound.
type Statistic string

const (
	StatMin Statistic = "min"
	StatAvg Statistic = "avg"
	StatMax Statistic = "max"
)

// Bound is one alert bound: either a scalar upper limit ("alert when
// the statistic exceeds X") or a [Low, High] window the statistic must
// stay inside.
type Bound struct {
	Low     float64
	High    float64
	IsRange bool
}

// Scalar returns an upper-limit bound.
func Scalar(v float64) *Bound { return &Bound{High: v} }

// Window returns a [low, high] window bound.
func Window(low, high float64) *Bound { return &Bound{Low: low, High: high, IsRange: true} }

// Exceeded reports whether the statistic value violates the bound.
func (b Bound) Exceeded(v float64) bool {
	if b.IsRange {
		return v < b.Low || v > b.High
	}
	return v > b.High
}

func (b Bound) String() string {
	if b.IsRange {
		return fmt.Sprintf("[%.2f, %.2f]", b.Low, b.High)
	}
	return fmt.Sprintf("> %.2f", b.High)
}

// AlertSpec is a named rule comparing frame statistics against bounds.
// A nil bound means that statistic is not checked; a spec with no
// bounds never fires.
type AlertSpec struct {
	Name string
	Min  *Bound
	Avg  *Bound
	Max  *Bound
}

// Violation records one fired bound within an alert.
type Violation struct {
	Stat  Statistic `json:"stat"`
	Value float64   `json:"value"`
	Bound Bound     `json:"-"`
}

// AlertResult reports an alert that fired, with every bound that
// triggered it and the offending statistic values.
type AlertResult struct {
	Name       string      `json:"name"`
	Violations []Violation `json:"violations"`
}

// Offender returns the first fired statistic, for log lines.
func (r AlertResult) Offender() Violation {
	if len(r.Violations) == 0 {
		return Violation{}
	}
	return r.Violations[0]
}

// EvaluateAlerts checks every spec, in order, against the frame — the
// caller passes the cropped frame when a crop region is in effect. Only
// statistics with declared bounds are computed. One AlertResult is
// returned per spec that fired; specs that hold produce nothing.
func EvaluateAlerts(f Frame, specs []AlertSpec) []AlertResult {
	if f.IsZero() || len(specs) == 0 {
		return nil
	}

	// Statistics are shared across specs; compute each at most once.
	var (
		minV, avgV, maxV       float64
		hasMin, hasAvg, hasMax bool
	)
	stat := func(s Statistic) float64 {
		switch s {
		case StatMin:
			if !hasMin {
				minV, hasMin = f.Min(), true
			}
			return minV
		case StatAvg:
			if !hasAvg {
				avgV, hasAvg = f.Avg(), true
			}
			return avgV
		default:
			if !hasMax {
				maxV, hasMax = f.Max(), true
			}
			return maxV
		}
	}

	var results []AlertResult
	for _, spec := range specs {
		var violations []Violation
		for _, check := range []struct {
			stat  Statistic
			bound *Bound
		}{
			{StatMin, spec.Min},
			{StatAvg, spec.Avg},
			{StatMax, spec.Max},
		} {
			if check.bound == nil {
				continue
			}
			if v := stat(check.stat); check.bound.Exceeded(v) {
				violations = append(violations, Violation{Stat: check.stat, Value: v, Bound: *check.bound})
			}
		}
		if len(violations) > 0 {
			results = append(results, AlertResult{Name: spec.Name, Violations: violations})
		}
	}
	return results
}
