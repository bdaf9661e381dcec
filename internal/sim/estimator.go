package sim

import (
	"fmt"

	"adx/internal/demand"
)

// Estimator keeps an exponentially smoothed estimate of the clearing
// CPM per query class (publisher, device, ad type). Agents use it to
// anchor their per-query bids:
//
//	est <- decay*observed + (1-decay)*est
type Estimator struct {
	decay     float64
	initial   float64
	estimates map[string]float64
}

const defaultEstimatorDecay = 0.1

func NewEstimator(decay, initialCPM float64) *Estimator {
	if decay <= 0 || decay > 1 {
		decay = defaultEstimatorDecay
	}
	return &Estimator{
		decay:     decay,
		initial:   initialCPM,
		estimates: make(map[string]float64),
	}
}

func queryClass(publisher string, device demand.Device, adType demand.AdType) string {
	return fmt.Sprintf("%s|%s|%s", publisher, device, adType)
}

// Observe folds a witnessed clearing price into the class estimate.
func (e *Estimator) Observe(q Query, clearingCPM float64) {
	key := queryClass(q.Publisher, q.Device, q.AdType)
	prev, ok := e.estimates[key]
	if !ok {
		prev = e.initial
	}
	e.estimates[key] = e.decay*clearingCPM + (1-e.decay)*prev
}

// EstimateCPM returns the current estimate for the query's class.
func (e *Estimator) EstimateCPM(q Query) float64 {
	if est, ok := e.estimates[queryClass(q.Publisher, q.Device, q.AdType)]; ok {
		return est
	}
	return e.initial
}
