package demand

import "sync"

// QualityManager maintains the reputation score of each ad network.
// The allocation auction reads scores; the campaign's terminal feedback
// step writes them back through Update.
type QualityManager interface {
	// Score returns the current quality score of an ad network.
	// Unknown networks score 1.0.
	Score(adnet string) float64
	// Update folds a campaign's effective reach ratio into the score.
	Update(adnet string, effectiveReachRatio float64)
}

// SmoothingQualityManager is an exponential-smoothing QualityManager:
// score <- (1-rate)*score + rate*ratio.
type SmoothingQualityManager struct {
	mu     sync.RWMutex
	rate   float64
	scores map[string]float64
}

func NewQualityManager(learningRate float64) *SmoothingQualityManager {
	return &SmoothingQualityManager{
		rate:   learningRate,
		scores: make(map[string]float64),
	}
}

func (q *SmoothingQualityManager) Score(adnet string) float64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if score, ok := q.scores[adnet]; ok {
		return score
	}
	return 1.0
}

func (q *SmoothingQualityManager) Update(adnet string, effectiveReachRatio float64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	prev, ok := q.scores[adnet]
	if !ok {
		prev = 1.0
	}
	q.scores[adnet] = (1-q.rate)*prev + q.rate*effectiveReachRatio
}

// Snapshot copies the current score table, including only networks that
// have received at least one update.
func (q *SmoothingQualityManager) Snapshot() map[string]float64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make(map[string]float64, len(q.scores))
	for adnet, score := range q.scores {
		out[adnet] = score
	}
	return out
}
