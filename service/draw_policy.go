package service

import (
	"math/rand"
	"sync"

	"lottery/models"
)

// probabilityByRedCount is the fixed per-tile win probability label for each
// canonical red count. Admin UIs round-trip mode and probability through it.
var probabilityByRedCount = [models.ArrangementSize + 1]float64{0, 1.0 / 3, 2.0 / 3, 1}

// RedCountFromProbability maps an externally supplied probability onto the
// canonical red-count bucket. Buckets are closed on the lower side:
// p <= 0.01 -> 0, p < 0.5 -> 1, p < 0.99 -> 2, otherwise 3.
func RedCountFromProbability(p float64) int {
	switch {
	case p <= 0.01:
		return 0
	case p < 0.5:
		return 1
	case p < 0.99:
		return 2
	default:
		return 3
	}
}

// drawPolicy implements the DrawPolicy interface with the canonical red-count
// representation. The percent-based configuration path is a pure conversion
// into the same representation, never a second code path.
type drawPolicy struct {
	mu       sync.RWMutex
	redCount int
}

// NewDrawPolicy creates a draw policy with the given initial red count
func NewDrawPolicy(redCount int) (DrawPolicy, error) {
	if redCount < 0 || redCount > models.ArrangementSize {
		return nil, ErrInvalidWinSpec
	}
	return &drawPolicy{redCount: redCount}, nil
}

// WinSpec returns the current canonical red count and its probability label
func (p *drawPolicy) WinSpec() models.WinSpec {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return models.WinSpec{
		RedCount:    p.redCount,
		Probability: probabilityByRedCount[p.redCount],
	}
}

// SetRedCount sets the win spec from an explicit red count in 0..3
func (p *drawPolicy) SetRedCount(redCount int) (models.WinSpec, error) {
	if redCount < 0 || redCount > models.ArrangementSize {
		return models.WinSpec{}, ErrInvalidWinSpec
	}
	p.mu.Lock()
	p.redCount = redCount
	p.mu.Unlock()
	return p.WinSpec(), nil
}

// SetProbability sets the win spec from a probability in [0,1]
func (p *drawPolicy) SetProbability(probability float64) (models.WinSpec, error) {
	if probability < 0 || probability > 1 {
		return models.WinSpec{}, ErrInvalidWinSpec
	}
	return p.SetRedCount(RedCountFromProbability(probability))
}

// Generate produces one arrangement with exactly redCount winning tiles placed
// at a uniformly random subset of positions
func (p *drawPolicy) Generate() models.Arrangement {
	p.mu.RLock()
	redCount := p.redCount
	p.mu.RUnlock()

	var arrangement models.Arrangement
	for i := range arrangement {
		arrangement[i] = models.FaceBlank
	}
	for _, idx := range rand.Perm(models.ArrangementSize)[:redCount] {
		arrangement[idx] = models.FaceWinning
	}
	return arrangement
}
