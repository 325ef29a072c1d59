package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lottery/metrics"
	"lottery/models"

	gonanoid "github.com/matoous/go-nanoid/v2"
	log "github.com/sirupsen/logrus"
)

// RoundRepository implements the RoundRepository interface with an in-memory
// token-keyed cache of dealt arrangements. Rounds are single-use: Take removes
// the round it resolves.
type RoundRepository struct {
	mu     sync.Mutex
	ttl    time.Duration
	rounds map[string]*models.Round
}

// NewRoundRepository creates a new in-memory round repository. Rounds older
// than ttl are treated as gone; ttl <= 0 disables expiry.
func NewRoundRepository(ttl time.Duration) *RoundRepository {
	return &RoundRepository{
		ttl:    ttl,
		rounds: make(map[string]*models.Round),
	}
}

// Put stores an arrangement under a fresh unique round token
func (r *RoundRepository) Put(ctx context.Context, arrangement models.Arrangement, now time.Time) (*models.Round, error) {
	token, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate round token: %w", err)
	}

	round := &models.Round{
		Token:       token,
		Arrangement: arrangement,
		CreatedAt:   now,
	}

	r.mu.Lock()
	r.rounds[token] = round
	r.mu.Unlock()

	metrics.RoundsDealt.Inc()
	return round, nil
}

// Peek returns a round without consuming it
func (r *RoundRepository) Peek(ctx context.Context, token string, now time.Time) (*models.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	round, ok := r.rounds[token]
	if !ok {
		return nil, models.ErrRoundNotFound
	}
	if r.expired(round, now) {
		delete(r.rounds, token)
		metrics.RoundsExpired.Inc()
		return nil, models.ErrRoundNotFound
	}
	return round, nil
}

// Take resolves and deletes a round in one step. The check and the delete are
// a single critical section, so of two concurrent takes for the same token
// exactly one succeeds and the other observes ErrRoundNotFound.
func (r *RoundRepository) Take(ctx context.Context, token string, now time.Time) (*models.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	round, ok := r.rounds[token]
	if !ok {
		return nil, models.ErrRoundNotFound
	}
	delete(r.rounds, token)

	if r.expired(round, now) {
		metrics.RoundsExpired.Inc()
		return nil, models.ErrRoundNotFound
	}
	return round, nil
}

// PurgeExpired removes all rounds past their ttl and returns how many were dropped
func (r *RoundRepository) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for token, round := range r.rounds {
		if r.expired(round, now) {
			delete(r.rounds, token)
			purged++
		}
	}
	if purged > 0 {
		metrics.RoundsExpired.Add(float64(purged))
		log.WithField("count", purged).Debug("Purged expired rounds")
	}
	return purged, nil
}

// Clear drops all open rounds
func (r *RoundRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rounds = make(map[string]*models.Round)
	return nil
}

func (r *RoundRepository) expired(round *models.Round, now time.Time) bool {
	return r.ttl > 0 && now.Sub(round.CreatedAt) > r.ttl
}
