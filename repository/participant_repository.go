package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"lottery/metrics"
	"lottery/models"

	log "github.com/sirupsen/logrus"
)

// ParticipantRepository implements the ParticipantRepository interface with an
// in-memory slot arena. PIDs are indices into the bounded ring [0, maxPID] and
// are handed out by a rotating cursor.
type ParticipantRepository struct {
	mu            sync.RWMutex
	maxPID        int
	cursor        int
	participants  map[int]*models.Participant
	byCorrelation map[string]int
}

// NewParticipantRepository creates a new in-memory participant repository
func NewParticipantRepository(maxPID int) *ParticipantRepository {
	return &ParticipantRepository{
		maxPID:        maxPID,
		participants:  make(map[int]*models.Participant),
		byCorrelation: make(map[string]int),
	}
}

// Create allocates the next free PID, inserts a fresh participant record and
// binds the correlation id when one was supplied.
//
// When every slot in the ring is occupied the cursor slot is reused: the old
// record is evicted and its correlation binding dropped. This breaks the
// "PID never reallocated while live" invariant, so it is logged and counted
// as a degraded-capacity condition.
func (r *ParticipantRepository) Create(ctx context.Context, correlationID string, now time.Time) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pid, evicted := r.allocate()
	if evicted != nil {
		if evicted.CorrelationID != "" {
			delete(r.byCorrelation, evicted.CorrelationID)
		}
		metrics.PIDReuses.Inc()
		log.WithFields(log.Fields{
			"pid":    pid,
			"maxPid": r.maxPID,
		}).Warn("PID ring saturated, reusing live slot")
	}

	p := &models.Participant{
		PID:           pid,
		CorrelationID: correlationID,
		Participated:  false,
		JoinedAt:      now,
	}
	r.participants[pid] = p
	if correlationID != "" {
		r.byCorrelation[correlationID] = pid
	}

	return p.Clone(), nil
}

// allocate scans the ring from the cursor for a free slot and advances the
// cursor past the returned PID. Caller must hold the lock. The second return
// is the evicted record when the ring was saturated.
func (r *ParticipantRepository) allocate() (int, *models.Participant) {
	size := r.maxPID + 1
	for i := 0; i < size; i++ {
		candidate := (r.cursor + i) % size
		if _, occupied := r.participants[candidate]; !occupied {
			r.cursor = (candidate + 1) % size
			return candidate, nil
		}
	}
	candidate := r.cursor
	r.cursor = (r.cursor + 1) % size
	return candidate, r.participants[candidate]
}

// Get retrieves a participant snapshot by PID, nil when the slot is empty
func (r *ParticipantRepository) Get(ctx context.Context, pid int) (*models.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[pid]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

// ResolveCorrelation returns the live participant a correlation id maps to,
// nil when there is no usable mapping. A mapping that points at an empty slot
// is stale and gets dropped.
func (r *ParticipantRepository) ResolveCorrelation(ctx context.Context, correlationID string) (*models.Participant, error) {
	if correlationID == "" {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pid, ok := r.byCorrelation[correlationID]
	if !ok {
		return nil, nil
	}
	p, ok := r.participants[pid]
	if !ok {
		delete(r.byCorrelation, correlationID)
		log.WithFields(log.Fields{
			"correlationId": correlationID,
			"pid":           pid,
		}).Debug("Dropped stale correlation mapping")
		return nil, nil
	}
	return p.Clone(), nil
}

// BindCorrelation binds a correlation id to a live participant, replacing any
// previous binding on either side so the mapping stays one-to-one.
func (r *ParticipantRepository) BindCorrelation(ctx context.Context, correlationID string, pid int) error {
	if correlationID == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[pid]
	if !ok {
		return models.ErrParticipantNotFound
	}
	if p.CorrelationID != "" && p.CorrelationID != correlationID {
		delete(r.byCorrelation, p.CorrelationID)
	}
	p.CorrelationID = correlationID
	r.byCorrelation[correlationID] = pid
	return nil
}

// UnbindCorrelation drops a correlation mapping and clears it from the bound
// participant, if any. Unknown ids are a no-op.
func (r *ParticipantRepository) UnbindCorrelation(ctx context.Context, correlationID string) error {
	if correlationID == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pid, ok := r.byCorrelation[correlationID]
	if !ok {
		return nil
	}
	delete(r.byCorrelation, correlationID)
	if p, ok := r.participants[pid]; ok && p.CorrelationID == correlationID {
		p.CorrelationID = ""
	}
	return nil
}

// MarkParticipated atomically transitions a participant to participated with
// the given outcome. A second call for the same PID fails with
// AlreadyParticipatedError carrying the first outcome; the check and the write
// happen under one lock so concurrent draws can never double-count.
func (r *ParticipantRepository) MarkParticipated(ctx context.Context, pid int, win bool, at time.Time) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[pid]
	if !ok {
		return nil, models.ErrParticipantNotFound
	}
	if p.Participated {
		return nil, &models.AlreadyParticipatedError{PID: pid, Win: p.Won()}
	}

	w := win
	drawAt := at
	p.Participated = true
	p.Win = &w
	p.DrawAt = &drawAt
	return p.Clone(), nil
}

// ResetOne clears the participation fields of one participant so it can draw
// again, keeping its identity and join metadata. Returns false when the PID is
// not live.
func (r *ParticipantRepository) ResetOne(ctx context.Context, pid int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[pid]
	if !ok {
		return false, nil
	}
	p.Participated = false
	p.Win = nil
	p.DrawAt = nil
	return true, nil
}

// ResetAll atomically clears all participants and correlation bindings and
// rewinds the allocation cursor
func (r *ParticipantRepository) ResetAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.participants = make(map[int]*models.Participant)
	r.byCorrelation = make(map[string]int)
	r.cursor = 0
	return nil
}

// List returns snapshots of all participants ordered by PID ascending
func (r *ParticipantRepository) List(ctx context.Context) ([]*models.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pids := make([]int, 0, len(r.participants))
	for pid := range r.participants {
		pids = append(pids, pid)
	}
	sort.Ints(pids)

	out := make([]*models.Participant, 0, len(pids))
	for _, pid := range pids {
		out = append(out, r.participants[pid].Clone())
	}
	return out, nil
}

// Stats returns aggregated participation statistics
func (r *ParticipantRepository) Stats(ctx context.Context) (*models.ParticipantStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.ParticipantStats{Total: len(r.participants)}
	for _, p := range r.participants {
		if p.Participated {
			stats.Participated++
			if p.Won() {
				stats.Winners++
			}
		} else {
			stats.Pending++
		}
	}
	return stats, nil
}
