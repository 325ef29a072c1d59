package service

import (
	"context"
	"time"

	"lottery/events"
	"lottery/models"
)

// ParticipantRepository defines the interface for participant slot access
type ParticipantRepository interface {
	// Create allocates the next free PID, inserts a fresh participant record
	// and binds the correlation id when one was supplied
	Create(ctx context.Context, correlationID string, now time.Time) (*models.Participant, error)

	// Get retrieves a participant snapshot by PID, nil when the slot is empty
	Get(ctx context.Context, pid int) (*models.Participant, error)

	// ResolveCorrelation returns the live participant a correlation id maps to,
	// nil when there is no usable mapping
	ResolveCorrelation(ctx context.Context, correlationID string) (*models.Participant, error)

	// BindCorrelation binds a correlation id to a live participant
	BindCorrelation(ctx context.Context, correlationID string, pid int) error

	// UnbindCorrelation drops a correlation mapping; unknown ids are a no-op
	UnbindCorrelation(ctx context.Context, correlationID string) error

	// MarkParticipated atomically records the one allowed draw outcome
	MarkParticipated(ctx context.Context, pid int, win bool, at time.Time) (*models.Participant, error)

	// ResetOne clears participation fields for one PID, keeping identity and
	// join metadata
	ResetOne(ctx context.Context, pid int) (bool, error)

	// ResetAll clears all participants and correlation bindings
	ResetAll(ctx context.Context) error

	// List returns snapshots of all participants ordered by PID ascending
	List(ctx context.Context) ([]*models.Participant, error)

	// Stats returns aggregated participation statistics
	Stats(ctx context.Context) (*models.ParticipantStats, error)
}

// RoundRepository defines the interface for the dealt-round cache
type RoundRepository interface {
	// Put stores an arrangement under a fresh unique round token
	Put(ctx context.Context, arrangement models.Arrangement, now time.Time) (*models.Round, error)

	// Peek returns a round without consuming it
	Peek(ctx context.Context, token string, now time.Time) (*models.Round, error)

	// Take resolves and deletes a round as one atomic check-and-delete
	Take(ctx context.Context, token string, now time.Time) (*models.Round, error)

	// PurgeExpired removes all rounds past their ttl
	PurgeExpired(ctx context.Context, now time.Time) (int, error)

	// Clear drops all open rounds
	Clear(ctx context.Context) error
}

// EventPublisher defines the interface for emitting domain events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// DrawPolicy produces tile arrangements according to the configured win spec
type DrawPolicy interface {
	// WinSpec returns the current canonical red count and its probability label
	WinSpec() models.WinSpec

	// SetRedCount sets the win spec from an explicit red count in 0..3
	SetRedCount(redCount int) (models.WinSpec, error)

	// SetProbability sets the win spec from a probability in [0,1], mapped
	// deterministically onto a red-count bucket
	SetProbability(p float64) (models.WinSpec, error)

	// Generate produces one concrete arrangement with exactly redCount winning
	// tiles at uniformly random positions
	Generate() models.Arrangement
}

// IdentityResolver maps inbound correlation signals (session pid, client id)
// to a stable participant identity
type IdentityResolver interface {
	// Resolve returns the participant the signals map to and whether it was
	// newly allocated. When nothing matches, a new participant is allocated if
	// a correlation id was supplied or createAnonymous is set; otherwise the
	// resolution fails with ErrNoIdentity.
	Resolve(ctx context.Context, sessionPID *int, correlationID string, createAnonymous bool) (*models.Participant, bool, error)
}

// LotteryService defines the participant-facing draw operations
type LotteryService interface {
	// Join assigns or confirms the caller's participant identity
	Join(ctx context.Context, sessionPID *int, correlationID string) (*models.JoinResult, error)

	// Draw performs the single-phase draw: generate an arrangement, resolve the
	// chosen tile and record the participant's one allowed outcome
	Draw(ctx context.Context, sessionPID *int, correlationID string, choice int) (*models.DrawResult, error)

	// Deal generates an arrangement and parks it in the round cache; identity
	// is not needed yet at this step
	Deal(ctx context.Context) (*models.Round, error)

	// Pick resolves a dealt round against a chosen index without touching any
	// participant record
	Pick(ctx context.Context, token string, index int) (*models.PickResult, error)

	// DrawFromRound is the two-phase draw completion: resolve identity, enforce
	// the single-use rule and settle the outcome against the dealt round
	DrawFromRound(ctx context.Context, sessionPID *int, correlationID string, token string, index int) (*models.DrawResult, error)

	// Stats returns the public participation counters shown on the status page
	Stats(ctx context.Context) (*models.ParticipantStats, error)
}

// AdminService defines the admin-only operations. Authorization is the
// caller's responsibility; the service exposes these unconditionally.
type AdminService interface {
	// WinSpec returns the current win spec
	WinSpec() models.WinSpec

	// SetWinSpec updates the win spec from an explicit red count or a
	// probability; exactly one must be supplied
	SetWinSpec(ctx context.Context, redCount *int, probability *float64) (models.WinSpec, error)

	// ActivityState returns the current lifecycle state
	ActivityState() models.ActivityState

	// SetActivityState transitions the activity lifecycle
	SetActivityState(ctx context.Context, state models.ActivityState) error

	// Window returns the configured activity window
	Window() models.ActivityWindow

	// SetWindow configures the scheduled open period; nil bounds clear them
	SetWindow(ctx context.Context, startAt, endAt *time.Time) error

	// ResetParticipant clears one participant's draw so it can draw again
	ResetParticipant(ctx context.Context, pid int) (bool, error)

	// ResetAll clears participants, correlation bindings and open rounds
	ResetAll(ctx context.Context) error

	// ListParticipants returns pid-ordered snapshots plus aggregate stats
	ListParticipants(ctx context.Context) ([]*models.Participant, *models.ParticipantStats, error)
}
