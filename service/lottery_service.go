package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lottery/events"
	"lottery/models"

	log "github.com/sirupsen/logrus"
)

// lotteryService implements the LotteryService interface. It coordinates a
// draw end to end: identity, activity gate, single-use invariant, arrangement,
// outcome persistence.
type lotteryService struct {
	identity        IdentityResolver
	participantRepo ParticipantRepository
	roundRepo       RoundRepository
	policy          DrawPolicy
	activity        *ActivityStatus
	eventPublisher  EventPublisher
	now             func() time.Time
}

// NewLotteryService creates a new lottery service
func NewLotteryService(
	identity IdentityResolver,
	participantRepo ParticipantRepository,
	roundRepo RoundRepository,
	policy DrawPolicy,
	activity *ActivityStatus,
	eventPublisher EventPublisher,
) LotteryService {
	return &lotteryService{
		identity:        identity,
		participantRepo: participantRepo,
		roundRepo:       roundRepo,
		policy:          policy,
		activity:        activity,
		eventPublisher:  eventPublisher,
		now:             time.Now,
	}
}

// Join assigns or confirms the caller's participant identity. Joining is
// always allowed, whatever the activity state; only drawing is gated.
func (s *lotteryService) Join(ctx context.Context, sessionPID *int, correlationID string) (*models.JoinResult, error) {
	p, isNew, err := s.identity.Resolve(ctx, sessionPID, correlationID, true)
	if err != nil {
		return nil, err
	}

	return &models.JoinResult{
		PID:          p.PID,
		Participated: p.Participated,
		Win:          p.Won(),
		IsNew:        isNew,
	}, nil
}

// Draw performs the single-phase draw against a freshly generated arrangement
func (s *lotteryService) Draw(ctx context.Context, sessionPID *int, correlationID string, choice int) (*models.DrawResult, error) {
	p, err := s.beginDraw(ctx, sessionPID, correlationID, choice)
	if err != nil {
		return nil, err
	}

	return s.settle(ctx, p, s.policy.Generate(), choice)
}

// Deal generates an arrangement and parks it in the round cache. No
// participant is marked here; identity may not be known yet.
func (s *lotteryService) Deal(ctx context.Context) (*models.Round, error) {
	round, err := s.roundRepo.Put(ctx, s.policy.Generate(), s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to store round: %w", err)
	}

	log.WithFields(log.Fields{
		"roundToken": round.Token,
	}).Debug("Round dealt")
	return round, nil
}

// Pick resolves a dealt round against a chosen index. It consumes the round
// but does not enforce the one-draw-per-participant rule; that is
// DrawFromRound's job when rounds are combined with identity.
func (s *lotteryService) Pick(ctx context.Context, token string, index int) (*models.PickResult, error) {
	if _, err := s.roundRepo.Peek(ctx, token, s.now()); err != nil {
		return nil, err
	}
	if index < 0 || index >= models.ArrangementSize {
		return nil, ErrInvalidChoice
	}

	round, err := s.roundRepo.Take(ctx, token, s.now())
	if err != nil {
		return nil, err
	}

	face := round.Arrangement[index]
	return &models.PickResult{
		Win:         face == models.FaceWinning,
		Face:        face,
		Arrangement: round.Arrangement,
	}, nil
}

// DrawFromRound completes the two-phase flow: the previously dealt arrangement
// is resolved for the identified participant under the same single-use check
// as Draw.
func (s *lotteryService) DrawFromRound(ctx context.Context, sessionPID *int, correlationID string, token string, index int) (*models.DrawResult, error) {
	p, err := s.beginDraw(ctx, sessionPID, correlationID, index)
	if err != nil {
		return nil, err
	}

	round, err := s.roundRepo.Take(ctx, token, s.now())
	if err != nil {
		return nil, err
	}

	return s.settle(ctx, p, round.Arrangement, index)
}

// Stats returns the public participation counters shown on the status page
func (s *lotteryService) Stats(ctx context.Context) (*models.ParticipantStats, error) {
	stats, err := s.participantRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}
	return stats, nil
}

// beginDraw runs the shared draw preamble: activity gate, identity resolution
// and the idempotent already-participated rejection. The authoritative
// single-use check still happens inside MarkParticipated; this early check
// only makes repeated calls cheap and carries the prior outcome back.
func (s *lotteryService) beginDraw(ctx context.Context, sessionPID *int, correlationID string, choice int) (*models.Participant, error) {
	if s.activity.State() != models.ActivityOpen {
		return nil, ErrActivityNotOpen
	}

	p, _, err := s.identity.Resolve(ctx, sessionPID, correlationID, false)
	if err != nil {
		return nil, err
	}

	if p.Participated {
		return nil, &models.AlreadyParticipatedError{PID: p.PID, Win: p.Won()}
	}

	if choice < 0 || choice >= models.ArrangementSize {
		return nil, ErrInvalidChoice
	}

	return p, nil
}

// settle computes the outcome for the chosen tile and persists the one allowed
// draw as a single atomic store update
func (s *lotteryService) settle(ctx context.Context, p *models.Participant, arrangement models.Arrangement, choice int) (*models.DrawResult, error) {
	face := arrangement[choice]
	win := face == models.FaceWinning
	drawAt := s.now()

	updated, err := s.participantRepo.MarkParticipated(ctx, p.PID, win, drawAt)
	if err != nil {
		var already *models.AlreadyParticipatedError
		if errors.As(err, &already) {
			// Lost the race against a concurrent draw for the same pid; the
			// first recorded outcome stands.
			return nil, already
		}
		return nil, fmt.Errorf("failed to record draw outcome: %w", err)
	}

	log.WithFields(log.Fields{
		"pid":         updated.PID,
		"choice":      choice,
		"arrangement": arrangement,
		"win":         win,
	}).Info("Draw completed")

	s.eventPublisher.Emit(ctx, events.DrawCompletedEvent{
		PID:         updated.PID,
		Win:         win,
		Choice:      choice,
		Arrangement: arrangement,
		DrawAt:      drawAt,
	})

	winIndex := arrangement.WinningIndex()
	if win {
		winIndex = choice
	}

	return &models.DrawResult{
		PID:         updated.PID,
		Win:         win,
		Face:        face,
		Arrangement: arrangement,
		WinIndex:    winIndex,
	}, nil
}
