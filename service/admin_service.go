package service

import (
	"context"
	"fmt"
	"time"

	"lottery/events"
	"lottery/models"

	log "github.com/sirupsen/logrus"
)

// adminService implements the AdminService interface
type adminService struct {
	participantRepo ParticipantRepository
	roundRepo       RoundRepository
	policy          DrawPolicy
	activity        *ActivityStatus
	eventPublisher  EventPublisher
}

// NewAdminService creates a new admin service
func NewAdminService(
	participantRepo ParticipantRepository,
	roundRepo RoundRepository,
	policy DrawPolicy,
	activity *ActivityStatus,
	eventPublisher EventPublisher,
) AdminService {
	return &adminService{
		participantRepo: participantRepo,
		roundRepo:       roundRepo,
		policy:          policy,
		activity:        activity,
		eventPublisher:  eventPublisher,
	}
}

// WinSpec returns the current win spec
func (s *adminService) WinSpec() models.WinSpec {
	return s.policy.WinSpec()
}

// SetWinSpec updates the win spec from an explicit red count or a probability.
// The red count wins when both are supplied, matching the admin UI which sends
// the mode it knows and the probability only as a fallback.
func (s *adminService) SetWinSpec(ctx context.Context, redCount *int, probability *float64) (models.WinSpec, error) {
	old := s.policy.WinSpec()

	var (
		spec models.WinSpec
		err  error
	)
	switch {
	case redCount != nil:
		spec, err = s.policy.SetRedCount(*redCount)
	case probability != nil:
		spec, err = s.policy.SetProbability(*probability)
	default:
		return models.WinSpec{}, ErrInvalidWinSpec
	}
	if err != nil {
		return models.WinSpec{}, err
	}

	log.WithFields(log.Fields{
		"oldRedCount": old.RedCount,
		"redCount":    spec.RedCount,
		"probability": spec.Probability,
	}).Info("Win spec changed")

	s.eventPublisher.Emit(ctx, events.WinSpecChangedEvent{OldSpec: old, NewSpec: spec})
	return spec, nil
}

// ActivityState returns the current lifecycle state
func (s *adminService) ActivityState() models.ActivityState {
	return s.activity.State()
}

// SetActivityState transitions the activity lifecycle
func (s *adminService) SetActivityState(ctx context.Context, state models.ActivityState) error {
	if !state.Valid() {
		return ErrInvalidActivityState
	}

	old, changed := s.activity.SetState(state)
	if !changed {
		return nil
	}

	log.WithFields(log.Fields{
		"oldState": old,
		"newState": state,
	}).Info("Activity state changed")

	s.eventPublisher.Emit(ctx, events.ActivityStateChangedEvent{OldState: old, NewState: state})
	return nil
}

// Window returns the configured activity window
func (s *adminService) Window() models.ActivityWindow {
	return s.activity.Window()
}

// SetWindow configures the scheduled open period
func (s *adminService) SetWindow(ctx context.Context, startAt, endAt *time.Time) error {
	if startAt != nil && endAt != nil && endAt.Before(*startAt) {
		return fmt.Errorf("window end %v precedes start %v", endAt, startAt)
	}

	s.activity.SetWindow(startAt, endAt)
	log.WithFields(log.Fields{
		"startAt": startAt,
		"endAt":   endAt,
	}).Info("Activity window configured")
	return nil
}

// ResetParticipant clears one participant's draw so that PID can draw again
func (s *adminService) ResetParticipant(ctx context.Context, pid int) (bool, error) {
	ok, err := s.participantRepo.ResetOne(ctx, pid)
	if err != nil {
		return false, fmt.Errorf("failed to reset participant %d: %w", pid, err)
	}
	if !ok {
		return false, nil
	}

	log.WithField("pid", pid).Info("Participant reset")
	s.eventPublisher.Emit(ctx, events.StoreResetEvent{PID: &pid})
	return true, nil
}

// ResetAll clears participants, correlation bindings and open rounds. Rounds
// go first so a concurrent pick cannot settle a stale arrangement onto a
// freshly cleared participant table.
func (s *adminService) ResetAll(ctx context.Context) error {
	if err := s.roundRepo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear rounds: %w", err)
	}
	if err := s.participantRepo.ResetAll(ctx); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}

	log.Info("All lottery state reset")
	s.eventPublisher.Emit(ctx, events.StoreResetEvent{})
	return nil
}

// ListParticipants returns pid-ordered snapshots plus aggregate stats
func (s *adminService) ListParticipants(ctx context.Context) ([]*models.Participant, *models.ParticipantStats, error) {
	items, err := s.participantRepo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list participants: %w", err)
	}
	stats, err := s.participantRepo.Stats(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}
	return items, stats, nil
}
