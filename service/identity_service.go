package service

import (
	"context"
	"fmt"
	"time"

	"lottery/events"
	"lottery/models"

	log "github.com/sirupsen/logrus"
)

// identityResolver implements the IdentityResolver interface.
//
// Resolution order is two-tier: a correlation id wins over a session pid,
// because the client id survives cookie loss while the cookie does not.
type identityResolver struct {
	participantRepo ParticipantRepository
	eventPublisher  EventPublisher
	now             func() time.Time
}

// NewIdentityResolver creates a new identity resolver
func NewIdentityResolver(participantRepo ParticipantRepository, eventPublisher EventPublisher) IdentityResolver {
	return &identityResolver{
		participantRepo: participantRepo,
		eventPublisher:  eventPublisher,
		now:             time.Now,
	}
}

// Resolve maps the caller's correlation signals to a stable participant
func (s *identityResolver) Resolve(ctx context.Context, sessionPID *int, correlationID string, createAnonymous bool) (*models.Participant, bool, error) {
	// Tier 1: a known correlation id re-identifies the client even when the
	// session cookie is gone. Stale mappings are dropped inside the store.
	if correlationID != "" {
		p, err := s.participantRepo.ResolveCorrelation(ctx, correlationID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to resolve correlation id: %w", err)
		}
		if p != nil {
			log.WithFields(log.Fields{
				"pid":           p.PID,
				"correlationId": correlationID,
			}).Debug("Participant re-identified by correlation id")
			return p, false, nil
		}
	}

	// Tier 2: the session pid, binding the correlation id to it when supplied
	if sessionPID != nil {
		p, err := s.participantRepo.Get(ctx, *sessionPID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to look up session pid: %w", err)
		}
		if p != nil {
			if correlationID != "" {
				if err := s.participantRepo.BindCorrelation(ctx, correlationID, p.PID); err != nil {
					return nil, false, fmt.Errorf("failed to bind correlation id: %w", err)
				}
				p.CorrelationID = correlationID
			}
			return p, false, nil
		}
	}

	if correlationID == "" && !createAnonymous {
		return nil, false, ErrNoIdentity
	}

	p, err := s.participantRepo.Create(ctx, correlationID, s.now())
	if err != nil {
		return nil, false, fmt.Errorf("failed to create participant: %w", err)
	}

	log.WithFields(log.Fields{
		"pid":           p.PID,
		"correlationId": correlationID,
	}).Info("New participant allocated")

	s.eventPublisher.Emit(ctx, events.ParticipantJoinedEvent{
		PID:           p.PID,
		CorrelationID: correlationID,
		IsNew:         true,
	})

	return p, true, nil
}
