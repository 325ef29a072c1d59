package service

import (
	"context"
	"time"

	"lottery/events"
	"lottery/models"

	"github.com/stretchr/testify/mock"
)

// MockParticipantRepository is a mock implementation of ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Create(ctx context.Context, correlationID string, now time.Time) (*models.Participant, error) {
	args := m.Called(ctx, correlationID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) Get(ctx context.Context, pid int) (*models.Participant, error) {
	args := m.Called(ctx, pid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) ResolveCorrelation(ctx context.Context, correlationID string) (*models.Participant, error) {
	args := m.Called(ctx, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) BindCorrelation(ctx context.Context, correlationID string, pid int) error {
	args := m.Called(ctx, correlationID, pid)
	return args.Error(0)
}

func (m *MockParticipantRepository) UnbindCorrelation(ctx context.Context, correlationID string) error {
	args := m.Called(ctx, correlationID)
	return args.Error(0)
}

func (m *MockParticipantRepository) MarkParticipated(ctx context.Context, pid int, win bool, at time.Time) (*models.Participant, error) {
	args := m.Called(ctx, pid, win, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) ResetOne(ctx context.Context, pid int) (bool, error) {
	args := m.Called(ctx, pid)
	return args.Bool(0), args.Error(1)
}

func (m *MockParticipantRepository) ResetAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockParticipantRepository) List(ctx context.Context) ([]*models.Participant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) Stats(ctx context.Context) (*models.ParticipantStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParticipantStats), args.Error(1)
}

// MockRoundRepository is a mock implementation of RoundRepository
type MockRoundRepository struct {
	mock.Mock
}

func (m *MockRoundRepository) Put(ctx context.Context, arrangement models.Arrangement, now time.Time) (*models.Round, error) {
	args := m.Called(ctx, arrangement, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) Peek(ctx context.Context, token string, now time.Time) (*models.Round, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) Take(ctx context.Context, token string, now time.Time) (*models.Round, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockRoundRepository) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}

// MockIdentityResolver is a mock implementation of IdentityResolver
type MockIdentityResolver struct {
	mock.Mock
}

func (m *MockIdentityResolver) Resolve(ctx context.Context, sessionPID *int, correlationID string, createAnonymous bool) (*models.Participant, bool, error) {
	args := m.Called(ctx, sessionPID, correlationID, createAnonymous)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Participant), args.Bool(1), args.Error(2)
}
