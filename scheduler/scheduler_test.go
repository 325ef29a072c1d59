package scheduler

import (
	"context"
	"testing"
	"time"

	"lottery/events"
	"lottery/models"
	"lottery/repository"
	"lottery/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedulerFixture struct {
	admin     service.AdminService
	rounds    *repository.RoundRepository
	scheduler *Scheduler
}

func newSchedulerFixture(t *testing.T, state models.ActivityState) *schedulerFixture {
	t.Helper()

	participantRepo := repository.NewParticipantRepository(1000)
	roundRepo := repository.NewRoundRepository(10 * time.Minute)
	policy, err := service.NewDrawPolicy(1)
	require.NoError(t, err)

	admin := service.NewAdminService(
		participantRepo,
		roundRepo,
		policy,
		service.NewActivityStatus(state),
		events.NewBus(),
	)
	return &schedulerFixture{
		admin:     admin,
		rounds:    roundRepo,
		scheduler: New(admin, roundRepo, time.Second),
	}
}

func TestScheduler_SweepNoWindowConfigured(t *testing.T) {
	f := newSchedulerFixture(t, models.ActivityWaiting)

	f.scheduler.sweepWindow(context.Background())
	assert.Equal(t, models.ActivityWaiting, f.admin.ActivityState())
}

func TestScheduler_SweepOpensInsideWindow(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t, models.ActivityWaiting)

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	require.NoError(t, f.admin.SetWindow(ctx, &start, &end))

	f.scheduler.sweepWindow(ctx)
	assert.Equal(t, models.ActivityOpen, f.admin.ActivityState())
}

func TestScheduler_SweepClosesAfterWindow(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t, models.ActivityOpen)

	start := time.Now().Add(-2 * time.Hour)
	end := time.Now().Add(-time.Hour)
	require.NoError(t, f.admin.SetWindow(ctx, &start, &end))

	f.scheduler.sweepWindow(ctx)
	assert.Equal(t, models.ActivityClosed, f.admin.ActivityState())
}

func TestScheduler_SweepWaitsBeforeWindow(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t, models.ActivityWaiting)

	start := time.Now().Add(time.Hour)
	require.NoError(t, f.admin.SetWindow(ctx, &start, nil))

	f.scheduler.sweepWindow(ctx)
	assert.Equal(t, models.ActivityWaiting, f.admin.ActivityState())
}

func TestScheduler_ManualOverrideSticksBetweenBoundaries(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t, models.ActivityWaiting)

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	require.NoError(t, f.admin.SetWindow(ctx, &start, &end))

	f.scheduler.sweepWindow(ctx)
	require.Equal(t, models.ActivityOpen, f.admin.ActivityState())

	// An admin closes the lottery by hand mid-window; the sweep must not
	// reopen it while the prescription is unchanged
	require.NoError(t, f.admin.SetActivityState(ctx, models.ActivityClosed))
	f.scheduler.sweepWindow(ctx)
	assert.Equal(t, models.ActivityClosed, f.admin.ActivityState())
}

func TestScheduler_PurgeRounds(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t, models.ActivityWaiting)

	stale, err := f.rounds.Put(ctx, models.Arrangement{}, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	fresh, err := f.rounds.Put(ctx, models.Arrangement{}, time.Now())
	require.NoError(t, err)

	f.scheduler.purgeRounds(ctx)

	_, err = f.rounds.Take(ctx, stale.Token, time.Now())
	assert.ErrorIs(t, err, models.ErrRoundNotFound)
	_, err = f.rounds.Take(ctx, fresh.Token, time.Now())
	assert.NoError(t, err)
}

func TestScheduler_StartAndStop(t *testing.T) {
	f := newSchedulerFixture(t, models.ActivityWaiting)

	require.NoError(t, f.scheduler.Start(context.Background()))
	f.scheduler.Stop()
}
