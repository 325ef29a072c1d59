package cmd

import (
	"context"
	"fmt"

	"lottery/config"
	"lottery/events"
	"lottery/metrics"
	"lottery/models"
	"lottery/repository"
	"lottery/scheduler"
	"lottery/service"
	"lottery/web"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	setupLogging(cfg)

	log.WithFields(log.Fields{
		"maxPid":   cfg.MaxPID,
		"redCount": cfg.DefaultRedCount,
		"state":    cfg.InitialState,
	}).Info("Starting lottery service")

	// Repositories
	participantRepo := repository.NewParticipantRepository(cfg.MaxPID)
	roundRepo := repository.NewRoundRepository(cfg.RoundTTL)

	// Event bus with the metrics subscriber
	bus := events.NewBus()
	subscribeMetrics(bus)

	// Core services
	policy, err := service.NewDrawPolicy(cfg.DefaultRedCount)
	if err != nil {
		return fmt.Errorf("invalid default red count: %w", err)
	}
	activity := service.NewActivityStatus(models.ActivityState(cfg.InitialState))
	identity := service.NewIdentityResolver(participantRepo, bus)
	lotterySvc := service.NewLotteryService(identity, participantRepo, roundRepo, policy, activity, bus)
	adminSvc := service.NewAdminService(participantRepo, roundRepo, policy, activity, bus)

	// Background jobs
	sched := scheduler.New(adminSvc, roundRepo, cfg.WindowSweepInterval)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// HTTP boundary
	srv := web.NewServer(cfg, lotterySvc, adminSvc)
	return srv.Start(ctx)
}

// subscribeMetrics keeps the game counters updated from domain events, so the
// draw path never touches the metrics registry directly
func subscribeMetrics(bus *events.Bus) {
	bus.Subscribe(events.EventTypeParticipantJoined, func(ctx context.Context, e events.Event) {
		joined := e.(events.ParticipantJoinedEvent)
		kind := "returning"
		if joined.IsNew {
			kind = "new"
		}
		metrics.Joins.WithLabelValues(kind).Inc()
	})
	bus.Subscribe(events.EventTypeDrawCompleted, func(ctx context.Context, e events.Event) {
		draw := e.(events.DrawCompletedEvent)
		outcome := "lose"
		if draw.Win {
			outcome = "win"
		}
		metrics.Draws.WithLabelValues(outcome).Inc()
	})
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}
