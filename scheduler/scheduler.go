// Package scheduler drives the time-based collaborators of the lottery: the
// activity window sweep and the round cache expiry. The core itself never
// transitions on time; these jobs call the same admin operations a human would.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"lottery/service"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs the periodic background jobs
type Scheduler struct {
	cron     *cron.Cron
	admin    service.AdminService
	rounds   service.RoundRepository
	interval time.Duration

	lastPrescribed string
}

// New creates a scheduler sweeping the activity window at the given interval
func New(admin service.AdminService, rounds service.RoundRepository, interval time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		admin:    admin,
		rounds:   rounds,
		interval: interval,
	}
}

// Start registers and starts the background jobs
func (s *Scheduler) Start(ctx context.Context) error {
	sweepSpec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(sweepSpec, func() { s.sweepWindow(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule window sweep: %w", err)
	}
	if _, err := s.cron.AddFunc("@every 1m", func() { s.purgeRounds(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule round purge: %w", err)
	}

	s.cron.Start()
	log.WithField("interval", s.interval).Info("Scheduler started")
	return nil
}

// Stop halts the background jobs and waits for running ones to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("Scheduler stopped")
}

// sweepWindow applies the configured activity window. The transition fires
// only when the window's prescription changes, so a manual admin override
// sticks until the next boundary crossing.
func (s *Scheduler) sweepWindow(ctx context.Context) {
	window := s.admin.Window()
	if !window.Configured() {
		s.lastPrescribed = ""
		return
	}

	prescribed := window.StateAt(time.Now())
	if string(prescribed) == s.lastPrescribed {
		return
	}
	s.lastPrescribed = string(prescribed)

	if s.admin.ActivityState() == prescribed {
		return
	}
	if err := s.admin.SetActivityState(ctx, prescribed); err != nil {
		log.WithError(err).Error("Window sweep failed to set activity state")
		return
	}
	log.WithField("state", prescribed).Info("Activity state changed by window sweep")
}

func (s *Scheduler) purgeRounds(ctx context.Context) {
	if _, err := s.rounds.PurgeExpired(ctx, time.Now()); err != nil {
		log.WithError(err).Error("Round purge failed")
	}
}
