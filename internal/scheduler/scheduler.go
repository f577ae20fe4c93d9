// Package scheduler runs the recurring jobs: today just the daily financial
// health snapshot per business.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/untunglab/juragan/internal/finance"
	"github.com/untunglab/juragan/internal/health"
	"github.com/untunglab/juragan/internal/project"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	projects *project.Store
	finance  *finance.Store
	schedule string
	log      *zap.Logger
}

// New creates a scheduler. schedule is a standard 5-field cron expression.
func New(projects *project.Store, fin *finance.Store, schedule string, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cron:     cron.New(),
		projects: projects,
		finance:  fin,
		schedule: schedule,
		log:      log,
	}
}

// Start registers the snapshot job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.snapshotAll); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) snapshotAll() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	businesses, err := s.projects.Businesses(ctx)
	if err != nil {
		s.log.Error("failed to list businesses for snapshot", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	for _, b := range businesses {
		if err := s.snapshot(ctx, b.ID, now); err != nil {
			s.log.Error("failed to snapshot business health",
				zap.String("business_id", b.ID), zap.Error(err))
		}
	}
}

func (s *Scheduler) snapshot(ctx context.Context, businessID string, now time.Time) error {
	figures, err := s.finance.Get(ctx, businessID)
	if err != nil {
		return err
	}

	targetNet := 0.0
	if active, ok, err := s.projects.Active(ctx, businessID); err == nil && ok {
		targetNet = active.TargetNet
	}

	report := health.Evaluate(figures.HealthInput(targetNet), health.DefaultThresholds())
	if err := s.finance.RecordSnapshot(ctx, businessID, now, report); err != nil {
		return err
	}

	s.log.Info("recorded health snapshot",
		zap.String("business_id", businessID),
		zap.String("label", string(report.Label)),
		zap.Float64("runway_days", report.RunwayDays))
	return nil
}
