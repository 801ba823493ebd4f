package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/meinhoongagan/carehub/config"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Reminders sends reminders for bookings starting within lead.
type Reminders interface {
	SendReminders(ctx context.Context, lead time.Duration) (int, error)
}

// Scheduler runs the background jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *zerolog.Logger
}

// New registers the booking reminder job on cfg.ReminderSpec.
func New(cfg config.JobsConfig, reminders Reminders, logger *zerolog.Logger) (*Scheduler, error) {
	l := cronLogger{logger: logger}
	c := cron.New(cron.WithLogger(l), cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)))
	if _, err := c.AddFunc(cfg.ReminderSpec, ReminderJob(reminders, cfg.ReminderLead, logger)); err != nil {
		return nil, fmt.Errorf("schedule reminders %q: %w", cfg.ReminderSpec, err)
	}
	return &Scheduler{cron: c, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("cron scheduler started")
}

// Stop waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info().Msg("cron scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn().Msg("cron scheduler stop timed out")
	}
}

// ReminderJob returns the cron body that sends booking reminders.
func ReminderJob(reminders Reminders, lead time.Duration, logger *zerolog.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		sent, err := reminders.SendReminders(ctx, lead)
		if err != nil {
			logger.Error().Err(err).Int("sent", sent).Msg("reminder job failed")
			return
		}
		logger.Debug().Int("sent", sent).Dur("lead", lead).Msg("reminder job finished")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
