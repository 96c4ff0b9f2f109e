// Package scheduler runs the daily booking reminder job.
package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/mauv0809/courtside/internal/slot"
)

const reminderJobName = "booking_reminders"

var ErrEmptyCronExpr = errors.New("cron expression is required")

// Reminder sends reminders for the confirmed bookings on a date.
// booking.BookingService satisfies it.
type Reminder interface {
	SendReminders(ctx context.Context, date string) (int, error)
}

// Service wraps a gocron scheduler.
type Service struct {
	scheduler gocron.Scheduler
	reminders Reminder
	now       func() time.Time
	stopOnce  sync.Once
	stopErr   error
}

// New creates a stopped scheduler. Panicking jobs are logged and recovered.
func New(reminders Reminder) (*Service, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					log.Error("Scheduler job panicked", "job_id", jobID.String(), "job_name", jobName, "panic", recoverData)
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return &Service{scheduler: sched, reminders: reminders, now: time.Now}, nil
}

// RegisterReminders runs the reminder job on cronExpr. Each run reminds
// players of the next day's confirmed bookings.
func (s *Service) RegisterReminders(cronExpr string) (gocron.Job, error) {
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}
	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := s.RunReminders(ctx, s.now()); err != nil {
				log.Error("Reminder job failed", "error", err)
			}
		}),
		gocron.WithName(reminderJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Error("Failed to register scheduler job", "job_name", reminderJobName, "cron", cronExpr, "error", err)
		return nil, err
	}
	log.Info("Scheduler job registered", "job_name", reminderJobName, "cron", cronExpr)
	return job, nil
}

// RunReminders sends reminders for the day after now.
func (s *Service) RunReminders(ctx context.Context, now time.Time) (int, error) {
	date := now.AddDate(0, 0, 1).Format(slot.DateLayout)
	log.Debug("Running booking reminders", "date", date)
	return s.reminders.SendReminders(ctx, date)
}

func (s *Service) Start() {
	log.Info("Scheduler starting")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running jobs. It is safe to call
// more than once.
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		log.Info("Scheduler stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}
