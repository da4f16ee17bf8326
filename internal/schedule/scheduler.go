// Package schedule runs the notifier on a cron expression when the process
// is long-lived rather than invoked by EventBridge.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Job is one scheduled run. The returned string is the run's diagnostic.
type Job func(ctx context.Context) (string, error)

type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *zap.Logger
}

func New(loc *time.Location, logger *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithLogger(&gocronLogger{logger: logger.Named("gocron")}),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, logger: logger.Named("schedule")}, nil
}

// Add registers job under name on a five-field cron expression. Runs never
// overlap.
func (s *Scheduler) Add(ctx context.Context, name, cronExpr string, job Job) error {
	if name == "" {
		return errors.New("empty job name")
	}
	if cronExpr == "" {
		return errors.New("empty cron expression")
	}
	if job == nil {
		return errors.New("nil job function")
	}

	run := func() {
		start := time.Now()
		diag, err := job(ctx)
		log := s.logger.With(zap.String("job", name), zap.Duration("took", time.Since(start)))
		switch {
		case err != nil:
			log.Error("scheduled run failed", zap.Error(err))
		case diag != "":
			log.Warn("scheduled run aborted", zap.String("result", diag))
		default:
			log.Info("scheduled run complete")
		}
	}

	_, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(run),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()

	for _, j := range s.scheduler.Jobs() {
		if next, err := j.NextRun(); err == nil {
			s.logger.Info("job scheduled", zap.String("job", j.Name()), zap.Time("next_run", next))
		}
	}
}

// NextRuns maps each job name to its next run time.
func (s *Scheduler) NextRuns() map[string]time.Time {
	out := make(map[string]time.Time)
	for _, j := range s.scheduler.Jobs() {
		if next, err := j.NextRun(); err == nil {
			out[j.Name()] = next
		}
	}
	return out
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	return nil
}

// gocronLogger adapts zap to gocron.Logger.
type gocronLogger struct {
	logger *zap.Logger
}

func (l *gocronLogger) Debug(msg string, args ...any) { l.logger.Sugar().Debugw(msg, args...) }
func (l *gocronLogger) Info(msg string, args ...any)  { l.logger.Sugar().Infow(msg, args...) }
func (l *gocronLogger) Warn(msg string, args ...any)  { l.logger.Sugar().Warnw(msg, args...) }
func (l *gocronLogger) Error(msg string, args ...any) { l.logger.Sugar().Errorw(msg, args...) }
