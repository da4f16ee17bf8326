// Package notifier runs one daily late-task notification: it reads today's
// open tasks and the report addresses, makes sure both addresses are
// verified with the email service, and sends a single summary email.
package notifier

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/metrics"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/models"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/report"
)

type TaskSource interface {
	OpenTasks(ctx context.Context, dueDate string) ([]models.Task, error)
}

type AddressSource interface {
	Addresses(ctx context.Context) (models.Addresses, error)
}

type IdentityVerifier interface {
	EnsureVerified(ctx context.Context, addr string) (bool, error)
}

type Mailer interface {
	Send(ctx context.Context, m models.Message) (string, error)
}

type Options struct {
	// Location decides which calendar day is "today". Defaults to UTC.
	Location *time.Location
	// SkipEmpty suppresses the email when nothing is overdue.
	SkipEmpty bool
	// Now defaults to time.Now.
	Now func() time.Time
}

type Handler struct {
	tasks      TaskSource
	addresses  AddressSource
	identities IdentityVerifier
	mailer     Mailer
	composer   *report.Composer

	loc       *time.Location
	skipEmpty bool
	now       func() time.Time
	logger    *zap.Logger
}

func New(tasks TaskSource, addresses AddressSource, identities IdentityVerifier, mailer Mailer, opts Options, logger *zap.Logger) *Handler {
	h := &Handler{
		tasks:      tasks,
		addresses:  addresses,
		identities: identities,
		mailer:     mailer,
		composer:   report.NewComposer(),
		loc:        opts.Location,
		skipEmpty:  opts.SkipEmpty,
		now:        opts.Now,
		logger:     logger.Named("notifier"),
	}
	if h.loc == nil {
		h.loc = time.UTC
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Run performs one notification. It returns "" once the email is sent (or
// skipped on an empty day), a short diagnostic naming the address when the
// sender or recipient is not yet verified, and an error for everything else.
func (h *Handler) Run(ctx context.Context) (string, error) {
	msg, err := h.run(ctx)
	if err != nil {
		metrics.RecordRun(metrics.ResultError)
		h.logger.Error("notification failed", zap.Error(err))
	}
	return msg, err
}

func (h *Handler) run(ctx context.Context) (string, error) {
	today := h.now().In(h.loc)
	key := today.Format(models.DateKeyLayout)
	log := h.logger.With(zap.String("due_date", key))

	var (
		addrs models.Addresses
		tasks []models.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := h.addresses.Addresses(gctx)
		if err != nil {
			return fmt.Errorf("load report addresses: %w", err)
		}
		addrs = a
		return nil
	})
	g.Go(func() error {
		t, err := h.tasks.OpenTasks(gctx, key)
		if err != nil {
			return fmt.Errorf("load open tasks: %w", err)
		}
		tasks = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}
	log.Info("loaded open tasks", zap.Int("count", len(tasks)))

	if diag, err := h.verify(ctx, "Sender", addrs.Sender); diag != "" || err != nil {
		return diag, err
	}
	if diag, err := h.verify(ctx, "Recipient", addrs.Recipient); diag != "" || err != nil {
		return diag, err
	}

	if len(tasks) == 0 && h.skipEmpty {
		metrics.RecordRun(metrics.ResultSkippedEmpty)
		metrics.RecordOpenTasks(0)
		log.Info("no open tasks, email skipped")
		return "", nil
	}

	r, err := h.composer.Compose(today, tasks)
	if err != nil {
		return "", err
	}

	id, err := h.mailer.Send(ctx, models.Message{
		From:    addrs.Sender,
		To:      addrs.Recipient,
		Subject: r.Subject,
		HTML:    r.HTML,
		Text:    r.Text,
	})
	if err != nil {
		return "", err
	}

	metrics.RecordRun(metrics.ResultSent)
	metrics.RecordOpenTasks(len(tasks))
	log.Info("late task report sent", zap.String("message_id", id), zap.Int("tasks", len(tasks)))
	return "", nil
}

func (h *Handler) verify(ctx context.Context, label, addr string) (string, error) {
	ok, err := h.identities.EnsureVerified(ctx, addr)
	if err != nil {
		return "", fmt.Errorf("verify %s %s: %w", label, addr, err)
	}
	if ok {
		return "", nil
	}

	metrics.RecordRun(metrics.ResultUnverified)
	diag := fmt.Sprintf("%s %s not verified.", label, addr)
	h.logger.Warn(diag)
	return diag, nil
}

// Preview composes today's report without checking identities or sending.
func (h *Handler) Preview(ctx context.Context) (report.Report, error) {
	today := h.now().In(h.loc)

	tasks, err := h.tasks.OpenTasks(ctx, today.Format(models.DateKeyLayout))
	if err != nil {
		return report.Report{}, fmt.Errorf("load open tasks: %w", err)
	}
	return h.composer.Compose(today, tasks)
}
