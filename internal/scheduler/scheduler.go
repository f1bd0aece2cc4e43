// Package scheduler fires deferred, named actions. Persisted entries are
// bare (dueTime, actionKey) markers; the behavior behind a key is registered
// fresh by each invocation, so the schedule survives deploys that change
// what a key means.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"household-agent/internal/domain"
)

// Store is the durable schedule contract consumed by the Scheduler.
type Store interface {
	// GetDue returns entries with a due time at or before now.
	GetDue(ctx context.Context, now time.Time) ([]domain.ScheduleEntry, error)
	// GetByActionKey returns every pending entry for the key.
	GetByActionKey(ctx context.Context, actionKey string) ([]domain.ScheduleEntry, error)
	Put(ctx context.Context, entry domain.ScheduleEntry) error
	// Delete removes the entry addressed by its full (dueTime, actionKey)
	// identity.
	Delete(ctx context.Context, entry domain.ScheduleEntry) error
}

// Action is a callback bound to an action key for the current invocation.
type Action func(ctx context.Context) error

// Scheduler orchestrates querying the store for due work, invoking bound
// callbacks, and removing fired entries. Bindings live only for the lifetime
// of one Scheduler value and are never persisted.
type Scheduler struct {
	store   Store
	clock   func() time.Time
	logger  *slog.Logger
	actions map[string]Action
}

type Option func(*Scheduler)

// WithClock injects the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

func New(store Store, logger *slog.Logger, opts ...Option) (*Scheduler, error) {
	if store == nil {
		return nil, errors.New("scheduler: store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		store:   store,
		clock:   func() time.Time { return time.Now().UTC() },
		logger:  logger,
		actions: make(map[string]Action),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterAction binds a callback to an action key for this invocation only.
func (s *Scheduler) RegisterAction(actionKey string, action Action) {
	s.actions[actionKey] = action
}

// EnsureScheduled creates an immediately-due entry for the key when no entry
// for it exists. This is a self-healing bootstrap: a key is never left
// permanently unscheduled after e.g. a bug wiped its entries.
func (s *Scheduler) EnsureScheduled(ctx context.Context, actionKey string) error {
	existing, err := s.store.GetByActionKey(ctx, actionKey)
	if err != nil {
		return fmt.Errorf("scheduler: query entries for %q: %w", actionKey, err)
	}
	if len(existing) > 0 {
		return nil
	}
	s.logger.Info("no pending schedule entry, creating one due now", "actionKey", actionKey)
	return s.DoAtTime(ctx, actionKey, s.clock())
}

// DoWithDelay schedules the action key to fire after the given delay.
func (s *Scheduler) DoWithDelay(ctx context.Context, actionKey string, delay time.Duration) error {
	return s.DoAtTime(ctx, actionKey, s.clock().Add(delay))
}

// DoAtTime schedules the action key to fire at the given time. No dedup is
// applied; callers that need at-most-one pending entry per key should go
// through EnsureScheduled.
func (s *Scheduler) DoAtTime(ctx context.Context, actionKey string, at time.Time) error {
	entry := domain.ScheduleEntry{DueTimeUTC: at.UTC(), ActionKey: actionKey}
	if err := s.store.Put(ctx, entry); err != nil {
		return fmt.Errorf("scheduler: put entry for %q: %w", actionKey, err)
	}
	return nil
}

// GetOverdueTasks returns all due entries sorted ascending by due time,
// without side effects.
func (s *Scheduler) GetOverdueTasks(ctx context.Context) ([]domain.ScheduleEntry, error) {
	due, err := s.store.GetDue(ctx, s.clock())
	if err != nil {
		return nil, fmt.Errorf("scheduler: query due entries: %w", err)
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DueTimeUTC.Before(due[j].DueTimeUTC)
	})
	return due, nil
}

// ExecuteAll fires every due entry and returns the number of entries
// processed. Each entry is deleted after its callback is invoked, whether or
// not the callback succeeded: at-most-once execution, so a crash between
// invoke and delete can duplicate a firing on the next run, and callbacks
// should be idempotent. A missing binding or a failing callback is logged
// and never aborts the batch.
func (s *Scheduler) ExecuteAll(ctx context.Context) (int, error) {
	due, err := s.GetOverdueTasks(ctx)
	if err != nil {
		return 0, err
	}
	processed := 0
	for _, entry := range due {
		action, ok := s.actions[entry.ActionKey]
		if !ok {
			s.logger.Error("no handler registered for scheduled action",
				"actionKey", entry.ActionKey, "dueTime", entry.DueTimeUTC)
		} else if err := action(ctx); err != nil {
			s.logger.Error("scheduled action failed",
				"actionKey", entry.ActionKey, "dueTime", entry.DueTimeUTC, "err", err)
		}
		if err := s.store.Delete(ctx, entry); err != nil {
			return processed, fmt.Errorf("scheduler: delete fired entry for %q: %w", entry.ActionKey, err)
		}
		processed++
	}
	return processed, nil
}
