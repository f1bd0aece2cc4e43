package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"household-agent/internal/scheduler"
)

// ActionRunner is the scheduler surface the check-in trigger drives.
// *scheduler.Scheduler satisfies it.
type ActionRunner interface {
	RegisterAction(actionKey string, action scheduler.Action)
	EnsureScheduled(ctx context.Context, actionKey string) error
	ExecuteAll(ctx context.Context) (int, error)
}

// Binding pairs an action key with the behavior this deployment supplies
// for it. Bindings are assembled once in main; the persisted schedule only
// ever stores the keys.
type Binding struct {
	Key    string
	Action scheduler.Action
}

// CheckInResponse is the periodic trigger's result payload.
type CheckInResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// CheckInHandler runs one scheduler pass: bind every known action, make
// sure each has a pending entry, then fire whatever is due.
type CheckInHandler struct {
	runner   ActionRunner
	bindings []Binding
	logger   *slog.Logger
}

func NewCheckInHandler(runner ActionRunner, bindings []Binding, logger *slog.Logger) (*CheckInHandler, error) {
	if runner == nil {
		return nil, errors.New("handler: action runner must not be nil")
	}
	if len(bindings) == 0 {
		return nil, errors.New("handler: at least one action binding is required")
	}
	for _, b := range bindings {
		if b.Key == "" || b.Action == nil {
			return nil, errors.New("handler: bindings must have a key and an action")
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckInHandler{runner: runner, bindings: bindings, logger: logger}, nil
}

// Handle services one periodic trigger.
func (h *CheckInHandler) Handle(ctx context.Context, _ events.CloudWatchEvent) (CheckInResponse, error) {
	logger := h.logger.With("correlationId", uuid.NewString())

	for _, b := range h.bindings {
		h.runner.RegisterAction(b.Key, b.Action)
	}
	for _, b := range h.bindings {
		if err := h.runner.EnsureScheduled(ctx, b.Key); err != nil {
			logger.Error("failed to ensure action is scheduled", "actionKey", b.Key, "err", err)
			return CheckInResponse{}, err
		}
	}

	count, err := h.runner.ExecuteAll(ctx)
	if err != nil {
		logger.Error("scheduler pass failed", "executed", count, "err", err)
		return CheckInResponse{}, err
	}
	logger.Info("scheduler pass complete", "executed", count)
	return CheckInResponse{StatusCode: 200, Body: fmt.Sprintf("executed %d due tasks", count)}, nil
}
