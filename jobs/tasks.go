// Package jobs defines the background tasks processed by cmd/worker.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/identity"
	"github.com/250793/Projeto-mobile-saude-mais-sub001/internal/provider"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskIdentityCleanup removes a provider identity orphaned by a failed
	// signup (directory insert failed after the provider account existed).
	TaskIdentityCleanup = "identity:cleanup"
)

// IdentityCleanupPayload identifies the orphaned provider account.
type IdentityCleanupPayload struct {
	SubjectID string `json:"subject_id"`
}

// NewIdentityCleanupTask constructs an Asynq task.
func NewIdentityCleanupTask(payload IdentityCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdentityCleanup, data, asynq.MaxRetry(10), asynq.Queue(QueueDefault)), nil
}

// IdentityCleanupHandler processes TaskIdentityCleanup tasks.
type IdentityCleanupHandler struct {
	Provider  provider.Provider
	Directory identity.Directory
	Logger    *slog.Logger
}

// ProcessTask deletes the orphaned provider identity. Provider outages are
// retried; a directory record, if one exists, is removed best effort.
func (h *IdentityCleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload IdentityCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.SubjectID == "" {
		return asynq.SkipRetry
	}

	if err := h.Provider.DeleteUser(ctx, payload.SubjectID); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("identity cleanup: provider delete",
				slog.String("subject", payload.SubjectID), slog.Any("error", err))
		}
		return err
	}
	if err := h.Directory.Delete(ctx, payload.SubjectID); err != nil && !errors.Is(err, identity.ErrNotFound) {
		if h.Logger != nil {
			h.Logger.Warn("identity cleanup: directory delete",
				slog.String("subject", payload.SubjectID), slog.Any("error", err))
		}
		return err
	}
	if h.Logger != nil {
		h.Logger.Info("identity cleanup done", slog.String("subject", payload.SubjectID))
	}
	return nil
}

// Enqueuer submits tasks to the queue. It satisfies auth.CleanupEnqueuer.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer constructs an Enqueuer.
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueIdentityCleanup schedules removal of an orphaned provider identity.
func (e *Enqueuer) EnqueueIdentityCleanup(ctx context.Context, subjectID string) error {
	task, err := NewIdentityCleanupTask(IdentityCleanupPayload{SubjectID: subjectID})
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task)
	return err
}
