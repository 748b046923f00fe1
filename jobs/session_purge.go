package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/meridianshop/meridian-admin/internal/jobs"
)

const (
	// TaskSessionPurge removes expired session registrations.
	TaskSessionPurge = "sessions:purge"
)

// SessionPurgePayload carries scheduling metadata.
type SessionPurgePayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewSessionPurgeTask constructs an Asynq task for session cleanup.
func NewSessionPurgeTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SessionPurgePayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionPurge, body, asynq.Queue(QueueDefault)), nil
}

// NewSessionPurgeHandler deletes expired rows from sessions. Redis keys
// expire on their own; this keeps the bookkeeping table in step.
func NewSessionPurgeHandler(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("session_purge")
		var payload SessionPurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if pool == nil {
			return tracker.End(nil)
		}
		tag, err := pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
		if err != nil {
			if logger != nil {
				logger.Error("purge sessions", slog.Any("error", err))
			}
			return tracker.End(err)
		}
		if logger != nil {
			logger.Info("purged expired sessions",
				slog.String("job", "session_purge"),
				slog.Int64("removed", tag.RowsAffected()))
		}
		return tracker.End(nil)
	}
}
