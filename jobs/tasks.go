package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/meridianshop/meridian-admin/internal/jobs"
)

const (
	// QueueDefault is the queue every Meridian job runs on.
	QueueDefault = "default"
	// TaskTypeSendEmail delivers one transactional email.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload is the body of a mail:send task.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask builds a mail:send task for the default queue.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.Queue(QueueDefault)), nil
}

// NewSendEmailHandler processes mail:send tasks. Delivery is a structured
// log line for now.
// TODO: relay through the SMTP_* endpoint once the Mailpit container is part
// of the compose file.
func NewSendEmailHandler(logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("send_email")
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if logger != nil {
			logger.Info("send email",
				slog.String("job", "send_email"),
				slog.String("to", payload.To),
				slog.String("subject", payload.Subject))
		}
		return tracker.End(nil)
	}
}

// AccessNotifier queues an email for a user whose roles or overrides were
// edited. Enqueue failures are logged and dropped; the grant change itself
// is already committed.
type AccessNotifier struct {
	client *Client
	logger *slog.Logger
}

// NewAccessNotifier wraps a queue client for access-change notices.
func NewAccessNotifier(client *Client, logger *slog.Logger) *AccessNotifier {
	return &AccessNotifier{client: client, logger: logger}
}

// AccessChanged enqueues a mail:send task describing the change.
func (n *AccessNotifier) AccessChanged(ctx context.Context, email, summary string) {
	if n == nil || n.client == nil || email == "" {
		return
	}
	_, err := n.client.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      email,
		Subject: "Your Meridian access changed",
		Body:    summary,
	})
	if err != nil && n.logger != nil {
		n.logger.Warn("queue access notice",
			slog.String("to", email),
			slog.Any("error", err))
	}
}
