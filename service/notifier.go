package service

import (
	"context"
	"log/slog"
)

// Notification is a pipeline event pushed to the notification relay
type Notification struct {
	Event      string `json:"event"` // extraction.completed, extraction.failed
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	UserID     string `json:"user_id,omitempty"`
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
}

// Notifier delivers pipeline events to the notification/WebSocket relay.
// The relay itself is an external collaborator; delivery is best-effort and
// must never fail the pipeline.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the structured log. It stands in for
// the external relay in deployments that run without one.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n Notification) {
	slog.InfoContext(ctx, "notification",
		"event", n.Event,
		"document_id", n.DocumentID,
		"file_name", n.FileName,
		"user", n.UserID,
		"success", n.Success,
		"message", n.Message,
	)
}
