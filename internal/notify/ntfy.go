// Package notify dispatches push notifications through an ntfy topic
package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/adc-dairy/milkroom/internal/adapter"
	"github.com/adc-dairy/milkroom/internal/logger"
)

// Priority maps to the ntfy priority header
type Priority string

const (
	PriorityDefault Priority = "default"
	PriorityHigh    Priority = "high"
)

// Notifier delivers a titled message to the configured channel
//
//go:generate mockgen -source=ntfy.go -destination=../mocks/notifier.go -package=mocks -mock_names=Notifier=MockNotifier
type Notifier interface {
	Send(ctx context.Context, title, message string, priority Priority) error
}

type ntfyNotifier struct {
	http    adapter.HTTPClient
	url     string
	enabled bool
}

// NewNtfyNotifier creates a notifier posting to an ntfy topic URL. When
// disabled, Send logs and drops the message so pipelines run unchanged in
// environments without a notification channel.
func NewNtfyNotifier(httpClient adapter.HTTPClient, url string, enabled bool) Notifier {
	return &ntfyNotifier{http: httpClient, url: url, enabled: enabled}
}

func (n *ntfyNotifier) Send(ctx context.Context, title, message string, priority Priority) error {
	if !n.enabled {
		logger.Debug("notifications disabled, dropping message", zap.String("title", title))
		return nil
	}

	headers := map[string]string{
		"Title":    title,
		"Priority": string(priority),
	}

	status, body, err := n.http.Post(ctx, n.url, headers, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("notification rejected with status %d: %s", status, string(body))
	}

	logger.Info("notification sent", zap.String("title", title))
	return nil
}
