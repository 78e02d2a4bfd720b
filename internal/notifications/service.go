// Package notifications pushes run results to an ntfy topic when one is
// configured. Without a topic every call is a no-op.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mediathek/internal/config"
)

const userAgent = "Mediathek/0.1.0"

// Service is the notification surface exposed to the workflow.
type Service interface {
	NotifyRunCompleted(ctx context.Context, integrated, skipped int, duration time.Duration) error
	NotifyRunFailed(ctx context.Context, err error) error
	NotifyMediasetIntegrated(ctx context.Context, title string, version int) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service, or a noop one when no topic is
// configured.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		onCompletion: cfg.Notifications.OnCompletion,
		onFailure:    cfg.Notifications.OnFailure,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	onCompletion bool
	onFailure    bool
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, integrated, skipped int, duration time.Duration) error {
	if !n.onCompletion {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	message := fmt.Sprintf("Run complete: %d mediasets integrated, %d skipped in %s",
		integrated, skipped, duration)
	return n.send(ctx, payload{
		title:   "Mediathek - Run Complete",
		message: message,
		tags:    []string{"mediathek", "run", "completed"},
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, err error) error {
	if !n.onFailure {
		return nil
	}
	message := "Run failed"
	if err != nil {
		message = "Run failed: " + strings.TrimSpace(err.Error())
	}
	return n.send(ctx, payload{
		title:    "Mediathek - Run Failed",
		message:  message,
		tags:     []string{"mediathek", "run", "failed"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyMediasetIntegrated(ctx context.Context, title string, version int) error {
	if !n.onCompletion {
		return nil
	}
	return n.send(ctx, payload{
		title:   "Mediathek - Integrated",
		message: fmt.Sprintf("Integrated %s (version %d)", strings.TrimSpace(title), version),
		tags:    []string{"mediathek", "library", "integrated"},
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Mediathek - Test",
		message:  "Notification system test",
		tags:     []string{"mediathek", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyRunFailed(context.Context, error) error                      { return nil }
func (noopService) NotifyMediasetIntegrated(context.Context, string, int) error       { return nil }
func (noopService) TestNotification(context.Context) error                            { return nil }
