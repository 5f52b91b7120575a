package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lightbox/internal/config"
	"lightbox/internal/services"
)

// Service defines the notification surface exposed to the composer and
// publish orchestrator.
type Service interface {
	NotifyPublishStarted(ctx context.Context, sessionID int64, mediaCount int) error
	NotifyPublishCompleted(ctx context.Context, sessionID int64, postID string) error
	NotifyPublishFailed(ctx context.Context, sessionID int64, err error) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
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
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		publishEvents: cfg.Notifications.Publish,
		errorEvents:   cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	publishEvents bool
	errorEvents   bool
}

func (n *ntfyService) NotifyPublishStarted(ctx context.Context, sessionID int64, mediaCount int) error {
	if !n.publishEvents {
		return nil
	}
	message := fmt.Sprintf("Publishing draft %d", sessionID)
	if mediaCount > 0 {
		message = fmt.Sprintf("Publishing draft %d with %d media files", sessionID, mediaCount)
	}
	data := payload{
		title:   "Lightbox - Publishing",
		message: message,
		tags:    []string{"lightbox", "publish", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishCompleted(ctx context.Context, sessionID int64, postID string) error {
	if !n.publishEvents {
		return nil
	}
	message := fmt.Sprintf("Draft %d is live", sessionID)
	if postID = strings.TrimSpace(postID); postID != "" {
		message = fmt.Sprintf("Draft %d is live as post %s", sessionID, postID)
	}
	data := payload{
		title:    "Lightbox - Published",
		message:  message,
		tags:     []string{"lightbox", "publish", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishFailed(ctx context.Context, sessionID int64, cause error) error {
	if !n.publishEvents {
		return nil
	}
	reason := "unknown"
	if cause != nil {
		reason = strings.TrimSpace(cause.Error())
	}
	data := payload{
		title:    "Lightbox - Publish Failed",
		message:  fmt.Sprintf("Draft %d failed to publish: %s\nThe draft is unchanged and can be retried", sessionID, reason),
		tags:     []string{"lightbox", "publish", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errorEvents {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Lightbox - Error",
		message:  builder.String(),
		tags:     []string{"lightbox", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Lightbox - Test",
		message:  "Notification system test",
		tags:     []string{"lightbox", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", services.UserAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("ntfy returned %d", resp.StatusCode)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyPublishStarted(context.Context, int64, int) error      { return nil }
func (noopService) NotifyPublishCompleted(context.Context, int64, string) error { return nil }
func (noopService) NotifyPublishFailed(context.Context, int64, error) error     { return nil }
func (noopService) NotifyError(context.Context, error, string) error            { return nil }
func (noopService) TestNotification(context.Context) error                      { return nil }

// NewNoop returns a notification service that drops every event, for
// tests and unconfigured daemons.
func NewNoop() Service {
	return noopService{}
}
