package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cookfeed/internal/assistant"
	"cookfeed/internal/middleware"
	"cookfeed/internal/models"
	"cookfeed/internal/observability"
)

var (
	credentialMarkers = []string{"api key", "api_key", "apikey", "authentication", "unauthorized", "401", "incorrect api"}
	quotaMarkers      = []string{"rate limit", "rate_limit", "ratelimit", "quota", "429", "too many requests"}
)

type ChatService struct {
	completer assistant.Completer
	maxTokens int
	timeout   time.Duration
}

// NewChatService returns a service that reports itself unavailable when
// completer is nil.
func NewChatService(completer assistant.Completer, maxTokens int, timeout time.Duration) *ChatService {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChatService{completer: completer, maxTokens: maxTokens, timeout: timeout}
}

func (s *ChatService) Configured() bool {
	return s.completer != nil
}

// Chat forwards message to the completion API once and returns the reply.
func (s *ChatService) Chat(ctx context.Context, message string) (string, error) {
	if s.completer == nil {
		observability.ChatRequests.WithLabelValues("not_configured").Inc()
		return "", models.NewServiceUnavailableError("The assistant is not configured")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		observability.ChatRequests.WithLabelValues("invalid").Inc()
		return "", models.NewValidationError("message is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := observability.StartSpan(ctx, "assistant", "Complete")
	start := time.Now()
	reply, err := s.completer.Complete(ctx, assistant.SystemPrompt, message, s.maxTokens)
	observability.ChatLatency.Observe(time.Since(start).Seconds())
	observability.EndSpan(span, err)

	if err != nil {
		classified := ClassifyUpstreamError(err)
		var appErr *models.AppError
		if errors.As(classified, &appErr) {
			observability.ChatRequests.WithLabelValues(strings.ToLower(appErr.Code)).Inc()
		}
		middleware.Logger.ErrorContext(ctx, "chat completion failed", slog.String("error", err.Error()))
		return "", classified
	}

	observability.ChatRequests.WithLabelValues("ok").Inc()
	return strings.TrimSpace(reply), nil
}

// ClassifyUpstreamError maps a completion failure to a credential, quota or
// generic upstream error by inspecting its text.
func ClassifyUpstreamError(err error) error {
	text := strings.ToLower(err.Error())
	switch {
	case containsAny(text, credentialMarkers):
		return models.NewUpstreamAuthError(err)
	case containsAny(text, quotaMarkers):
		return models.NewUpstreamRateLimitError(err)
	default:
		return models.NewUpstreamError(err)
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
