package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cookfeed/internal/assistant"
	"cookfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatService_Chat(t *testing.T) {
	t.Parallel()
	c := &completerStub{reply: "  Add more basil.\n"}
	svc := NewChatService(c, 120, time.Second)

	reply, err := svc.Chat(context.Background(), "  how do I make pesto? ")
	require.NoError(t, err)
	assert.Equal(t, "Add more basil.", reply)
	assert.Equal(t, 1, c.calls)
	assert.Equal(t, assistant.SystemPrompt, c.system)
	assert.Equal(t, "how do I make pesto?", c.user)
	assert.Equal(t, 120, c.maxTokens)
}

func TestChatService_NotConfigured(t *testing.T) {
	t.Parallel()
	svc := NewChatService(nil, 0, 0)
	assert.False(t, svc.Configured())

	_, err := svc.Chat(context.Background(), "hello")
	assertAppCode(t, err, models.CodeServiceUnavailable)
	assert.Equal(t, 503, models.StatusFor(err))
}

func TestChatService_BlankMessage(t *testing.T) {
	t.Parallel()
	c := &completerStub{reply: "unused"}
	svc := NewChatService(c, 0, 0)

	_, err := svc.Chat(context.Background(), "  \n ")
	assertAppCode(t, err, models.CodeValidation)
	assert.Zero(t, c.calls, "blank messages never reach the upstream")
}

func TestChatService_UpstreamFailureCalledOnce(t *testing.T) {
	t.Parallel()
	c := &completerStub{err: errors.New("error, status code: 429, message: Rate limit reached")}
	svc := NewChatService(c, 0, 0)

	_, err := svc.Chat(context.Background(), "hi")
	assertAppCode(t, err, models.CodeUpstreamRateLimit)
	assert.Equal(t, 1, c.calls)
}

func TestClassifyUpstreamError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		msg  string
		code string
	}{
		{"error, status code: 401, message: Incorrect API key provided", models.CodeUpstreamAuth},
		{"invalid api_key supplied", models.CodeUpstreamAuth},
		{"Authentication failed", models.CodeUpstreamAuth},
		{"You exceeded your current quota", models.CodeUpstreamRateLimit},
		{"429 Too Many Requests", models.CodeUpstreamRateLimit},
		{"rate_limit_exceeded", models.CodeUpstreamRateLimit},
		{"connection reset by peer", models.CodeUpstream},
		{"context deadline exceeded", models.CodeUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := ClassifyUpstreamError(errors.New(tt.msg))
			assertAppCode(t, err, tt.code)
			assert.Equal(t, 502, models.StatusFor(err))
		})
	}
}

func TestNewChatService_Defaults(t *testing.T) {
	t.Parallel()
	svc := NewChatService(&completerStub{}, -1, 0)
	assert.Equal(t, 500, svc.maxTokens)
	assert.Equal(t, 30*time.Second, svc.timeout)
}
