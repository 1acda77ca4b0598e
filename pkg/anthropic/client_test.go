package anthropic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	calls int
	resp  *MessageResponse
	err   error
}

func (s *stubClient) CreateMessage(_ context.Context, _ MessageRequest) (*MessageResponse, error) {
	s.calls++
	return s.resp, s.err
}

func TestMessageResponse_Text(t *testing.T) {
	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "hello "},
		{Type: "text", Text: "world"},
	}}
	assert.Equal(t, "hello world", resp.Text())

	empty := &MessageResponse{}
	assert.Equal(t, "", empty.Text())
}

func TestTokenUsage_Add(t *testing.T) {
	var u TokenUsage
	u.Add(TokenUsage{InputTokens: 100, OutputTokens: 50})
	u.Add(TokenUsage{InputTokens: 20, OutputTokens: 10})
	assert.Equal(t, int64(120), u.InputTokens)
	assert.Equal(t, int64(60), u.OutputTokens)
}

func TestTokenUsage_EstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 4.80, u.EstimateCost("claude-haiku-4-5-20251001"), 0.001)
	assert.InDelta(t, 18.00, u.EstimateCost("claude-sonnet-4-5-20250929"), 0.001)
	assert.Zero(t, u.EstimateCost("unknown-model"))
}

func TestRateLimited_ZeroRPMReturnsInner(t *testing.T) {
	inner := &stubClient{}
	assert.Same(t, Client(inner), RateLimited(inner, 0))
	assert.Same(t, Client(inner), RateLimited(inner, -5))
}

func TestRateLimited_PassesThrough(t *testing.T) {
	inner := &stubClient{resp: &MessageResponse{ID: "msg-1"}}
	c := RateLimited(inner, 600)

	resp, err := c.CreateMessage(context.Background(), MessageRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", resp.ID)
	assert.Equal(t, 1, inner.calls)
}

func TestRateLimited_ContextCancelDuringWait(t *testing.T) {
	inner := &stubClient{resp: &MessageResponse{}}
	// One request per minute: the second call has to wait for a token.
	c := RateLimited(inner, 1)

	_, err := c.CreateMessage(context.Background(), MessageRequest{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.CreateMessage(ctx, MessageRequest{})
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
