package anthropic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	lastReq MessageRequest
	resp    *MessageResponse
	err     error
}

func (f *fakeClient) CreateMessage(_ context.Context, req MessageRequest) (*MessageResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func TestMessageResponse_Text(t *testing.T) {
	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "hello "},
		{Type: "tool_use", Text: "ignored"},
		{Type: "text", Text: "world"},
	}}
	assert.Equal(t, "hello world", resp.Text())
}

func TestGenerate_BuildsSingleTurnRequest(t *testing.T) {
	fake := &fakeClient{resp: &MessageResponse{
		Content: []ContentBlock{{Type: "text", Text: "answer"}},
	}}

	out, err := Generate(context.Background(), fake, "claude-haiku-4-5-20251001", "be brief", "question", 1024)
	require.NoError(t, err)
	assert.Equal(t, "answer", out)

	assert.Equal(t, "claude-haiku-4-5-20251001", fake.lastReq.Model)
	assert.Equal(t, "be brief", fake.lastReq.System)
	require.Len(t, fake.lastReq.Messages, 1)
	assert.Equal(t, "user", fake.lastReq.Messages[0].Role)
	assert.Equal(t, "question", fake.lastReq.Messages[0].Content)
}

func TestTokenUsage_EstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}
	assert.InDelta(t, 0.80+2.00, u.EstimateCost("claude-haiku-4-5-20251001"), 1e-9)
	assert.Zero(t, u.EstimateCost("unknown-model"))
}
