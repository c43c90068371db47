package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageResponse_Text(t *testing.T) {
	var nilResp *MessageResponse
	assert.Equal(t, "", nilResp.Text())

	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: `{"mortgages":`},
		{Type: "tool_use", Text: "ignored"},
		{Text: `[]}`},
	}}
	assert.Equal(t, `{"mortgages":[]}`, resp.Text())
}

func TestCachedSystem(t *testing.T) {
	blocks := CachedSystem("prompt")
	require.Len(t, blocks, 1)
	assert.Equal(t, "prompt", blocks[0].Text)
	require.NotNil(t, blocks[0].CacheControl)
	assert.Equal(t, "5m", blocks[0].CacheControl.TTL)
}

func TestTokenUsage_Log(t *testing.T) {
	assert.NotPanics(t, func() {
		TokenUsage{InputTokens: 10, OutputTokens: 2}.Log("claude-haiku-4-5-20251001", "extract")
	})
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 0, StatusCode(nil))
	assert.Equal(t, 0, StatusCode(assert.AnError))
}
