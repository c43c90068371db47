package extract

import (
	"context"

	"github.com/sells-group/jeonse-risk/internal/resilience"
	"github.com/sells-group/jeonse-risk/pkg/anthropic"
	"github.com/sells-group/jeonse-risk/pkg/gemini"
)

// AnthropicCompleter adapts an Anthropic client to Completer.
type AnthropicCompleter struct {
	Client    anthropic.Client
	Model     string
	MaxTokens int64
}

// Complete implements Completer. Overloaded and rate-limited responses are
// marked transient so the retry policy picks them up.
func (a *AnthropicCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	temp := 0.0
	resp, err := a.Client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.Model,
		MaxTokens:   a.MaxTokens,
		System:      anthropic.CachedSystem(system),
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		if code := anthropic.StatusCode(err); resilience.IsTransientHTTPStatus(code) {
			return "", resilience.NewTransientError(err, code)
		}
		return "", err
	}
	resp.Usage.Log(a.Model, "extract")
	return resp.Text(), nil
}

// GeminiCompleter adapts a Gemini client to Completer.
type GeminiCompleter struct {
	Client gemini.Client
}

// Complete implements Completer.
func (g *GeminiCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	return g.Client.Generate(ctx, system, prompt)
}
