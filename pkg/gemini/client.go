// Package gemini wraps the Google Gemini SDK behind the narrow interface the
// extraction backend needs.
package gemini

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client generates a single text completion.
type Client interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Close() error
}

type sdkClient struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini client for model.
func NewClient(ctx context.Context, apiKey, model string) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("gemini: api key is required")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return &sdkClient{client: c, model: model}, nil
}

// Generate sends one prompt with a system instruction and asks for JSON.
// A model handle is built per call so concurrent calls never share the
// mutable SystemInstruction field.
func (c *sdkClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	m := c.client.GenerativeModel(c.model)
	m.SetTemperature(0)
	m.ResponseMIMEType = "application/json"
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", eris.Wrap(err, "gemini: generate content")
	}
	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	if resp.UsageMetadata != nil {
		zap.L().Debug("gemini: token usage",
			zap.String("model", c.model),
			zap.Int32("input_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("output_tokens", resp.UsageMetadata.CandidatesTokenCount),
		)
	}
	return text, nil
}

// Close releases the underlying connection.
func (c *sdkClient) Close() error {
	if err := c.client.Close(); err != nil {
		return eris.Wrap(err, "gemini: close client")
	}
	return nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", eris.New("gemini: empty response")
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", eris.New("gemini: response has no text parts")
	}
	return sb.String(), nil
}
