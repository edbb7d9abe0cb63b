package gemini

import (
	"context"
	"fmt"
	"math"

	"github.com/fwojciec/babel"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ babel.Provider = (*Client)(nil)

// Client implements [babel.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [babel.Stream] of text fragments.
func (c *Client) Stream(ctx context.Context, req babel.Request) (babel.Stream, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	seq := c.client.Models.GenerateContentStream(ctx, model, ConvertTurns(req.Turns), BuildConfig(req))
	return NewStreamFromIter(ctx, seq), nil
}

// BuildConfig maps the instruction and generation parameters onto a
// genai config. Exported for testing.
func BuildConfig(req babel.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(min(maxTokens, math.MaxInt32)),
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertTurns converts babel Turns to genai Contents. Gemini names the
// assistant role "model". Exported for testing.
func ConvertTurns(turns []babel.Turn) []*genai.Content {
	result := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := "user"
		if t.Role == babel.RoleAssistant {
			role = "model"
		}
		result = append(result, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: t.Content}},
		})
	}
	return result
}
