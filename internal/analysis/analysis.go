// Package analysis answers free-form questions about a ledger summary
// using a language model.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/smartspend-dev/smartspend/internal/report"
)

// Defaults for Config.
const (
	DefaultModel       = "gemini-2.5-flash-lite"
	DefaultTemperature = 0.2
)

// DefaultQuery is asked when the caller supplies no question.
const DefaultQuery = "Give me an overview of my spending and savings."

// ErrNoAnswer is returned when the model produced no text.
var ErrNoAnswer = errors.New("model returned no answer")

// Analyzer answers a question about a summary payload.
type Analyzer interface {
	Analyze(ctx context.Context, payload report.Payload, query string) (string, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, payload report.Payload, query string) (string, error)

// Analyze implements Analyzer.
func (f AnalyzerFunc) Analyze(ctx context.Context, payload report.Payload, query string) (string, error) {
	return f(ctx, payload, query)
}

// Config configures the Gemini analyzer. It is passed explicitly; nothing
// is read from the environment here.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	return c
}

// BuildPrompt renders the system instruction for a payload.
func BuildPrompt(payload report.Payload) (string, error) {
	data, err := payload.JSON()
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}
	var b strings.Builder
	b.WriteString("You're a financial assistant. Analyze this data:\n")
	b.Write(data)
	b.WriteString("\nProvide specific insights using the exact category names from the data.")
	return b.String(), nil
}

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini is an Analyzer backed by the Gemini API.
type Gemini struct {
	models generator
	cfg    Config
}

// NewGemini creates a Gemini analyzer with its own client.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{models: client.Models, cfg: cfg.withDefaults()}, nil
}

// Analyze implements Analyzer.
func (g *Gemini) Analyze(ctx context.Context, payload report.Payload, query string) (string, error) {
	prompt, err := BuildPrompt(payload)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(query) == "" {
		query = DefaultQuery
	}

	temp := g.cfg.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:       &temp,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: prompt}}},
	}
	contents := []*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{{Text: query}}}}

	resp, err := g.models.GenerateContent(ctx, g.cfg.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", g.cfg.Model, err)
	}
	return answerText(resp)
}

func answerText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoAnswer
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrNoAnswer
	}
	return b.String(), nil
}
