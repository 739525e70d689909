// Package studytips streams generated study advice for an exam.
package studytips

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"examtrack/internal/config"
	"examtrack/internal/model"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("gemini api key not configured")

// ServiceError reports a failed request or a broken stream. Chunks delivered
// before the failure remain delivered.
type ServiceError struct {
	Status int
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("study tips service error (HTTP %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("study tips service error: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Generator streams study tips. onChunk is called once per text fragment in
// arrival order; returning an error from it stops the stream.
type Generator interface {
	StreamTips(ctx context.Context, examName string, category model.Category, onChunk func(string) error) error
}

// NewGeneratorFromConfig builds the configured generator. lookupEnv resolves
// the API key variable (os.LookupEnv in production).
func NewGeneratorFromConfig(cfg config.StudyTipsConfig, lookupEnv func(string) (string, bool)) (Generator, error) {
	switch cfg.Provider {
	case "gemini", "":
		envName := cfg.APIKeyEnv
		if envName == "" {
			envName = config.DefaultAPIKeyEnv
		}
		key, _ := lookupEnv(envName)
		g := NewGemini(key, cfg.Model)
		if cfg.BaseURL != "" {
			g.baseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		return g, nil
	case "none":
		return disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown study tips provider: %s", cfg.Provider)
	}
}

type disabled struct{}

func (disabled) StreamTips(context.Context, string, model.Category, func(string) error) error {
	return ErrNotConfigured
}

// Collect runs g and returns every chunk joined together. On failure it
// returns what arrived before the error along with the error.
func Collect(ctx context.Context, g Generator, examName string, category model.Category) (string, error) {
	var b strings.Builder
	err := g.StreamTips(ctx, examName, category, func(chunk string) error {
		b.WriteString(chunk)
		return nil
	})
	return b.String(), err
}

func prompt(examName string, category model.Category) string {
	return fmt.Sprintf("Generate a concise, bulleted list of actionable study tips for the \"%s\" exam in the \"%s\" category. "+
		"Focus on key strategies, important topics, and recommended resource types. "+
		"Do not include a preamble or conclusion, just the bullet points. Use markdown for formatting.",
		examName, string(category))
}
