package studytips

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"examtrack/internal/config"
	"examtrack/internal/model"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini streams tips from the Gemini streamGenerateContent endpoint using
// server-sent events.
type Gemini struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

var _ Generator = (*Gemini)(nil)

// NewGemini returns a client for model. An empty apiKey is allowed; every
// call then fails with ErrNotConfigured.
func NewGemini(apiKey, model string) *Gemini {
	model = normalizeModel(model)
	if model == "" {
		model = config.DefaultStudyTipsModel
	}
	return &Gemini{
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		baseURL: defaultGeminiBaseURL,
		// The caller's context bounds the stream.
		httpClient: &http.Client{},
	}
}

func normalizeModel(model string) string {
	model = strings.TrimSpace(model)
	return strings.TrimPrefix(model, "models/")
}

func (g *Gemini) StreamTips(ctx context.Context, examName string, category model.Category, onChunk func(string) error) error {
	if g.apiKey == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt(examName, category)}}}},
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ServiceError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return &ServiceError{Status: resp.StatusCode, Err: fmt.Errorf("gemini api error: %s", errResp.Error.Message)}
		}
		return &ServiceError{Status: resp.StatusCode, Err: fmt.Errorf("gemini api error: %s", resp.Status)}
	}

	return readEvents(ctx, resp, onChunk)
}

// readEvents handles the "data: {...}" lines of the event stream. Other SSE
// fields and blank separator lines are ignored.
func readEvents(ctx context.Context, resp *http.Response, onChunk func(string) error) error {
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)

	for sc.Scan() {
		line := sc.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			continue
		}

		var ev generateResponse
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return &ServiceError{Err: fmt.Errorf("decoding stream event: %w", err)}
		}
		if ev.Error != nil && ev.Error.Message != "" {
			return &ServiceError{Err: fmt.Errorf("gemini api error: %s", ev.Error.Message)}
		}
		if text := ev.text(); text != "" {
			if err := onChunk(text); err != nil {
				return err
			}
		}
	}

	if err := sc.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ServiceError{Err: fmt.Errorf("reading stream: %w", err)}
	}
	return nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type apiError struct {
	Message string `json:"message"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

type errorResponse struct {
	Error apiError `json:"error"`
}
