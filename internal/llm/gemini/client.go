// Package gemini implements llm.Completer on the Gemini generateContent REST API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"maintenance-backend/internal/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

var defaultScopes = []string{
	"https://www.googleapis.com/auth/generative-language",
	"https://www.googleapis.com/auth/cloud-platform",
}

// Options configures a Client. When APIKey is empty, TokenSource is used, and
// when both are empty Google application default credentials are resolved.
type Options struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	BaseURL     string
	TokenSource oauth2.TokenSource
}

// Client calls models/{model}:generateContent with a JSON response schema.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Gemini client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := &http.Client{Timeout: timeout}
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		ts := opts.TokenSource
		if ts == nil {
			found, err := google.DefaultTokenSource(ctx, defaultScopes...)
			if err != nil {
				return nil, fmt.Errorf("gemini credentials: set GEMINI_API_KEY or configure application default credentials: %w", err)
			}
			ts = found
		}
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = timeout
	}

	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
	Temperature      *float32       `json:"temperature,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
}

func errorOf(body []byte) (string, string, bool) {
	var env struct {
		Error *struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &env) != nil || env.Error == nil {
		return "", "", false
	}
	return env.Error.Status, env.Error.Message, true
}

// Complete returns the concatenated text parts of the first candidate.
func (c *Client) Complete(ctx context.Context, in llm.CompletionRequest) (string, error) {
	temp := float32(0.2)
	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: in.Prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   in.Schema,
			Temperature:      &temp,
		},
	}
	if strings.TrimSpace(in.System) != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: in.System}}}
	}
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["x-goog-api-key"] = c.apiKey
	}
	var parsed generateResponse
	err := llm.PostJSON(ctx, c.httpClient, llm.Call{
		Provider: "gemini",
		URL:      c.baseURL + "/models/" + url.PathEscape(c.model) + ":generateContent",
		Headers:  headers,
		Body:     reqBody,
		ErrorOf:  errorOf,
	}, &parsed)
	if err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 {
		return "", errors.New("gemini response missing candidates")
	}
	if u := parsed.UsageMetadata; u != nil {
		llm.LogUsage("gemini", c.model, u.PromptTokenCount, u.CandidatesTokenCount, u.TotalTokenCount)
	}

	var b strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("gemini response empty content (finish_reason=%s)", parsed.Candidates[0].FinishReason)
	}
	return text, nil
}

var _ llm.Completer = (*Client)(nil)
