// Package genai provides the client for the Gemini generateContent API used
// to produce structured workout and meal plans.
//
// The model is asked for JSON-mode output against a documented example
// schema. Long generations get truncated by the token limit often enough
// that the parser carries a repair ladder (see repair.go).
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/easyfitness/easyfitness-data/internal/fault"
	"github.com/easyfitness/easyfitness-data/internal/plan"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client is the Gemini generateContent HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	temp       float64
	logger     *slog.Logger
}

// NewClient creates a Gemini client. timeout bounds the full generation
// round trip (generations run long; 180s is the production default).
func NewClient(apiKey, model string, maxTokens int, temp float64, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		maxTokens:  maxTokens,
		temp:       temp,
		logger:     logger,
	}
}

// WithBaseURL overrides the API base URL. Used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// --------------------------------------------------------------------------
// Wire shapes
// --------------------------------------------------------------------------

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// --------------------------------------------------------------------------
// Generation
// --------------------------------------------------------------------------

// TestConnection issues a trivial prompt to verify connectivity and
// credentials.
func (c *Client) TestConnection(ctx context.Context) (bool, string) {
	text, err := c.generateContent(ctx, "Reply with the single word: ok")
	if err != nil {
		c.logger.Error("Gemini connection test failed", "error", err)
		return false, err.Error()
	}
	return true, strings.TrimSpace(text)
}

// GenerateWorkoutPlan builds the workout prompt, invokes the model once,
// and parses the response. partial is true when only a repaired prefix of a
// truncated response could be recovered.
func (c *Client) GenerateWorkoutPlan(ctx context.Context, req plan.Request) (*plan.WorkoutPlan, bool, error) {
	text, err := c.generateContent(ctx, buildWorkoutPrompt(req))
	if err != nil {
		return nil, false, err
	}

	var p plan.WorkoutPlan
	partial, err := parsePlanJSON(text, &p)
	if err != nil {
		return nil, false, err
	}
	c.logger.Info("workout plan generated",
		"plan_name", p.PlanName, "days", len(p.Days), "partial", partial)
	return &p, partial, nil
}

// GenerateMealPlan builds the meal prompt, invokes the model once, and
// parses the response.
func (c *Client) GenerateMealPlan(ctx context.Context, req plan.Request) (*plan.MealPlan, bool, error) {
	text, err := c.generateContent(ctx, buildMealPrompt(req))
	if err != nil {
		return nil, false, err
	}

	var p plan.MealPlan
	partial, err := parsePlanJSON(text, &p)
	if err != nil {
		return nil, false, err
	}
	c.logger.Info("meal plan generated",
		"plan_name", p.PlanName, "days", len(p.Days), "partial", partial)
	return &p, partial, nil
}

// generateContent performs a single generateContent call and returns the
// raw candidate text. Safety blocks and empty responses are surfaced
// verbatim as distinct generation faults, never retried here.
func (c *Client) generateContent(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      c.temp,
			MaxOutputTokens:  c.maxTokens,
			ResponseMimeType: "application/json",
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fault.Wrap(err, fault.CodeInternal, "marshal request")
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fault.Wrap(err, fault.CodeInternal, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fault.WrapRetryable(err, fault.CodeConnection, "generateContent request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fault.WrapRetryable(err, fault.CodeConnection, "read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return "", fault.Newf(fault.CodeBadStatus, "Gemini returned %d: %s", resp.StatusCode, truncate(body, 200)).
			WithMetadata("status", fmt.Sprintf("%d", resp.StatusCode))
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fault.Wrap(err, fault.CodeParse, "decode generateContent response")
	}

	if gr.PromptFeedback.BlockReason != "" {
		return "", fault.Newf(fault.CodeGeneration, "prompt blocked: %s", gr.PromptFeedback.BlockReason)
	}
	if len(gr.Candidates) == 0 {
		return "", fault.New(fault.CodeGeneration, "empty response: no candidates returned")
	}

	cand := gr.Candidates[0]
	if cand.FinishReason == "SAFETY" {
		return "", fault.New(fault.CodeGeneration, "response blocked by safety filter")
	}

	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fault.New(fault.CodeGeneration, "empty response: candidate has no text")
	}
	return text, nil
}

func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
