// Package exercisedb provides the HTTP client for the ExerciseDB catalog
// API (RapidAPI).
//
// ExerciseDB uses an x-rapidapi-key/x-rapidapi-host header pair and wraps
// every response in a {success, data} envelope. Rate limiting is handled
// via a token bucket limiter.
package exercisedb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/easyfitness/easyfitness-data/internal/fault"
)

const livenessTimeout = 10 * time.Second

// Client is the shared HTTP client for all ExerciseDB endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiHost    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an ExerciseDB HTTP client with rate limiting.
func NewClient(baseURL, apiKey, apiHost string, requestsPerMinute int, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		apiHost:    apiHost,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// envelope is the common ExerciseDB response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// get performs a rate-limited GET request to an ExerciseDB endpoint.
// Transport failures come back as CONNECTION_ERROR faults; any response,
// even a bad status, is returned to the caller for classification.
func (c *Client) get(ctx context.Context, path string, params url.Values) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fault.WrapRetryable(err, fault.CodeConnection, "rate limit wait")
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fault.Wrap(err, fault.CodeInternal, "create request")
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fault.WrapRetryable(err, fault.CodeConnection, fmt.Sprintf("request %s", path))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fault.WrapRetryable(err, fault.CodeConnection, "read response body")
	}

	return resp.StatusCode, body, nil
}

// decodeEnvelope peels the {success, data} wrapper and unmarshals data into v.
func decodeEnvelope(body []byte, v any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fault.Wrap(err, fault.CodeParse, "decode response envelope")
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fault.Wrap(err, fault.CodeParse, "decode response data")
	}
	return nil
}

// badStatus builds the BAD_STATUS fault for a non-200 response, carrying
// the status code and a body excerpt.
func badStatus(path string, status int, body []byte) error {
	return fault.Newf(fault.CodeBadStatus, "ExerciseDB %s returned %d: %s", path, status, truncate(body, 200)).
		WithMetadata("status", fmt.Sprintf("%d", status))
}

// TestConnection probes the liveness endpoint. Success iff HTTP 200.
func (c *Client) TestConnection(ctx context.Context) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, livenessTimeout)
	defer cancel()

	status, _, err := c.get(ctx, "/liveness", nil)
	if err != nil {
		c.logger.Error("ExerciseDB connection test failed", "error", err)
		return false, fmt.Sprintf("Connection error: %v", err)
	}
	if status != http.StatusOK {
		c.logger.Warn("ExerciseDB connection test bad status", "status", status)
		return false, fmt.Sprintf("API returned status code: %d", status)
	}
	return true, "API connection successful"
}

// SearchExercises runs a keyword search and returns the ranked match list.
// An empty term fails fast with a validation fault before any network call.
func (c *Client) SearchExercises(ctx context.Context, term string) ([]SearchResult, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fault.New(fault.CodeValidation, "search term is required")
	}

	params := url.Values{}
	params.Set("search", term)

	status, body, err := c.get(ctx, "/exercises/search", params)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, badStatus("/exercises/search", status, body)
	}

	var results []SearchResult
	if err := decodeEnvelope(body, &results); err != nil {
		return nil, err
	}
	c.logger.Debug("exercise search", "term", term, "results", len(results))
	return results, nil
}

// GetExercises lists exercises with optional name/keyword filters.
func (c *Client) GetExercises(ctx context.Context, name, keywords string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	if name != "" {
		params.Set("name", name)
	}
	if keywords != "" {
		params.Set("keywords", keywords)
	}

	status, body, err := c.get(ctx, "/exercises", params)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, badStatus("/exercises", status, body)
	}

	var results []SearchResult
	if err := decodeEnvelope(body, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetExerciseByID fetches the full detail record for one exercise. A 404
// maps to NOT_FOUND, distinct from other bad statuses: it means "try a
// different match", not "the service is broken".
func (c *Client) GetExerciseByID(ctx context.Context, id string) (*ExerciseDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fault.New(fault.CodeValidation, "exercise ID is required")
	}

	path := "/exercises/" + url.PathEscape(id)
	status, body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		var detail ExerciseDetail
		if err := decodeEnvelope(body, &detail); err != nil {
			return nil, err
		}
		return &detail, nil
	case http.StatusNotFound:
		return nil, fault.Newf(fault.CodeNotFound, "no exercise found with ID: %s", id)
	default:
		return nil, badStatus(path, status, body)
	}
}

// --------------------------------------------------------------------------
// Static reference lists
// --------------------------------------------------------------------------

func (c *Client) GetEquipments(ctx context.Context) ([]ReferenceItem, error) {
	return c.referenceList(ctx, "/equipments")
}

func (c *Client) GetExerciseTypes(ctx context.Context) ([]ReferenceItem, error) {
	return c.referenceList(ctx, "/exercisetypes")
}

func (c *Client) GetBodyParts(ctx context.Context) ([]ReferenceItem, error) {
	return c.referenceList(ctx, "/bodyparts")
}

func (c *Client) GetMuscles(ctx context.Context) ([]ReferenceItem, error) {
	return c.referenceList(ctx, "/muscles")
}

func (c *Client) referenceList(ctx context.Context, path string) ([]ReferenceItem, error) {
	status, body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, badStatus(path, status, body)
	}

	var items []ReferenceItem
	if err := decodeEnvelope(body, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetReferenceData fans out to the four reference-list endpoints. It
// succeeds only if all four succeed; otherwise the per-call errors are
// aggregated into one failure. No partial success.
func (c *Client) GetReferenceData(ctx context.Context) (*ReferenceData, error) {
	var (
		data ReferenceData
		errs []string
	)

	if items, err := c.GetEquipments(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("equipments: %v", err))
	} else {
		data.Equipments = items
	}
	if items, err := c.GetExerciseTypes(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("exercise types: %v", err))
	} else {
		data.ExerciseTypes = items
	}
	if items, err := c.GetBodyParts(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("body parts: %v", err))
	} else {
		data.BodyParts = items
	}
	if items, err := c.GetMuscles(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("muscles: %v", err))
	} else {
		data.Muscles = items
	}

	if len(errs) > 0 {
		c.logger.Warn("reference data fetch incomplete", "errors", strings.Join(errs, "; "))
		return nil, fault.Newf(fault.CodeBadStatus, "reference data requests failed: %s", strings.Join(errs, "; "))
	}

	c.logger.Info("reference data fetched", "counts", data.Counts())
	return &data, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
