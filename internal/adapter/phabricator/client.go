// Package phabricator provides a thin Conduit API client covering the
// differential endpoints a review needs.
package phabricator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	llmhttp "github.com/phabreview/phabreview/internal/adapter/llm/http"
	"github.com/phabreview/phabreview/internal/domain"
)

const (
	providerName   = "phabricator"
	defaultTimeout = 60 * time.Second

	// Conduit tolerates bursts but throttles sustained load.
	requestsPerSecond = 1
	burstSize         = 5
)

var (
	ErrInvalidRevisionID = errors.New("invalid revision ID")
	ErrRevisionNotFound  = errors.New("revision not found")
	ErrDiffNotFound      = errors.New("diff not found")
	ErrNoDiff            = errors.New("no diff available for revision")
)

// ConduitError is an application-level error reported by Phabricator
// inside an otherwise successful HTTP response.
type ConduitError struct {
	Code string
	Info string
}

func (e *ConduitError) Error() string {
	info := e.Info
	if info == "" {
		info = "Unknown error"
	}
	return fmt.Sprintf("Phabricator error (%s): %s", e.Code, info)
}

// Client talks to a Phabricator install's Conduit API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	retry   llmhttp.RetryConfig
}

// NewClient creates a Conduit client. The base URL may point at the
// install root or directly at its /api endpoint.
func NewClient(baseURL, token string) *Client {
	normalized := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(normalized, "/api") {
		normalized += "/api"
	}
	return &Client{
		baseURL: normalized,
		token:   token,
		client:  &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
		retry:   llmhttp.DefaultRetryConfig(),
	}
}

// SetTimeout sets the per-request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// SetRetryConfig overrides the retry policy.
func (c *Client) SetRetryConfig(config llmhttp.RetryConfig) {
	c.retry = config
}

// GetRevision fetches revision metadata by ID ("D12345" or "12345").
func (c *Client) GetRevision(ctx context.Context, revisionID string) (*domain.Revision, error) {
	clean := strings.TrimSpace(revisionID)
	if clean != "" && (clean[0] == 'D' || clean[0] == 'd') {
		clean = clean[1:]
	}
	if !allDigits(clean) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRevisionID, revisionID)
	}

	params := url.Values{}
	params.Set("constraints[ids][0]", clean)
	params.Set("attachments[reviewers]", "false")

	raw, err := c.postConduit(ctx, "differential.revision.search", params)
	if err != nil {
		return nil, err
	}

	var result revisionSearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode revision search: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRevisionNotFound, revisionID)
	}

	fields := result.Data[0].Fields
	status := fields.Status.Name
	if status == "" {
		status = "Unknown"
	}

	return &domain.Revision{
		ID:       clean,
		Title:    fields.Title,
		Status:   status,
		URI:      fields.URI,
		Summary:  fields.Summary,
		DiffPHID: fields.DiffPHID,
	}, nil
}

// GetRawDiff fetches the raw unified diff for a diff PHID. Conduit has
// no PHID-keyed raw diff endpoint, so the numeric diff ID is resolved
// through differential.diff.search first.
func (c *Client) GetRawDiff(ctx context.Context, diffPHID string) (string, error) {
	params := url.Values{}
	params.Set("constraints[phids][0]", diffPHID)

	raw, err := c.postConduit(ctx, "differential.diff.search", params)
	if err != nil {
		return "", err
	}

	var result diffSearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode diff search: %w", err)
	}
	if len(result.Data) == 0 {
		return "", fmt.Errorf("%w: %s", ErrDiffNotFound, diffPHID)
	}

	params = url.Values{}
	params.Set("diffID", strconv.Itoa(result.Data[0].ID))

	raw, err = c.postConduit(ctx, "differential.getrawdiff", params)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", nil
	}

	var diff string
	if err := json.Unmarshal(raw, &diff); err != nil {
		return "", fmt.Errorf("decode raw diff: %w", err)
	}
	return diff, nil
}

// GetRevisionDiff fetches revision metadata together with its raw diff.
func (c *Client) GetRevisionDiff(ctx context.Context, revisionID string) (*domain.Revision, string, error) {
	revision, err := c.GetRevision(ctx, revisionID)
	if err != nil {
		return nil, "", err
	}
	if revision.DiffPHID == "" {
		return nil, "", fmt.Errorf("%w: %s", ErrNoDiff, revisionID)
	}
	diff, err := c.GetRawDiff(ctx, revision.DiffPHID)
	if err != nil {
		return nil, "", err
	}
	return revision, diff, nil
}

// postConduit performs one Conduit call, retrying transport failures.
// Conduit application errors are terminal.
func (c *Client) postConduit(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	form := url.Values{}
	for key, values := range params {
		form[key] = values
	}
	form.Set("api.token", c.token)
	endpoint := c.baseURL + "/" + method
	encoded := form.Encode()

	var result json.RawMessage
	operation := func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encoded))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return llmhttp.NewTimeoutError(providerName, "request timed out")
			}
			return llmhttp.NewNetworkError(providerName, err.Error())
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return llmhttp.NewNetworkError(providerName, err.Error())
		}
		if resp.StatusCode != http.StatusOK {
			message := fmt.Sprintf("HTTP %d", resp.StatusCode)
			if len(body) > 0 && len(body) < 200 {
				message = string(body)
			}
			return llmhttp.FromStatus(providerName, resp.StatusCode, message)
		}

		var envelope conduitResponse
		if err := json.Unmarshal(body, &envelope); err != nil {
			return fmt.Errorf("decode conduit response: %w", err)
		}
		if envelope.ErrorCode != "" {
			return &ConduitError{Code: envelope.ErrorCode, Info: envelope.ErrorInfo}
		}
		result = envelope.Result
		return nil
	}

	if err := llmhttp.RetryWithBackoff(ctx, operation, c.retry); err != nil {
		return nil, err
	}
	return result, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
