// Package openrouter provides the OpenRouter chat client used for
// reviews. OpenRouter speaks the OpenAI chat completion protocol, so
// the official openai-go SDK is pointed at the OpenRouter base URL.
package openrouter

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/phabreview/phabreview/internal/adapter/llm"
	llmhttp "github.com/phabreview/phabreview/internal/adapter/llm/http"
)

const (
	providerName   = "openrouter"
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultTimeout = 60 * time.Second
)

// Request is one review call.
type Request struct {
	System    string
	Prompt    string
	Seed      uint64
	MaxTokens int
}

// Client calls OpenRouter's chat completion endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	retry   llmhttp.RetryConfig
	client  openai.Client
}

// NewClient creates an OpenRouter client for the given model.
func NewClient(apiKey, model string) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		timeout: defaultTimeout,
		retry:   llmhttp.DefaultRetryConfig(),
	}
	c.rebuild()
	return c
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
	c.rebuild()
}

// SetTimeout sets the per-request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
	c.rebuild()
}

// SetRetryConfig overrides the retry policy.
func (c *Client) SetRetryConfig(config llmhttp.RetryConfig) {
	c.retry = config
}

// Model returns the model this client sends requests for.
func (c *Client) Model() string {
	return c.model
}

// rebuild constructs the SDK client from current settings. SDK-level
// retries are disabled so RetryWithBackoff stays the single retry
// authority.
func (c *Client) rebuild() {
	c.client = openai.NewClient(
		option.WithAPIKey(c.apiKey),
		option.WithBaseURL(c.baseURL),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(c.timeout),
	)
}

// Review sends the system and user prompts and returns the parsed
// review. Temperature is pinned to zero and the seed forwarded so a
// rerun of the same diff asks the model the same question.
func (c *Client) Review(ctx context.Context, req Request) (*llm.ProviderResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(0),
		Seed:        openai.Int(int64(req.Seed)),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	var completion *openai.ChatCompletion
	operation := func(ctx context.Context) error {
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return mapSDKError(err)
		}
		if len(resp.Choices) == 0 {
			return llmhttp.NewInvalidRequestError(providerName, "no choices in response")
		}
		completion = resp
		return nil
	}

	if err := llmhttp.RetryWithBackoff(ctx, operation, c.retry); err != nil {
		return nil, err
	}

	model := completion.Model
	if model == "" {
		model = c.model
	}

	return &llm.ProviderResponse{
		Model:  model,
		Result: llm.ParseReviewResult(completion.Choices[0].Message.Content),
		Usage: llm.UsageMetadata{
			TokensIn:  int(completion.Usage.PromptTokens),
			TokensOut: int(completion.Usage.CompletionTokens),
		},
	}, nil
}

// mapSDKError converts SDK failures to typed transport errors so the
// retry policy can classify them.
func mapSDKError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error()
		}
		return llmhttp.FromStatus(providerName, apiErr.StatusCode, message)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return llmhttp.NewTimeoutError(providerName, "request timed out")
	}
	return llmhttp.NewNetworkError(providerName, err.Error())
}
