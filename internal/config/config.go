package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultModel is used when neither the configuration nor the
// environment names one.
const DefaultModel = "xiaomi/mimo-v2-flash:free"

// Config represents the full application configuration.
type Config struct {
	Phabricator PhabricatorConfig `yaml:"phabricator"`
	OpenRouter  OpenRouterConfig  `yaml:"openrouter"`
	Review      ReviewConfig      `yaml:"review"`
	HTTP        HTTPConfig        `yaml:"http"`
	Output      OutputConfig      `yaml:"output"`
	Store       StoreConfig       `yaml:"store"`
	Logging     LoggingConfig     `yaml:"logging"`
	Redaction   RedactionConfig   `yaml:"redaction"`
}

// PhabricatorConfig points at the Conduit API.
type PhabricatorConfig struct {
	URL   string `yaml:"url" validate:"required,url"`
	Token string `yaml:"token" validate:"required"`
}

// OpenRouterConfig configures the review model endpoint.
type OpenRouterConfig struct {
	APIKey string `yaml:"apiKey" validate:"required"`
	Model  string `yaml:"model"`
}

// ReviewConfig tunes the review behavior.
type ReviewConfig struct {
	// ContextLines pads the code snippet shown around each finding.
	ContextLines int `yaml:"contextLines" validate:"min=0,max=20"`

	// TokenBudget is the prompt size above which a warning is logged.
	TokenBudget int `yaml:"tokenBudget" validate:"min=0"`

	// Instructions are custom instructions appended to the system prompt.
	Instructions string `yaml:"instructions"`
}

// HTTPConfig holds client settings shared by the Conduit and OpenRouter
// adapters. Durations are strings so files can say "90s" or "2m".
type HTTPConfig struct {
	Timeout        string `yaml:"timeout"`
	MaxRetries     int    `yaml:"maxRetries" validate:"min=0,max=10"`
	InitialBackoff string `yaml:"initialBackoff"`
}

// TimeoutDuration parses Timeout, falling back to a minute.
func (h HTTPConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(h.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// InitialBackoffDuration parses InitialBackoff, falling back to a second.
func (h HTTPConfig) InitialBackoffDuration() time.Duration {
	d, err := time.ParseDuration(h.InitialBackoff)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// OutputConfig controls where review reports are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// StoreConfig configures the review history database.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures the logger backend.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RedactionConfig toggles secret masking on diffs sent to the model.
type RedactionConfig struct {
	Enabled bool `yaml:"enabled"`
}

var validate = validator.New()

// Validate reports configuration problems in terms of the variables
// users actually set.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	var missing, invalid []string
	for _, fe := range fieldErrs {
		name := settingName(fe.Namespace())
		if fe.Tag() == "required" {
			missing = append(missing, name)
		} else {
			invalid = append(invalid, fmt.Sprintf("%s (%s)", name, fe.Tag()))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s. Run 'phabreview config' to set them",
			strings.Join(missing, ", "))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(invalid, ", "))
}

func settingName(namespace string) string {
	switch namespace {
	case "Config.Phabricator.URL":
		return "PHABRICATOR_URL"
	case "Config.Phabricator.Token":
		return "PHABRICATOR_API_TOKEN"
	case "Config.OpenRouter.APIKey":
		return "OPENROUTER_API_KEY"
	case "Config.OpenRouter.Model":
		return "REVIEW_MODEL"
	case "Config.Output.Directory":
		return "REVIEW_OUTPUT_DIR"
	}
	return namespace
}

// Merge combines configuration layers, later ones winning field by
// field where they are set.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.Phabricator = choosePhabricator(base.Phabricator, overlay.Phabricator)
	result.OpenRouter = chooseOpenRouter(base.OpenRouter, overlay.OpenRouter)
	result.Review = chooseReview(base.Review, overlay.Review)
	result.HTTP = chooseHTTP(base.HTTP, overlay.HTTP)
	result.Output = chooseOutput(base.Output, overlay.Output)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Logging = chooseLogging(base.Logging, overlay.Logging)
	result.Redaction = chooseRedaction(base.Redaction, overlay.Redaction)

	return result
}

func choosePhabricator(base, overlay PhabricatorConfig) PhabricatorConfig {
	result := base
	if overlay.URL != "" {
		result.URL = overlay.URL
	}
	if overlay.Token != "" {
		result.Token = overlay.Token
	}
	return result
}

func chooseOpenRouter(base, overlay OpenRouterConfig) OpenRouterConfig {
	result := base
	if overlay.APIKey != "" {
		result.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		result.Model = overlay.Model
	}
	return result
}

func chooseReview(base, overlay ReviewConfig) ReviewConfig {
	result := base
	if overlay.ContextLines != 0 {
		result.ContextLines = overlay.ContextLines
	}
	if overlay.TokenBudget != 0 {
		result.TokenBudget = overlay.TokenBudget
	}
	if overlay.Instructions != "" {
		result.Instructions = overlay.Instructions
	}
	return result
}

func chooseHTTP(base, overlay HTTPConfig) HTTPConfig {
	result := base
	if overlay.Timeout != "" {
		result.Timeout = overlay.Timeout
	}
	if overlay.MaxRetries != 0 {
		result.MaxRetries = overlay.MaxRetries
	}
	if overlay.InitialBackoff != "" {
		result.InitialBackoff = overlay.InitialBackoff
	}
	return result
}

func chooseOutput(base, overlay OutputConfig) OutputConfig {
	if overlay.Directory != "" {
		return overlay
	}
	return base
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	if overlay.Enabled || overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseLogging(base, overlay LoggingConfig) LoggingConfig {
	result := base
	if overlay.Level != "" {
		result.Level = overlay.Level
	}
	if overlay.Format != "" {
		result.Format = overlay.Format
	}
	return result
}

func chooseRedaction(base, overlay RedactionConfig) RedactionConfig {
	if overlay.Enabled {
		return overlay
	}
	return base
}
