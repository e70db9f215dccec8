package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "phab-reviewer"
	configFileName = "config.yaml"
)

// LoaderOptions describes where configuration should be discovered.
// Zero values mean the standard locations.
type LoaderOptions struct {
	ConfigFile string // defaults to ConfigFilePath()
	DotenvFile string // defaults to ./.env
}

// Load returns the effective configuration: defaults, then the user
// config file, then a developer-local .env, then real environment
// variables, with later layers winning.
func Load(opts LoaderOptions) (Config, error) {
	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = ConfigFilePath()
	}
	dotenvFile := opts.DotenvFile
	if dotenvFile == "" {
		dotenvFile = ".env"
	}

	fileCfg, err := loadConfigFile(configFile)
	if err != nil {
		return Config{}, err
	}
	dotenvCfg, err := loadDotenv(dotenvFile)
	if err != nil {
		return Config{}, err
	}

	cfg := Merge(Defaults(), fileCfg, dotenvCfg, fromEnvironment())
	return expandEnvVars(cfg), nil
}

// Defaults returns the baseline every other layer overlays.
func Defaults() Config {
	return Config{
		OpenRouter: OpenRouterConfig{Model: DefaultModel},
		Review:     ReviewConfig{ContextLines: 1, TokenBudget: 64000},
		HTTP:       HTTPConfig{Timeout: "60s", MaxRetries: 3, InitialBackoff: "1s"},
		Output:     OutputConfig{Directory: defaultOutputDir()},
		Store:      StoreConfig{Enabled: true, Path: defaultStorePath()},
		Logging:    LoggingConfig{Level: "info", Format: "human"},
		Redaction:  RedactionConfig{Enabled: true},
	}
}

// ConfigFilePath honors XDG_CONFIG_HOME before falling back to
// ~/.config.
func ConfigFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", configDirName, configFileName)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName, configFileName)
}

// Save writes cfg to the user config file, creating the directory with
// owner-only permissions since the file carries credentials. It
// returns the written path.
func Save(cfg Config) (string, error) {
	path := ConfigFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return "", fmt.Errorf("chmod config: %w", err)
	}
	return path, nil
}

func loadConfigFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	return cfg, nil
}

// loadDotenv overlays a local .env, read with the flat variable names
// the original tooling established.
func loadDotenv(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("dotenv")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	return configFromFlatKeys(v.GetString), nil
}

func fromEnvironment() Config {
	return configFromFlatKeys(os.Getenv)
}

func configFromFlatKeys(get func(string) string) Config {
	return Config{
		Phabricator: PhabricatorConfig{
			URL:   get("PHABRICATOR_URL"),
			Token: get("PHABRICATOR_API_TOKEN"),
		},
		OpenRouter: OpenRouterConfig{
			APIKey: get("OPENROUTER_API_KEY"),
			Model:  get("REVIEW_MODEL"),
		},
		Output: OutputConfig{Directory: get("REVIEW_OUTPUT_DIR")},
	}
}

// expandEnvVars expands ${VAR} and $VAR syntax in configuration strings,
// so files can reference secrets without embedding them.
func expandEnvVars(cfg Config) Config {
	cfg.Phabricator.URL = expandEnvString(cfg.Phabricator.URL)
	cfg.Phabricator.Token = expandEnvString(cfg.Phabricator.Token)
	cfg.OpenRouter.APIKey = expandEnvString(cfg.OpenRouter.APIKey)
	cfg.OpenRouter.Model = expandEnvString(cfg.OpenRouter.Model)
	cfg.Output.Directory = expandEnvString(cfg.Output.Directory)
	cfg.Store.Path = expandEnvString(cfg.Store.Path)
	return cfg
}

var (
	bracedVarRe = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	bareVarRe   = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
)

func expandEnvString(s string) string {
	if s == "" {
		return s
	}

	s = bracedVarRe.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})

	return bareVarRe.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[1:]); val != "" {
			return val
		}
		return match
	})
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Phabreview"
	}
	return filepath.Join(home, "Documents", "Phabreview")
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./history.db"
	}
	return filepath.Join(home, ".config", configDirName, "history.db")
}
