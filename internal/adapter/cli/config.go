package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	llmhttp "github.com/phabreview/phabreview/internal/adapter/llm/http"
	"github.com/phabreview/phabreview/internal/config"
)

func configCommand(deps Dependencies) *cobra.Command {
	var phabURL string
	var phabToken string
	var apiKey string
	var model string
	var outputDir string

	settingFlags := []string{"url", "token", "api-key", "model", "output-dir"}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update the stored configuration",
		Long: "Without flags, prints the resolved configuration with credentials\n" +
			"masked. With flags, updates those settings in the config file and\n" +
			"prints its path.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := false
			for _, name := range settingFlags {
				if cmd.Flags().Changed(name) {
					changed = true
				}
			}
			if !changed {
				printConfig(cmd.OutOrStdout(), deps.Config)
				return nil
			}

			cfg := deps.Config
			if cmd.Flags().Changed("url") {
				cfg.Phabricator.URL = phabURL
			}
			if cmd.Flags().Changed("token") {
				cfg.Phabricator.Token = phabToken
			}
			if cmd.Flags().Changed("api-key") {
				cfg.OpenRouter.APIKey = apiKey
			}
			if cmd.Flags().Changed("model") {
				cfg.OpenRouter.Model = model
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.Output.Directory = outputDir
			}

			path, err := deps.Save(cfg)
			if err != nil {
				return fmt.Errorf("save configuration: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&phabURL, "url", "", "Phabricator base URL")
	cmd.Flags().StringVar(&phabToken, "token", "", "Conduit API token")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "OpenRouter API key")
	cmd.Flags().StringVar(&model, "model", "", "Default review model")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Default report directory")
	return cmd
}

func printConfig(out io.Writer, cfg config.Config) {
	model := cfg.OpenRouter.Model
	if model == "" {
		model = config.DefaultModel
	}
	_, _ = fmt.Fprintf(out, "Phabricator URL:  %s\n", valueOrUnset(cfg.Phabricator.URL))
	_, _ = fmt.Fprintf(out, "Conduit token:    %s\n", maskSecret(cfg.Phabricator.Token))
	_, _ = fmt.Fprintf(out, "OpenRouter key:   %s\n", maskSecret(cfg.OpenRouter.APIKey))
	_, _ = fmt.Fprintf(out, "Review model:     %s\n", model)
	_, _ = fmt.Fprintf(out, "Report directory: %s\n", valueOrUnset(cfg.Output.Directory))
	_, _ = fmt.Fprintf(out, "\nConfig file: %s\n", config.ConfigFilePath())
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

func maskSecret(v string) string {
	if v == "" {
		return "(unset)"
	}
	return llmhttp.RedactAPIKey(v)
}
