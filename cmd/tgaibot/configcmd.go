package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tgaibot/tgaibot/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			fmt.Printf("Configuration OK (mode: %s, model: %s)\n",
				cfg.Telegram.Mode, cfg.Provider.Model)
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(config.FileName); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", config.FileName)
			}

			answers, err := runInitWizard()
			if err != nil {
				return err
			}

			if err := os.WriteFile(config.FileName, []byte(renderConfig(answers)), 0o600); err != nil {
				return fmt.Errorf("write %s: %w", config.FileName, err)
			}
			fmt.Printf("Wrote %s. Start the bot with: tgaibot start\n", config.FileName)
			return nil
		},
	}
}

// initAnswers holds the wizard results.
type initAnswers struct {
	Token      string
	APIKey     string
	Mode       string
	WebhookURL string
	Streaming  bool
}

// runInitWizard collects the minimal settings interactively.
func runInitWizard() (initAnswers, error) {
	a := initAnswers{Mode: config.ModePolling, Streaming: true}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram bot token").
				Description("From @BotFather. Leave empty to read $TELEGRAM_BOT_TOKEN at runtime.").
				Value(&a.Token),
			huh.NewInput().
				Title("OpenRouter API key").
				Description("Leave empty to read $OPENROUTER_API_KEY at runtime.").
				EchoMode(huh.EchoModePassword).
				Value(&a.APIKey),
			huh.NewSelect[string]().
				Title("Update delivery").
				Options(
					huh.NewOption("Long polling (works everywhere)", config.ModePolling),
					huh.NewOption("Webhook (needs a public HTTPS URL)", config.ModeWebhook),
				).
				Value(&a.Mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Public webhook URL").
				Description("e.g. https://mybot.onrender.com").
				Validate(func(s string) error {
					if s == "" {
						return errors.New("webhook mode needs a URL")
					}
					if !strings.HasPrefix(s, "https://") {
						return errors.New("must start with https://")
					}
					return nil
				}).
				Value(&a.WebhookURL),
		).WithHideFunc(func() bool { return a.Mode != config.ModeWebhook }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Stream responses?").
				Description("Edits the reply in place while the model generates.").
				Value(&a.Streaming),
		),
	)

	if err := form.Run(); err != nil {
		return initAnswers{}, err
	}
	return a, nil
}

// renderConfig produces the YAML for the collected answers. Empty secrets
// fall back to environment variable references so the file stays safe to
// commit.
func renderConfig(a initAnswers) string {
	token := a.Token
	if token == "" {
		token = "${TELEGRAM_BOT_TOKEN}"
	}
	apiKey := a.APIKey
	if apiKey == "" {
		apiKey = "${OPENROUTER_API_KEY}"
	}

	var sb strings.Builder
	sb.WriteString("log:\n  level: info\n\n")

	fmt.Fprintf(&sb, "telegram:\n  token: %s\n  mode: %s\n", token, a.Mode)
	if a.Mode == config.ModeWebhook {
		fmt.Fprintf(&sb, "  webhook_url: %s\n  webhook_secret: ${WEBHOOK_SECRET:-}\n", a.WebhookURL)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "provider:\n  api_key: %s\n  model: auto\n  streaming: %t\n\n", apiKey, a.Streaming)

	sb.WriteString("memory:\n  path: data/tgaibot.db\n\n")
	sb.WriteString("downloads:\n  dir: downloads\n  max_file_size_mb: 20\n\n")
	sb.WriteString("cleanup:\n  cache_dir: cache\n  log_suffix: .log\n  janitor_schedule: \"*/15 * * * *\"\n  janitor_max_age: 1h\n\n")
	sb.WriteString("gateway:\n  addr: \":${PORT:-8080}\"\n")
	return sb.String()
}
