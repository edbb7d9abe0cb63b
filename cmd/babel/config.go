package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envConfig is the environment half of the configuration.
type envConfig struct {
	AnthropicAPIKey string     `env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string     `env:"GEMINI_API_KEY"`
	Provider        string     `env:"BABEL_PROVIDER"`
	Model           string     `env:"BABEL_MODEL"`
	Languages       []string   `env:"BABEL_LANGUAGES" envSeparator:","`
	Addr            string     `env:"BABEL_ADDR"      envDefault:"localhost:8080"`
	LogFile         string     `env:"BABEL_LOG_FILE"`
	LogLevel        slog.Level `env:"BABEL_LOG_LEVEL" envDefault:"info"`
}

// config is the resolved configuration. Flags override the environment.
type config struct {
	provider     string
	apiKey       string
	anthropicKey string
	geminiKey    string
	model        string
	languages    []string
	web          bool
	addr         string
	logFile      string
	logLevel     slog.Level
}

// parseConfig reads environ, then applies flags from args on top.
func parseConfig(args []string, environ map[string]string, output io.Writer) (config, error) {
	var e envConfig
	if err := env.ParseWithOptions(&e, env.Options{Environment: environ}); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("babel", flag.ContinueOnError)
	fs.SetOutput(output)
	var (
		provider  = fs.String("provider", e.Provider, "Provider: anthropic, gemini (auto-detected from env vars if omitted)")
		model     = fs.String("model", e.Model, "Model ID (provider-specific)")
		apiKey    = fs.String("api-key", "", "API key (overrides provider's env var)")
		languages = fs.String("languages", strings.Join(e.Languages, ","), "Comma-separated target languages (default: English, Spanish, Haitian Creole)")
		webUI     = fs.Bool("web", false, "Serve the browser UI instead of the terminal UI")
		addr      = fs.String("addr", e.Addr, "Listen address for -web")
		logFile   = fs.String("log-file", e.LogFile, "Log file for the terminal UI")
	)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	return config{
		provider:     strings.TrimSpace(*provider),
		apiKey:       *apiKey,
		anthropicKey: e.AnthropicAPIKey,
		geminiKey:    e.GeminiAPIKey,
		model:        *model,
		languages:    splitList(*languages),
		web:          *webUI,
		addr:         *addr,
		logFile:      *logFile,
		logLevel:     e.LogLevel,
	}, nil
}

// splitList splits a comma-separated list, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
