// Command babel is a multilingual chat translator.
//
// Usage:
//
//	ANTHROPIC_API_KEY=sk-... babel [flags]
//	GEMINI_API_KEY=gk-...   babel -web [flags]
//
// Flags:
//
//	-provider string   Provider: anthropic, gemini (auto-detected from env vars if omitted)
//	-model string      Model ID (default: provider default)
//	-api-key string    API key (overrides provider's env var)
//	-languages string  Comma-separated target languages
//	-web               Serve the browser UI instead of the terminal UI
//	-addr string       Listen address for -web (default: localhost:8080)
//	-log-file string   Log file for the terminal UI
//
// Environment: BABEL_PROVIDER, BABEL_MODEL, BABEL_LANGUAGES, BABEL_ADDR,
// BABEL_LOG_FILE and BABEL_LOG_LEVEL supply defaults for the flags above.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/fwojciec/babel"
	bt "github.com/fwojciec/babel/bubbletea"
	"github.com/fwojciec/babel/web"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "babel: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := parseConfig(os.Args[1:], env.ToMap(os.Environ()), os.Stderr)
	if err != nil {
		return err
	}

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	provider, err := resolveProvider(ctx, cfg.provider, cfg.apiKey, cfg.anthropicKey, cfg.geminiKey)
	if err != nil {
		return err
	}

	session, err := babel.NewSession(cfg.languages...)
	if err != nil {
		return err
	}

	opts := []babel.TranslatorOption{babel.WithLogger(logger)}
	if cfg.model != "" {
		opts = append(opts, babel.WithModel(cfg.model))
	}
	translator := babel.NewTranslator(provider, opts...)

	if cfg.web {
		return serve(ctx, cfg.addr, web.NewServer(session, translator.Run, logger), logger)
	}
	tuiModel := bt.New(translator.Run, session, babel.DefaultTheme())
	if err := bt.Run(ctx, tuiModel); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

// newLogger builds the process logger. The web shell logs to stderr; the
// terminal UI owns the terminal, so it logs to the log file when one is set
// and nowhere otherwise.
func newLogger(cfg config) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: cfg.logLevel}
	var w io.Writer
	closeFn := func() {}
	switch {
	case cfg.logFile != "":
		f, err := os.OpenFile(cfg.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case cfg.web:
		w = os.Stderr
	default:
		return slog.New(slog.DiscardHandler), closeFn, nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), closeFn, nil
}

// serve runs the web shell until ctx is cancelled.
func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
