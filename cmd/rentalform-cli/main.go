package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/goliatone/go-rentalform/internal/config"
	"github.com/goliatone/go-rentalform/pkg/renderers/tui"
	"github.com/goliatone/go-rentalform/pkg/validation"
	"github.com/goliatone/go-rentalform/pkg/wizard"
)

func main() {
	configPath := flag.String("config", "", "configuration file (YAML or JSON)")
	apiURL := flag.String("api", "", "rental requests API root (overrides config)")
	locale := flag.String("locale", "", "prompt language (overrides config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, *configPath, *apiURL, *locale)
	if errors.Is(err, tui.ErrAborted) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "aborted")
		os.Exit(130)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "rentalform-cli: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, apiURL, locale string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(apiURL) != "" {
		cfg.API.BaseURL = apiURL
	}
	if strings.TrimSpace(locale) != "" {
		cfg.Locale = locale
	}
	logger := config.NewLogger(cfg.Log, os.Stderr)

	translator, err := cfg.Translator()
	if err != nil {
		return err
	}
	client, err := cfg.API.Gateway()
	if err != nil {
		return err
	}

	validator := validation.New(validation.WithTranslator(translator, cfg.Locale))
	w := wizard.New(
		wizard.WithGateway(client),
		wizard.WithValidator(validator),
		wizard.WithLogger(logger),
	)

	opts := []tui.Option{
		tui.WithTranslator(translator, cfg.Locale),
		tui.WithValidator(validator),
		tui.WithLogger(logger),
	}
	if resolver := cfg.Places.Resolver(logger); resolver != nil {
		opts = append(opts, tui.WithAddressResolver(resolver, cfg.Places.Country))
	}

	runner, err := tui.New(w, opts...)
	if err != nil {
		return err
	}
	return runner.Run(ctx)
}
