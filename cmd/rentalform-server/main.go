package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-rentalform/internal/config"
	"github.com/goliatone/go-rentalform/internal/server"
	"github.com/goliatone/go-rentalform/pkg/render"
	"github.com/goliatone/go-rentalform/pkg/renderers/html"
)

func main() {
	configPath := flag.String("config", "", "configuration file (YAML or JSON)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "rentalform-server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
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
	page, err := pageRenderer(cfg, translator, logger)
	if err != nil {
		return err
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithGateway(client),
		server.WithTranslator(translator),
		server.WithDefaultLocale(cfg.Locale),
		server.WithRenderer(page),
		server.WithSessionTTL(cfg.Server.SessionTTL.Duration),
		server.WithCookieSecure(cfg.Server.CookieSecure),
		server.WithTimeouts(cfg.Server.ReadTimeout.Duration, cfg.Server.WriteTimeout.Duration),
	}
	if resolver := cfg.Places.Resolver(logger); resolver != nil {
		opts = append(opts, server.WithAddressResolver(resolver, cfg.Places.Country))
	}

	srv, err := server.New(opts...)
	if err != nil {
		return err
	}
	logger.Info("submitting rental requests", "endpoint", client.Endpoint())
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func pageRenderer(cfg config.Config, translator *render.I18nTranslator, logger *slog.Logger) (*html.Renderer, error) {
	opts := []html.Option{html.WithTranslator(translator)}
	if cfg.Server.TemplatesDir != "" {
		opts = append(opts, html.WithTemplatesDir(cfg.Server.TemplatesDir))
	}

	manifest, err := cfg.Theme.Manifest()
	if err != nil {
		return nil, err
	}
	if manifest != nil {
		themeCfg, err := html.ThemeConfig(manifest, cfg.Theme.Variant)
		if err != nil {
			return nil, err
		}
		opts = append(opts, html.WithTheme(themeCfg))
		logger.Info("theme loaded", "theme", manifest.Name, "variant", cfg.Theme.Variant)
	}
	return html.New(opts...)
}
