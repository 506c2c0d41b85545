package config

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/goliatone/go-rentalform/pkg/address"
	"github.com/goliatone/go-rentalform/pkg/gateway"
	"github.com/goliatone/go-rentalform/pkg/render"
)

// Gateway builds the submission client described by the API section.
func (c APIConfig) Gateway() (*gateway.Client, error) {
	opts := []gateway.Option{
		gateway.WithBaseURL(c.BaseURL),
		gateway.WithPath(c.Path),
		gateway.WithTimeout(c.Timeout.Duration),
	}
	if c.ValidateContract {
		opts = append(opts, gateway.WithContract(nil))
	}
	client, err := gateway.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("config: gateway: %w", err)
	}
	return client, nil
}

// Resolver picks the Places resolver when an API key is configured and the
// static address list otherwise. It returns nil when neither is available.
func (c PlacesConfig) Resolver(logger *slog.Logger) address.Resolver {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return address.NewPlacesResolver(key,
			address.WithPlacesBaseURL(c.BaseURL),
			address.WithPlacesTimeout(c.Timeout.Duration),
			address.WithDefaultCountry(c.Country),
		)
	}
	if len(c.Addresses) == 0 {
		if logger != nil {
			logger.Info("address lookup disabled: no places key and no static addresses")
		}
		return nil
	}
	return address.NewStaticResolver(c.Addresses...)
}

// Translator loads the built-in catalogs with the configured locale as the
// fallback language.
func (c Config) Translator() (*render.I18nTranslator, error) {
	tag := language.English
	if locale := strings.TrimSpace(c.Locale); locale != "" {
		parsed, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("config: locale %q: %w", locale, err)
		}
		tag = parsed
	}
	t, err := render.NewI18nTranslator(render.WithDefaultLanguage(tag))
	if err != nil {
		return nil, fmt.Errorf("config: translator: %w", err)
	}
	return t, nil
}
