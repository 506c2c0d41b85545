package wizard

import (
	"context"
	"strings"

	"github.com/goliatone/go-rentalform/pkg/address"
	"github.com/goliatone/go-rentalform/pkg/model"
)

// AddressResolver turns free text into a single formatted address.
type AddressResolver interface {
	Resolve(ctx context.Context, query address.Query) (string, error)
}

// ResolveAddress resolves query in the background and writes the result to
// the install address as an ordinary field change, so it clears any address
// error and the last write wins. Failures are logged and leave the state
// untouched. The returned channel is closed once the attempt finishes.
func (w *Wizard) ResolveAddress(ctx context.Context, resolver AddressResolver, query, country string) <-chan struct{} {
	done := make(chan struct{})
	query = strings.TrimSpace(query)
	if resolver == nil || query == "" {
		close(done)
		return done
	}

	w.mu.Lock()
	generation := w.store.Generation()
	w.mu.Unlock()

	go func() {
		defer close(done)

		resolved, err := resolver.Resolve(ctx, address.Query{Text: query, Country: country})
		if err != nil {
			w.logger.Warn("address resolution failed", "error", err)
			return
		}
		if strings.TrimSpace(resolved) == "" {
			return
		}

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.store.Generation() != generation {
			w.logger.Debug("dropping stale address resolution")
			return
		}
		if err := w.editable(); err != nil {
			w.logger.Debug("dropping address resolution", "reason", err)
			return
		}
		if err := w.store.SetField(model.Set(model.FieldInstallAddress, resolved)); err != nil {
			w.logger.Warn("apply resolved address", "error", err)
		}
	}()
	return done
}
