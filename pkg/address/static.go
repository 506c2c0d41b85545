package address

import (
	"context"
	"strings"
)

// StaticResolver matches queries against a fixed list of addresses. Every
// word of the query must appear in the address, ignoring case.
type StaticResolver struct {
	addresses []string
}

var _ Resolver = (*StaticResolver)(nil)

// NewStaticResolver builds a resolver over addresses, skipping blanks.
func NewStaticResolver(addresses ...string) *StaticResolver {
	r := &StaticResolver{}
	for _, addr := range addresses {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			r.addresses = append(r.addresses, trimmed)
		}
	}
	return r
}

// Resolve returns the first matching address.
func (r *StaticResolver) Resolve(ctx context.Context, query Query) (string, error) {
	matches, err := r.Suggest(ctx, query, 1)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", ErrNoMatch
	}
	return matches[0].Value, nil
}

// Suggest returns up to limit matching addresses in list order. A limit of
// zero or less means no limit.
func (r *StaticResolver) Suggest(ctx context.Context, query Query, limit int) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	words := strings.Fields(strings.ToLower(query.Normalize().Text))
	if len(words) == 0 {
		return []Suggestion{}, nil
	}

	out := []Suggestion{}
	for _, addr := range r.addresses {
		if !containsAll(strings.ToLower(addr), words) {
			continue
		}
		out = append(out, Suggestion{Value: addr, Label: addr})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func containsAll(haystack string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(haystack, w) {
			return false
		}
	}
	return true
}
