package genre

import (
	"context"
	"strings"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/logger"
)

// staticFallback is served when the catalog cannot list its genres.
var staticFallback = []Genre{Pop, EDM, RnB, Rock, Ballad, LoFi, Chill}

// FallbackBuilder builds the ordered list of genres to widen a search with.
type FallbackBuilder struct {
	genres catalog.GenreLister
	log    *logger.Logger
}

// NewFallbackBuilder creates a builder reading genre names from genres.
func NewFallbackBuilder(genres catalog.GenreLister, log *logger.Logger) *FallbackBuilder {
	return &FallbackBuilder{
		genres: genres,
		log:    logger.OrNop(log),
	}
}

// Build returns preferred followed by every other known genre in the
// store's natural order. A blank preferred genre is replaced by Default.
//
// When the store cannot be read, Build falls back to a fixed ordering so the
// result is never empty. Names are compared with catalog.NormalizeName and
// never repeat.
func (b *FallbackBuilder) Build(ctx context.Context, preferred string) []string {
	preferred = strings.TrimSpace(preferred)
	if preferred == "" {
		preferred = Default.String()
	}

	var rest []string
	names, err := b.names(ctx)
	if err != nil {
		b.log.Warn("listing genres failed, using static fallback", "preferred", preferred, "error", err)
		rest = make([]string, len(staticFallback))
		for i, g := range staticFallback {
			rest[i] = g.String()
		}
	} else {
		rest = names
	}

	return dedupe(preferred, rest)
}

func (b *FallbackBuilder) names(ctx context.Context) ([]string, error) {
	if b.genres == nil {
		return nil, catalog.ErrUnavailable
	}
	return b.genres.GenreNames(ctx)
}

// dedupe puts first ahead of rest, dropping repeats and blank names while
// keeping rest's order.
func dedupe(first string, rest []string) []string {
	out := make([]string, 0, len(rest)+1)
	seen := make(map[string]bool, len(rest)+1)

	out = append(out, first)
	seen[catalog.NormalizeName(first)] = true

	for _, name := range rest {
		key := catalog.NormalizeName(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
