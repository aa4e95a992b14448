// Package source talks to the remote text service: a featured-article
// daily summary feed and a by-title plain-text page lookup.
package source

import (
	"context"
	"errors"
	"time"

	"syllaread/internal/domain/content"
)

// ErrNotFound is returned when a lookup resolves to no matching content.
var ErrNotFound = errors.New("content not found")

// Source is the remote text-retrieval capability consumed by the
// acquisition layer.
type Source interface {
	// DailySummary looks up the featured summary for a calendar date.
	// The returned extract may be abbreviated.
	DailySummary(ctx context.Context, date time.Time) (content.DailySummary, error)

	// PageByKey fetches the complete plain text for a page key obtained
	// from a daily summary.
	PageByKey(ctx context.Context, key string) (content.Page, error)

	// PageByName fetches the complete plain text for a page by its name.
	// Returns ErrNotFound when the name does not resolve.
	PageByName(ctx context.Context, name string) (content.Page, error)
}
