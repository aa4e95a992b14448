// Package acquire serves content by date or name: instantly from a
// time-bounded cache when possible, otherwise from the remote source,
// with a progressive-completion path for abbreviated daily payloads and
// generation tokens to suppress stale background results.
package acquire

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"syllaread/internal/domain/content"
	"syllaread/internal/source"
)

// Options carries the acquisition policy knobs. Zero values fall back to
// the documented defaults.
type Options struct {
	// CompleteThreshold is the extract length (in characters) above which
	// a daily summary counts as complete.
	CompleteThreshold int
	DailyTTL          time.Duration
	NamedTTL          time.Duration
	Timeout           time.Duration
	Retries           int
	BackoffBase       time.Duration
}

func (o Options) withDefaults() Options {
	if o.CompleteThreshold == 0 {
		o.CompleteThreshold = 800
	}
	if o.DailyTTL == 0 {
		o.DailyTTL = 24 * time.Hour
	}
	if o.NamedTTL == 0 {
		o.NamedTTL = 7 * 24 * time.Hour
	}
	if o.Timeout == 0 {
		o.Timeout = 15 * time.Second
	}
	if o.Retries == 0 {
		o.Retries = 3
	}
	if o.BackoffBase == 0 {
		o.BackoffBase = time.Second
	}
	return o
}

// Result is an acquired item. Pending is non-nil when the item is
// abbreviated and a fuller payload is being fetched in the background.
type Result struct {
	Item    content.Item
	Pending *Completion
}

// Completion is the handle to an in-flight background fetch of fuller
// content. Consumers must check staleness via Service.IsCurrent before
// applying the result to a live session.
type Completion struct {
	gen  int64
	done chan struct{}
	item content.Item
	err  error
}

// Generation returns the acquisition generation captured when the
// background fetch was initiated.
func (c *Completion) Generation() int64 { return c.gen }

// Done is closed when the background fetch has resolved either way.
func (c *Completion) Done() <-chan struct{} { return c.done }

// Wait blocks until the background fetch resolves or ctx ends.
func (c *Completion) Wait(ctx context.Context) (content.Item, error) {
	select {
	case <-c.done:
		return c.item, c.err
	case <-ctx.Done():
		return content.Item{}, ctx.Err()
	}
}

// Service is the content cache and acquisition layer.
type Service struct {
	src   source.Source
	store Store
	opts  Options
	gen   atomic.Int64
}

func NewService(src source.Source, store Store, opts Options) *Service {
	return &Service{src: src, store: store, opts: opts.withDefaults()}
}

// Generation returns the current acquisition generation. Every foreground
// acquisition advances it, invalidating completions captured earlier.
func (s *Service) Generation() int64 { return s.gen.Load() }

// IsCurrent reports whether c's captured generation is still the current
// one, i.e. no foreground acquisition has superseded it.
func (s *Service) IsCurrent(c *Completion) bool {
	return c != nil && c.gen == s.gen.Load()
}

// DailyKey is the cache key for a date, namespaced from named lookups.
func DailyKey(date time.Time) string {
	return "daily:" + date.Format("2006-01-02")
}

// NamedKey is the cache key for a case-folded name.
func NamedKey(name string) string {
	return "named:" + strings.ToLower(name)
}

// AcquireDaily returns content for a calendar date. A cache hit returns
// synchronously. Otherwise the summary is fetched; a short extract is
// returned immediately as abbreviated content while the complete page is
// fetched in the background through the Pending handle.
func (s *Service) AcquireDaily(ctx context.Context, date time.Time) (Result, error) {
	gen := s.gen.Add(1)
	key := DailyKey(date)

	if item, ok := s.store.Get(key); ok {
		logrus.WithField("key", key).Info("Serving daily content from cache")
		return Result{Item: item}, nil
	}

	summary, err := withRetry(ctx, s.retryConfig(), func(ctx context.Context) (content.DailySummary, error) {
		return s.src.DailySummary(ctx, date)
	})
	if err != nil {
		return Result{}, fmt.Errorf("daily acquisition for %s: %w", key, err)
	}

	item := content.ItemFromSummary(summary)
	s.store.Set(key, item, s.opts.DailyTTL)

	if utf8.RuneCountInString(summary.Extract) > s.opts.CompleteThreshold {
		return Result{Item: item}, nil
	}

	comp := &Completion{gen: gen, done: make(chan struct{})}
	go s.completeDaily(context.WithoutCancel(ctx), comp, summary.PageKey, key)

	logrus.WithFields(logrus.Fields{
		"key":     key,
		"extract": utf8.RuneCountInString(summary.Extract),
	}).Info("Returning abbreviated content, fetching complete text in background")

	return Result{Item: item, Pending: comp}, nil
}

// completeDaily resolves the background fetch. The cache write happens on
// success regardless of staleness: it still benefits future requests even
// when the live consumer has moved on.
func (s *Service) completeDaily(ctx context.Context, comp *Completion, pageKey, cacheKey string) {
	defer close(comp.done)

	page, err := withRetry(ctx, s.retryConfig(), func(ctx context.Context) (content.Page, error) {
		return s.src.PageByKey(ctx, pageKey)
	})
	if err != nil {
		logrus.WithError(err).WithField("key", cacheKey).
			Warn("Background completion failed, keeping abbreviated content")
		comp.err = err
		return
	}

	item := content.ItemFromPage(page)
	s.store.Set(cacheKey, item, s.opts.DailyTTL)
	comp.item = item
}

// AcquireNamed returns content for a page name. No progressive path: one
// retrieval fetches the full text.
func (s *Service) AcquireNamed(ctx context.Context, name string) (Result, error) {
	s.gen.Add(1)
	key := NamedKey(name)

	if item, ok := s.store.Get(key); ok {
		logrus.WithField("key", key).Info("Serving named content from cache")
		return Result{Item: item}, nil
	}

	page, err := withRetry(ctx, s.retryConfig(), func(ctx context.Context) (content.Page, error) {
		return s.src.PageByName(ctx, name)
	})
	if err != nil {
		return Result{}, fmt.Errorf("named acquisition for %q: %w", name, err)
	}

	item := content.ItemFromPage(page)
	s.store.Set(key, item, s.opts.NamedTTL)
	return Result{Item: item}, nil
}

func (s *Service) retryConfig() retryConfig {
	return retryConfig{
		timeout:     s.opts.Timeout,
		retries:     s.opts.Retries,
		backoffBase: s.opts.BackoffBase,
	}
}
