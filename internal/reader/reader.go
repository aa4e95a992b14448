// Package reader wires acquisition, segmentation and playback together:
// it loads content, owns the live document/session pair, applies the
// merge policy when fuller content arrives, and exposes the cobra command
// handlers.
package reader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"syllaread/internal/acquire"
	"syllaread/internal/cli/scheme/colours"
	"syllaread/internal/clock"
	"syllaread/internal/domain/content"
	"syllaread/internal/playback"
	"syllaread/internal/segment"
	"syllaread/internal/source"
)

// Renderer is the visual surface consuming parsed documents and reveal
// notifications. The CLI ships a terminal implementation; anything that
// can draw syllables can be plugged in.
type Renderer interface {
	ShowDocument(title string, doc *segment.Document)
	ShowSyllable(index int, syllable string)
	ShowComplete()
}

// Config carries the reader's policy knobs.
type Config struct {
	Speed time.Duration
	// MergeThreshold is the minimum relative syllable-count increase a
	// background completion must bring before it replaces live content.
	MergeThreshold float64
}

// Reader is the controller owning the live document and playback session.
type Reader struct {
	mu       sync.Mutex
	svc      *acquire.Service
	parser   *segment.Parser
	renderer Renderer
	clk      clock.Clock
	cfg      Config

	item    content.Item
	doc     *segment.Document
	session *playback.Session
}

func New(svc *acquire.Service, parser *segment.Parser, renderer Renderer, clk clock.Clock, cfg Config) *Reader {
	if cfg.Speed == 0 {
		cfg.Speed = time.Second
	}
	if cfg.MergeThreshold == 0 {
		cfg.MergeThreshold = 0.20
	}
	return &Reader{svc: svc, parser: parser, renderer: renderer, clk: clk, cfg: cfg}
}

// Session returns the live playback session, or nil before the first load.
func (r *Reader) Session() *playback.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Document returns the live parsed document, or nil before the first load.
func (r *Reader) Document() *segment.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc
}

// Item returns the live content item.
func (r *Reader) Item() content.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.item
}

// LoadDaily acquires and installs content for a date. On failure the
// previously installed content and playback state stay untouched. When
// the acquired item is abbreviated, the background completion is awaited
// on its own goroutine and merged if still current.
func (r *Reader) LoadDaily(ctx context.Context, date time.Time) error {
	res, err := r.svc.AcquireDaily(ctx, date)
	if err != nil {
		return err
	}
	r.install(res.Item)
	if res.Pending != nil {
		go r.awaitCompletion(ctx, res.Pending)
	}
	return nil
}

// LoadNamed acquires and installs content by page name.
func (r *Reader) LoadNamed(ctx context.Context, name string) error {
	res, err := r.svc.AcquireNamed(ctx, name)
	if err != nil {
		return err
	}
	r.install(res.Item)
	return nil
}

// install parses item, tears down the old session's scheduling and makes
// the fresh document/session pair live. The reset emits the index-0
// preview so the renderer shows the starting position.
func (r *Reader) install(item content.Item) {
	doc := r.parser.Parse(item.Text)

	r.mu.Lock()
	if r.session != nil {
		r.session.Stop()
	}
	r.item = item
	r.doc = doc
	r.session = r.newSession(doc)
	session := r.session
	r.mu.Unlock()

	r.renderer.ShowDocument(item.Title, doc)
	session.Reset()
}

func (r *Reader) newSession(doc *segment.Document) *playback.Session {
	return playback.NewSession(r.clk, doc.Syllables, r.cfg.Speed,
		r.renderer.ShowSyllable, r.renderer.ShowComplete)
}

// awaitCompletion waits for a background completion and applies it unless
// a later acquisition superseded it. Completion failures keep the
// abbreviated content on screen.
func (r *Reader) awaitCompletion(ctx context.Context, comp *acquire.Completion) {
	item, err := comp.Wait(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Background completion not applied")
		return
	}
	if !r.svc.IsCurrent(comp) {
		logrus.WithField("generation", comp.Generation()).
			Info("Discarding stale background completion")
		return
	}
	r.Merge(item)
}

// Merge swaps fuller content into the live session, preserving play/pause
// state, clamping the position into the new range and keeping elapsed
// time. Candidates below the merge threshold are discarded as not worth
// re-rendering.
func (r *Reader) Merge(item content.Item) bool {
	doc := r.parser.Parse(item.Text)

	r.mu.Lock()
	current := 0
	if r.doc != nil {
		current = len(r.doc.Syllables)
	}
	if current > 0 && float64(len(doc.Syllables)) < float64(current)*(1+r.cfg.MergeThreshold) {
		r.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"current":   current,
			"candidate": len(doc.Syllables),
		}).Info("Discarding completion below merge threshold")
		return false
	}

	wasPlaying, wasPaused := false, false
	index := 0
	elapsed := time.Duration(0)
	if r.session != nil {
		state := r.session.State()
		wasPlaying = state == playback.Playing
		wasPaused = state == playback.Paused
		if wasPlaying {
			elapsed = r.session.Elapsed()
		} else {
			elapsed = r.session.PausedAccum()
		}
		index = r.session.Position()
		r.session.Stop()
	}

	r.item = item
	r.doc = doc
	r.session = r.newSession(doc)
	r.session.Restore(index, elapsed)
	session := r.session
	r.mu.Unlock()

	r.renderer.ShowDocument(item.Title, doc)

	switch {
	case wasPlaying:
		session.Start()
	case wasPaused:
		session.ForcePaused()
		if idx := session.Position(); idx < len(doc.Syllables) {
			r.renderer.ShowSyllable(idx, doc.Syllables[idx])
		}
	}

	logrus.WithFields(logrus.Fields{
		"syllables": len(doc.Syllables),
		"position":  session.Position(),
	}).Info("Merged complete content into live session")
	return true
}

// Shutdown stops the live session.
func (r *Reader) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session != nil {
		r.session.Stop()
	}
}

// ReadDaily is the handler for "syllaread daily [YYYY-MM-DD]".
func (r *Reader) ReadDaily(cmd *cobra.Command, args []string) {
	date := r.clk.Now()
	if len(args) > 0 {
		parsed, err := time.Parse("2006-01-02", args[0])
		if err != nil {
			colours.Error.Printf("Invalid date %q, expected YYYY-MM-DD\n", args[0])
			return
		}
		date = parsed
	}

	if err := r.LoadDaily(cmd.Context(), date); err != nil {
		r.reportAcquireError(err)
		return
	}
	r.runInteractive()
}

// ReadNamed is the handler for "syllaread read <name>".
func (r *Reader) ReadNamed(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		colours.Error.Println("Usage: syllaread read <page name>")
		return
	}
	name := strings.Join(args, " ")

	if err := r.LoadNamed(cmd.Context(), name); err != nil {
		r.reportAcquireError(err)
		return
	}
	r.runInteractive()
}

// reportAcquireError maps the error taxonomy to user-facing messages.
// Previously displayed content stays as it is.
func (r *Reader) reportAcquireError(err error) {
	switch {
	case errors.Is(err, source.ErrNotFound):
		colours.Warning.Println("No content found for that request.")
	case errors.Is(err, acquire.ErrTimeout):
		colours.Error.Println("The text service timed out. Try again in a moment.")
	case errors.Is(err, acquire.ErrTransport):
		colours.Error.Printf("Could not reach the text service: %v\n", err)
	default:
		colours.Error.Printf("Error: %v\n", err)
	}
}

// runInteractive drives the session from stdin until stop or completion.
func (r *Reader) runInteractive() {
	session := r.Session()
	if session == nil || len(r.Document().Syllables) == 0 {
		colours.Warning.Println("No content to display.")
		return
	}

	colours.Prompt.Println("Controls: [Enter] start/resume, p pause, r restart, +/- speed, s stop")
	session.Start()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		// re-read: a merge may have replaced the session
		session = r.Session()
		input := strings.TrimSpace(strings.ToLower(scanner.Text()))

		switch input {
		case "":
			if session.State() == playback.Paused {
				session.Resume()
			} else {
				session.Start()
			}
		case "p", "pause":
			if session.State() == playback.Playing {
				session.Pause()
				p := session.Progress()
				colours.Warning.Printf("Paused at %d/%d (%d%%), elapsed %s\n",
					p.Current, p.Total, p.Percentage, session.Elapsed().Round(time.Millisecond))
			} else {
				session.Resume()
			}
		case "r", "restart":
			session.Reset()
			session.Start()
		case "+":
			r.adjustSpeed(session, -100*time.Millisecond)
		case "-":
			r.adjustSpeed(session, 100*time.Millisecond)
		case "s", "stop", "q", "quit":
			session.Stop()
			colours.Warning.Println("Stopped")
			return
		default:
			colours.Info.Println("Use Enter, p, r, +, - or s")
		}

		if session.State() == playback.Completed {
			return
		}
	}
}

// adjustSpeed nudges the reveal interval, clamped to the clinically
// meaningful 500-2000ms range.
func (r *Reader) adjustSpeed(session *playback.Session, delta time.Duration) {
	speed := session.Speed() + delta
	if speed < 500*time.Millisecond {
		speed = 500 * time.Millisecond
	}
	if speed > 2000*time.Millisecond {
		speed = 2000 * time.Millisecond
	}
	session.SetSpeed(speed)
	colours.Info.Printf("Speed: %s per syllable\n", speed)
}

// ShowSettings is the handler for "syllaread settings".
func (r *Reader) ShowSettings(cmd *cobra.Command, args []string) {
	fmt.Println()
	colours.Title.Println("Playback Settings")
	fmt.Println()
	colours.Info.Printf("  Reveal interval: %s per syllable\n", r.cfg.Speed)
	colours.Info.Printf("  Merge threshold: %.0f%% syllable increase\n", r.cfg.MergeThreshold*100)
	fmt.Println()
	colours.Prompt.Println("Override via syllaread.yaml (playback.speed_ms, acquire.merge_threshold)")
}
