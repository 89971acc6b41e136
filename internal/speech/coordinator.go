// Package speech coordinates synthesis requests against the audio cache,
// collapsing concurrent requests for the same (voice, text) pair into a
// single engine call.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/ttserve/internal/cache"
	"github.com/dgnsrekt/ttserve/internal/tts"
)

// ErrSynthesisTimeout is returned when the engine does not produce audio
// within the configured timeout.
var ErrSynthesisTimeout = errors.New("TTS synthesis timed out")

// Request identifies one unit of speech to acquire.
type Request struct {
	Text  string
	Voice string
}

// inflight tracks a synthesis in progress for one cache key. The leader
// closes done after setting data/err; followers only read those fields
// once done is closed.
type inflight struct {
	done chan struct{}
	data []byte
	err  error
}

// Coordinator serves audio for (voice, text) pairs, backed by the cache
// store and a synthesis engine. For each cache key at most one synthesis
// is in flight at any moment; concurrent requests for the same key wait
// for the first one's outcome instead of duplicating work.
type Coordinator struct {
	store   *cache.Store
	engine  tts.Engine
	timeout time.Duration
	logger  *slog.Logger

	regMu    sync.Mutex
	registry map[string]*inflight
}

// NewCoordinator creates a coordinator around the given store and engine.
func NewCoordinator(store *cache.Store, engine tts.Engine, timeout time.Duration, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:    store,
		engine:   engine,
		timeout:  timeout,
		logger:   logger,
		registry: make(map[string]*inflight),
	}
}

// Acquire returns the audio bytes for req, synthesizing and caching them
// on first use. ctx bounds only this caller's wait: synthesis, once
// admitted, runs detached so a disconnecting caller cannot cancel work
// whose result benefits the next request.
func (c *Coordinator) Acquire(ctx context.Context, req Request) ([]byte, error) {
	key := cache.Key(req.Voice, req.Text)

	// Fast path: published entries are immutable, so a hit needs no
	// coordination at all.
	if c.store.Exists(key) {
		data, err := c.store.Read(key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			return nil, err
		}
		// Entry vanished between Exists and Read; fall through and
		// synthesize it again.
	}

	flight, leader := c.join(key)
	if leader {
		c.resolve(key, flight, req)
	}

	select {
	case <-flight.done:
		return flight.data, flight.err
	case <-ctx.Done():
		// The leader keeps running; only this waiter gives up.
		return nil, ctx.Err()
	}
}

// join registers the caller for key's in-flight record, creating it if
// absent. The second return is true for the leader.
func (c *Coordinator) join(key string) (*inflight, bool) {
	c.regMu.Lock()
	defer c.regMu.Unlock()

	if flight, ok := c.registry[key]; ok {
		return flight, false
	}

	flight := &inflight{done: make(chan struct{})}
	c.registry[key] = flight
	return flight, true
}

// resolve performs the synthesis for key and releases every waiter with
// the identical outcome. Runs on the leader's goroutine; the registry
// lock is never held across the engine call.
func (c *Coordinator) resolve(key string, flight *inflight, req Request) {
	// Detached from the leader's request context: admitted work runs to
	// completion and publishes even if every caller disconnects.
	synthCtx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	data, err := c.synthesize(synthCtx, req)
	if err == nil {
		if writeErr := c.store.Write(key, data); writeErr != nil {
			err = fmt.Errorf("failed to cache audio: %w", writeErr)
			data = nil
		}
	}

	flight.data = data
	flight.err = err

	c.regMu.Lock()
	delete(c.registry, key)
	c.regMu.Unlock()

	close(flight.done)
}

func (c *Coordinator) synthesize(ctx context.Context, req Request) ([]byte, error) {
	result, err := c.engine.Synthesize(ctx, tts.SynthesizeRequest{
		Text:  req.Text,
		Voice: req.Voice,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("synthesis timed out",
				"voice", req.Voice,
				"text_length", len(req.Text),
				"timeout", c.timeout,
			)
			return nil, ErrSynthesisTimeout
		}
		return nil, err
	}

	return result.Data, nil
}
