package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
	"github.com/masumislambadsha/zavisoft/pkg/validator"
)

// KV is the persistence a store needs: one blob under one fixed key.
// repository.Scoped satisfies it.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	CompareAndSet(ctx context.Context, key string, old, value []byte) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Options configures a store.
type Options struct {
	Policy RecoveryPolicy
	Logger *slog.Logger
	// Lock serialises writes with other stores of the same session. A store
	// without one only serialises its own callers.
	Lock sync.Locker
}

// maxWriteAttempts bounds how often a write is recomputed after another
// writer replaced the blob it was based on.
const maxWriteAttempts = 5

type loadState int

const (
	unloaded loadState = iota
	loaded
	corrupted
)

// collection is the hydrate-once, persist-after-mutation core shared by the
// cart and wishlist stores. Every method expects mu to be held.
//
// raw is the blob items were decoded from, nil when the key is absent. Writes
// are conditional on it, so a write computed from a stale read is retried on
// a fresh one instead of overwriting a concurrent change.
type collection[T any] struct {
	kv     KV
	key    string
	policy RecoveryPolicy
	logger *slog.Logger
	decode func([]byte) ([]T, error)
	write  sync.Locker

	mu      sync.Mutex
	items   []T
	raw     []byte
	state   loadState
	loadErr error
}

func newCollection[T any](kv KV, key string, opts Options, decode func([]byte) ([]T, error)) *collection[T] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	write := opts.Lock
	if write == nil {
		write = new(sync.Mutex)
	}
	return &collection[T]{kv: kv, key: key, policy: opts.Policy, logger: logger, decode: decode, write: write}
}

// hydrate reads the blob the first time it is called. Under RecoverFail a
// corrupted blob keeps failing until a write replaces it.
func (c *collection[T]) hydrate(ctx context.Context) error {
	switch c.state {
	case loaded:
		return nil
	case corrupted:
		if c.policy == RecoverFail {
			return c.loadErr
		}
		return nil
	}

	data, err := c.kv.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.items, c.raw, c.state = nil, nil, loaded
			return nil
		}
		return fmt.Errorf("load %s: %w", c.key, err)
	}
	if data == nil {
		data = []byte{}
	}
	c.raw = data

	items, err := c.decode(data)
	if err == nil {
		c.items, c.state = items, loaded
		return nil
	}

	c.items, c.state, c.loadErr = nil, corrupted, err
	corruptedTotal.WithLabelValues(c.key, c.policy.String()).Inc()

	if c.policy == RecoverFail {
		c.logger.ErrorContext(ctx, "persisted state is corrupted",
			slog.String("key", c.key),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.logger.WarnContext(ctx, "persisted state is corrupted, starting empty",
		slog.String("key", c.key),
		slog.String("error", err.Error()),
	)
	return nil
}

// update runs mutate over a copy of the current items and persists the
// result, adopting it only once the write succeeded. A mutate reporting no
// change writes nothing. When the blob changed since it was read, it is
// read again and mutate reruns on the fresh items.
func (c *collection[T]) update(ctx context.Context, store, op string, mutate func([]T) ([]T, bool)) error {
	c.write.Lock()
	defer c.write.Unlock()

	for attempt := 1; ; attempt++ {
		if err := c.hydrate(ctx); err != nil {
			return err
		}
		next, changed := mutate(c.snapshot())
		if !changed {
			return nil
		}

		data, err := encodeList(next)
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.key, err)
		}
		ok, err := c.kv.CompareAndSet(ctx, c.key, c.raw, data)
		if err != nil {
			return fmt.Errorf("persist %s: %w", c.key, err)
		}
		if ok {
			c.items, c.raw, c.state, c.loadErr = next, data, loaded, nil
			mutationsTotal.WithLabelValues(store, op).Inc()
			return nil
		}

		writeConflictsTotal.WithLabelValues(store).Inc()
		if attempt == maxWriteAttempts {
			return apperrors.Conflict(fmt.Sprintf("%s was modified concurrently, please retry", store))
		}
		c.logger.DebugContext(ctx, "persisted state changed underneath, rereading",
			slog.String("key", c.key),
			slog.Int("attempt", attempt),
		)
		c.state = unloaded
	}
}

// clear deletes the blob without reading it first. It writes unless the
// collection is already known to be empty and intact.
func (c *collection[T]) clear(ctx context.Context, store string) error {
	if c.state == loaded && len(c.items) == 0 {
		return nil
	}

	c.write.Lock()
	defer c.write.Unlock()

	if err := c.kv.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("delete %s: %w", c.key, err)
	}
	c.items, c.raw, c.state, c.loadErr = nil, nil, loaded, nil
	mutationsTotal.WithLabelValues(store, "clear").Inc()
	return nil
}

// checkEntry rejects an entry that would make the persisted blob unreadable.
func checkEntry(v any) error {
	if err := validator.Validate(v); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	return nil
}

func (c *collection[T]) snapshot() []T {
	return slices.Clone(c.items)
}
