package repository

import (
	"bytes"
	"context"
)

// KV is the persisted key/value storage behind the cart and wishlist stores.
// Values are opaque blobs; Get returns an error matching apperrors.ErrNotFound
// when the key has never been written or was deleted.
//
// CompareAndSet writes value only while key still holds old, where a nil old
// means the key must be absent. It reports false without error when another
// writer changed the key first.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	CompareAndSet(ctx context.Context, key string, old, value []byte) (bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Matches reports whether a key holding current (present says whether it
// exists at all) satisfies the old value given to CompareAndSet.
func Matches(current []byte, present bool, old []byte) bool {
	if old == nil {
		return !present
	}
	return present && bytes.Equal(current, old)
}

const sessionPrefix = "session:"

// SessionPrefix returns the key prefix owned by one storefront session.
func SessionPrefix(sessionID string) string {
	return sessionPrefix + sessionID + ":"
}

// Scoped is a KV restricted to one session's namespace.
type Scoped struct {
	kv     KV
	prefix string
}

// Scope returns a view of kv in which every key is prefixed with
// "session:<id>:", so two sessions never see each other's blobs.
func Scope(kv KV, sessionID string) *Scoped {
	return &Scoped{kv: kv, prefix: SessionPrefix(sessionID)}
}

// Key returns the fully qualified backend key for key.
func (s *Scoped) Key(key string) string {
	return s.prefix + key
}

// Get reads key within the session namespace.
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.kv.Get(ctx, s.Key(key))
}

// CompareAndSet conditionally writes key within the session namespace.
func (s *Scoped) CompareAndSet(ctx context.Context, key string, old, value []byte) (bool, error) {
	return s.kv.CompareAndSet(ctx, s.Key(key), old, value)
}

// Delete removes key within the session namespace.
func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, s.Key(key))
}

// Ping checks the underlying backend.
func (s *Scoped) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}
