package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
)

func TestKV_WriteGetDelete(t *testing.T) {
	ctx := context.Background()
	kv := New()

	_, err := kv.Get(ctx, "cart")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	ok, err := kv.CompareAndSet(ctx, "cart", nil, []byte(`[]`))
	require.NoError(t, err)
	require.True(t, ok)
	got, err := kv.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
	assert.Equal(t, 1, kv.Len())

	require.NoError(t, kv.Delete(ctx, "cart"))
	require.NoError(t, kv.Delete(ctx, "cart"))
	assert.Equal(t, 0, kv.Len())
	assert.NoError(t, kv.Ping(ctx))
}

func TestKV_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	kv := New()

	in := []byte("abc")
	ok, err := kv.CompareAndSet(ctx, "k", nil, in)
	require.NoError(t, err)
	require.True(t, ok)
	in[0] = 'x'

	out, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[1] = 'y'
	again, _ := kv.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestKV_CompareAndSet(t *testing.T) {
	ctx := context.Background()
	kv := New()

	ok, err := kv.CompareAndSet(ctx, "k", []byte("one"), []byte("two"))
	require.NoError(t, err)
	assert.False(t, ok, "an absent key does not match a value")

	ok, _ = kv.CompareAndSet(ctx, "k", nil, []byte(""))
	require.True(t, ok)
	ok, _ = kv.CompareAndSet(ctx, "k", nil, []byte("one"))
	assert.False(t, ok, "an empty value is still present")

	ok, _ = kv.CompareAndSet(ctx, "k", []byte{}, []byte("one"))
	assert.True(t, ok)
	ok, _ = kv.CompareAndSet(ctx, "k", []byte("stale"), []byte("two"))
	assert.False(t, ok)

	got, _ := kv.Get(ctx, "k")
	assert.Equal(t, "one", string(got))
}

func TestKV_ConcurrentCompareAndSet(t *testing.T) {
	ctx := context.Background()
	kv := New()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := kv.CompareAndSet(ctx, "k", nil, []byte("v"))
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
			_, _ = kv.Get(ctx, "k")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, kv.Len())
}
