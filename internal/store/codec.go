package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/masumislambadsha/zavisoft/internal/domain"
	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
	"github.com/masumislambadsha/zavisoft/pkg/validator"
)

// Fixed keys within a session namespace.
const (
	CartKey     = "cart"
	WishlistKey = "wishlist"
)

// ErrCorruptedState matches every CorruptedStateError.
var ErrCorruptedState = apperrors.ErrCorruptedState

// CorruptedStateError reports a persisted blob that is not a valid
// serialisation of its collection.
type CorruptedStateError struct {
	Key string
	Err error
}

func (e *CorruptedStateError) Error() string {
	return fmt.Sprintf("corrupted %s state: %v", e.Key, e.Err)
}

func (e *CorruptedStateError) Unwrap() error { return e.Err }

// Is reports true for ErrCorruptedState.
func (e *CorruptedStateError) Is(target error) bool {
	return target == ErrCorruptedState
}

// AsAppError converts a corrupted state error into the 409 API error while
// leaving every other error untouched.
func AsAppError(err error) error {
	var cse *CorruptedStateError
	if errors.As(err, &cse) {
		return apperrors.CorruptedState(cse.Key, cse)
	}
	return err
}

var jsonNull = []byte("null")

// decodeList decodes a JSON array of T, validating each element and rejecting
// repeated keys. An empty blob or JSON null is an empty collection.
func decodeList[T any, K comparable](storageKey string, data []byte, keyOf func(T) K) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return nil, &CorruptedStateError{Key: storageKey, Err: errors.New("not a JSON array")}
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &CorruptedStateError{Key: storageKey, Err: err}
	}

	seen := make(map[K]struct{}, len(items))
	for i := range items {
		if err := validator.Validate(&items[i]); err != nil {
			return nil, &CorruptedStateError{Key: storageKey, Err: fmt.Errorf("entry %d: %w", i, err)}
		}
		k := keyOf(items[i])
		if _, dup := seen[k]; dup {
			return nil, &CorruptedStateError{Key: storageKey, Err: fmt.Errorf("entry %d: duplicate key %v", i, k)}
		}
		seen[k] = struct{}{}
	}
	return items, nil
}

// encodeList serialises items as a JSON array; nil encodes as [].
func encodeList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

func decodeCart(data []byte) ([]domain.CartLineItem, error) {
	return decodeList(CartKey, data, domain.CartLineItem.Key)
}

func decodeWishlist(data []byte) ([]domain.WishlistEntry, error) {
	return decodeList(WishlistKey, data, func(e domain.WishlistEntry) int { return e.ProductID })
}
