// Package cartstore mirrors the cart aggregate into a durable slot and
// restores it when the terminal starts.
package cartstore

import (
	"context"
	"errors"
)

// ErrSlotNotFound is returned by a Store when nothing was saved under the key.
var ErrSlotNotFound = errors.New("cart slot not found")

// Store persists serialized cart slots by key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}
