// Package marker stores presence flags that other processes use to signal
// the daemon: pending commands, administrative overrides and fault records.
// A marker either exists or it does not; it carries no payload.
package marker

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKey is returned for keys that cannot name a marker.
var ErrInvalidKey = errors.New("marker: invalid key")

// Store is a set of named markers.
type Store interface {
	// Exists reports whether the marker is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Create materialises the marker. Creating an existing marker is not an error.
	Create(ctx context.Context, key string) error

	// Remove deletes the marker. Removing a missing marker is not an error.
	Remove(ctx context.Context, key string) error
}

func checkKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
