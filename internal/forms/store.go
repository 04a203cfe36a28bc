package forms

import (
	"context"
	"errors"
)

// ErrFormExpired is returned when a form instance is unknown: it was discarded,
// already submitted or its TTL ran out.
var ErrFormExpired = errors.New("forms: form instance expired")

// Store persists form instances between requests.
type Store interface {
	Save(ctx context.Context, st *State) error
	Load(ctx context.Context, id string) (*State, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// Guard enforces at most one in-flight mutation per key.
type Guard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
	Held(ctx context.Context, key string) (bool, error)
}

// FormKey is the guard key of a form instance.
func FormKey(formID string) string { return "form:" + formID }

// RowKey is the guard key of a grid row.
func RowKey(resource, id string) string { return "row:" + resource + ":" + id }
