package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/podkrepi-bg/admin/internal/forms"
)

const formKeyPrefix = "form:"

// FormStore keeps mounted form instances in Redis. Every save refreshes the TTL
// so an instance expires only after ttl of inactivity.
type FormStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFormStore constructs a FormStore.
func NewFormStore(client *redis.Client, ttl time.Duration) *FormStore {
	return &FormStore{client: client, ttl: ttl}
}

// Save persists st.
func (s *FormStore) Save(ctx context.Context, st *forms.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("cache: encode form %s: %w", st.ID, err)
	}
	return s.client.Set(ctx, formKeyPrefix+st.ID, payload, s.ttl).Err()
}

// Load returns the instance or forms.ErrFormExpired.
func (s *FormStore) Load(ctx context.Context, id string) (*forms.State, error) {
	if id == "" {
		return nil, forms.ErrFormExpired
	}
	raw, err := s.client.Get(ctx, formKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, forms.ErrFormExpired
	}
	if err != nil {
		return nil, err
	}
	var st forms.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("cache: decode form %s: %w", id, err)
	}
	if st.Touched == nil {
		st.Touched = make(map[string]bool)
	}
	if st.Validated == nil {
		st.Validated = make(map[string]bool)
	}
	if st.Errors == nil {
		st.Errors = make(forms.FieldErrors)
	}
	return &st, nil
}

// Delete disposes an instance.
func (s *FormStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, formKeyPrefix+id).Err()
}

// Exists reports whether the instance is still mounted.
func (s *FormStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, formKeyPrefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
