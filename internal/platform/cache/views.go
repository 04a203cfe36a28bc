package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/podkrepi-bg/admin/internal/api"
)

const viewKeyPrefix = "views:"

// ViewRecorder observes view cache lookups.
type ViewRecorder interface {
	ObserveViewCache(resource string, hit bool)
}

// Views is a read-through cache of successful API reads. Mutations invalidate
// every entry of the affected resource.
type Views struct {
	client   *redis.Client
	ttl      time.Duration
	logger   *slog.Logger
	recorder ViewRecorder
}

// NewViews constructs a view cache. A zero ttl disables caching. recorder may be nil.
func NewViews(client *redis.Client, ttl time.Duration, logger *slog.Logger, recorder ViewRecorder) *Views {
	if logger == nil {
		logger = slog.Default()
	}
	return &Views{client: client, ttl: ttl, logger: logger, recorder: recorder}
}

type cachedView struct {
	Record  api.Record   `json:"record,omitempty"`
	Records []api.Record `json:"records,omitempty"`
}

// List returns the cached list of resource or loads it.
func (v *Views) List(ctx context.Context, resource string, load func(context.Context) api.Result) api.Result {
	return v.fetch(ctx, resource, viewKeyPrefix+resource+":list", load)
}

// Record returns the cached record id of resource or loads it.
func (v *Views) Record(ctx context.Context, resource, id string, load func(context.Context) api.Result) api.Result {
	return v.fetch(ctx, resource, viewKeyPrefix+resource+":record:"+id, load)
}

func (v *Views) fetch(ctx context.Context, resource, key string, load func(context.Context) api.Result) api.Result {
	if v == nil || v.ttl <= 0 {
		return load(ctx)
	}
	if res, ok := v.lookup(ctx, key); ok {
		v.observe(resource, true)
		return res
	}
	v.observe(resource, false)

	res := load(ctx)
	if !res.OK() {
		return res
	}
	payload, err := json.Marshal(cachedView{Record: res.Record, Records: res.Records})
	if err != nil {
		v.logger.Warn("encode view", slog.String("key", key), slog.Any("error", err))
		return res
	}
	if err := v.client.Set(ctx, key, payload, v.ttl).Err(); err != nil {
		v.logger.Warn("store view", slog.String("key", key), slog.Any("error", err))
	}
	return res
}

func (v *Views) lookup(ctx context.Context, key string) (api.Result, bool) {
	raw, err := v.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			v.logger.Warn("read view", slog.String("key", key), slog.Any("error", err))
		}
		return api.Result{}, false
	}
	var view cachedView
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&view); err != nil {
		v.logger.Warn("decode view", slog.String("key", key), slog.Any("error", err))
		return api.Result{}, false
	}
	return api.Result{Kind: api.KindOK, Status: 200, Record: view.Record, Records: view.Records}, true
}

func (v *Views) observe(resource string, hit bool) {
	if v.recorder != nil {
		v.recorder.ObserveViewCache(resource, hit)
	}
}

// Invalidate drops every cached view of resource.
func (v *Views) Invalidate(ctx context.Context, resource string) error {
	if v == nil {
		return nil
	}
	var cursor uint64
	pattern := viewKeyPrefix + resource + ":*"
	for {
		keys, next, err := v.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache: scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := v.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache: invalidate %s: %w", resource, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
