package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	domainRepo "clinical-records-api/internal/domain/repository"
	"clinical-records-api/internal/query"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// fillIfUnchangedScript caches a freshly loaded record only when no write
// bumped the record's epoch since the reader looked it up.
// KEYS[1] = record key, KEYS[2] = epoch key
// ARGV[1] = epoch seen by the reader, ARGV[2] = payload, ARGV[3] = ttl ms
var fillIfUnchangedScript = redis.NewScript(`
local current = redis.call("GET", KEYS[2]) or "0"
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// cachedRepository is a read-through redis cache in front of another
// repository. Only FindByID is cached; writes invalidate the entry and bump
// its epoch so a read that started before the write cannot repopulate it.
// Redis failures are logged and never fail the call.
type cachedRepository[T any] struct {
	inner       domainRepo.EntityRepository[T]
	redisClient *redis.Client
	log         *logrus.Logger
	prefix      string
	ttl         time.Duration
	idOf        func(*T) uuid.UUID
}

func NewCachedRepository[T any](
	inner domainRepo.EntityRepository[T],
	redisClient *redis.Client,
	log *logrus.Logger,
	schema *query.Schema[T],
	ttl time.Duration,
) domainRepo.EntityRepository[T] {
	return &cachedRepository[T]{
		inner:       inner,
		redisClient: redisClient,
		log:         log,
		prefix:      strings.ToLower(schema.Entity()),
		ttl:         ttl,
		idOf:        schema.ID,
	}
}

func (r *cachedRepository[T]) key(tenantID, id uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, tenantID, id)
}

func epochKey(key string) string {
	return key + ":epoch"
}

func (r *cachedRepository[T]) Create(ctx context.Context, item *T) error {
	return r.inner.Create(ctx, item)
}

func (r *cachedRepository[T]) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*T, error) {
	key := r.key(tenantID, id)

	cached, err := r.redisClient.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var item T
		decodeErr := json.Unmarshal(cached, &item)
		if decodeErr == nil {
			return &item, nil
		}
		r.log.Warnf("Failed to decode cached %s: %+v", key, decodeErr)
	case !errors.Is(err, redis.Nil):
		r.log.Warnf("Failed to read cache %s: %+v", key, err)
	}

	epoch, err := r.redisClient.Get(ctx, epochKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		epoch, err = "0", nil
	}
	cacheable := err == nil
	if err != nil {
		r.log.Warnf("Failed to read cache epoch %s: %+v", key, err)
	}

	item, err := r.inner.FindByID(ctx, tenantID, id)
	if err != nil || item == nil || !cacheable {
		return item, err
	}

	data, err := json.Marshal(item)
	if err != nil {
		r.log.Warnf("Failed to encode %s for cache: %+v", key, err)
		return item, nil
	}
	keys := []string{key, epochKey(key)}
	if err := fillIfUnchangedScript.Run(ctx, r.redisClient, keys, epoch, data, r.ttl.Milliseconds()).Err(); err != nil {
		r.log.Warnf("Failed to write cache %s: %+v", key, err)
	}
	return item, nil
}

func (r *cachedRepository[T]) List(ctx context.Context, tenantID uuid.UUID, q *query.Compiled[T]) (*query.ListResult[T], error) {
	return r.inner.List(ctx, tenantID, q)
}

func (r *cachedRepository[T]) Update(ctx context.Context, tenantID uuid.UUID, item *T) error {
	err := r.inner.Update(ctx, tenantID, item)
	r.invalidate(ctx, tenantID, r.idOf(item))
	return err
}

func (r *cachedRepository[T]) Delete(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	n, err := r.inner.Delete(ctx, tenantID, id)
	r.invalidate(ctx, tenantID, id)
	return n, err
}

func (r *cachedRepository[T]) invalidate(ctx context.Context, tenantID, id uuid.UUID) {
	key := r.key(tenantID, id)
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, epochKey(key))
		// the epoch must outlive any read that saw the previous value
		pipe.PExpire(ctx, epochKey(key), 2*r.ttl+time.Minute)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		r.log.Warnf("Failed to invalidate cache %s: %+v", key, err)
	}
}
