package rediscache

import (
	"context"
	"errors"
	"time"

	"github.com/Madison-de-Chao/chaos-life-compass-sub003/internal/domain/identity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	roleYes = "1"
	roleNo  = "0"
)

// RoleRepository caches role lookups from the underlying store for a short TTL.
// Cache errors fall through to the store.
type RoleRepository struct {
	next identity.RoleRepository
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

func NewRoleRepository(next identity.RoleRepository, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *RoleRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoleRepository{next: next, rdb: rdb, ttl: ttl, log: log}
}

func roleKey(userID, role string) string { return "roles:" + role + ":" + userID }

func (r *RoleRepository) HasRole(ctx context.Context, userID, role string) (bool, error) {
	key := roleKey(userID, role)
	v, err := r.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return v == roleYes, nil
	case !errors.Is(err, redis.Nil):
		r.log.Warn("role cache read failed", zap.String("key", key), zap.Error(err))
	}

	ok, err := r.next.HasRole(ctx, userID, role)
	if err != nil {
		return false, err
	}
	val := roleNo
	if ok {
		val = roleYes
	}
	if err := r.rdb.Set(ctx, key, val, r.ttl).Err(); err != nil {
		r.log.Warn("role cache write failed", zap.String("key", key), zap.Error(err))
	}
	return ok, nil
}

// Invalidate drops a cached decision, e.g. after a grant or revoke.
func (r *RoleRepository) Invalidate(ctx context.Context, userID, role string) error {
	return r.rdb.Del(ctx, roleKey(userID, role)).Err()
}
