package services

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// SessionKeyPrefix maps a token id to its user: session:<jti> -> user hex
	SessionKeyPrefix = "session:"
	// UserSessionsKeyPrefix holds the set of live token ids of a user
	UserSessionsKeyPrefix = "user_sessions:"
)

// RedisSessions stores sessions in Redis with the token TTL as key expiry.
type RedisSessions struct {
	rdb *redis.Client
}

func NewRedisSessions(rdb *redis.Client) *RedisSessions {
	return &RedisSessions{rdb: rdb}
}

func (s *RedisSessions) Create(ctx context.Context, id string, user primitive.ObjectID, ttl time.Duration) error {
	userKey := UserSessionsKeyPrefix + user.Hex()
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, SessionKeyPrefix+id, user.Hex(), ttl)
		pipe.SAdd(ctx, userKey, id)
		// the index lives as long as the newest session
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	return err
}

func (s *RedisSessions) Lookup(ctx context.Context, id string) (primitive.ObjectID, bool, error) {
	hex, err := s.rdb.Get(ctx, SessionKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return primitive.NilObjectID, false, nil
	}
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	user, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	return user, true, nil
}

func (s *RedisSessions) Revoke(ctx context.Context, id string) error {
	key := SessionKeyPrefix + id
	hex, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, UserSessionsKeyPrefix+hex, id)
		return nil
	})
	return err
}

// RevokeAll removes every session of user, used on account deletion and
// password change.
func (s *RedisSessions) RevokeAll(ctx context.Context, user primitive.ObjectID) error {
	userKey := UserSessionsKeyPrefix + user.Hex()
	ids, err := s.rdb.SMembers(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, SessionKeyPrefix+id)
	}
	keys = append(keys, userKey)
	return s.rdb.Del(ctx, keys...).Err()
}
