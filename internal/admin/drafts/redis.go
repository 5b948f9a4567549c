package drafts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/products"
)

const defaultRedisPrefix = "steth-admin:draft:"

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisStore keeps drafts in Redis so any admin instance can serve a session.
type RedisStore struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	lockTTL time.Duration
}

// RedisOption customises a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithLockTTL overrides how long a submission lock survives a crashed request.
func WithLockTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// NewRedisStore constructs a RedisStore. Drafts expire after ttl of inactivity.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("drafts: redis client is required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	s := &RedisStore{
		client:  client,
		prefix:  defaultRedisPrefix,
		ttl:     ttl,
		lockTTL: defaultLockTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewRedisClient parses a redis:// URL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("drafts: invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("drafts: ping redis: %w", err)
	}
	return client, nil
}

// Load returns the stored composer.
func (s *RedisStore) Load(ctx context.Context, key Key) (*products.Composer, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	raw, err := s.client.Get(ctx, s.dataKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("drafts: load %s: %w", key, err)
	}
	return decode(raw)
}

// Save stores a snapshot and refreshes the expiry of the draft and of the
// session's draft index.
func (s *RedisStore) Save(ctx context.Context, key Key, c *products.Composer) error {
	if err := key.Validate(); err != nil {
		return err
	}
	raw, err := encode(c)
	if err != nil {
		return err
	}
	index := s.indexKey(key.Session)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.dataKey(key), raw, s.ttl)
		pipe.SAdd(ctx, index, key.Draft)
		pipe.Expire(ctx, index, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("drafts: save %s: %w", key, err)
	}
	return nil
}

// Delete discards a draft.
func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.dataKey(key))
		pipe.SRem(ctx, s.indexKey(key.Session), key.Draft)
		return nil
	})
	if err != nil {
		return fmt.Errorf("drafts: delete %s: %w", key, err)
	}
	return nil
}

// DeleteSession discards every draft listed in the session's index.
func (s *RedisStore) DeleteSession(ctx context.Context, session string) error {
	index := s.indexKey(session)
	ids, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("drafts: list session drafts: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.dataKey(Key{Session: session, Draft: id}))
	}
	keys = append(keys, index)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("drafts: delete session drafts: %w", err)
	}
	return nil
}

// Acquire takes the submission lock with SET NX. Only the holder's token can release it.
func (s *RedisStore) Acquire(ctx context.Context, key Key) (func(), error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	token := uuid.NewString()
	lockKey := s.lockKey(key)
	ok, err := s.client.SetNX(ctx, lockKey, token, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("drafts: acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return func() {
		// The request context may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, s.client, []string{lockKey}, token).Err()
	}, nil
}

func (s *RedisStore) dataKey(key Key) string {
	return s.prefix + key.String()
}

// indexKey holds the set of draft ids of a session. Session ids never
// contain braces, so the key cannot collide with a draft key.
func (s *RedisStore) indexKey(session string) string {
	return s.prefix + "{" + session + "}:drafts"
}

func (s *RedisStore) lockKey(key Key) string {
	return s.prefix + key.String() + ":lock"
}
