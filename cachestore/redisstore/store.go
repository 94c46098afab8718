// Package redisstore keeps cache groups in redis so several proxies can share them.
//
// Layout under a key prefix:
//
//	<prefix>:groups        sorted set of group names scored by creation time
//	<prefix>:group:<name>  hash of entry key -> JSON encoded entry
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jrsteele09/go-cms-client/cachestore"
	"github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const defaultPrefix = "cmscache"

type Storage struct {
	client  redis.UniversalClient
	prefix  string
	nowFunc func() time.Time
}

var _ cachestore.Storage = (*Storage)(nil)

type Option func(*Storage)

func WithPrefix(prefix string) Option {
	return func(s *Storage) {
		s.prefix = prefix
	}
}

func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Storage) {
		s.nowFunc = nowFunc
	}
}

func New(client redis.UniversalClient, options ...Option) *Storage {
	s := &Storage{client: client, prefix: defaultPrefix, nowFunc: time.Now}
	for _, o := range options {
		o(s)
	}
	return s
}

// Connect opens a client on addr and checks it answers.
func Connect(ctx context.Context, addr string, options ...Option) (*Storage, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "redisstore.Connect %s", addr)
	}
	log.Info().Str("addr", addr).Msg("cache groups stored in redis")
	return New(client, options...), nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) groupsKey() string {
	return s.prefix + ":groups"
}

func (s *Storage) groupKey(name string) string {
	return fmt.Sprintf("%s:group:%s", s.prefix, name)
}

func (s *Storage) Open(ctx context.Context, name string) (cachestore.Cache, error) {
	err := s.client.ZAddNX(ctx, s.groupsKey(), redis.Z{
		Score:  float64(s.nowFunc().UnixNano()),
		Member: name,
	}).Err()
	if err != nil {
		return nil, errors.Wrapf(err, "redisstore.Open %s", name)
	}
	return &cache{storage: s, name: name}, nil
}

func (s *Storage) Has(ctx context.Context, name string) (bool, error) {
	_, err := s.client.ZScore(ctx, s.groupsKey(), name).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "redisstore.Has %s", name)
	}
	return true, nil
}

func (s *Storage) Delete(ctx context.Context, name string) (bool, error) {
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.ZRem(ctx, s.groupsKey(), name)
		pipe.Del(ctx, s.groupKey(name))
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "redisstore.Delete %s", name)
	}
	return removed.Val() > 0, nil
}

func (s *Storage) Names(ctx context.Context) ([]string, error) {
	names, err := s.client.ZRange(ctx, s.groupsKey(), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "redisstore.Names")
	}
	return names, nil
}

type cache struct {
	storage *Storage
	name    string
}

func (c *cache) Name() string {
	return c.name
}

func (c *cache) Match(ctx context.Context, key string) (*cachestore.Entry, bool, error) {
	raw, err := c.storage.client.HGet(ctx, c.storage.groupKey(c.name), key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "redisstore match %s", key)
	}
	var e cachestore.Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, false, errors.Wrapf(err, "redisstore decode %s", key)
	}
	return &e, true, nil
}

func (c *cache) Put(ctx context.Context, entry *cachestore.Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrapf(err, "redisstore encode %s", entry.Key())
	}
	if err := c.storage.client.HSet(ctx, c.storage.groupKey(c.name), entry.Key(), raw).Err(); err != nil {
		return errors.Wrapf(err, "redisstore put %s", entry.Key())
	}
	return nil
}

func (c *cache) Delete(ctx context.Context, key string) (bool, error) {
	n, err := c.storage.client.HDel(ctx, c.storage.groupKey(c.name), key).Result()
	if err != nil {
		return false, errors.Wrapf(err, "redisstore delete %s", key)
	}
	return n > 0, nil
}

// Entries are returned oldest first.
func (c *cache) Entries(ctx context.Context) ([]*cachestore.Entry, error) {
	all, err := c.storage.client.HGetAll(ctx, c.storage.groupKey(c.name)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "redisstore entries %s", c.name)
	}
	entries := make([]*cachestore.Entry, 0, len(all))
	for key, raw := range all {
		var e cachestore.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			log.Warn().Err(err).Str("key", key).Str("group", c.name).Msg("dropping unreadable cache entry")
			continue
		}
		entries = append(entries, &e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StoredAt.Before(entries[j].StoredAt)
	})
	return entries, nil
}
