package redis

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	goRedis "github.com/redis/go-redis/v9"
)

type Cache struct {
	redisClient *goRedis.Client
}

type Cmd struct {
	*goRedis.Cmd
}

var ErrNil = goRedis.Nil

func (cache *Cache) TxPipeline() *CacheTX {
	return &CacheTX{
		redisTxPipeline: cache.redisClient.TxPipeline(),
	}
}

func (cache *Cache) RunLua(ctx context.Context, script string, keys []string, args ...interface{}) *Cmd {
	luaScript := goRedis.NewScript(script)
	cmd := Cmd{luaScript.Run(ctx, cache.redisClient, keys, args...)}
	return &cmd
}

func (cache *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return cacheSet(ctx, cache.redisClient, key, value, expiration).Err()
}

func (cache *Cache) Del(ctx context.Context, keys ...string) error {
	return cache.redisClient.Del(ctx, keys...).Err()
}

func (cache *Cache) Get(ctx context.Context, key string) (val string, exists bool, err error) {
	val, err = cache.redisClient.Get(ctx, key).Result()
	if err == goRedis.Nil {
		return "", false, nil
	} else if err != nil {
		return "", false, errors.Wrap(err, "get redis failed")
	}
	return val, true, nil
}

func (cache *Cache) Incr(ctx context.Context, key string) (int64, error) {
	val, err := cache.redisClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrap(err, "incr redis failed")
	}
	return val, nil
}

func (cache *Cache) SAdd(ctx context.Context, key string, members ...interface{}) error {
	if err := cache.redisClient.SAdd(ctx, key, members...).Err(); err != nil {
		return errors.Wrap(err, "sadd redis failed")
	}
	return nil
}

func (cache *Cache) SRem(ctx context.Context, key string, members ...interface{}) error {
	if err := cache.redisClient.SRem(ctx, key, members...).Err(); err != nil {
		return errors.Wrap(err, "srem redis failed")
	}
	return nil
}

func (cache *Cache) SIsMember(ctx context.Context, key string, member interface{}) (bool, error) {
	isMember, err := cache.redisClient.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, errors.Wrap(err, "sismember redis failed")
	}
	return isMember, nil
}

func (cache *Cache) SCard(ctx context.Context, key string) (int64, error) {
	count, err := cache.redisClient.SCard(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrap(err, "scard redis failed")
	}
	return count, nil
}

func (cache *Cache) Ping(ctx context.Context) error {
	if err := cache.redisClient.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "ping redis failed")
	}
	return nil
}

func (cache *Cache) Close() error {
	return cache.redisClient.Close()
}

// CreateCache accepts either host:port or a redis:// url.
func CreateCache(address, password string, dbSelect int) (*Cache, error) {
	options := &goRedis.Options{
		Addr:     address,
		Password: password,
		DB:       dbSelect,
	}
	if strings.HasPrefix(address, "redis://") || strings.HasPrefix(address, "rediss://") {
		parsedOptions, err := goRedis.ParseURL(address)
		if err != nil {
			return nil, errors.Wrap(err, "parse redis url failed")
		}
		if password != "" {
			parsedOptions.Password = password
		}
		options = parsedOptions
	}
	options.DialTimeout = 5 * time.Second
	options.ReadTimeout = 5 * time.Second

	redisClient := goRedis.NewClient(options)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "redis connect failed")
	}
	return &Cache{redisClient: redisClient}, nil
}
