package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goRedis "github.com/redis/go-redis/v9"
)

type CacheTX struct {
	redisTxPipeline goRedis.Pipeliner
}

func (tx *CacheTX) Exec(ctx context.Context) error {
	if _, err := tx.redisTxPipeline.Exec(ctx); err != nil {
		return errors.Wrap(err, "exec tx pipeline failed")
	}
	return nil
}

func (tx *CacheTX) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	cacheSet(ctx, tx.redisTxPipeline, key, value, expiration)
}

func (tx *CacheTX) Del(ctx context.Context, keys ...string) {
	tx.redisTxPipeline.Del(ctx, keys...)
}

func (tx *CacheTX) SAdd(ctx context.Context, key string, members ...interface{}) {
	tx.redisTxPipeline.SAdd(ctx, key, members...)
}

func (tx *CacheTX) SRem(ctx context.Context, key string, members ...interface{}) {
	tx.redisTxPipeline.SRem(ctx, key, members...)
}

func cacheSet(ctx context.Context, cmd goRedis.Cmdable, key string, value interface{}, expiration time.Duration) *goRedis.StatusCmd {
	return cmd.Set(ctx, key, value, expiration)
}
