package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/superj80820/link-shortener/domain"
	redisKit "github.com/superj80820/link-shortener/kit/redis"
)

type linkCacheRepo struct {
	cache *redisKit.Cache
}

func CreateLinkCacheRepo(cache *redisKit.Cache) domain.LinkCacheRepo {
	return &linkCacheRepo{
		cache: cache,
	}
}

func linkKey(code string) string {
	return domain.LINK_CACHE_KEY_PREFIX + code
}

func (l *linkCacheRepo) GetDestination(ctx context.Context, code string) (string, bool, error) {
	destination, exists, err := l.cache.Get(ctx, linkKey(code))
	if err != nil {
		return "", false, errors.Wrap(err, "get destination failed")
	}
	return destination, exists, nil
}

func (l *linkCacheRepo) SetDestination(ctx context.Context, code, destination string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := l.cache.Set(ctx, linkKey(code), destination, ttl); err != nil {
		return errors.Wrap(err, "set destination failed")
	}
	return nil
}

func (l *linkCacheRepo) DeleteDestination(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = linkKey(code)
	}
	if err := l.cache.Del(ctx, keys...); err != nil {
		return errors.Wrap(err, "delete destination failed")
	}
	return nil
}

func (l *linkCacheRepo) AddCode(ctx context.Context, code string) error {
	if err := l.cache.SAdd(ctx, domain.USED_CODES_CACHE_KEY, code); err != nil {
		return errors.Wrap(err, "add code failed")
	}
	return nil
}

func (l *linkCacheRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	exists, err := l.cache.SIsMember(ctx, domain.USED_CODES_CACHE_KEY, code)
	if err != nil {
		return false, errors.Wrap(err, "check code failed")
	}
	return exists, nil
}

func (l *linkCacheRepo) RemoveCodes(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	if err := l.cache.SRem(ctx, domain.USED_CODES_CACHE_KEY, toMembers(codes)...); err != nil {
		return errors.Wrap(err, "remove codes failed")
	}
	return nil
}

// ReplaceCodes swaps the whole used-code set in one MULTI block so readers
// never observe an empty set.
func (l *linkCacheRepo) ReplaceCodes(ctx context.Context, codes []string) error {
	tx := l.cache.TxPipeline()
	tx.Del(ctx, domain.USED_CODES_CACHE_KEY)
	if len(codes) > 0 {
		tx.SAdd(ctx, domain.USED_CODES_CACHE_KEY, toMembers(codes)...)
	}
	if err := tx.Exec(ctx); err != nil {
		return errors.Wrap(err, "replace codes failed")
	}
	return nil
}

func (l *linkCacheRepo) Ping(ctx context.Context) error {
	return l.cache.Ping(ctx)
}

func toMembers(codes []string) []interface{} {
	members := make([]interface{}, len(codes))
	for i, code := range codes {
		members[i] = code
	}
	return members
}
