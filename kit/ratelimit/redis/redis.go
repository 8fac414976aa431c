package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	redisKit "github.com/superj80820/link-shortener/kit/redis"
)

const passLuaScript = `
	local key = KEYS[1]
	local requests = tonumber(redis.call('GET', key) or '-1')
	local max_requests = tonumber(ARGV[1])
	local expiry = tonumber(ARGV[2])
	if (requests == -1) then
		redis.call('INCR', key)
		redis.call('EXPIRE', key, expiry)
		return {1, 1, expiry}
	end

	local cur_expiry = tonumber(redis.call('TTL', key) or '-1')
	if (requests < max_requests) then
		redis.call('INCR', key)
		return {1, requests + 1, cur_expiry}
	else
		return {0, requests, cur_expiry}
	end
`

// CacheRateLimit is a fixed window counter. Windows start at the first
// request for a key and last expiry seconds.
type CacheRateLimit struct {
	cache     *redisKit.Cache
	keyPrefix string
	expiry    int
}

func CreateCacheRateLimit(cache *redisKit.Cache, expiry int) *CacheRateLimit {
	return &CacheRateLimit{cache: cache, keyPrefix: "ratelimit:", expiry: expiry}
}

// PassWithLimit reports remaining requests in lastRequests and the window ttl
// in curExpiry.
func (c *CacheRateLimit) PassWithLimit(ctx context.Context, key string, maxRequests int) (pass bool, lastRequests, curExpiry int, err error) {
	result, err := c.cache.RunLua(ctx, passLuaScript, []string{c.keyPrefix + key}, maxRequests, c.expiry).Slice()
	if err != nil {
		return false, 0, 0, errors.Wrap(err, "redis run lua script failed")
	}
	if len(result) != 3 {
		return false, 0, 0, errors.New(fmt.Sprintf("unexpected lua result length %d", len(result)))
	}
	pass, err = toBool(result[0])
	if err != nil {
		return false, 0, 0, errors.Wrap(err, "convert result failed")
	}
	curRequests, ok := result[1].(int64)
	if !ok {
		return false, 0, 0, errors.New(fmt.Sprintf("unexpected type=%T for requests", result[1]))
	}
	expiry, ok := result[2].(int64)
	if !ok {
		return false, 0, 0, errors.New(fmt.Sprintf("unexpected type=%T for expiry", result[2]))
	}
	remaining := maxRequests - int(curRequests)
	if remaining < 0 {
		remaining = 0
	}
	return pass, remaining, int(expiry), nil
}

func toBool(val interface{}) (bool, error) {
	if val == nil {
		return false, nil
	}

	switch val := val.(type) {
	case bool:
		return val, nil
	case int64:
		return val != 0, nil
	case string:
		return strconv.ParseBool(val)
	default:
		return false, errors.New(fmt.Sprintf("unexpected type=%T for Bool", val))
	}
}
