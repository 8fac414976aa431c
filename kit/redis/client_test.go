package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func createTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	server := miniredis.RunT(t)
	cache, err := CreateCache(server.Addr(), "", 0)
	assert.Nil(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache, server
}

func TestCache(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		scenario string
		fn       func(t *testing.T)
	}{
		{
			scenario: "set get del",
			fn: func(t *testing.T) {
				cache, server := createTestCache(t)

				assert.Nil(t, cache.Set(ctx, "link:abc", "https://example.com", time.Minute))
				val, exists, err := cache.Get(ctx, "link:abc")
				assert.Nil(t, err)
				assert.True(t, exists)
				assert.Equal(t, "https://example.com", val)
				assert.Equal(t, time.Minute, server.TTL("link:abc"))

				assert.Nil(t, cache.Del(ctx, "link:abc"))
				_, exists, err = cache.Get(ctx, "link:abc")
				assert.Nil(t, err)
				assert.False(t, exists)
			},
		},
		{
			scenario: "set members",
			fn: func(t *testing.T) {
				cache, _ := createTestCache(t)

				assert.Nil(t, cache.SAdd(ctx, "codes:used", "abc", "def"))
				isMember, err := cache.SIsMember(ctx, "codes:used", "abc")
				assert.Nil(t, err)
				assert.True(t, isMember)

				assert.Nil(t, cache.SRem(ctx, "codes:used", "abc"))
				isMember, err = cache.SIsMember(ctx, "codes:used", "abc")
				assert.Nil(t, err)
				assert.False(t, isMember)

				count, err := cache.SCard(ctx, "codes:used")
				assert.Nil(t, err)
				assert.Equal(t, int64(1), count)
			},
		},
		{
			scenario: "tx pipeline",
			fn: func(t *testing.T) {
				cache, server := createTestCache(t)
				assert.Nil(t, cache.SAdd(ctx, "codes:used", "old"))

				tx := cache.TxPipeline()
				tx.Del(ctx, "codes:used")
				tx.SAdd(ctx, "codes:used", "new1", "new2")
				tx.Set(ctx, "link:new1", "https://example.com", 0)
				assert.Nil(t, tx.Exec(ctx))

				members, err := server.Members("codes:used")
				assert.Nil(t, err)
				assert.ElementsMatch(t, []string{"new1", "new2"}, members)
			},
		},
		{
			scenario: "incr and ping",
			fn: func(t *testing.T) {
				cache, _ := createTestCache(t)

				val, err := cache.Incr(ctx, "counter")
				assert.Nil(t, err)
				assert.Equal(t, int64(1), val)
				assert.Nil(t, cache.Ping(ctx))
			},
		},
		{
			scenario: "url address",
			fn: func(t *testing.T) {
				server := miniredis.RunT(t)
				cache, err := CreateCache("redis://"+server.Addr()+"/0", "", 0)
				assert.Nil(t, err)
				assert.Nil(t, cache.Ping(ctx))
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.scenario, testCase.fn)
	}
}
