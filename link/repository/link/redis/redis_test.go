package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/superj80820/link-shortener/domain"
	redisKit "github.com/superj80820/link-shortener/kit/redis"
)

func TestLinkCacheRepo(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)
	cache, err := redisKit.CreateCache(server.Addr(), "", 0)
	assert.Nil(t, err)
	linkCacheRepo := CreateLinkCacheRepo(cache)

	assert.Nil(t, linkCacheRepo.SetDestination(ctx, "abc", "https://example.com", time.Hour))
	assert.Equal(t, time.Hour, server.TTL("link:abc"))
	destination, exists, err := linkCacheRepo.GetDestination(ctx, "abc")
	assert.Nil(t, err)
	assert.True(t, exists)
	assert.Equal(t, "https://example.com", destination)

	assert.Nil(t, linkCacheRepo.SetDestination(ctx, "past", "https://example.com", -time.Second))
	assert.False(t, server.Exists("link:past"))

	assert.Nil(t, linkCacheRepo.DeleteDestination(ctx, "abc"))
	_, exists, err = linkCacheRepo.GetDestination(ctx, "abc")
	assert.Nil(t, err)
	assert.False(t, exists)

	assert.Nil(t, linkCacheRepo.AddCode(ctx, "abc"))
	assert.Nil(t, linkCacheRepo.AddCode(ctx, "def"))
	exists, err = linkCacheRepo.CodeExists(ctx, "abc")
	assert.Nil(t, err)
	assert.True(t, exists)

	assert.Nil(t, linkCacheRepo.RemoveCodes(ctx, "abc"))
	exists, err = linkCacheRepo.CodeExists(ctx, "abc")
	assert.Nil(t, err)
	assert.False(t, exists)

	assert.Nil(t, linkCacheRepo.ReplaceCodes(ctx, []string{"x1", "x2"}))
	members, err := server.Members(domain.USED_CODES_CACHE_KEY)
	assert.Nil(t, err)
	assert.ElementsMatch(t, []string{"x1", "x2"}, members)

	assert.Nil(t, linkCacheRepo.ReplaceCodes(ctx, nil))
	assert.False(t, server.Exists(domain.USED_CODES_CACHE_KEY))

	assert.Nil(t, linkCacheRepo.Ping(ctx))
}
