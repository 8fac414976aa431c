package orm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/superj80820/link-shortener/domain"
	ormKit "github.com/superj80820/link-shortener/kit/orm"
)

func TestAPIKeyRepo(t *testing.T) {
	ctx := context.Background()
	db, err := ormKit.CreateDB(ormKit.UseSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())))
	assert.Nil(t, err)
	defer db.Close()
	assert.Nil(t, Migrate(db))

	apiKeyRepo := CreateAPIKeyRepo(db)

	apiKey := &domain.APIKey{KeyHash: "hash-1", Name: "ci", RateLimit: 1000, IsActive: true}
	assert.Nil(t, apiKeyRepo.Create(ctx, apiKey))
	assert.NotZero(t, apiKey.ID)
	assert.False(t, apiKey.CreatedAt.IsZero())

	assert.ErrorIs(t, apiKeyRepo.Create(ctx, &domain.APIKey{KeyHash: "hash-1", Name: "dup", RateLimit: 1, IsActive: true}), domain.ErrDuplicate)

	got, err := apiKeyRepo.GetByHash(ctx, "hash-1")
	assert.Nil(t, err)
	assert.Equal(t, apiKey.ID, got.ID)
	assert.Equal(t, "ci", got.Name)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.LastUsedAt)

	_, err = apiKeyRepo.GetByHash(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNoData)

	lastUsedAt := time.Now().UTC()
	assert.Nil(t, apiKeyRepo.UpdateLastUsed(ctx, apiKey.ID, lastUsedAt))
	assert.Nil(t, apiKeyRepo.Deactivate(ctx, apiKey.ID))
	assert.Nil(t, apiKeyRepo.Deactivate(ctx, apiKey.ID))
	assert.ErrorIs(t, apiKeyRepo.Deactivate(ctx, 42), domain.ErrNoData)

	assert.Nil(t, apiKeyRepo.Create(ctx, &domain.APIKey{KeyHash: "hash-2", Name: "inactive", RateLimit: 5, IsActive: false}))

	apiKeys, err := apiKeyRepo.List(ctx)
	assert.Nil(t, err)
	assert.Len(t, apiKeys, 2)
	assert.False(t, apiKeys[0].IsActive)
	assert.NotNil(t, apiKeys[0].LastUsedAt)
	assert.WithinDuration(t, lastUsedAt, *apiKeys[0].LastUsedAt, time.Millisecond)
	assert.False(t, apiKeys[1].IsActive)
}
