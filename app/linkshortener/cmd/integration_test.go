//go:build integration

package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/superj80820/link-shortener/domain"
	memoryMQKit "github.com/superj80820/link-shortener/kit/mq/memory"
	mysqlContainer "github.com/superj80820/link-shortener/kit/testing/mysql/container"
	redisContainer "github.com/superj80820/link-shortener/kit/testing/redis/container"
	"github.com/superj80820/link-shortener/link/usecase/click"
)

func TestLinkLifecycleIntegration(t *testing.T) {
	ctx := context.Background()

	mySQL, err := mysqlContainer.CreateMySQL(ctx, filepath.Join("..", "..", "..", "link", "repository", "link", "orm", "schema.sql"))
	assert.Nil(t, err)
	defer mySQL.Terminate(ctx)
	redis, err := redisContainer.CreateRedis(ctx)
	assert.Nil(t, err)
	defer redis.Terminate(ctx)

	testConfig := loadConfig()
	testConfig.dbDriver = "mysql"
	testConfig.mysqlURI = mySQL.GetURI()
	testConfig.autoMigrate = false
	testConfig.redisURI = redis.GetURI()
	testConfig.link.BaseURL = "https://sho.rt"

	inf, err := setupInfra(ctx, testConfig, true)
	assert.Nil(t, err)
	defer inf.close()

	clickMQTopic := memoryMQKit.CreateMemoryMQ(ctx, 100, 10*time.Millisecond)
	repositories, err := createRepos(inf, testConfig, clickMQTopic)
	assert.Nil(t, err)
	linkUseCase := createLinkUseCase(repositories, testConfig, inf.logger)
	apiKeyUseCase := createAPIKeyUseCase(repositories, testConfig, inf.logger)
	clickUseCase := click.CreateClickUseCase(repositories.link, repositories.click, inf.logger)
	clickUseCase.ConsumeClicks(ctx)

	plainKey, _, err := apiKeyUseCase.Generate(ctx, "integration", 10)
	assert.Nil(t, err)
	apiKey, err := apiKeyUseCase.Validate(ctx, plainKey)
	assert.Nil(t, err)

	link, err := linkUseCase.Create(ctx, &domain.CreateLinkParams{URL: "https://example.com/docs", CustomCode: "Docs", APIKeyID: apiKey.ID})
	assert.Nil(t, err)
	assert.Equal(t, "docs", link.Code)

	availability, err := linkUseCase.CheckCode(ctx, "docs")
	assert.Nil(t, err)
	assert.Equal(t, domain.CodeTaken, availability.Reason)

	destination, err := linkUseCase.Resolve(ctx, "DOCS")
	assert.Nil(t, err)
	assert.Equal(t, "https://example.com/docs", destination)
	clickUseCase.Record(ctx, &domain.ClickEvent{Code: "docs"})
	clickUseCase.Record(ctx, &domain.ClickEvent{Code: "docs"})

	repositories.click.Shutdown()
	<-clickUseCase.Done()

	stats, err := linkUseCase.GetStats(ctx, "docs")
	assert.Nil(t, err)
	assert.Equal(t, int64(2), stats.ClickCount)
	assert.Equal(t, "https://sho.rt/docs", stats.ShortURL)

	result, err := linkUseCase.RunMaintenance(ctx)
	assert.Nil(t, err)
	assert.Equal(t, 1, result.SyncedCodes)

	assert.Nil(t, linkUseCase.Delete(ctx, "docs"))
	availability, err = linkUseCase.CheckCode(ctx, "docs")
	assert.Nil(t, err)
	assert.True(t, availability.Available)
}
