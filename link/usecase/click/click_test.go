package click

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/superj80820/link-shortener/domain"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
	memoryMQKit "github.com/superj80820/link-shortener/kit/mq/memory"
	ormKit "github.com/superj80820/link-shortener/kit/orm"
	clickMQRepo "github.com/superj80820/link-shortener/link/repository/click/mq"
	linkORMRepo "github.com/superj80820/link-shortener/link/repository/link/orm"
)

func TestClickUseCase(t *testing.T) {
	ctx := context.Background()

	db, err := ormKit.CreateDB(ormKit.UseSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())))
	assert.Nil(t, err)
	defer db.Close()
	assert.Nil(t, linkORMRepo.Migrate(db))
	linkRepo := linkORMRepo.CreateLinkRepo(db)

	expiresAt := time.Now().Add(time.Hour)
	for _, shortCode := range []string{"abc", "def"} {
		assert.Nil(t, linkRepo.Create(ctx, &domain.Link{Code: shortCode, Destination: "https://example.com", ExpiresAt: &expiresAt}))
	}

	clickRepo := clickMQRepo.CreateClickRepo(memoryMQKit.CreateMemoryMQ(ctx, 100, 5*time.Millisecond))
	clickUseCase := CreateClickUseCase(linkRepo, clickRepo, loggerKit.CreateNoOpLogger())
	clickUseCase.ConsumeClicks(ctx)

	clickUseCase.Record(ctx, &domain.ClickEvent{Code: "abc", Referer: "https://ref.example.com/page?token=secret", Country: "tw"})
	clickUseCase.Record(ctx, &domain.ClickEvent{Code: "abc"})
	clickUseCase.Record(ctx, &domain.ClickEvent{Code: "def"})

	assert.True(t, clickRepo.Shutdown())
	<-clickUseCase.Done()
	assert.Nil(t, clickUseCase.Err())

	abc, err := linkRepo.GetByCode(ctx, "abc")
	assert.Nil(t, err)
	assert.Equal(t, int64(2), abc.ClickCount)
	def, err := linkRepo.GetByCode(ctx, "def")
	assert.Nil(t, err)
	assert.Equal(t, int64(1), def.ClickCount)

	clickUseCase.Record(ctx, &domain.ClickEvent{Code: "abc"})
}

func TestRecordNormalizesEvent(t *testing.T) {
	ctx := context.Background()
	clickRepo := clickMQRepo.CreateClickRepo(memoryMQKit.CreateMemoryMQ(ctx, 10, time.Millisecond))
	defer clickRepo.Shutdown()

	eventCh := make(chan *domain.ClickEvent, 1)
	clickRepo.ConsumeBatch(func(events []*domain.ClickEvent) error {
		for _, event := range events {
			eventCh <- event
		}
		return nil
	}, func(err error) {})

	clickUseCase := CreateClickUseCase(nil, clickRepo, loggerKit.CreateNoOpLogger())
	clickUseCase.Record(ctx, &domain.ClickEvent{Code: "abc", Referer: "https://ref.example.com/a/b?token=secret#frag", Country: " tw "})

	select {
	case event := <-eventCh:
		assert.Equal(t, "abc", event.Code)
		assert.Equal(t, "https://ref.example.com/a/b", event.Referer)
		assert.Equal(t, "TW", event.Country)
		assert.False(t, event.ClickedAt.IsZero())
	case <-time.After(time.Second):
		assert.Fail(t, "click event not delivered")
	}
}

func TestSanitizeReferer(t *testing.T) {
	testCases := []struct {
		referer  string
		expected string
	}{
		{"", ""},
		{"android-app://com.example", ""},
		{"not a url", ""},
		{"http://example.com", "http://example.com"},
		{"https://example.com/path?q=1", "https://example.com/path"},
		{"https://example.com/" + strings.Repeat("a", 600), ("https://example.com/" + strings.Repeat("a", 600))[:maxRefererLength]},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.expected, sanitizeReferer(testCase.referer), testCase.referer)
	}
}
