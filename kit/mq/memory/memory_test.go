package memory

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/superj80820/link-shortener/kit/mq"
	"go.uber.org/goleak"
)

type testMessageStruct struct {
	Data string
}

func (t *testMessageStruct) GetKey() string {
	return t.Data
}

func (t *testMessageStruct) Marshal() ([]byte, error) {
	marshal, err := json.Marshal(*t)
	if err != nil {
		return nil, errors.Wrap(err, "marshal failed")
	}
	return marshal, nil
}

func TestMemory(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()

	testCases := []struct {
		scenario string
		fn       func(t *testing.T)
	}{
		{
			scenario: "consume 10000 messages in order",
			fn: func(t *testing.T) {
				mqTopic := CreateMemoryMQ(ctx, 100, 1*time.Millisecond)
				defer mqTopic.Shutdown()

				resultCh := make(chan *testMessageStruct, 10000)
				mqTopic.Subscribe("key", func(message []byte) error {
					var textMessage testMessageStruct
					if err := json.Unmarshal(message, &textMessage); err != nil {
						return errors.Wrap(err, "unmarshal failed")
					}
					resultCh <- &textMessage
					return nil
				})

				go func() {
					for i := 0; i < 10000; i++ {
						assert.Nil(t, mqTopic.Produce(ctx, &testMessageStruct{Data: strconv.Itoa(i)}))
					}
				}()

				timeout := time.NewTimer(30 * time.Second)
				defer timeout.Stop()
				for i := 0; i < 10000; i++ {
					select {
					case <-timeout.C:
						assert.Fail(t, "timeout")
						return
					case message := <-resultCh:
						assert.Equal(t, strconv.Itoa(i), message.Data)
					}
				}
			},
		},
		{
			scenario: "batch observer and error handler",
			fn: func(t *testing.T) {
				mqTopic := CreateMemoryMQ(ctx, 100, 10*time.Millisecond)

				var (
					lock    sync.Mutex
					total   int
					errorCh = make(chan error, 10)
				)
				mqTopic.SubscribeBatch("batch", func(messages [][]byte) error {
					lock.Lock()
					total += len(messages)
					lock.Unlock()
					return nil
				})
				mqTopic.Subscribe("failing", func(message []byte) error {
					return errors.New("notify failed")
				}, mq.AddErrorHandler(func(err error) {
					errorCh <- err
				}))

				for i := 0; i < 5; i++ {
					assert.Nil(t, mqTopic.Produce(ctx, &testMessageStruct{Data: strconv.Itoa(i)}))
				}
				mqTopic.Shutdown()

				lock.Lock()
				assert.Equal(t, 5, total)
				lock.Unlock()
				assert.Len(t, errorCh, 5)

				assert.ErrorIs(t, mqTopic.Produce(ctx, &testMessageStruct{Data: "late"}), ErrClosed)
			},
		},
		{
			scenario: "unsubscribe",
			fn: func(t *testing.T) {
				mqTopic := CreateMemoryMQ(ctx, 10, time.Millisecond)

				called := false
				observer := mqTopic.Subscribe("key", func(message []byte) error {
					called = true
					return nil
				})
				mqTopic.UnSubscribe(observer)
				assert.Nil(t, mqTopic.Produce(ctx, &testMessageStruct{Data: "1"}))
				mqTopic.Shutdown()
				assert.False(t, called)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.scenario, testCase.fn)
	}
}
