package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/superj80820/link-shortener/kit/mq"
	"github.com/superj80820/link-shortener/kit/util"
)

var ErrClosed = errors.New("memory mq closed")

type memoryMQ struct {
	observers util.GenericSyncMap[mq.Observer, mq.Observer]
	messageCh chan []byte
	doneCh    chan struct{}
	cancel    context.CancelFunc
	closeOnce sync.Once
	err       error
}

var _ mq.MQTopic = (*memoryMQ)(nil)

// CreateMemoryMQ buffers produced messages and delivers them to observers
// every messageCollectDuration. Pending messages are flushed on shutdown.
func CreateMemoryMQ(ctx context.Context, messageChannelBuffer int, messageCollectDuration time.Duration) mq.MQTopic {
	ctx, cancel := context.WithCancel(ctx)

	m := &memoryMQ{
		messageCh: make(chan []byte, messageChannelBuffer),
		doneCh:    make(chan struct{}),
		cancel:    cancel,
	}

	go func() {
		defer close(m.doneCh)

		ticker := time.NewTicker(messageCollectDuration)
		defer ticker.Stop()

		var messages [][]byte
		for {
			select {
			case message := <-m.messageCh:
				messages = append(messages, message)
			case <-ticker.C:
				mq.Dispatch(m.getObservers(), messages)
				messages = nil
			case <-ctx.Done():
			drain:
				for {
					select {
					case message := <-m.messageCh:
						messages = append(messages, message)
					default:
						break drain
					}
				}
				mq.Dispatch(m.getObservers(), messages)
				return
			}
		}
	}()

	return m
}

func (m *memoryMQ) getObservers() []mq.Observer {
	var observers []mq.Observer
	m.observers.Range(func(key, value mq.Observer) bool {
		observers = append(observers, value)
		return true
	})
	return observers
}

func (m *memoryMQ) Done() <-chan struct{} {
	return m.doneCh
}

func (m *memoryMQ) Err() error {
	return m.err
}

func (m *memoryMQ) Produce(ctx context.Context, message mq.Message) error {
	marshalData, err := message.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal failed")
	}

	select {
	case <-m.doneCh:
		return ErrClosed
	default:
	}

	select {
	case m.messageCh <- marshalData:
		return nil
	case <-m.doneCh:
		return ErrClosed
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "produce canceled")
	}
}

func (m *memoryMQ) Shutdown() bool {
	m.closeOnce.Do(m.cancel)
	<-m.doneCh
	return true
}

func (m *memoryMQ) Subscribe(key string, notify mq.Notify, options ...mq.ObserverOption) mq.Observer {
	observer := mq.CreateObserver(key, notify, options...)

	m.observers.Store(observer, observer)

	return observer
}

func (m *memoryMQ) SubscribeBatch(key string, notifyBatch mq.NotifyBatch, options ...mq.ObserverOption) mq.Observer {
	observer := mq.CreateObserverBatch(key, notifyBatch, options...)

	m.observers.Store(observer, observer)

	return observer
}

func (m *memoryMQ) UnSubscribe(observer mq.Observer) {
	m.observers.Delete(observer)
}
