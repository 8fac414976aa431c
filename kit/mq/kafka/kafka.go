package kafka

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/superj80820/link-shortener/kit/mq"
	"github.com/superj80820/link-shortener/kit/util"
)

type MQTopicOption func(*MQTopicConfig)

type MQTopicConfig struct {
	url     string
	topic   string
	brokers []string

	isCreateTopic                bool
	createTopicNumPartitions     int
	createTopicReplicationFactor int

	readerGroupID      string
	readerBatchSize    int
	readerBatchTimeout time.Duration
}

func ConsumeByGroupID(groupID string) MQTopicOption {
	return func(m *MQTopicConfig) {
		m.readerGroupID = groupID
	}
}

// ProduceOnly creates a topic handle without a consumer group.
func ProduceOnly(m *MQTopicConfig) {
	m.readerGroupID = ""
}

func BatchConsume(size int, timeout time.Duration) MQTopicOption {
	return func(m *MQTopicConfig) {
		m.readerBatchSize = size
		m.readerBatchTimeout = timeout
	}
}

func CreateTopic(numPartitions, replicationFactor int) MQTopicOption {
	return func(mc *MQTopicConfig) {
		mc.isCreateTopic = true
		mc.createTopicNumPartitions = numPartitions
		mc.createTopicReplicationFactor = replicationFactor
	}
}

type mqTopic struct {
	writer *kafka.Writer
	reader *kafka.Reader
	config *MQTopicConfig

	observers    util.GenericSyncMap[mq.Observer, mq.Observer]
	consumeOnce  sync.Once
	consumeGroup sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
	doneCh chan struct{}
	lock   sync.RWMutex
	err    error
}

var _ mq.MQTopic = (*mqTopic)(nil)

// CreateMQTopic connects to a comma separated broker list. Consumption starts
// with the first Subscribe call.
func CreateMQTopic(ctx context.Context, url, topic string, consumeWay MQTopicOption, options ...MQTopicOption) (mq.MQTopic, error) {
	mqConfig := &MQTopicConfig{
		topic:   topic,
		url:     url,
		brokers: strings.Split(url, ","),

		readerBatchSize:    100,
		readerBatchTimeout: time.Second,
	}

	consumeWay(mqConfig)

	for _, option := range options {
		option(mqConfig)
	}

	if mqConfig.isCreateTopic {
		if err := createTopic(mqConfig.brokers[0], topic, mqConfig.createTopicNumPartitions, mqConfig.createTopicReplicationFactor); err != nil {
			return nil, errors.Wrap(err, "create topic failed")
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	m := &mqTopic{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(mqConfig.brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
		config: mqConfig,
		ctx:    ctx,
		cancel: cancel,
		doneCh: make(chan struct{}),
	}
	if mqConfig.readerGroupID != "" {
		m.reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  mqConfig.brokers,
			GroupID:  mqConfig.readerGroupID,
			Topic:    topic,
			MaxWait:  mqConfig.readerBatchTimeout,
			MinBytes: 1,
			MaxBytes: 10e6,
		})
	}

	go func() {
		<-ctx.Done()
		m.consumeGroup.Wait()
		if m.reader != nil {
			m.reader.Close()
		}
		m.writer.Close()
		close(m.doneCh)
	}()

	return m, nil
}

func (m *mqTopic) Subscribe(key string, notify mq.Notify, options ...mq.ObserverOption) mq.Observer {
	observer := mq.CreateObserver(key, notify, options...)
	m.observers.Store(observer, observer)
	m.startConsume()
	return observer
}

func (m *mqTopic) SubscribeBatch(key string, notifyBatch mq.NotifyBatch, options ...mq.ObserverOption) mq.Observer {
	observer := mq.CreateObserverBatch(key, notifyBatch, options...)
	m.observers.Store(observer, observer)
	m.startConsume()
	return observer
}

func (m *mqTopic) UnSubscribe(observer mq.Observer) {
	m.observers.Delete(observer)
}

func (m *mqTopic) startConsume() {
	if m.reader == nil {
		return
	}
	m.consumeOnce.Do(func() {
		m.consumeGroup.Add(1)
		go func() {
			defer m.consumeGroup.Done()
			m.consume(m.ctx)
		}()
	})
}

func (m *mqTopic) consume(ctx context.Context) {
	messageCh := make(chan kafka.Message)
	m.consumeGroup.Add(1)
	go func() {
		defer m.consumeGroup.Done()
		for {
			message, err := m.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					m.fail(errors.Wrap(err, "fetch message failed"))
				}
				return
			}
			select {
			case messageCh <- message:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(m.config.readerBatchTimeout)
	defer ticker.Stop()

	var pending []kafka.Message
	flush := func() {
		if len(pending) == 0 {
			return
		}
		values := make([][]byte, len(pending))
		for i, message := range pending {
			values[i] = message.Value
		}
		mq.Dispatch(m.getObservers(), values)
		if err := m.reader.CommitMessages(context.Background(), pending...); err != nil {
			m.fail(errors.Wrap(err, "commit messages failed"))
		}
		pending = nil
	}

	for {
		select {
		case message := <-messageCh:
			pending = append(pending, message)
			if len(pending) >= m.config.readerBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			flush()
			return
		}
	}
}

func (m *mqTopic) getObservers() []mq.Observer {
	var observers []mq.Observer
	m.observers.Range(func(key, value mq.Observer) bool {
		observers = append(observers, value)
		return true
	})
	return observers
}

func (m *mqTopic) fail(err error) {
	m.lock.Lock()
	if m.err == nil {
		m.err = err
	}
	m.lock.Unlock()
	m.cancel()
}

func (m *mqTopic) Produce(ctx context.Context, message mq.Message) error {
	marshalMessage, err := message.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal message failed")
	}
	if err := m.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(message.GetKey()),
		Value: marshalMessage,
	}); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(err, "write messages to kafka failed")
	}
	return nil
}

func (m *mqTopic) Shutdown() bool {
	m.cancel()

	select {
	case <-m.doneCh:
		return true
	case <-time.After(10 * time.Second):
		return false
	}
}

func (m *mqTopic) Done() <-chan struct{} {
	return m.doneCh
}

func (m *mqTopic) Err() error {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.err
}

func createTopic(url, topic string, numPartitions, replicationFactor int) error {
	conn, err := kafka.Dial("tcp", url)
	if err != nil {
		return errors.Wrap(err, "dial kafka failed")
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return errors.Wrap(err, "read partitions failed")
	}

	for _, p := range partitions {
		if topic == p.Topic {
			return nil
		}
	}

	controller, err := conn.Controller()
	if err != nil {
		return errors.Wrap(err, "get controller failed")
	}
	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return errors.Wrap(err, "controller connect failed")
	}
	defer controllerConn.Close()

	if err := controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     numPartitions,
		ReplicationFactor: replicationFactor,
	}); err != nil {
		return errors.Wrap(err, "create topics failed")
	}

	return nil
}
