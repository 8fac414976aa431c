package mq

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/superj80820/link-shortener/domain"
	mqKit "github.com/superj80820/link-shortener/kit/mq"
)

type clickRepo struct {
	clickMQTopic mqKit.MQTopic
}

func CreateClickRepo(clickMQTopic mqKit.MQTopic) domain.ClickRepo {
	return &clickRepo{
		clickMQTopic: clickMQTopic,
	}
}

func (c *clickRepo) Produce(ctx context.Context, event *domain.ClickEvent) error {
	if err := c.clickMQTopic.Produce(ctx, event); err != nil {
		return errors.Wrap(err, "produce click event failed")
	}
	return nil
}

// ConsumeBatch skips undecodable messages and reports them to errorHandler.
func (c *clickRepo) ConsumeBatch(notify func(events []*domain.ClickEvent) error, errorHandler func(error)) {
	c.clickMQTopic.SubscribeBatch("click-counter", func(messages [][]byte) error {
		events := make([]*domain.ClickEvent, 0, len(messages))
		for _, message := range messages {
			var event domain.ClickEvent
			if err := json.Unmarshal(message, &event); err != nil {
				errorHandler(errors.Wrap(err, "unmarshal click event failed"))
				continue
			}
			events = append(events, &event)
		}
		if len(events) == 0 {
			return nil
		}
		return notify(events)
	}, mqKit.AddErrorHandler(errorHandler))
}

func (c *clickRepo) Done() <-chan struct{} {
	return c.clickMQTopic.Done()
}

func (c *clickRepo) Err() error {
	return c.clickMQTopic.Err()
}

func (c *clickRepo) Shutdown() bool {
	return c.clickMQTopic.Shutdown()
}
