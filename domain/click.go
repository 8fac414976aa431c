package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type ClickEvent struct {
	Code      string    `json:"code"`
	Referer   string    `json:"referer,omitempty"`
	Country   string    `json:"country,omitempty"`
	ClickedAt time.Time `json:"clicked_at"`
}

func (c *ClickEvent) GetKey() string {
	return c.Code
}

func (c *ClickEvent) Marshal() ([]byte, error) {
	marshal, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "marshal click event failed")
	}
	return marshal, nil
}

type ClickRepo interface {
	Produce(ctx context.Context, event *ClickEvent) error
	ConsumeBatch(notify func(events []*ClickEvent) error, errorHandler func(error))
	Done() <-chan struct{}
	Err() error
	Shutdown() bool
}

type ClickUseCase interface {
	Record(ctx context.Context, event *ClickEvent)
	ConsumeClicks(ctx context.Context)
	Done() <-chan struct{}
	Err() error
}
