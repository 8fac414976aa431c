package mq

import (
	"context"
)

type Notify func(message []byte) error
type NotifyBatch func(messages [][]byte) error

type Observer interface {
	GetKey() string
	Notify(message []byte) error
	NotifyBatch(messages [][]byte) error
	IsBatch() bool
	ErrorHandler(error)
}

type Message interface {
	GetKey() string
	Marshal() ([]byte, error)
}

type ObserverOption func(*ObserverOptionConfig)

type ObserverOptionConfig struct {
	ErrorHandler func(error)
}

// MQTopic is a single topic with fan-out to every subscribed observer.
type MQTopic interface {
	Subscribe(key string, notify Notify, options ...ObserverOption) Observer
	SubscribeBatch(key string, notifyBatch NotifyBatch, options ...ObserverOption) Observer
	UnSubscribe(observer Observer)
	Produce(ctx context.Context, message Message) error
	Done() <-chan struct{}
	Err() error
	Shutdown() bool
}

func AddErrorHandler(errorHandler func(error)) ObserverOption {
	return func(ooc *ObserverOptionConfig) {
		ooc.ErrorHandler = errorHandler
	}
}

type observer struct {
	key          string
	notify       Notify
	notifyBatch  NotifyBatch
	errorHandler func(error)
}

var _ Observer = (*observer)(nil)

func defaultErrorHandler(error) {}

func applyObserverOptions(o *observer, options []ObserverOption) {
	var observerOptionConfig ObserverOptionConfig
	for _, option := range options {
		option(&observerOptionConfig)
	}
	if observerOptionConfig.ErrorHandler != nil {
		o.errorHandler = observerOptionConfig.ErrorHandler
	}
}

func CreateObserver(key string, notify Notify, options ...ObserverOption) Observer {
	o := &observer{
		key:          key,
		notify:       notify,
		errorHandler: defaultErrorHandler,
	}
	applyObserverOptions(o, options)
	return o
}

func CreateObserverBatch(key string, notifyBatch NotifyBatch, options ...ObserverOption) Observer {
	o := &observer{
		key:          key,
		notifyBatch:  notifyBatch,
		errorHandler: defaultErrorHandler,
	}
	applyObserverOptions(o, options)
	return o
}

func (o *observer) GetKey() string {
	return o.key
}

func (o *observer) IsBatch() bool {
	return o.notifyBatch != nil
}

func (o *observer) Notify(message []byte) error {
	if o.notify == nil {
		return o.notifyBatch([][]byte{message})
	}
	return o.notify(message)
}

func (o *observer) NotifyBatch(messages [][]byte) error {
	if o.notifyBatch == nil {
		for _, message := range messages {
			if err := o.notify(message); err != nil {
				return err
			}
		}
		return nil
	}
	return o.notifyBatch(messages)
}

func (o *observer) ErrorHandler(err error) {
	o.errorHandler(err)
}

// Dispatch hands a collected batch to every observer. Notify errors go to
// the observer's error handler and never stop delivery to the others.
func Dispatch(observers []Observer, messages [][]byte) {
	if len(messages) == 0 {
		return
	}
	for _, o := range observers {
		if o.IsBatch() {
			if err := o.NotifyBatch(messages); err != nil {
				o.ErrorHandler(err)
			}
			continue
		}
		for _, message := range messages {
			if err := o.Notify(message); err != nil {
				o.ErrorHandler(err)
			}
		}
	}
}
