package background

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/superj80820/link-shortener/domain"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
	"go.uber.org/goleak"
)

type countingLinkUseCase struct {
	domain.LinkUseCase

	calls atomic.Int64
}

func (c *countingLinkUseCase) RunMaintenance(ctx context.Context) (*domain.MaintenanceResult, error) {
	if c.calls.Add(1) == 1 {
		return nil, errors.New("store down")
	}
	return &domain.MaintenanceResult{ExpiredCodes: 1, SyncedCodes: 2}, nil
}

type stubClickUseCase struct {
	domain.ClickUseCase

	doneCh chan struct{}
	err    error
}

func (s *stubClickUseCase) ConsumeClicks(ctx context.Context) {}

func (s *stubClickUseCase) Done() <-chan struct{} {
	return s.doneCh
}

func (s *stubClickUseCase) Err() error {
	return s.err
}

func TestRunLinkMaintenance(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	linkUseCase := new(countingLinkUseCase)

	errCh := make(chan error, 1)
	go func() {
		errCh <- RunLinkMaintenance(ctx, linkUseCase, time.Millisecond, loggerKit.CreateNoOpLogger())
	}()

	assert.Eventually(t, func() bool { return linkUseCase.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	assert.Nil(t, <-errCh)
}

func TestRunClickCounter(t *testing.T) {
	defer goleak.VerifyNone(t)

	testCases := []struct {
		scenario string
		fn       func(t *testing.T)
	}{
		{
			scenario: "stop by context",
			fn: func(t *testing.T) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				assert.Nil(t, RunClickCounter(ctx, &stubClickUseCase{doneCh: make(chan struct{})}))
			},
		},
		{
			scenario: "topic failure",
			fn: func(t *testing.T) {
				doneCh := make(chan struct{})
				close(doneCh)
				err := RunClickCounter(context.Background(), &stubClickUseCase{doneCh: doneCh, err: errors.New("kafka down")})
				assert.ErrorContains(t, err, "kafka down")
			},
		},
		{
			scenario: "topic closed",
			fn: func(t *testing.T) {
				doneCh := make(chan struct{})
				close(doneCh)
				assert.Nil(t, RunClickCounter(context.Background(), &stubClickUseCase{doneCh: doneCh}))
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.scenario, testCase.fn)
	}
}
