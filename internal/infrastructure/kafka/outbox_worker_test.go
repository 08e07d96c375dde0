package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOutboxRepo struct{ mock.Mock }

func (m *mockOutboxRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	args := m.Called(ctx, event)
	created, _ := args.Get(0).(*usecase.OutboxEvent)
	return created, args.Error(1)
}

func (m *mockOutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]*usecase.OutboxEvent)
	return events, args.Error(1)
}

func (m *mockOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutboxRepo) MarkAsPending(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockProducer struct{ mock.Mock }

func (m *mockProducer) WriteRawMessage(ctx context.Context, req *usecase.WriteRawMessageReq) error {
	return m.Called(ctx, req).Error(0)
}

func event(id int64, key string) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{ID: id, EventID: key, AggregateID: key, Payload: []byte(key), Status: usecase.Processing}
}

func TestOutboxWorker_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("PublishesAndMarksProcessed", func(t *testing.T) {
		repo, producer := new(mockOutboxRepo), new(mockProducer)
		w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, "", "outbox_pending", 2)

		repo.On("GetAndMarkAsProcessing", ctx, 2).Return([]*usecase.OutboxEvent{event(1, "q-1"), event(2, "q-2")}, nil)
		producer.On("WriteRawMessage", ctx, usecase.NewWriteRawMessageReq("q-1", []byte("q-1"))).Return(nil)
		producer.On("WriteRawMessage", ctx, usecase.NewWriteRawMessageReq("q-2", []byte("q-2"))).Return(nil)
		repo.On("MarkAsProcessed", mock.Anything, int64(1)).Return(nil)
		repo.On("MarkAsProcessed", mock.Anything, int64(2)).Return(nil)

		hasMore, err := w.processBatch(ctx)
		require.NoError(t, err)
		assert.True(t, hasMore, "full batch means there may be more")
		repo.AssertExpectations(t)
		producer.AssertExpectations(t)
	})

	t.Run("FailedPublishReturnsToPending", func(t *testing.T) {
		repo, producer := new(mockOutboxRepo), new(mockProducer)
		w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, "", "outbox_pending", 10)

		repo.On("GetAndMarkAsProcessing", ctx, 10).Return([]*usecase.OutboxEvent{event(1, "q-1")}, nil)
		producer.On("WriteRawMessage", ctx, mock.Anything).Return(errors.New("dial tcp: connection refused"))
		repo.On("MarkAsPending", mock.Anything, int64(1)).Return(nil)

		hasMore, err := w.processBatch(ctx)
		require.NoError(t, err)
		assert.False(t, hasMore)
		repo.AssertNotCalled(t, "MarkAsProcessed", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("CancelledDuringPublishStillReturnsToPending", func(t *testing.T) {
		repo, producer := new(mockOutboxRepo), new(mockProducer)
		w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, "", "outbox_pending", 10)

		stopCtx, stop := context.WithCancel(ctx)
		defer stop()

		live := mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil })

		repo.On("GetAndMarkAsProcessing", stopCtx, 10).Return([]*usecase.OutboxEvent{event(1, "q-1")}, nil)
		producer.On("WriteRawMessage", stopCtx, mock.Anything).
			Run(func(mock.Arguments) { stop() }).
			Return(context.Canceled)
		repo.On("MarkAsPending", live, int64(1)).Return(nil)

		hasMore, err := w.processBatch(stopCtx)
		require.NoError(t, err)
		assert.False(t, hasMore)
		require.Error(t, stopCtx.Err())
		repo.AssertExpectations(t)
	})

	t.Run("CancelledAfterPublishStillMarksProcessed", func(t *testing.T) {
		repo, producer := new(mockOutboxRepo), new(mockProducer)
		w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, "", "outbox_pending", 10)

		stopCtx, stop := context.WithCancel(ctx)
		defer stop()

		live := mock.MatchedBy(func(c context.Context) bool {
			_, hasDeadline := c.Deadline()
			return c.Err() == nil && hasDeadline
		})

		repo.On("GetAndMarkAsProcessing", stopCtx, 10).Return([]*usecase.OutboxEvent{event(1, "q-1")}, nil)
		producer.On("WriteRawMessage", stopCtx, mock.Anything).
			Run(func(mock.Arguments) { stop() }).
			Return(nil)
		repo.On("MarkAsProcessed", live, int64(1)).Return(nil)

		_, err := w.processBatch(stopCtx)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Empty", func(t *testing.T) {
		repo, producer := new(mockOutboxRepo), new(mockProducer)
		w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, "", "outbox_pending", 10)
		repo.On("GetAndMarkAsProcessing", ctx, 10).Return([]*usecase.OutboxEvent{}, nil)

		hasMore, err := w.processBatch(ctx)
		require.NoError(t, err)
		assert.False(t, hasMore)
	})

	t.Run("RepoError", func(t *testing.T) {
		repo, producer := new(mockOutboxRepo), new(mockProducer)
		w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, "", "outbox_pending", 10)
		repo.On("GetAndMarkAsProcessing", ctx, 10).Return(nil, errors.New("db down"))

		_, err := w.processBatch(ctx)
		assert.Error(t, err)
	})
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.True(t, isRetryableError(errors.New("write: Broken Pipe")))
	assert.False(t, isRetryableError(errors.New("message too large")))
}
