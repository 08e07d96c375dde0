package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type processorDeps struct {
	detector *mockDetector
	searcher *mockSearcher
	saver    *mockSaver
}

func newTestProcessor(t *testing.T, metrics *PipelineMetrics) (*ImageProcessor, processorDeps) {
	t.Helper()

	deps := processorDeps{
		detector: new(mockDetector),
		searcher: new(mockSearcher),
		saver:    new(mockSaver),
	}
	p := NewImageProcessor(deps.detector, deps.searcher, deps.saver, logger.NewNopLogger(), metrics, 5)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	ticks := 0
	p.now = func() time.Time {
		ticks++
		return start.Add(time.Duration(ticks-1) * 250 * time.Millisecond)
	}
	p.newID = func() string { return "query-1" }

	return p, deps
}

func TestImageProcessor_ProcessImage(t *testing.T) {
	ctx := context.Background()
	image := []byte("jpeg bytes")

	t.Run("SharedBestMatchPerDetection", func(t *testing.T) {
		p, deps := newTestProcessor(t, nil)

		detections := []domain.Detection{
			domain.NewDetection(domain.BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}, 0.9),
			domain.NewDetection(domain.BoundingBox{X1: 5, Y1: 5, X2: 20, Y2: 30}, 0.7),
		}
		embedding := []float32{0.1, 0.2, 0.3}
		matches := []domain.SimilarityMatch{
			{Product: domain.Product{ID: "p-1", Name: "Denim jacket"}, Similarity: 0.93},
			{Product: domain.Product{ID: "p-2", Name: "Leather jacket"}, Similarity: 0.81},
		}

		deps.detector.On("Detect", ctx, image).Return(detections, nil).Once()
		deps.detector.On("Embed", ctx, image).Return(embedding, nil).Once()
		deps.searcher.On("Search", ctx, embedding, 5).Return(matches, nil).Once()
		deps.saver.On("SaveSearchResult", ctx, mock.AnythingOfType("*domain.SearchResult")).Return("query-1", nil).Once()

		result, err := p.ProcessImage(ctx, image)
		require.NoError(t, err)

		assert.Equal(t, "query-1", result.QueryID)
		require.Len(t, result.Results, 2)
		for i, r := range result.Results {
			require.NotNil(t, r.Product)
			assert.Equal(t, "p-1", r.Product.ID)
			assert.Equal(t, 0.93, r.SimilarityScore)
			assert.Equal(t, detections[i].Box, r.BoundingBox)
			assert.Equal(t, detections[i].Confidence, r.Confidence)
		}
		assert.InDelta(t, 0.25, result.ProcessingTime, 1e-9)
		assert.False(t, result.CreatedAt.IsZero())

		saved := deps.saver.Calls[0].Arguments.Get(1).(*domain.SearchResult)
		assert.Same(t, result, saved)

		deps.detector.AssertExpectations(t)
		deps.searcher.AssertExpectations(t)
		deps.saver.AssertExpectations(t)
	})

	t.Run("NoMatches", func(t *testing.T) {
		p, deps := newTestProcessor(t, nil)

		detections := []domain.Detection{domain.NewDetection(domain.BoundingBox{X2: 1, Y2: 1}, 0.6)}
		deps.detector.On("Detect", ctx, image).Return(detections, nil)
		deps.detector.On("Embed", ctx, image).Return([]float32{1}, nil)
		deps.searcher.On("Search", ctx, []float32{1}, 5).Return([]domain.SimilarityMatch{}, nil)
		deps.saver.On("SaveSearchResult", ctx, mock.Anything).Return("query-1", nil)

		result, err := p.ProcessImage(ctx, image)
		require.NoError(t, err)

		require.Len(t, result.Results, 1)
		assert.Nil(t, result.Results[0].Product)
		assert.Zero(t, result.Results[0].SimilarityScore)
		assert.Equal(t, 0.6, result.Results[0].Confidence)
	})

	t.Run("EmptyEmbeddingScoresZero", func(t *testing.T) {
		p, deps := newTestProcessor(t, nil)

		detections := []domain.Detection{domain.NewDetection(domain.BoundingBox{X2: 1, Y2: 1}, 0.8)}
		deps.detector.On("Detect", ctx, image).Return(detections, nil)
		deps.detector.On("Embed", ctx, image).Return([]float32{}, nil)
		deps.searcher.On("Search", ctx, []float32{}, 5).Return([]domain.SimilarityMatch{
			{Product: domain.Product{ID: "p-1"}, Similarity: 0},
		}, nil)
		deps.saver.On("SaveSearchResult", ctx, mock.Anything).Return("query-1", nil)

		result, err := p.ProcessImage(ctx, image)
		require.NoError(t, err)
		require.Len(t, result.Results, 1)
		assert.Zero(t, result.Results[0].SimilarityScore)
		deps.searcher.AssertExpectations(t)
	})

	t.Run("NoDetections", func(t *testing.T) {
		p, deps := newTestProcessor(t, nil)

		deps.detector.On("Detect", ctx, image).Return([]domain.Detection{}, nil)
		deps.detector.On("Embed", ctx, image).Return([]float32{1}, nil)
		deps.searcher.On("Search", ctx, []float32{1}, 5).Return([]domain.SimilarityMatch{
			{Product: domain.Product{ID: "p-1"}, Similarity: 0.5},
		}, nil)
		deps.saver.On("SaveSearchResult", ctx, mock.Anything).Return("query-1", nil)

		result, err := p.ProcessImage(ctx, image)
		require.NoError(t, err)
		assert.NotNil(t, result.Results)
		assert.Empty(t, result.Results)
	})

	t.Run("DetectorFailureNotPersisted", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		metrics, err := NewPipelineMetrics(reg)
		require.NoError(t, err)

		p, deps := newTestProcessor(t, metrics)
		boom := errors.New("model unavailable")
		deps.detector.On("Detect", ctx, image).Return(nil, boom)

		_, err = p.ProcessImage(ctx, image)
		assert.ErrorIs(t, err, boom)

		deps.detector.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
		deps.searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
		deps.saver.AssertNotCalled(t, "SaveSearchResult", mock.Anything, mock.Anything)
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.failures.WithLabelValues(stageDetect)))
	})

	t.Run("EmbedFailureNotPersisted", func(t *testing.T) {
		p, deps := newTestProcessor(t, nil)
		boom := errors.New("timeout")

		deps.detector.On("Detect", ctx, image).Return([]domain.Detection{}, nil)
		deps.detector.On("Embed", ctx, image).Return(nil, boom)

		_, err := p.ProcessImage(ctx, image)
		assert.ErrorIs(t, err, boom)
		deps.saver.AssertNotCalled(t, "SaveSearchResult", mock.Anything, mock.Anything)
	})

	t.Run("SearchFailureNotPersisted", func(t *testing.T) {
		p, deps := newTestProcessor(t, nil)
		boom := errors.New("store down")

		deps.detector.On("Detect", ctx, image).Return([]domain.Detection{}, nil)
		deps.detector.On("Embed", ctx, image).Return([]float32{1}, nil)
		deps.searcher.On("Search", ctx, []float32{1}, 5).Return(nil, boom)

		_, err := p.ProcessImage(ctx, image)
		assert.ErrorIs(t, err, boom)
		deps.saver.AssertNotCalled(t, "SaveSearchResult", mock.Anything, mock.Anything)
	})

	t.Run("SaveFailurePropagates", func(t *testing.T) {
		p, deps := newTestProcessor(t, nil)
		boom := errors.New("insert failed")

		deps.detector.On("Detect", ctx, image).Return([]domain.Detection{}, nil)
		deps.detector.On("Embed", ctx, image).Return([]float32{1}, nil)
		deps.searcher.On("Search", ctx, []float32{1}, 5).Return([]domain.SimilarityMatch{}, nil)
		deps.saver.On("SaveSearchResult", ctx, mock.Anything).Return("", boom)

		result, err := p.ProcessImage(ctx, image)
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, result)
	})

	t.Run("CancelledBeforeStart", func(t *testing.T) {
		p, deps := newTestProcessor(t, nil)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := p.ProcessImage(cctx, image)
		assert.ErrorIs(t, err, context.Canceled)
		deps.detector.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything)
	})
}
