package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/google/uuid"
)

const (
	stageDetect = "detect"
	stageEmbed  = "embed"
	stageSearch = "search"
	stageSave   = "save"
)

// ImageProcessor — конвейер обработки загруженного изображения:
// детекция, эмбеддинг всего изображения, поиск похожих товаров, сохранение результата.
type ImageProcessor struct {
	detector Detector
	searcher Searcher
	saver    SearchResultSaver
	logger   logger.Logger
	metrics  *PipelineMetrics
	topK     int

	now   func() time.Time
	newID func() string
}

func NewImageProcessor(
	detector Detector,
	searcher Searcher,
	saver SearchResultSaver,
	logger logger.Logger,
	metrics *PipelineMetrics,
	topK int,
) *ImageProcessor {
	if topK <= 0 {
		topK = DefaultTopK
	}

	return &ImageProcessor{
		detector: detector,
		searcher: searcher,
		saver:    saver,
		logger:   logger,
		metrics:  metrics,
		topK:     topK,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// ProcessImage выполняет шаги последовательно. Любая ошибка шага логируется и
// возвращается, результат при этом не сохраняется. Повторов нет.
//
// Каждая детекция получает лучший товар, найденный по эмбеддингу всего изображения.
func (p *ImageProcessor) ProcessImage(ctx context.Context, image []byte) (*domain.SearchResult, error) {
	const op = "ImageProcessor.ProcessImage"

	start := p.now()
	fail := func(stage string, err error) error {
		p.metrics.recordFailure(stage)
		p.logger.Errorf(err, "image processing failed: stage=%s, image_size=%d", stage, len(image))
		return e.Wrap(op, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fail(stageDetect, err)
	}
	detections, err := p.detector.Detect(ctx, image)
	if err != nil {
		return nil, fail(stageDetect, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fail(stageEmbed, err)
	}
	embedding, err := p.detector.Embed(ctx, image)
	if err != nil {
		return nil, fail(stageEmbed, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fail(stageSearch, err)
	}
	matches, err := p.searcher.Search(ctx, embedding, p.topK)
	if err != nil {
		return nil, fail(stageSearch, err)
	}

	responses := make([]domain.DetectionResponse, 0, len(detections))
	for _, d := range detections {
		resp := domain.DetectionResponse{
			BoundingBox: d.Box,
			Confidence:  d.Confidence,
		}
		if len(matches) > 0 {
			product := matches[0].Product
			resp.Product = &product
			resp.SimilarityScore = matches[0].Similarity
		}
		responses = append(responses, resp)
	}

	elapsed := p.now().Sub(start).Seconds()
	result := domain.NewSearchResult(p.newID(), responses, elapsed, p.now())

	if err := ctx.Err(); err != nil {
		return nil, fail(stageSave, err)
	}
	if _, err := p.saver.SaveSearchResult(ctx, result); err != nil {
		return nil, fail(stageSave, err)
	}

	p.metrics.observe(elapsed)
	p.logger.Infof(
		"image processed: query_id=%s, detections=%d, matches=%d, processing_time=%.3fs",
		result.QueryID, len(detections), len(matches), elapsed,
	)

	return result, nil
}
