package usecase

import (
	"context"

	"github.com/DRSN-tech/fashion-search/internal/domain"
)

type ImageProcessorUC interface {
	ProcessImage(ctx context.Context, image []byte) (*domain.SearchResult, error)
}

type SearchResultUC interface {
	GetSearchResult(ctx context.Context, queryID string) (*domain.SearchResult, error)
}

type CatalogUC interface {
	RegisterProduct(ctx context.Context, req *RegisterProductReq) (*RegisterProductRes, error)
}

// Searcher ранжирует товары по сходству с вектором запроса.
type Searcher interface {
	Search(ctx context.Context, query []float32, topK int) ([]domain.SimilarityMatch, error)
}

// SearchResultSaver сохраняет результат обработки изображения.
type SearchResultSaver interface {
	SaveSearchResult(ctx context.Context, result *domain.SearchResult) (string, error)
}
