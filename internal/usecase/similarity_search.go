package usecase

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
)

const DefaultTopK = 10

// SimilaritySearch ранжирует все товары каталога по косинусному сходству
// их эмбеддингов с вектором запроса. Полный перебор, без индекса.
type SimilaritySearch struct {
	productRepo   ProductRepository
	embeddingRepo EmbeddingRepository
	logger        logger.Logger
}

func NewSimilaritySearch(productRepo ProductRepository, embeddingRepo EmbeddingRepository, logger logger.Logger) *SimilaritySearch {
	return &SimilaritySearch{
		productRepo:   productRepo,
		embeddingRepo: embeddingRepo,
		logger:        logger,
	}
}

// Search возвращает не более topK товаров по убыванию сходства.
// Товары без эмбеддинга пропускаются. topK <= 0 заменяется на DefaultTopK.
func (s *SimilaritySearch) Search(ctx context.Context, query []float32, topK int) ([]domain.SimilarityMatch, error) {
	const op = "SimilaritySearch.Search"

	if topK <= 0 {
		topK = DefaultTopK
	}

	products, err := s.productRepo.SearchProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	matches := make([]domain.SimilarityMatch, 0, len(products))
	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return nil, e.Wrap(op, err)
		}

		vector, err := s.embeddingRepo.Get(ctx, product.ID)
		if err != nil {
			if errors.Is(err, e.ErrEmbeddingNotFound) {
				s.logger.Debugf("embedding not found, product skipped: product_id=%s", product.ID)
				continue
			}
			return nil, e.Wrap(op, err)
		}

		matches = append(matches, domain.SimilarityMatch{
			Product:    product,
			Similarity: cosineSimilarity(query, vector),
		})
	}

	slices.SortStableFunc(matches, func(a, b domain.SimilarityMatch) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	return matches, nil
}

// SaveProductEmbedding сохраняет вектор товара и возвращает его расположение.
func (s *SimilaritySearch) SaveProductEmbedding(ctx context.Context, productID string, vector []float32) (string, error) {
	const op = "SimilaritySearch.SaveProductEmbedding"

	if len(vector) == 0 {
		return "", e.Wrap(op, e.ErrVectorEmbeddingEmpty)
	}

	locator, err := s.embeddingRepo.Upload(ctx, productID, vector)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return locator, nil
}

// DeleteProductEmbedding удаляет сохранённый вектор товара.
func (s *SimilaritySearch) DeleteProductEmbedding(ctx context.Context, productID string) error {
	const op = "SimilaritySearch.DeleteProductEmbedding"

	if err := s.embeddingRepo.Delete(ctx, productID); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// cosineSimilarity считает сходство по общей длине векторов (лишние координаты
// отбрасываются) и ограничивает результат отрезком [0, 1].
// Нулевая норма даёт 0.
func cosineSimilarity(a, b []float32) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case !(sim > 0): // отрицательные значения и NaN
		return 0
	case sim > 1:
		return 1
	default:
		return sim
	}
}
