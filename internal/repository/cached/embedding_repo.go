package cached

import (
	"context"

	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/cache"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/jimlawless/whereami"
)

const getEmbeddingFunc = "GetEmbedding"

// EmbeddingRepo мемоизирует чтение векторов поверх другого хранилища.
// Отсутствующий вектор не кэшируется.
type EmbeddingRepo struct {
	next  usecase.EmbeddingRepository
	cache *cache.Cache[[]float32]
}

func NewEmbeddingRepo(next usecase.EmbeddingRepository, c *cache.Cache[[]float32]) *EmbeddingRepo {
	return &EmbeddingRepo{
		next:  next,
		cache: c,
	}
}

func (r *EmbeddingRepo) Get(ctx context.Context, productID string) ([]float32, error) {
	return cache.Cached(ctx, r.cache, cache.NewCall(getEmbeddingFunc, productID), func(ctx context.Context) ([]float32, error) {
		return r.next.Get(ctx, productID)
	})
}

// Upload сохраняет вектор и сбрасывает его мемоизированное значение.
func (r *EmbeddingRepo) Upload(ctx context.Context, productID string, vector []float32) (string, error) {
	locator, err := r.next.Upload(ctx, productID, vector)
	if err != nil {
		return "", err
	}

	if _, err := cache.Forget(r.cache, cache.NewCall(getEmbeddingFunc, productID)); err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return locator, nil
}

// Delete удаляет вектор и его мемоизированное значение.
func (r *EmbeddingRepo) Delete(ctx context.Context, productID string) error {
	if err := r.next.Delete(ctx, productID); err != nil {
		return err
	}

	if _, err := cache.Forget(r.cache, cache.NewCall(getEmbeddingFunc, productID)); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
