package usecase

import (
	"context"

	"github.com/DRSN-tech/fashion-search/internal/domain"
)

type ProductRepository interface {
	// SearchProducts возвращает товары, подходящие под фильтр. Пустой фильтр возвращает все товары.
	SearchProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
}

// EmbeddingRepository хранит векторы товаров.
// Get возвращает e.ErrEmbeddingNotFound, если вектора нет.
type EmbeddingRepository interface {
	Get(ctx context.Context, productID string) ([]float32, error)
	Upload(ctx context.Context, productID string, vector []float32) (string, error)
	Delete(ctx context.Context, productID string) error
}

type SearchResultRepository interface {
	Save(ctx context.Context, result *domain.SearchResult) (string, error)
	Get(ctx context.Context, queryID string) (*domain.SearchResult, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkAsPending(ctx context.Context, id int64) error
}

// CacheRepository кэширует результаты поиска (Redis).
type CacheRepository interface {
	GetSearchResult(ctx context.Context, queryID string) (*domain.SearchResult, bool, error)
	SetSearchResult(ctx context.Context, result *domain.SearchResult) error
}

// TxManager выполняет fn в транзакции, передавая её через контекст.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
