package usecase

import (
	"context"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) SearchProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	products, _ := args.Get(0).([]domain.Product)
	return products, args.Error(1)
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, product)
	switch v := args.Get(0).(type) {
	case func(context.Context, *domain.Product) *domain.Product:
		return v(ctx, product), args.Error(1)
	case *domain.Product:
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*domain.Product)
	return product, args.Error(1)
}

type mockCategoryRepo struct{ mock.Mock }

func (m *mockCategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	args := m.Called(ctx, category)
	created, _ := args.Get(0).(*domain.Category)
	return created, args.Error(1)
}

type mockEmbeddingRepo struct{ mock.Mock }

func (m *mockEmbeddingRepo) Get(ctx context.Context, productID string) ([]float32, error) {
	args := m.Called(ctx, productID)
	vector, _ := args.Get(0).([]float32)
	return vector, args.Error(1)
}

func (m *mockEmbeddingRepo) Upload(ctx context.Context, productID string, vector []float32) (string, error) {
	args := m.Called(ctx, productID, vector)
	return args.String(0), args.Error(1)
}

func (m *mockEmbeddingRepo) Delete(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

type mockDetector struct{ mock.Mock }

func (m *mockDetector) Detect(ctx context.Context, image []byte) ([]domain.Detection, error) {
	args := m.Called(ctx, image)
	detections, _ := args.Get(0).([]domain.Detection)
	return detections, args.Error(1)
}

func (m *mockDetector) Embed(ctx context.Context, image []byte) ([]float32, error) {
	args := m.Called(ctx, image)
	vector, _ := args.Get(0).([]float32)
	return vector, args.Error(1)
}

type mockSearcher struct{ mock.Mock }

func (m *mockSearcher) Search(ctx context.Context, query []float32, topK int) ([]domain.SimilarityMatch, error) {
	args := m.Called(ctx, query, topK)
	matches, _ := args.Get(0).([]domain.SimilarityMatch)
	return matches, args.Error(1)
}

type mockSaver struct{ mock.Mock }

func (m *mockSaver) SaveSearchResult(ctx context.Context, result *domain.SearchResult) (string, error) {
	args := m.Called(ctx, result)
	return args.String(0), args.Error(1)
}

type mockSearchResultRepo struct{ mock.Mock }

func (m *mockSearchResultRepo) Save(ctx context.Context, result *domain.SearchResult) (string, error) {
	args := m.Called(ctx, result)
	return args.String(0), args.Error(1)
}

func (m *mockSearchResultRepo) Get(ctx context.Context, queryID string) (*domain.SearchResult, error) {
	args := m.Called(ctx, queryID)
	result, _ := args.Get(0).(*domain.SearchResult)
	return result, args.Error(1)
}

type mockOutboxRepo struct{ mock.Mock }

func (m *mockOutboxRepo) Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	args := m.Called(ctx, event)
	created, _ := args.Get(0).(*OutboxEvent)
	return created, args.Error(1)
}

func (m *mockOutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]*OutboxEvent)
	return events, args.Error(1)
}

func (m *mockOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutboxRepo) MarkAsPending(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockCacheRepo struct{ mock.Mock }

func (m *mockCacheRepo) GetSearchResult(ctx context.Context, queryID string) (*domain.SearchResult, bool, error) {
	args := m.Called(ctx, queryID)
	result, _ := args.Get(0).(*domain.SearchResult)
	return result, args.Bool(1), args.Error(2)
}

func (m *mockCacheRepo) SetSearchResult(ctx context.Context, result *domain.SearchResult) error {
	return m.Called(ctx, result).Error(0)
}

type mockEncoder struct{ mock.Mock }

func (m *mockEncoder) EncodeSearchCompleted(result *domain.SearchResult) ([]byte, error) {
	args := m.Called(result)
	payload, _ := args.Get(0).([]byte)
	return payload, args.Error(1)
}

type mockEmbeddingSaver struct{ mock.Mock }

func (m *mockEmbeddingSaver) SaveProductEmbedding(ctx context.Context, productID string, vector []float32) (string, error) {
	args := m.Called(ctx, productID, vector)
	return args.String(0), args.Error(1)
}

func (m *mockEmbeddingSaver) DeleteProductEmbedding(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

// inlineTx выполняет fn без настоящей транзакции и запоминает число вызовов.
// commitErr имитирует сбой фиксации после успешного fn.
type inlineTx struct {
	calls     int
	commitErr error
}

func (t *inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if err := fn(ctx); err != nil {
		return err
	}
	return t.commitErr
}
