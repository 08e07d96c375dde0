package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/google/uuid"
)

// ProductEmbeddingSaver сохраняет вектор товара в хранилище эмбеддингов.
// Хранилище не участвует в транзакции Postgres, поэтому сохранённый вектор
// удаляется через DeleteProductEmbedding, если транзакция не зафиксировалась.
type ProductEmbeddingSaver interface {
	SaveProductEmbedding(ctx context.Context, productID string, vector []float32) (string, error)
	DeleteProductEmbedding(ctx context.Context, productID string) error
}

// compensateTimeout ограничивает удаление вектора после отката транзакции.
const compensateTimeout = 5 * time.Second

// CatalogUseCase реализует добавление товаров в каталог поиска.
type CatalogUseCase struct {
	productRepo    ProductRepository
	categoryRepo   CategoryRepository
	detector       Detector
	embeddingSaver ProductEmbeddingSaver
	txManager      TxManager
	logger         logger.Logger
}

func NewCatalogUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	detector Detector,
	embeddingSaver ProductEmbeddingSaver,
	txManager TxManager,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo:    productRepo,
		categoryRepo:   categoryRepo,
		detector:       detector,
		embeddingSaver: embeddingSaver,
		txManager:      txManager,
		logger:         logger,
	}
}

// RegisterProduct создаёт товар и сохраняет эмбеддинг его изображения.
// Вектор запрашивается до открытия транзакции; запись товара откатывается,
// если эмбеддинг сохранить не удалось.
func (c *CatalogUseCase) RegisterProduct(ctx context.Context, req *RegisterProductReq) (*RegisterProductRes, error) {
	const op = "CatalogUseCase.RegisterProduct"

	if err := c.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	vector, err := c.detector.Embed(ctx, req.Image.Data)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(vector) == 0 {
		return nil, e.Wrap(op, e.ErrVectorEmbeddingEmpty)
	}

	var (
		res      *RegisterProductRes
		uploaded string
	)
	err = c.txManager.Do(ctx, func(ctx context.Context) error {
		// идемпотентное создание категории
		category, err := c.categoryRepo.Create(ctx, domain.NewCategory(req.CategoryName))
		if err != nil {
			return err
		}

		product, err := c.productRepo.Create(ctx, domain.NewProduct(
			uuid.NewString(),
			strings.TrimSpace(req.Brand),
			strings.TrimSpace(req.Name),
			category.ID,
			req.Price,
			strings.ToUpper(strings.TrimSpace(req.Currency)),
			req.SourceURL,
			req.ImageURL,
		))
		if err != nil {
			return err
		}

		locator, err := c.embeddingSaver.SaveProductEmbedding(ctx, product.ID, vector)
		if err != nil {
			return err
		}
		uploaded = product.ID

		res = NewRegisterProductRes(product.ID, locator)
		return nil
	})
	if err != nil {
		c.logger.Errorf(err, "Failed to register product: name=%s", req.Name)
		if uploaded != "" {
			c.removeOrphanEmbedding(ctx, uploaded)
		}
		return nil, e.Wrap(op, err)
	}

	c.logger.Infof("Product registered: product_id=%s, locator=%s", res.ProductID, res.Locator)
	return res, nil
}

// removeOrphanEmbedding удаляет вектор товара, запись которого откатилась.
func (c *CatalogUseCase) removeOrphanEmbedding(ctx context.Context, productID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	if err := c.embeddingSaver.DeleteProductEmbedding(ctx, productID); err != nil {
		c.logger.Warnf("orphan embedding left after rollback: product_id=%s, error=%v", productID, err)
	}
}

// validateProduct проверяет корректность входных данных запроса на добавление товара.
func (c *CatalogUseCase) validateProduct(req *RegisterProductReq) error {
	if strings.TrimSpace(req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if strings.TrimSpace(req.CategoryName) == "" {
		return e.ErrMissingFields
	}

	if req.Price < 0 {
		return e.ErrNegativePrice
	}

	if len(req.Image.Data) == 0 {
		return e.ErrNoImages
	}

	if !strings.HasPrefix(req.Image.MimeType, "image/") {
		return e.ErrNotAnImage
	}

	return nil
}
