package pgdb

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const productColumns = `id, brand, name, category_id, price, currency, source_url, image_url, created_at, updated_at`

// filterableColumns перечисляет поля товара, по которым разрешена фильтрация.
var filterableColumns = []string{"brand", "category_id", "currency", "image_url", "name", "source_url"}

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// Create сохраняет товар. Должен вызываться внутри транзакции.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	m := p.conv.ToModel(product)
	query := `
		INSERT INTO products (id, brand, name, category_id, price, currency, source_url, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + productColumns + `;
	`

	var model converter.ProductModel
	err = tx.QueryRow(ctx, query,
		m.ID, m.Brand, m.Name, m.CategoryID, m.Price, m.Currency, m.SourceURL, m.ImageURL,
	).Scan(scanProductTargets(&model)...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// Get возвращает товар по идентификатору.
func (p *ProductRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var model converter.ProductModel
	err := tr.TxOrDB(ctx, p.pool).QueryRow(ctx, query, id).Scan(scanProductTargets(&model)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// SearchProducts возвращает все товары, подходящие под фильтр (равенство по каждому полю).
// Без ограничения на количество: поиск по сходству должен видеть весь каталог.
func (p *ProductRepo) SearchProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	where, args, err := buildProductFilter(filter)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + ` ORDER BY created_at, id`

	rows, err := tr.TxOrDB(ctx, p.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		var model converter.ProductModel
		if err := rows.Scan(scanProductTargets(&model)...); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *p.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// buildProductFilter строит WHERE с плейсхолдерами. Поля сортируются,
// чтобы один и тот же фильтр всегда давал один и тот же запрос.
func buildProductFilter(filter domain.ProductFilter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}

	fields := make([]string, 0, len(filter))
	for field := range filter {
		if !slices.Contains(filterableColumns, field) {
			return "", nil, fmt.Errorf("%w: %s", e.ErrUnknownFilterField, field)
		}
		fields = append(fields, field)
	}
	slices.Sort(fields)

	conds := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for i, field := range fields {
		conds = append(conds, fmt.Sprintf("%s = $%d", field, i+1))
		args = append(args, filter[field])
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func scanProductTargets(m *converter.ProductModel) []any {
	return []any{
		&m.ID, &m.Brand, &m.Name, &m.CategoryID, &m.Price, &m.Currency,
		&m.SourceURL, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt,
	}
}
