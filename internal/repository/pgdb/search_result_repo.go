package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// SearchResultRepo хранит результаты обработки изображений.
type SearchResultRepo struct {
	pool *pgxpool.Pool
	conv converter.SearchResultConverter
}

func NewSearchResultRepo(pool *pgxpool.Pool, conv converter.SearchResultConverter) *SearchResultRepo {
	return &SearchResultRepo{
		pool: pool,
		conv: conv,
	}
}

// Save сохраняет результат под его query_id и возвращает этот идентификатор.
func (s *SearchResultRepo) Save(ctx context.Context, result *domain.SearchResult) (string, error) {
	model, err := s.conv.ToModel(result)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO search_results (query_id, results, detections, top_product_id, processing_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING query_id;
	`

	var id string
	err = tr.TxOrDB(ctx, s.pool).QueryRow(ctx, query,
		model.QueryID,
		model.Results,
		model.Detections,
		model.TopProductID,
		model.ProcessingTime,
		model.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return id, nil
}

// Get возвращает результат по query_id или e.ErrSearchResultNotFound.
func (s *SearchResultRepo) Get(ctx context.Context, queryID string) (*domain.SearchResult, error) {
	query := `
		SELECT query_id, results, detections, top_product_id, processing_time, created_at
		FROM search_results
		WHERE query_id = $1
	`

	var model converter.SearchResultModel
	err := tr.TxOrDB(ctx, s.pool).QueryRow(ctx, query, queryID).Scan(
		&model.QueryID,
		&model.Results,
		&model.Detections,
		&model.TopProductID,
		&model.ProcessingTime,
		&model.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrSearchResultNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result, err := s.conv.ToEntity(&model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}
