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

const cacheWriteTimeout = 500 * time.Millisecond

// SearchResultUseCase сохраняет результаты поиска вместе с outbox-событием
// и отдаёт их по query_id через кэш.
type SearchResultUseCase struct {
	repo       SearchResultRepository
	outboxRepo OutboxRepository
	cacheRepo  CacheRepository
	encoder    EventEncoder
	txManager  TxManager
	logger     logger.Logger
}

func NewSearchResultUC(
	repo SearchResultRepository,
	outboxRepo OutboxRepository,
	cacheRepo CacheRepository,
	encoder EventEncoder,
	txManager TxManager,
	logger logger.Logger,
) *SearchResultUseCase {
	return &SearchResultUseCase{
		repo:       repo,
		outboxRepo: outboxRepo,
		cacheRepo:  cacheRepo,
		encoder:    encoder,
		txManager:  txManager,
		logger:     logger,
	}
}

// SaveSearchResult сохраняет результат под его QueryID и возвращает этот идентификатор.
func (s *SearchResultUseCase) SaveSearchResult(ctx context.Context, result *domain.SearchResult) (string, error) {
	const op = "SearchResultUseCase.SaveSearchResult"

	payload, err := s.encoder.EncodeSearchCompleted(result)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	var id string
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		id, err = s.repo.Save(ctx, result)
		if err != nil {
			return err
		}

		event := NewOutboxEvent(uuid.NewString(), SearchCompleted, id, payload, time.Now().UTC())
		_, err = s.outboxRepo.Create(ctx, event)
		return err
	})
	if err != nil {
		return "", e.Wrap(op, err)
	}

	if err := s.cacheRepo.SetSearchResult(ctx, result); err != nil {
		s.logger.Warnf("Failed to cache search result: %v", e.Wrap(op, err))
	}

	return id, nil
}

// GetSearchResult читает результат из кэша, при промахе читает из БД с фоновым прогревом кэша.
func (s *SearchResultUseCase) GetSearchResult(ctx context.Context, queryID string) (*domain.SearchResult, error) {
	const op = "SearchResultUseCase.GetSearchResult"

	queryID = strings.TrimSpace(queryID)
	if queryID == "" {
		return nil, e.Wrap(op, e.ErrSearchResultNotFound)
	}

	cached, ok, err := s.cacheRepo.GetSearchResult(ctx, queryID)
	if err != nil {
		s.logger.Warnf("Failed to read search result from cache: %v", e.Wrap(op, err))
	} else if ok {
		return cached, nil
	}

	result, err := s.repo.Get(ctx, queryID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Фоновое добавление результата в кэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		if err := s.cacheRepo.SetSearchResult(bgCtx, result); err != nil {
			s.logger.Warnf("Failed to cache search result in background: %v", e.Wrap(op, err))
		}
	}()

	return result, nil
}
