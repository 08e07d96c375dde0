package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/internal/repository/redis/converter"
	"github.com/DRSN-tech/fashion-search/pkg/clients"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// CacheRepo кэширует результаты поиска по query_id.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.SearchResultConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.SearchResultConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetSearchResult возвращает результат из кэша. Повреждённая запись удаляется и считается промахом.
func (c *CacheRepo) GetSearchResult(ctx context.Context, queryID string) (*domain.SearchResult, bool, error) {
	key := searchResultKey(queryID)

	data, err := c.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, false, nil // cache miss
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := unmarshalSearchResult(data)
	if err != nil || model.QueryID != queryID {
		c.logger.Warnf("Invalid cached search result, dropping: key=%s, error=%v", key, err)
		if err := c.client.Client.Del(ctx, key).Err(); err != nil {
			c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, false, nil
	}

	return c.conv.ToEntity(model), true, nil
}

// SetSearchResult кэширует результат на cfg.SearchResultTTL.
func (c *CacheRepo) SetSearchResult(ctx context.Context, result *domain.SearchResult) error {
	data, err := json.Marshal(c.conv.ToRedisModel(result))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, searchResultKey(result.QueryID), data, c.cfg.SearchResultTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func unmarshalSearchResult(data []byte) (*converter.SearchResultRedisModel, error) {
	var model converter.SearchResultRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return &model, nil
}

// searchResultKey возвращает Redis-ключ результата поиска
func searchResultKey(queryID string) string {
	return fmt.Sprintf("search_result:%s", queryID)
}
