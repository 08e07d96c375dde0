package cache

import (
	"context"

	"github.com/DRSN-tech/fashion-search/pkg/e"
)

// Cached возвращает результат вызова fn из кэша или вычисляет и сохраняет его.
// Ключ строится через Fingerprint(call). Ошибки fn не кэшируются.
//
// Одновременные промахи по одному ключу не объединяются: оба вызова выполнят fn
// и оба запишут результат, побеждает последняя запись.
func Cached[V any](ctx context.Context, c *Cache[V], call Call, fn func(ctx context.Context) (V, error)) (V, error) {
	const op = "cache.Cached"

	var zero V
	key, err := Fingerprint(call)
	if err != nil {
		return zero, e.Wrap(op, err)
	}

	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err := fn(ctx)
	if err != nil {
		return zero, err
	}

	c.Set(key, value)
	return value, nil
}

// Forget удаляет из кэша результат вызова, описанного call.
func Forget[V any](c *Cache[V], call Call) (bool, error) {
	const op = "cache.Forget"

	key, err := Fingerprint(call)
	if err != nil {
		return false, e.Wrap(op, err)
	}

	return c.Delete(key), nil
}
