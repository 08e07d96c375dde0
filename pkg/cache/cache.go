// Package cache предоставляет потокобезопасный кэш с ограничением размера (LRU)
// и временем жизни записей (TTL), а также обёртку Cached для мемоизации дорогих вызовов.
//
// Кэш не является глобальным: экземпляр создаётся в корне композиции приложения
// и передаётся тем компонентам, которым нужна мемоизация.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/DRSN-tech/fashion-search/pkg/e"
)

const (
	DefaultMaxSize = 100
	DefaultTTL     = time.Hour
)

// Cache — LRU-кэш с TTL. Все операции выполняются под одним мьютексом,
// поэтому решение «кэш полон, вытесняем LRU» и вставка атомарны.
type Cache[V any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List // в начале списка самая свежая запись
	now     func() time.Time
	metrics *cacheMetrics
}

// entry — запись кэша. TTL отсчитывается от insertedAt, порядок вытеснения — по accessedAt.
type entry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
	accessedAt time.Time
}

// New создаёт кэш. Неположительные maxSize и ttl заменяются значениями по умолчанию.
func New[V any](maxSize int, ttl time.Duration, opts ...Option) (*Cache[V], error) {
	const op = "cache.New"

	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	var metrics *cacheMetrics
	if o.registerer != nil {
		var err error
		metrics, err = newCacheMetrics(o.registerer, o.name)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	return &Cache[V]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		now:     o.clock,
		metrics: metrics,
	}, nil
}

// Get возвращает значение по ключу. Просроченная запись удаляется, и возвращается промах.
// При попадании запись помечается как недавно использованная.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	element, ok := c.items[key]
	if !ok {
		c.metrics.recordMiss()
		return zero, false
	}

	ent := element.Value.(*entry[V])
	now := c.now()
	if now.Sub(ent.insertedAt) > c.ttl {
		c.removeElement(element)
		c.metrics.recordExpired()
		c.metrics.updateSize(len(c.items))
		return zero, false
	}

	ent.accessedAt = now
	c.order.MoveToFront(element)
	c.metrics.recordHit()

	return ent.value, true
}

// Set сохраняет значение. Если кэш заполнен и ключ новый, сначала вытесняется
// запись с самым старым временем доступа.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if element, ok := c.items[key]; ok {
		ent := element.Value.(*entry[V])
		ent.value = value
		ent.insertedAt = now
		ent.accessedAt = now
		c.order.MoveToFront(element)
		c.metrics.recordSet()
		return
	}

	if len(c.items) >= c.maxSize {
		c.evictOldest()
	}

	ent := &entry[V]{key: key, value: value, insertedAt: now, accessedAt: now}
	c.items[key] = c.order.PushFront(ent)

	c.metrics.recordSet()
	c.metrics.updateSize(len(c.items))
}

// Delete удаляет запись и сообщает, была ли она в кэше.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		return false
	}

	c.removeElement(element)
	c.metrics.recordDelete()
	c.metrics.updateSize(len(c.items))

	return true
}

// Clear безусловно очищает кэш.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.metrics.updateSize(0)
}

// Size возвращает текущее количество записей, включая ещё не удалённые просроченные.
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

// evictOldest удаляет наименее недавно использованную запись.
// Вызывается под мьютексом.
func (c *Cache[V]) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}

	c.removeElement(oldest)
	c.metrics.recordEviction()
}

// removeElement удаляет запись из списка и из map. Вызывается под мьютексом.
func (c *Cache[V]) removeElement(element *list.Element) {
	ent := element.Value.(*entry[V])
	delete(c.items, ent.key)
	c.order.Remove(element)
}
