package cache

import (
	"sync"
	"time"
)

// Cache кеш рассчитанной доступности с TTL и инвалидацией по ключу области.
//
// Ключ области - дата в формате YYYY-MM-DD: любая мутация бронирования на
// эту дату инвалидирует все закешированные выборки слотов этой даты.
type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	// entries ключ области -> ключ выборки -> запись
	entries map[string]map[string]entry
}

type entry struct {
	value     any
	expiresAt time.Time
}

// New создает кеш с заданным TTL записей
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]map[string]entry),
	}
}

// Get возвращает запись, если она есть и не протухла
func (c *Cache) Get(scopeKey, key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	scope, ok := c.entries[scopeKey]
	if !ok {
		return nil, false
	}
	e, ok := scope[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set сохраняет запись в области scopeKey
func (c *Cache) Set(scopeKey, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	scope, ok := c.entries[scopeKey]
	if !ok {
		scope = make(map[string]entry)
		c.entries[scopeKey] = scope
	}
	scope[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate удаляет все записи области scopeKey
func (c *Cache) Invalidate(scopeKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, scopeKey)
}
