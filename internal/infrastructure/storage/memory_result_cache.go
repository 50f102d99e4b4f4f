package storage

import (
	"context"
	"sync"
	"time"

	"vision-overlay/internal/domain/port"
)

type cachedPayload struct {
	data    []byte
	expires time.Time
}

// MemoryResultCache хранит ответы детектора в памяти процесса.
// Используется, когда Redis выключен или недоступен.
type MemoryResultCache struct {
	mu    sync.RWMutex
	items map[string]cachedPayload
	ttl   time.Duration
	now   func() time.Time

	nextSweep time.Time
}

// NewMemoryResultCache создаёт кэш; ttl <= 0 означает хранение без срока
func NewMemoryResultCache(ttl time.Duration) *MemoryResultCache {
	return &MemoryResultCache{
		items: make(map[string]cachedPayload),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *MemoryResultCache) Get(ctx context.Context, md5 string) ([]byte, error) {
	c.mu.RLock()
	item, ok := c.items[md5]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if !item.expires.IsZero() && !c.now().Before(item.expires) {
		c.mu.Lock()
		delete(c.items, md5)
		c.mu.Unlock()
		return nil, nil
	}
	return append([]byte(nil), item.data...), nil
}

func (c *MemoryResultCache) Set(ctx context.Context, md5 string, payload []byte) error {
	item := cachedPayload{data: append([]byte(nil), payload...)}
	if c.ttl > 0 {
		item.expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	c.items[md5] = item
	c.sweepLocked()
	c.mu.Unlock()
	return nil
}

// sweepLocked не чаще раза за ttl удаляет устаревшие записи,
// иначе ключи, которые больше не читают, копятся без предела.
func (c *MemoryResultCache) sweepLocked() {
	if c.ttl <= 0 {
		return
	}
	now := c.now()
	if now.Before(c.nextSweep) {
		return
	}
	for key, item := range c.items {
		if !now.Before(item.expires) {
			delete(c.items, key)
		}
	}
	c.nextSweep = now.Add(c.ttl)
}

var _ port.ResultCache = (*MemoryResultCache)(nil)
