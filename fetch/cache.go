package fetch

import (
	"container/list"
	"sync"
)

type cacheEntry struct {
	code uint64
	data []byte
}

// Cache is an in-memory LRU cache of tile data keyed by tile code (see tile.Code).
// It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	items   map[uint64]*list.Element
	lruList *list.List
}

// NewCache creates a cache holding at most maxSize tiles. A cache with
// maxSize <= 0 stores nothing.
func NewCache(maxSize int) *Cache {
	return &Cache{
		maxSize: maxSize,
		items:   make(map[uint64]*list.Element),
		lruList: list.New(),
	}
}

func (c *Cache) Get(code uint64) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[code]
	if !ok {
		return nil, false
	}
	c.lruList.MoveToFront(elem)
	return elem.Value.(*cacheEntry).data, true
}

func (c *Cache) Set(code uint64, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize <= 0 {
		return
	}
	if elem, ok := c.items[code]; ok {
		c.lruList.MoveToFront(elem)
		elem.Value.(*cacheEntry).data = data
		return
	}

	c.items[code] = c.lruList.PushFront(&cacheEntry{code: code, data: data})
	for c.lruList.Len() > c.maxSize {
		oldest := c.lruList.Back()
		c.lruList.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).code)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[uint64]*list.Element)
	c.lruList.Init()
}
