// Package resource implements the delivery-resource workflows: probing a
// media source, resolving its delivery profile, persisting the resource with
// a sequence-allocated id, and serving reads through an in-memory cache.
package resource

import (
	"sync"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/models"
)

// Cache is an in-memory id-to-resource map with a cache-aside read path.
// Eviction removes the entry only; the backing row stays loadable.
type Cache struct {
	mu      sync.RWMutex
	entries map[uint64]*models.Resource
}

// NewCache creates an empty resource cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]*models.Resource)}
}

// Get returns the cached resource for id, or nil on a miss.
func (c *Cache) Get(id uint64) *models.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[id]
}

// Put inserts or replaces the entry for the resource's id. Idempotent per
// id; the last write wins. Resources without an allocated id are ignored.
func (c *Cache) Put(resource *models.Resource) {
	if resource == nil || resource.ID == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[resource.ID] = resource
}

// Evict removes the entry for id. Missing entries are a no-op.
func (c *Cache) Evict(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// EvictOwner removes every cached resource belonging to ownerID and returns
// the number of entries removed.
func (c *Cache) EvictOwner(ownerID models.ULID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, res := range c.entries {
		if res.OwnerID == ownerID {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]*models.Resource)
}

// Contains reports whether an entry exists for id.
func (c *Cache) Contains(id uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[id]
	return ok
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
