package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/models"
)

func cachedResource(id uint64, owner models.ULID) *models.Resource {
	return &models.Resource{
		ID:           id,
		OwnerID:      owner,
		ResourceType: models.ResourceTypeFile,
		Locator:      "/media/file.mpg",
	}
}

func TestCachePutGet(t *testing.T) {
	c := NewCache()
	owner := models.NewULID()

	assert.Nil(t, c.Get(1))

	c.Put(cachedResource(1, owner))
	got := c.Get(1)
	assert.NotNil(t, got)
	assert.Equal(t, uint64(1), got.ID)
	assert.Equal(t, 1, c.Len())
}

func TestCachePutLastWriteWins(t *testing.T) {
	c := NewCache()
	owner := models.NewULID()

	first := cachedResource(1, owner)
	first.Locator = "/media/old.mpg"
	c.Put(first)

	second := cachedResource(1, owner)
	second.Locator = "/media/new.mpg"
	c.Put(second)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, "/media/new.mpg", c.Get(1).Locator)
}

func TestCachePutIgnoresUnallocated(t *testing.T) {
	c := NewCache()

	c.Put(nil)
	c.Put(&models.Resource{OwnerID: models.NewULID()})

	assert.Zero(t, c.Len())
}

func TestCacheEvict(t *testing.T) {
	c := NewCache()
	owner := models.NewULID()

	c.Put(cachedResource(1, owner))
	c.Evict(1)
	assert.Nil(t, c.Get(1))

	// Evicting again is a no-op.
	c.Evict(1)
	assert.Zero(t, c.Len())
}

func TestCacheClear(t *testing.T) {
	c := NewCache()
	owner := models.NewULID()

	c.Put(cachedResource(1, owner))
	c.Put(cachedResource(2, owner))
	c.Clear()

	assert.Zero(t, c.Len())
	assert.Nil(t, c.Get(1))
}

func TestCacheEvictOwner(t *testing.T) {
	c := NewCache()
	owner := models.NewULID()
	other := models.NewULID()

	c.Put(cachedResource(1, owner))
	c.Put(cachedResource(2, owner))
	c.Put(cachedResource(3, other))

	removed := c.EvictOwner(owner)
	assert.Equal(t, 2, removed)
	assert.False(t, c.Contains(1))
	assert.False(t, c.Contains(2))
	assert.True(t, c.Contains(3))

	// No entries left for the owner; a second pass removes nothing.
	assert.Zero(t, c.EvictOwner(owner))
}
