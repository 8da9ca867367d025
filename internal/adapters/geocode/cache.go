package geocode

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/relaydesk/agentrouter/internal/domain/model"
	"github.com/relaydesk/agentrouter/pkg/metrics"
)

// Cache memoizes resolved coordinates per contact. A contact's postal code
// is effectively immutable, so a resolution is done at most once for the
// lifetime of the process; concurrent first lookups for the same contact
// collapse into a single upstream call.
type Cache struct {
	resolver Resolver

	mu      sync.RWMutex
	coords  map[int]model.Coordinates
	inround singleflight.Group
}

// NewCache wraps a resolver with per-contact memoization.
func NewCache(resolver Resolver) *Cache {
	return &Cache{
		resolver: resolver,
		coords:   make(map[int]model.Coordinates),
	}
}

// Coordinates returns the contact's coordinates, resolving and caching on
// first use. Like the underlying resolver it never fails: a lookup failure
// caches the origin.
func (c *Cache) Coordinates(ctx context.Context, contact model.Contact) model.Coordinates {
	c.mu.RLock()
	coords, ok := c.coords[contact.ID]
	c.mu.RUnlock()
	if ok {
		metrics.RecordGeocodeCacheHit()
		return coords
	}

	metrics.RecordGeocodeCacheMiss()

	key := strconv.Itoa(contact.ID)
	result, _, _ := c.inround.Do(key, func() (any, error) {
		resolved := c.resolver.Resolve(ctx, contact.PostalCode)
		c.mu.Lock()
		c.coords[contact.ID] = resolved
		c.mu.Unlock()
		return resolved, nil
	})

	return result.(model.Coordinates)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.coords)
}
