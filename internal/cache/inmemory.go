package cache

import (
	"context"
	"sync"

	"github.com/expenseshare/server/internal/models"
)

// InMemoryGroupDetails implements GroupDetails with a process-local map.
// Used when no Redis address is configured, and in tests.
type InMemoryGroupDetails struct {
	mu      sync.RWMutex
	entries map[uint64]*models.Group
}

// NewInMemoryGroupDetails creates an empty in-process cache.
func NewInMemoryGroupDetails() *InMemoryGroupDetails {
	return &InMemoryGroupDetails{entries: make(map[uint64]*models.Group)}
}

// Get returns the cached graph and whether it was present.
func (c *InMemoryGroupDetails) Get(_ context.Context, groupID uint64) (*models.Group, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	group, ok := c.entries[groupID]
	return group, ok
}

// Set stores the graph for a group.
func (c *InMemoryGroupDetails) Set(_ context.Context, group *models.Group) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[group.ID] = group
}

// Invalidate drops the cached graph for a group.
func (c *InMemoryGroupDetails) Invalidate(_ context.Context, groupID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, groupID)
}
