// Package cache holds the group-detail cache. Group detail is the one read
// path that rebuilds the denormalized group counters, so callers cache the
// assembled graph and invalidate it on any write touching the group.
package cache

import (
	"context"

	"github.com/expenseshare/server/internal/models"
)

// GroupDetails caches assembled group-detail graphs keyed by group ID.
type GroupDetails interface {
	// Get returns the cached graph and whether it was present.
	Get(ctx context.Context, groupID uint64) (*models.Group, bool)
	// Set stores the graph for a group.
	Set(ctx context.Context, group *models.Group)
	// Invalidate drops the cached graph for a group.
	Invalidate(ctx context.Context, groupID uint64)
}
