package cache

import (
	"context"
	"testing"

	"github.com/expenseshare/server/internal/models"
)

func TestInMemoryGroupDetailsRoundTrip(t *testing.T) {
	c := NewInMemoryGroupDetails()
	ctx := context.Background()

	if _, hit := c.Get(ctx, 1); hit {
		t.Fatalf("expected miss on empty cache")
	}

	c.Set(ctx, &models.Group{ID: 1, GroupName: "trip"})
	group, hit := c.Get(ctx, 1)
	if !hit {
		t.Fatalf("expected hit after set")
	}
	if group.GroupName != "trip" {
		t.Fatalf("unexpected cached group: %+v", group)
	}

	c.Invalidate(ctx, 1)
	if _, hit := c.Get(ctx, 1); hit {
		t.Fatalf("expected miss after invalidation")
	}
}
