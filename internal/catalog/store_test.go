package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreDeleteGuardsAssignments(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	profile := AccessProfile{ID: "prof-1", Name: "Stock", Status: StatusActive}
	require.NoError(t, store.Insert(ctx, profile))
	require.NoError(t, store.AssignUser(ctx, "user-1", profile.ID))

	// The store itself refuses, independent of any service-level checks.
	require.ErrorIs(t, store.Delete(ctx, profile.ID), ErrProfileInUse)

	require.NoError(t, store.UnassignUser(ctx, "user-1"))
	require.NoError(t, store.Delete(ctx, profile.ID))
	require.ErrorIs(t, store.Delete(ctx, profile.ID), ErrProfileNotFound)
}
