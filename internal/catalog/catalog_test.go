package catalog

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownModuleReference(t *testing.T) {
	_, err := New(
		[]Module{{ID: "patients", Name: "Patients"}},
		[]Permission{{ID: "billing.view", Name: "View billing", ModuleID: "billing"}},
	)
	require.Error(t, err)
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(
		[]Module{{ID: "patients"}, {ID: "patients"}},
		nil,
	)
	require.Error(t, err)

	_, err = New(
		[]Module{{ID: "patients"}},
		[]Permission{
			{ID: "patients.view", ModuleID: "patients"},
			{ID: "patients.view", ModuleID: "patients"},
		},
	)
	require.Error(t, err)
}

func TestDefaultCatalogIsConsistent(t *testing.T) {
	c := Default()

	for _, p := range c.Permissions() {
		_, ok := c.Module(p.ModuleID)
		require.True(t, ok, "permission %s references module %s", p.ID, p.ModuleID)
	}

	_, ok := c.Permission(PermProfilesView)
	require.True(t, ok)
	_, ok = c.Permission(PermProfilesManage)
	require.True(t, ok)
}

func TestPermissionsByModule(t *testing.T) {
	c := Default()
	grouped := c.PermissionsByModule()

	require.Len(t, grouped, len(c.Modules()))

	total := 0
	for _, g := range grouped {
		total += len(g.Permissions)
		for _, p := range g.Permissions {
			require.Equal(t, g.Module.ID, p.ModuleID)
		}
		require.True(t, sort.SliceIsSorted(g.Permissions, func(i, j int) bool {
			return g.Permissions[i].ID < g.Permissions[j].ID
		}))
	}
	require.Equal(t, len(c.Permissions()), total)

	// Module order is the catalog's declaration order.
	require.Equal(t, "patients", grouped[0].Module.ID)
}
