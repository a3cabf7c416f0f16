package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewService(Default(), store, nil), store
}

func TestCreateProfile(t *testing.T) {
	svc, _ := newTestService(t)

	profile, err := svc.CreateProfile(context.Background(), CreateProfileInput{
		Name:          "Reception Desk",
		Description:   "front desk staff",
		ModuleIDs:     []string{"patients", "scheduling"},
		PermissionIDs: []string{"patients.view", "scheduling.view", "scheduling.manage"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, profile.ID)
	require.Equal(t, StatusActive, profile.Status)
	require.Equal(t, 0, profile.AssignedUserCount)

	got, err := svc.GetProfile(context.Background(), profile.ID)
	require.NoError(t, err)
	require.Equal(t, profile.Name, got.Name)
}

func TestCreateProfileDeduplicates(t *testing.T) {
	svc, _ := newTestService(t)

	profile, err := svc.CreateProfile(context.Background(), CreateProfileInput{
		Name:          "Nurse",
		ModuleIDs:     []string{"patients", "patients"},
		PermissionIDs: []string{"patients.view", "patients.view"},
	})
	require.NoError(t, err)
	require.Len(t, profile.ModuleIDs, 1)
	require.Len(t, profile.PermissionIDs, 1)
}

func TestCreateProfileRejectsEmptyName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateProfile(context.Background(), CreateProfileInput{Name: "   "})
	require.ErrorIs(t, err, ErrInvalidProfile)
}

func TestCreateProfileRejectsUnknownModule(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateProfile(context.Background(), CreateProfileInput{
		Name:      "Billing",
		ModuleIDs: []string{"billing"},
	})
	require.ErrorIs(t, err, ErrInvalidProfile)
}

func TestCreateProfileRejectsUnknownPermission(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateProfile(context.Background(), CreateProfileInput{
		Name:          "Nurse",
		ModuleIDs:     []string{"patients"},
		PermissionIDs: []string{"patients.delete"},
	})
	require.ErrorIs(t, err, ErrInvalidProfile)
}

func TestCreateProfileRejectsPermissionOutsideModuleSet(t *testing.T) {
	svc, _ := newTestService(t)

	// pharmacy.dispense is valid, but pharmacy is not among the granted modules.
	_, err := svc.CreateProfile(context.Background(), CreateProfileInput{
		Name:          "Nurse",
		ModuleIDs:     []string{"patients"},
		PermissionIDs: []string{"patients.view", "pharmacy.dispense"},
	})
	require.ErrorIs(t, err, ErrInvalidProfile)
}

func TestDeleteProfileInUse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.CreateProfile(ctx, CreateProfileInput{
		Name:          "Stock",
		ModuleIDs:     []string{"inventory"},
		PermissionIDs: []string{"inventory.view"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.AssignProfile(ctx, "user-1", profile.ID))

	err = svc.DeleteProfile(ctx, profile.ID)
	require.ErrorIs(t, err, ErrProfileInUse)

	require.NoError(t, svc.UnassignProfile(ctx, "user-1"))
	require.NoError(t, svc.DeleteProfile(ctx, profile.ID))

	_, err = svc.GetProfile(ctx, profile.ID)
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestAssignProfileUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.AssignProfile(context.Background(), "user-1", "missing")
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestAssignProfileReplacesPrevious(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateProfile(ctx, CreateProfileInput{
		Name:          "Stock",
		ModuleIDs:     []string{"inventory"},
		PermissionIDs: []string{"inventory.view"},
	})
	require.NoError(t, err)
	second, err := svc.CreateProfile(ctx, CreateProfileInput{
		Name:          "Pharmacy",
		ModuleIDs:     []string{"pharmacy"},
		PermissionIDs: []string{"pharmacy.dispense"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.AssignProfile(ctx, "user-1", first.ID))
	require.NoError(t, svc.AssignProfile(ctx, "user-1", second.ID))

	granted, err := svc.HasPermission(ctx, "user-1", "inventory.view")
	require.NoError(t, err)
	require.False(t, granted)

	granted, err = svc.HasPermission(ctx, "user-1", "pharmacy.dispense")
	require.NoError(t, err)
	require.True(t, granted)

	count, err := svc.GetProfile(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, 0, count.AssignedUserCount)
}

func TestHasPermission(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.CreateProfile(ctx, CreateProfileInput{
		Name:          "Records",
		ModuleIDs:     []string{"records"},
		PermissionIDs: []string{"records.view"},
	})
	require.NoError(t, err)
	require.NoError(t, svc.AssignProfile(ctx, "user-1", profile.ID))

	granted, err := svc.HasPermission(ctx, "user-1", "records.view")
	require.NoError(t, err)
	require.True(t, granted)

	granted, err = svc.HasPermission(ctx, "user-1", "records.edit")
	require.NoError(t, err)
	require.False(t, granted)

	// Users without an assignment have no fine-grained permissions.
	granted, err = svc.HasPermission(ctx, "nobody", "records.view")
	require.NoError(t, err)
	require.False(t, granted)
}

func TestHasPermissionInactiveProfile(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	suspended := AccessProfile{
		ID:            "prof-1",
		Name:          "Suspended",
		ModuleIDs:     []string{"records"},
		PermissionIDs: []string{"records.view"},
		Status:        StatusSuspended,
	}
	require.NoError(t, store.Insert(ctx, suspended))
	require.NoError(t, svc.AssignProfile(ctx, "user-1", suspended.ID))

	granted, err := svc.HasPermission(ctx, "user-1", "records.view")
	require.NoError(t, err)
	require.False(t, granted)
}

func TestHasPermissionStoreError(t *testing.T) {
	svc := NewService(Default(), failingStore{}, nil)

	_, err := svc.HasPermission(context.Background(), "user-1", "records.view")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrProfileNotFound))
}

type failingStore struct{ ProfileStore }

func (failingStore) ProfileIDForUser(ctx context.Context, userID string) (string, error) {
	return "", errors.New("connection reset")
}
