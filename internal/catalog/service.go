package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Service orchestrates access profile administration over the static catalog.
type Service struct {
	catalog *Catalog
	store   ProfileStore
	logger  *slog.Logger
}

// NewService constructs a Service.
func NewService(catalog *Catalog, store ProfileStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: catalog, store: store, logger: logger}
}

// CreateProfileInput carries the administrative profile fields.
type CreateProfileInput struct {
	Name          string
	Description   string
	PermissionIDs []string
	ModuleIDs     []string
	Restrictions  string
}

// CreateProfile validates and persists a new access profile. Every permission
// must exist in the catalog and its module must be contained in the supplied
// module set.
func (s *Service) CreateProfile(ctx context.Context, in CreateProfileInput) (AccessProfile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return AccessProfile{}, fmt.Errorf("%w: name required", ErrInvalidProfile)
	}

	moduleSet := make(map[string]struct{}, len(in.ModuleIDs))
	moduleIDs := make([]string, 0, len(in.ModuleIDs))
	for _, id := range in.ModuleIDs {
		if _, ok := s.catalog.Module(id); !ok {
			return AccessProfile{}, fmt.Errorf("%w: unknown module %q", ErrInvalidProfile, id)
		}
		if _, seen := moduleSet[id]; seen {
			continue
		}
		moduleSet[id] = struct{}{}
		moduleIDs = append(moduleIDs, id)
	}

	permSet := make(map[string]struct{}, len(in.PermissionIDs))
	permissionIDs := make([]string, 0, len(in.PermissionIDs))
	for _, id := range in.PermissionIDs {
		perm, ok := s.catalog.Permission(id)
		if !ok {
			return AccessProfile{}, fmt.Errorf("%w: unknown permission %q", ErrInvalidProfile, id)
		}
		if _, ok := moduleSet[perm.ModuleID]; !ok {
			return AccessProfile{}, fmt.Errorf("%w: permission %q belongs to module %q which is not granted",
				ErrInvalidProfile, id, perm.ModuleID)
		}
		if _, seen := permSet[id]; seen {
			continue
		}
		permSet[id] = struct{}{}
		permissionIDs = append(permissionIDs, id)
	}

	profile := AccessProfile{
		ID:            uuid.NewString(),
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		PermissionIDs: permissionIDs,
		ModuleIDs:     moduleIDs,
		Restrictions:  strings.TrimSpace(in.Restrictions),
		Status:        StatusActive,
	}
	if err := s.store.Insert(ctx, profile); err != nil {
		return AccessProfile{}, err
	}
	return profile, nil
}

// GetProfile fetches a profile by id.
func (s *Service) GetProfile(ctx context.Context, id string) (AccessProfile, error) {
	return s.store.Get(ctx, id)
}

// ListProfiles returns all profiles.
func (s *Service) ListProfiles(ctx context.Context) ([]AccessProfile, error) {
	return s.store.List(ctx)
}

// DeleteProfile removes a profile. A profile with assigned users cannot be
// deleted until every assignment is removed; the store enforces this
// atomically.
func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// ListPermissionsByModule groups the permission catalog by module.
func (s *Service) ListPermissionsByModule() []ModulePermissions {
	return s.catalog.PermissionsByModule()
}

// AssignProfile maps a user to a profile (1:1 assignment; a previous
// assignment is replaced).
func (s *Service) AssignProfile(ctx context.Context, userID, profileID string) error {
	if _, err := s.store.Get(ctx, profileID); err != nil {
		return err
	}
	return s.store.AssignUser(ctx, userID, profileID)
}

// UnassignProfile removes a user's assignment.
func (s *Service) UnassignProfile(ctx context.Context, userID string) error {
	return s.store.UnassignUser(ctx, userID)
}

// HasPermission reports whether the user's assigned profile is active and
// grants the permission. Users without an assignment have no fine-grained
// permissions.
func (s *Service) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	profileID, err := s.store.ProfileIDForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return false, nil
		}
		return false, err
	}
	profile, err := s.store.Get(ctx, profileID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return false, nil
		}
		return false, err
	}
	if profile.Status != StatusActive {
		return false, nil
	}
	for _, id := range profile.PermissionIDs {
		if id == permission {
			return true, nil
		}
	}
	return false, nil
}
