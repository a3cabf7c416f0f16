// Package catalog holds the permission/module catalog and the access profile
// administration operations.
package catalog

import "fmt"

// Module is a feature area grouping permissions.
type Module struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Permission is an atomic capability belonging to exactly one module.
type Permission struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ModuleID string `json:"moduleId"`
}

// ProfileStatus is the lifecycle state of an access profile.
type ProfileStatus string

const (
	StatusActive    ProfileStatus = "active"
	StatusInactive  ProfileStatus = "inactive"
	StatusSuspended ProfileStatus = "suspended"
)

// ParseProfileStatus converts a wire value into a ProfileStatus.
func ParseProfileStatus(s string) (ProfileStatus, error) {
	switch ProfileStatus(s) {
	case StatusActive, StatusInactive, StatusSuspended:
		return ProfileStatus(s), nil
	default:
		return "", fmt.Errorf("catalog: unknown profile status %q", s)
	}
}

// AccessProfile bundles permissions and modules into a named access level.
// AssignedUserCount is derived from assignments, never set directly.
type AccessProfile struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	PermissionIDs     []string      `json:"permissionIds"`
	ModuleIDs         []string      `json:"moduleIds"`
	Restrictions      string        `json:"restrictions"`
	Status            ProfileStatus `json:"status"`
	AssignedUserCount int           `json:"assignedUserCount"`
}

// Permission ids used by the admin surface.
const (
	PermProfilesView   = "admin.profiles.view"
	PermProfilesManage = "admin.profiles.manage"
)
