// Package identity models clinic accounts and resolves login identifiers.
package identity

import "fmt"

// Role is the closed set of account kinds.
type Role string

const (
	RolePatient      Role = "patient"
	RoleDoctor       Role = "doctor"
	RoleManager      Role = "manager"
	RoleReceptionist Role = "receptionist"
	RoleStock        Role = "stock"
	RolePharmacy     Role = "pharmacy"
)

// AllRoles lists every valid role.
func AllRoles() []Role {
	return []Role{RolePatient, RoleDoctor, RoleManager, RoleReceptionist, RoleStock, RolePharmacy}
}

// ParseRole converts a wire value into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleManager, RoleReceptionist, RoleStock, RolePharmacy:
		return Role(s), nil
	default:
		return "", fmt.Errorf("identity: unknown role %q", s)
	}
}

// Valid reports whether the role is a member of the closed set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Staff reports whether the role belongs to clinic personnel.
func (r Role) Staff() bool {
	switch r {
	case RolePatient:
		return false
	case RoleDoctor, RoleManager, RoleReceptionist, RoleStock, RolePharmacy:
		return true
	}
	return false
}

// Identity is an account record keyed by the provider-assigned subject id.
// NationalID holds exactly 11 digits once normalized.
type Identity struct {
	ID          string
	Email       string
	NationalID  string
	DisplayName string
	Role        Role
}
