package catalog

import (
	"fmt"
	"sort"
)

// Catalog is the static permission/module model. It is loaded once at process
// start and read-only afterwards, so it is safe for concurrent use.
type Catalog struct {
	modules     []Module
	permissions []Permission
	moduleByID  map[string]Module
	permByID    map[string]Permission
}

// New builds a Catalog, verifying that every permission references an
// existing module.
func New(modules []Module, permissions []Permission) (*Catalog, error) {
	c := &Catalog{
		modules:     append([]Module(nil), modules...),
		permissions: append([]Permission(nil), permissions...),
		moduleByID:  make(map[string]Module, len(modules)),
		permByID:    make(map[string]Permission, len(permissions)),
	}
	for _, m := range c.modules {
		if _, ok := c.moduleByID[m.ID]; ok {
			return nil, fmt.Errorf("catalog: duplicate module %q", m.ID)
		}
		c.moduleByID[m.ID] = m
	}
	for _, p := range c.permissions {
		if _, ok := c.moduleByID[p.ModuleID]; !ok {
			return nil, fmt.Errorf("catalog: permission %q references unknown module %q", p.ID, p.ModuleID)
		}
		if _, ok := c.permByID[p.ID]; ok {
			return nil, fmt.Errorf("catalog: duplicate permission %q", p.ID)
		}
		c.permByID[p.ID] = p
	}
	return c, nil
}

// Default returns the clinic feature catalog.
func Default() *Catalog {
	modules := []Module{
		{ID: "patients", Name: "Patient Management"},
		{ID: "scheduling", Name: "Scheduling"},
		{ID: "records", Name: "Medical Records"},
		{ID: "prescriptions", Name: "Prescriptions"},
		{ID: "inventory", Name: "Inventory"},
		{ID: "pharmacy", Name: "Pharmacy"},
		{ID: "admin", Name: "Administration"},
	}
	permissions := []Permission{
		{ID: "patients.view", Name: "View patients", ModuleID: "patients"},
		{ID: "patients.edit", Name: "Edit patients", ModuleID: "patients"},
		{ID: "scheduling.view", Name: "View schedule", ModuleID: "scheduling"},
		{ID: "scheduling.manage", Name: "Manage appointments", ModuleID: "scheduling"},
		{ID: "records.view", Name: "View medical records", ModuleID: "records"},
		{ID: "records.edit", Name: "Edit medical records", ModuleID: "records"},
		{ID: "prescriptions.view", Name: "View prescriptions", ModuleID: "prescriptions"},
		{ID: "prescriptions.issue", Name: "Issue prescriptions", ModuleID: "prescriptions"},
		{ID: "inventory.view", Name: "View inventory", ModuleID: "inventory"},
		{ID: "inventory.adjust", Name: "Adjust inventory", ModuleID: "inventory"},
		{ID: "pharmacy.view", Name: "View pharmacy stock", ModuleID: "pharmacy"},
		{ID: "pharmacy.dispense", Name: "Dispense medication", ModuleID: "pharmacy"},
		{ID: PermProfilesView, Name: "View access profiles", ModuleID: "admin"},
		{ID: PermProfilesManage, Name: "Manage access profiles", ModuleID: "admin"},
	}
	c, err := New(modules, permissions)
	if err != nil {
		panic(err)
	}
	return c
}

// Modules returns a copy of the module list.
func (c *Catalog) Modules() []Module {
	return append([]Module(nil), c.modules...)
}

// Permissions returns a copy of the permission list.
func (c *Catalog) Permissions() []Permission {
	return append([]Permission(nil), c.permissions...)
}

// Module looks up a module by id.
func (c *Catalog) Module(id string) (Module, bool) {
	m, ok := c.moduleByID[id]
	return m, ok
}

// Permission looks up a permission by id.
func (c *Catalog) Permission(id string) (Permission, bool) {
	p, ok := c.permByID[id]
	return p, ok
}

// ModulePermissions groups a module with its permissions for display.
type ModulePermissions struct {
	Module      Module       `json:"module"`
	Permissions []Permission `json:"permissions"`
}

// PermissionsByModule groups the catalog by module, in stable module order.
func (c *Catalog) PermissionsByModule() []ModulePermissions {
	grouped := make(map[string][]Permission, len(c.moduleByID))
	for _, p := range c.permissions {
		grouped[p.ModuleID] = append(grouped[p.ModuleID], p)
	}
	out := make([]ModulePermissions, 0, len(c.modules))
	for _, m := range c.modules {
		perms := grouped[m.ID]
		sort.Slice(perms, func(i, j int) bool { return perms[i].ID < perms[j].ID })
		out = append(out, ModulePermissions{Module: m, Permissions: perms})
	}
	return out
}
