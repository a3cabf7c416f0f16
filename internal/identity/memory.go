package identity

import (
	"context"
	"sync"
)

// MemoryDirectory is an in-process Directory used by tests and local
// development. All methods are safe for concurrent use.
type MemoryDirectory struct {
	mu      sync.RWMutex
	byID    map[string]Identity
	failing bool
}

// NewMemoryDirectory constructs an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{byID: make(map[string]Identity)}
}

// FailInserts forces subsequent Insert calls to fail, simulating a directory
// outage after the provider identity was already created.
func (d *MemoryDirectory) FailInserts(fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failing = fail
}

// FindByID returns the record with the given subject id.
func (d *MemoryDirectory) FindByID(ctx context.Context, id string) (*Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	record, ok := d.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := record
	return &out, nil
}

// FindByNationalID returns the record with the given normalized national id.
func (d *MemoryDirectory) FindByNationalID(ctx context.Context, nationalID string) (*Identity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, record := range d.byID {
		if record.NationalID == nationalID {
			out := record
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// Insert stores a new record, rejecting duplicate ids, emails or national ids.
func (d *MemoryDirectory) Insert(ctx context.Context, identity Identity) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failing {
		return context.DeadlineExceeded
	}
	if _, ok := d.byID[identity.ID]; ok {
		return ErrDuplicate
	}
	for _, record := range d.byID {
		if record.Email == identity.Email || record.NationalID == identity.NationalID {
			return ErrDuplicate
		}
	}
	d.byID[identity.ID] = identity
	return nil
}

// Delete removes a record.
func (d *MemoryDirectory) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byID[id]; !ok {
		return ErrNotFound
	}
	delete(d.byID, id)
	return nil
}

var _ Directory = (*MemoryDirectory)(nil)
