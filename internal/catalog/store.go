package catalog

import (
	"context"
	"errors"
	"sync"
)

// Sentinel errors for profile operations.
var (
	// ErrProfileNotFound indicates no profile matches the id.
	ErrProfileNotFound = errors.New("catalog: profile not found")
	// ErrInvalidProfile indicates the profile violates a catalog invariant.
	ErrInvalidProfile = errors.New("catalog: invalid profile")
	// ErrProfileInUse indicates the profile still has assigned users.
	ErrProfileInUse = errors.New("catalog: profile has assigned users")
)

// ProfileStore persists access profiles and their 1:1 user assignments.
// AssignedUserCount on returned profiles is derived from assignments. Delete
// must fail with ErrProfileInUse while any assignment references the profile,
// atomically with respect to concurrent AssignUser calls.
type ProfileStore interface {
	Insert(ctx context.Context, profile AccessProfile) error
	Get(ctx context.Context, id string) (AccessProfile, error)
	List(ctx context.Context) ([]AccessProfile, error)
	Delete(ctx context.Context, id string) error
	AssignUser(ctx context.Context, userID, profileID string) error
	UnassignUser(ctx context.Context, userID string) error
	ProfileIDForUser(ctx context.Context, userID string) (string, error)
}

// MemoryStore is an in-process ProfileStore for tests and local development.
type MemoryStore struct {
	mu          sync.RWMutex
	profiles    map[string]AccessProfile
	assignments map[string]string // user id -> profile id
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:    make(map[string]AccessProfile),
		assignments: make(map[string]string),
	}
}

// Insert stores a new profile.
func (s *MemoryStore) Insert(ctx context.Context, profile AccessProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile
	return nil
}

// Get returns a profile with its derived assignment count.
func (s *MemoryStore) Get(ctx context.Context, id string) (AccessProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[id]
	if !ok {
		return AccessProfile{}, ErrProfileNotFound
	}
	profile.AssignedUserCount = s.countLocked(id)
	return profile, nil
}

// List returns all profiles with derived assignment counts.
func (s *MemoryStore) List(ctx context.Context) ([]AccessProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AccessProfile, 0, len(s.profiles))
	for id, profile := range s.profiles {
		profile.AssignedUserCount = s.countLocked(id)
		out = append(out, profile)
	}
	return out, nil
}

// Delete removes a profile, refusing while any assignment still points at it.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return ErrProfileNotFound
	}
	if s.countLocked(id) > 0 {
		return ErrProfileInUse
	}
	delete(s.profiles, id)
	return nil
}

// AssignUser maps a user to a profile, replacing any previous assignment.
func (s *MemoryStore) AssignUser(ctx context.Context, userID, profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profileID]; !ok {
		return ErrProfileNotFound
	}
	s.assignments[userID] = profileID
	return nil
}

// UnassignUser removes a user's assignment.
func (s *MemoryStore) UnassignUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assignments, userID)
	return nil
}

// ProfileIDForUser returns the assigned profile id for a user.
func (s *MemoryStore) ProfileIDForUser(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profileID, ok := s.assignments[userID]
	if !ok {
		return "", ErrProfileNotFound
	}
	return profileID, nil
}

func (s *MemoryStore) countLocked(profileID string) int {
	count := 0
	for _, assigned := range s.assignments {
		if assigned == profileID {
			count++
		}
	}
	return count
}

var _ ProfileStore = (*MemoryStore)(nil)
