package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for access profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `p.id, p.name, p.description, p.permission_ids, p.module_ids, p.restrictions, p.status,
	(SELECT COUNT(*) FROM profile_assignments a WHERE a.profile_id = p.id) AS assigned`

// Insert persists a new profile.
func (r *Repository) Insert(ctx context.Context, profile AccessProfile) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO access_profiles (id, name, description, permission_ids, module_ids, restrictions, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		profile.ID, profile.Name, profile.Description,
		profile.PermissionIDs, profile.ModuleIDs, profile.Restrictions, string(profile.Status))
	return err
}

// Get fetches a profile by id, with its derived assignment count.
func (r *Repository) Get(ctx context.Context, id string) (AccessProfile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM access_profiles p WHERE p.id = $1`, id)
	return scanProfile(row)
}

// List returns all profiles ordered by name.
func (r *Repository) List(ctx context.Context) ([]AccessProfile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM access_profiles p ORDER BY p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var profiles []AccessProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// Delete removes a profile by id. The guard against assigned users lives in
// the statement itself so a concurrent assignment cannot slip between a
// count check and the delete.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM access_profiles
		 WHERE id = $1
		   AND NOT EXISTS (SELECT 1 FROM profile_assignments WHERE profile_id = $1)`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM access_profiles WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrProfileInUse
		}
		return ErrProfileNotFound
	}
	return nil
}

// AssignUser upserts the user's single profile assignment.
func (r *Repository) AssignUser(ctx context.Context, userID, profileID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profile_assignments (user_id, profile_id) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET profile_id = EXCLUDED.profile_id`,
		userID, profileID)
	return err
}

// UnassignUser drops the user's assignment.
func (r *Repository) UnassignUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM profile_assignments WHERE user_id = $1`, userID)
	return err
}

// ProfileIDForUser returns the assigned profile id for a user.
func (r *Repository) ProfileIDForUser(ctx context.Context, userID string) (string, error) {
	var profileID string
	err := r.pool.QueryRow(ctx,
		`SELECT profile_id FROM profile_assignments WHERE user_id = $1`, userID).Scan(&profileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrProfileNotFound
		}
		return "", err
	}
	return profileID, nil
}

func scanProfile(row pgx.Row) (AccessProfile, error) {
	var (
		profile AccessProfile
		status  string
	)
	err := row.Scan(&profile.ID, &profile.Name, &profile.Description,
		&profile.PermissionIDs, &profile.ModuleIDs, &profile.Restrictions,
		&status, &profile.AssignedUserCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccessProfile{}, ErrProfileNotFound
		}
		return AccessProfile{}, err
	}
	parsed, err := ParseProfileStatus(status)
	if err != nil {
		return AccessProfile{}, err
	}
	profile.Status = parsed
	return profile, nil
}

var _ ProfileStore = (*Repository)(nil)
