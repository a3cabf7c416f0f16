package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for the directory.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByID fetches a directory record by provider subject id.
func (r *Repository) FindByID(ctx context.Context, id string) (*Identity, error) {
	return r.queryOne(ctx,
		`SELECT id, email, cpf, name, role FROM profiles WHERE id = $1`, id)
}

// FindByNationalID fetches a directory record by normalized national id.
func (r *Repository) FindByNationalID(ctx context.Context, nationalID string) (*Identity, error) {
	return r.queryOne(ctx,
		`SELECT id, email, cpf, name, role FROM profiles WHERE cpf = $1`, nationalID)
}

// Insert persists a new directory record.
func (r *Repository) Insert(ctx context.Context, identity Identity) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id, email, cpf, name, role) VALUES ($1, $2, $3, $4, $5)`,
		identity.ID, identity.Email, identity.NationalID, identity.DisplayName, string(identity.Role))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// Delete removes a directory record. Missing rows map to ErrNotFound.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) queryOne(ctx context.Context, query string, arg any) (*Identity, error) {
	var (
		ident Identity
		role  string
	)
	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&ident.ID, &ident.Email, &ident.NationalID, &ident.DisplayName, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	parsed, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	ident.Role = parsed
	return &ident, nil
}

var _ Directory = (*Repository)(nil)
