package postgres

import (
	"context"
	"database/sql"

	"statementapi/internal/database"
	"statementapi/internal/model"
	"statementapi/internal/repository"
)

const userColumns = `id, email, name, password_hash, role, created_at`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db database.DBTX
}

// NewUserPostgres creates a UserPostgres bound to a pool or a transaction.
func NewUserPostgres(db database.DBTX) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

// Create inserts a user. The database assigns ID and CreatedAt.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (email, name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns
	out, err := scanUser(r.db.QueryRowContext(ctx, q, u.Email, u.Name, u.PasswordHash, string(u.Role)))
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail matches emails case-insensitively.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// UpdateRole sets the role of an existing user. Unknown ids yield sql.ErrNoRows.
func (r *UserPostgres) UpdateRole(ctx context.Context, id string, role model.Role) error {
	const q = `UPDATE users SET role = $2 WHERE id = $1`
	return execOne(ctx, r.db, q, id, string(role))
}

func (r *UserPostgres) UpdatePassword(ctx context.Context, id string, hash string) error {
	const q = `UPDATE users SET password_hash = $2 WHERE id = $1`
	return execOne(ctx, r.db, q, id, hash)
}

// execOne runs an update that must touch exactly one row.
func execOne(ctx context.Context, db database.DBTX, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
