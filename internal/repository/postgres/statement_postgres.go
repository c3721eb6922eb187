package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"statementapi/internal/model"
	"statementapi/internal/repository"
)

const statementColumns = `id, year, title, storage_path, size, content_type, created_at`

// StatementPostgres is a PostgreSQL implementation of repository.StatementRepository.
type StatementPostgres struct {
	db *sql.DB
}

// NewStatementPostgres creates a new StatementPostgres repository.
func NewStatementPostgres(db *sql.DB) *StatementPostgres {
	return &StatementPostgres{db: db}
}

var _ repository.StatementRepository = (*StatementPostgres)(nil)

func scanStatement(row rowScanner) (*model.Statement, error) {
	var s model.Statement
	if err := row.Scan(
		&s.ID,
		&s.Year,
		&s.Title,
		&s.StoragePath,
		&s.Size,
		&s.ContentType,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new statement row and returns the stored record.
func (r *StatementPostgres) Create(ctx context.Context, st *model.Statement) (*model.Statement, error) {
	const q = `
		INSERT INTO financial_statements (id, year, title, storage_path, size, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + statementColumns
	row := r.db.QueryRowContext(ctx, q,
		st.ID,
		st.Year,
		st.Title,
		st.StoragePath,
		st.Size,
		st.ContentType,
		st.CreatedAt,
	)
	out, err := scanStatement(row)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// FindByID fetches a single statement by its ID. Identifiers that are not
// UUIDs cannot exist and report sql.ErrNoRows without a round trip.
func (r *StatementPostgres) FindByID(ctx context.Context, id string) (*model.Statement, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, sql.ErrNoRows
	}
	const q = `SELECT ` + statementColumns + ` FROM financial_statements WHERE id = $1`
	return scanStatement(r.db.QueryRowContext(ctx, q, id))
}

// FindByPath fetches the statement stored under path.
func (r *StatementPostgres) FindByPath(ctx context.Context, path string) (*model.Statement, error) {
	const q = `SELECT ` + statementColumns + ` FROM financial_statements WHERE storage_path = $1`
	return scanStatement(r.db.QueryRowContext(ctx, q, path))
}

// List returns statements using LIMIT/OFFSET pagination and a total count.
// A zero Year matches every year.
func (r *StatementPostgres) List(ctx context.Context, sq repository.StatementQuery) (*repository.PageResult[model.Statement], error) {
	const qCount = `SELECT COUNT(*) FROM financial_statements WHERE ($1 = 0 OR year = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, sq.Year).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + statementColumns + `
		FROM financial_statements
		WHERE ($1 = 0 OR year = $1)
		ORDER BY year DESC, created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, sq.Year, sq.Limit, sq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Statement, 0)
	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Statement]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a statement by ID. It does not return an error if the row does not exist.
func (r *StatementPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM financial_statements WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
