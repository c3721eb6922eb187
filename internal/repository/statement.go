package repository

import (
	"context"

	"statementapi/internal/model"
)

// StatementQuery filters statement listings. Year 0 means any year.
type StatementQuery struct {
	PageQuery
	Year int
}

// StatementRepository defines data access for financial statements using SQL queries only.
type StatementRepository interface {
	// Create inserts a new statement record and returns the stored row.
	Create(ctx context.Context, st *model.Statement) (*model.Statement, error)

	// FindByID returns a statement by its ID.
	FindByID(ctx context.Context, id string) (*model.Statement, error)

	// FindByPath returns the statement stored under the given storage path.
	FindByPath(ctx context.Context, path string) (*model.Statement, error)

	// List returns a page of statements, newest first, and the total count for the filter.
	List(ctx context.Context, q StatementQuery) (*PageResult[model.Statement], error)

	// Delete removes a statement by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
