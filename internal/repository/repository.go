// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres). Missing rows are
// reported as sql.ErrNoRows so callers can translate them.
package repository

import "errors"

var (
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotPending is returned when an access request was already decided.
	ErrNotPending = errors.New("access request is not pending")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
