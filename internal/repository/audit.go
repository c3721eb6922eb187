package repository

import (
	"context"
	"time"

	"statementapi/internal/model"
)

// ShareLogRepository stores issued share links. Rows are append-only except
// for the revocation timestamp.
type ShareLogRepository interface {
	Create(ctx context.Context, rec *model.ShareRecord) error
	FindByID(ctx context.Context, id string) (*model.ShareRecord, error)
	// FindByTokenHash returns the grant issued with the given token fingerprint,
	// preferring a revoked one when several grants share the token.
	FindByTokenHash(ctx context.Context, hash string) (*model.ShareRecord, error)
	ListByDocument(ctx context.Context, documentID string) ([]model.ShareRecord, error)
	// Revoke stamps revoked_at, if not already set, on the grant and on every
	// grant sharing its token.
	Revoke(ctx context.Context, id string, at time.Time) error
}

// AccessLogRepository stores download attempts. Rows are append-only.
type AccessLogRepository interface {
	Create(ctx context.Context, rec *model.AccessRecord) error
	ListByDocument(ctx context.Context, documentID string, pq PageQuery) ([]model.AccessRecord, error)
}
