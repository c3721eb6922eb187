package postgres

import (
	"context"
	"database/sql"
	"time"

	"statementapi/internal/model"
	"statementapi/internal/repository"
)

const shareColumns = `id, document_id, issuer_id, token_hash, issued_at, expires_at, revoked_at, created_at`

// ShareLogPostgres is a PostgreSQL implementation of repository.ShareLogRepository.
type ShareLogPostgres struct {
	db *sql.DB
}

// NewShareLogPostgres creates a new ShareLogPostgres repository.
func NewShareLogPostgres(db *sql.DB) *ShareLogPostgres {
	return &ShareLogPostgres{db: db}
}

var _ repository.ShareLogRepository = (*ShareLogPostgres)(nil)

func scanShare(row rowScanner) (*model.ShareRecord, error) {
	var (
		rec     model.ShareRecord
		revoked sql.NullTime
	)
	if err := row.Scan(
		&rec.ID,
		&rec.DocumentID,
		&rec.IssuerID,
		&rec.TokenHash,
		&rec.IssuedAt,
		&rec.ExpiresAt,
		&revoked,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	if revoked.Valid {
		t := revoked.Time
		rec.RevokedAt = &t
	}
	return &rec, nil
}

// Create appends a share record. The database assigns ID and CreatedAt.
func (r *ShareLogPostgres) Create(ctx context.Context, rec *model.ShareRecord) error {
	const q = `
		INSERT INTO document_share_logs (document_id, issuer_id, token_hash, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, q,
		rec.DocumentID,
		rec.IssuerID,
		rec.TokenHash,
		rec.IssuedAt,
		rec.ExpiresAt,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (r *ShareLogPostgres) FindByID(ctx context.Context, id string) (*model.ShareRecord, error) {
	const q = `SELECT ` + shareColumns + ` FROM document_share_logs WHERE id = $1`
	return scanShare(r.db.QueryRowContext(ctx, q, id))
}

// FindByTokenHash returns the grant for a token. Links issued for the same
// path within one second share a token, so a revoked twin wins over an active one.
func (r *ShareLogPostgres) FindByTokenHash(ctx context.Context, hash string) (*model.ShareRecord, error) {
	const q = `
		SELECT ` + shareColumns + `
		FROM document_share_logs
		WHERE token_hash = $1
		ORDER BY (revoked_at IS NOT NULL) DESC, created_at DESC
		LIMIT 1
	`
	return scanShare(r.db.QueryRowContext(ctx, q, hash))
}

func (r *ShareLogPostgres) ListByDocument(ctx context.Context, documentID string) ([]model.ShareRecord, error) {
	const q = `
		SELECT ` + shareColumns + `
		FROM document_share_logs
		WHERE document_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ShareRecord, 0)
	for rows.Next() {
		rec, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	return items, rows.Err()
}

// Revoke stamps revoked_at once on the grant and on every grant carrying the
// same token. Revoking twice keeps the first timestamp. Unknown ids yield
// sql.ErrNoRows.
func (r *ShareLogPostgres) Revoke(ctx context.Context, id string, at time.Time) error {
	const q = `
		UPDATE document_share_logs
		SET revoked_at = COALESCE(revoked_at, $2)
		WHERE token_hash = (SELECT token_hash FROM document_share_logs WHERE id = $1)
	`
	res, err := r.db.ExecContext(ctx, q, id, at)
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

// AccessLogPostgres is a PostgreSQL implementation of repository.AccessLogRepository.
type AccessLogPostgres struct {
	db *sql.DB
}

// NewAccessLogPostgres creates a new AccessLogPostgres repository.
func NewAccessLogPostgres(db *sql.DB) *AccessLogPostgres {
	return &AccessLogPostgres{db: db}
}

var _ repository.AccessLogRepository = (*AccessLogPostgres)(nil)

// Create appends an access record. DocumentID may be empty for unmatched paths.
func (r *AccessLogPostgres) Create(ctx context.Context, rec *model.AccessRecord) error {
	const q = `
		INSERT INTO document_access_logs (document_id, accessor, path, method, outcome)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, q,
		nullString(rec.DocumentID),
		rec.Accessor,
		rec.Path,
		string(rec.Method),
		rec.Outcome,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (r *AccessLogPostgres) ListByDocument(ctx context.Context, documentID string, pq repository.PageQuery) ([]model.AccessRecord, error) {
	const q = `
		SELECT id, document_id, accessor, path, method, outcome, created_at
		FROM document_access_logs
		WHERE document_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, q, documentID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AccessRecord, 0)
	for rows.Next() {
		var (
			rec    model.AccessRecord
			docID  sql.NullString
			method string
		)
		if err := rows.Scan(&rec.ID, &docID, &rec.Accessor, &rec.Path, &method, &rec.Outcome, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.DocumentID = docID.String
		rec.Method = model.AccessMethod(method)
		items = append(items, rec)
	}
	return items, rows.Err()
}
