package postgres

import (
	"context"
	"database/sql"

	"statementapi/internal/database"
	"statementapi/internal/model"
	"statementapi/internal/repository"
)

const accessRequestSelect = `
	SELECT ar.id, ar.user_id, u.email, u.name, ar.reason, ar.status, ar.reviewed_by, ar.reviewed_at, ar.created_at
	FROM access_requests ar
	JOIN users u ON u.id = ar.user_id
`

// AccessRequestPostgres is a PostgreSQL implementation of repository.AccessRequestRepository.
type AccessRequestPostgres struct {
	db *sql.DB
}

// NewAccessRequestPostgres creates a new AccessRequestPostgres repository.
func NewAccessRequestPostgres(db *sql.DB) *AccessRequestPostgres {
	return &AccessRequestPostgres{db: db}
}

var _ repository.AccessRequestRepository = (*AccessRequestPostgres)(nil)

func scanAccessRequest(row rowScanner) (*model.AccessRequest, error) {
	var (
		ar         model.AccessRequest
		status     string
		reviewedBy sql.NullString
		reviewedAt sql.NullTime
	)
	if err := row.Scan(
		&ar.ID,
		&ar.UserID,
		&ar.Email,
		&ar.Name,
		&ar.Reason,
		&status,
		&reviewedBy,
		&reviewedAt,
		&ar.CreatedAt,
	); err != nil {
		return nil, err
	}
	ar.Status = model.RequestStatus(status)
	if reviewedBy.Valid {
		s := reviewedBy.String
		ar.ReviewedBy = &s
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		ar.ReviewedAt = &t
	}
	return &ar, nil
}

// CreateWithUser inserts the user (role taken from u) and a pending request in one transaction.
func (r *AccessRequestPostgres) CreateWithUser(ctx context.Context, u *model.User, reason string) (*model.User, *model.AccessRequest, error) {
	var (
		user *model.User
		req  *model.AccessRequest
	)
	err := database.WithTx(ctx, r.db, nil, func(ctx context.Context, tx database.DBTX) error {
		var err error
		user, err = NewUserPostgres(tx).Create(ctx, u)
		if err != nil {
			return err
		}

		const q = `
			INSERT INTO access_requests (user_id, reason, status)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`
		req = &model.AccessRequest{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
			Reason: reason,
			Status: model.RequestPending,
		}
		return tx.QueryRowContext(ctx, q, user.ID, reason, string(model.RequestPending)).
			Scan(&req.ID, &req.CreatedAt)
	})
	if err != nil {
		return nil, nil, err
	}
	return user, req, nil
}

func (r *AccessRequestPostgres) FindByID(ctx context.Context, id string) (*model.AccessRequest, error) {
	return scanAccessRequest(r.db.QueryRowContext(ctx, accessRequestSelect+` WHERE ar.id = $1`, id))
}

// List returns requests oldest first so reviewers work the queue in order.
func (r *AccessRequestPostgres) List(ctx context.Context, aq repository.AccessRequestQuery) (*repository.PageResult[model.AccessRequest], error) {
	const qCount = `SELECT COUNT(*) FROM access_requests WHERE ($1 = '' OR status = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, string(aq.Status)).Scan(&total); err != nil {
		return nil, err
	}

	q := accessRequestSelect + `
		WHERE ($1 = '' OR ar.status = $1)
		ORDER BY ar.created_at ASC, ar.id ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, q, string(aq.Status), aq.Limit, aq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AccessRequest, 0)
	for rows.Next() {
		ar, err := scanAccessRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *ar)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.AccessRequest]{Items: items, Total: total}, nil
}

// Decide locks the request row, checks it is pending, records the decision
// and optionally promotes the requesting user, all in one transaction.
func (r *AccessRequestPostgres) Decide(ctx context.Context, d repository.Decision) (*model.AccessRequest, error) {
	err := database.WithTx(ctx, r.db, nil, func(ctx context.Context, tx database.DBTX) error {
		var (
			userID string
			status string
		)
		const qLock = `SELECT user_id, status FROM access_requests WHERE id = $1 FOR UPDATE`
		if err := tx.QueryRowContext(ctx, qLock, d.RequestID).Scan(&userID, &status); err != nil {
			return err
		}
		if model.RequestStatus(status) != model.RequestPending {
			return repository.ErrNotPending
		}

		const qUpdate = `
			UPDATE access_requests
			SET status = $2, reviewed_by = $3, reviewed_at = $4
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, qUpdate, d.RequestID, string(d.Status), d.ReviewerID, d.ReviewedAt); err != nil {
			return err
		}

		if d.PromoteTo != "" {
			return NewUserPostgres(tx).UpdateRole(ctx, userID, d.PromoteTo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, d.RequestID)
}
