package repository

import (
	"context"
	"time"

	"statementapi/internal/model"
)

// UserRepository defines data access for admin-area accounts.
type UserRepository interface {
	// Create inserts a user. A taken email yields ErrDuplicate.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateRole(ctx context.Context, id string, role model.Role) error
	UpdatePassword(ctx context.Context, id string, hash string) error
}

// AccessRequestQuery filters access request listings. An empty Status means any.
type AccessRequestQuery struct {
	PageQuery
	Status model.RequestStatus
}

// Decision is a transition applied to a pending access request.
type Decision struct {
	RequestID  string
	Status     model.RequestStatus
	ReviewerID string
	ReviewedAt time.Time
	// PromoteTo, when set, becomes the requesting user's role in the same transaction.
	PromoteTo model.Role
}

// AccessRequestRepository defines data access for the access-request workflow.
type AccessRequestRepository interface {
	// CreateWithUser inserts the user and its pending request atomically.
	CreateWithUser(ctx context.Context, u *model.User, reason string) (*model.User, *model.AccessRequest, error)
	FindByID(ctx context.Context, id string) (*model.AccessRequest, error)
	List(ctx context.Context, q AccessRequestQuery) (*PageResult[model.AccessRequest], error)
	// Decide applies d if the request is still pending, otherwise returns ErrNotPending.
	Decide(ctx context.Context, d Decision) (*model.AccessRequest, error)
}
