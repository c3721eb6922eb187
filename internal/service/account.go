package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"statementapi/internal/auth"
	"statementapi/internal/logging"
	"statementapi/internal/model"
	"statementapi/internal/notify"
	"statementapi/internal/repository"
)

// notifyTimeout bounds a decision mail.
const notifyTimeout = 10 * time.Second

// RegisterInput is a request for admin access from a new account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Reason   string
}

// Session is a signed-in user and the bearer token proving it.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// AccessRequestListResult is the service-level DTO for paginated access requests.
type AccessRequestListResult struct {
	Items []model.AccessRequest `json:"data"`
	Total int                   `json:"total"`
}

// AccountService covers sign-in and the access-request workflow.
type AccountService interface {
	// Register creates a pending user together with a pending access request.
	Register(ctx context.Context, in RegisterInput) (*model.AccessRequest, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	// Authenticate verifies a session token and loads the current user row,
	// so the role used for authorization is always the stored one.
	Authenticate(ctx context.Context, token string) (*model.User, error)

	ListRequests(ctx context.Context, status string, limit, offset int) (*AccessRequestListResult, error)
	// Approve marks a pending request approved and promotes its user to admin.
	Approve(ctx context.Context, requestID, reviewerID string) (*model.AccessRequest, error)
	// Reject marks a pending request rejected. The user keeps the pending role.
	Reject(ctx context.Context, requestID, reviewerID string) (*model.AccessRequest, error)

	// EnsureSuperAdmin creates or promotes the bootstrap account.
	EnsureSuperAdmin(ctx context.Context, email, password string) (*model.User, error)
}

type accountService struct {
	users    repository.UserRepository
	requests repository.AccessRequestRepository
	sessions *auth.SessionManager
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

// NewAccountService constructs an AccountService.
func NewAccountService(
	users repository.UserRepository,
	requests repository.AccessRequestRepository,
	sessions *auth.SessionManager,
	notifier notify.Notifier,
	log *zap.Logger,
) AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &accountService{
		users:    users,
		requests: requests,
		sessions: sessions,
		notifier: notifier,
		log:      log.With(zap.String(logging.FieldComponent, "accounts")),
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *accountService) Register(ctx context.Context, in RegisterInput) (*model.AccessRequest, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Email:        normalizeEmail(in.Email),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Role:         model.RolePending,
	}
	user, req, err := s.requests.CreateWithUser(ctx, u, strings.TrimSpace(in.Reason))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create access request: %w", err)
	}
	s.log.Info("access requested", zap.String(logging.FieldUserID, user.ID), zap.String("request_id", req.ID))
	return req, nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.sessions.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *accountService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	userID, err := s.sessions.Parse(token)
	if err != nil {
		return nil, ErrNoSession
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return u, nil
}

func (s *accountService) ListRequests(ctx context.Context, status string, limit, offset int) (*AccessRequestListResult, error) {
	st := model.RequestStatus(status)
	if st != "" && !st.Valid() {
		return nil, ErrInvalidStatus
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.requests.List(ctx, repository.AccessRequestQuery{
		PageQuery: repository.PageQuery{Limit: limit, Offset: offset},
		Status:    st,
	})
	if err != nil {
		return nil, err
	}
	return &AccessRequestListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *accountService) Approve(ctx context.Context, requestID, reviewerID string) (*model.AccessRequest, error) {
	return s.decide(ctx, repository.Decision{
		RequestID:  requestID,
		Status:     model.RequestApproved,
		ReviewerID: reviewerID,
		PromoteTo:  model.RoleAdmin,
	})
}

func (s *accountService) Reject(ctx context.Context, requestID, reviewerID string) (*model.AccessRequest, error) {
	return s.decide(ctx, repository.Decision{
		RequestID:  requestID,
		Status:     model.RequestRejected,
		ReviewerID: reviewerID,
	})
}

func (s *accountService) decide(ctx context.Context, d repository.Decision) (*model.AccessRequest, error) {
	if d.RequestID == "" {
		return nil, ErrIDRequired
	}
	if d.ReviewerID == "" {
		return nil, ErrNoSession
	}
	d.ReviewedAt = s.now().UTC()

	req, err := s.requests.Decide(ctx, d)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRequestNotFound
		case errors.Is(err, repository.ErrNotPending):
			return nil, ErrAlreadyDecided
		}
		return nil, fmt.Errorf("decide access request: %w", err)
	}

	s.log.Info("access request decided",
		zap.String("request_id", req.ID),
		zap.String("status", string(req.Status)),
		zap.String(logging.FieldUserID, d.ReviewerID),
	)

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.AccessRequestDecided(nctx, *req); err != nil {
		s.log.Warn("decision notification failed", zap.String("request_id", req.ID), zap.Error(err))
	}
	return req, nil
}

func (s *accountService) EnsureSuperAdmin(ctx context.Context, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: bootstrap email and password are required", ErrBadRequest)
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		created, err := s.users.Create(ctx, &model.User{
			Email:        email,
			Name:         "Super Admin",
			PasswordHash: hash,
			Role:         model.RoleSuperAdmin,
		})
		if err != nil {
			return nil, fmt.Errorf("create super admin: %w", err)
		}
		s.log.Info("super admin created", zap.String(logging.FieldUserID, created.ID))
		return created, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find super admin: %w", err)
	}

	if u.Role != model.RoleSuperAdmin {
		if err := s.users.UpdateRole(ctx, u.ID, model.RoleSuperAdmin); err != nil {
			return nil, fmt.Errorf("promote super admin: %w", err)
		}
		u.Role = model.RoleSuperAdmin
		s.log.Info("super admin promoted", zap.String(logging.FieldUserID, u.ID))
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
			return nil, fmt.Errorf("reset super admin password: %w", err)
		}
		u.PasswordHash = hash
	}
	return u, nil
}
