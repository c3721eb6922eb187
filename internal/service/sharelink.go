package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"statementapi/internal/audit"
	"statementapi/internal/linktoken"
	"statementapi/internal/logging"
	"statementapi/internal/metrics"
	"statementapi/internal/model"
	"statementapi/internal/repository"
)

// DownloadPath is the public route that validates share links.
const DownloadPath = "/api/download-financial-statement"

// ExpiresAtLayout is the ISO-8601 form used for expiresAt in responses.
const ExpiresAtLayout = "2006-01-02T15:04:05.000Z07:00"

// LinkOptions configures share-link issuance and validation.
type LinkOptions struct {
	Secret     string
	DefaultTTL time.Duration
	MaxTTL     time.Duration
	// Window is the validation window and the upper bound on any link's lifetime.
	Window time.Duration
	// BaseURL overrides the request origin when building share URLs.
	BaseURL string
}

// IssueInput is a request to share one statement.
type IssueInput struct {
	DocumentID string
	// ExpiresIn is the requested lifetime in seconds; nil selects the default.
	ExpiresIn *int64
	IssuerID  string
	// RequestBaseURL is the scheme and host the request arrived on.
	RequestBaseURL string
}

// IssuedLink is a share URL and the moment it stops working.
type IssuedLink struct {
	URL       string
	ExpiresAt time.Time
}

// LinkService issues share links and manages the grants behind them.
type LinkService interface {
	Issue(ctx context.Context, in IssueInput) (*IssuedLink, error)
	// ShareLinks lists grants issued for a statement, newest first.
	ShareLinks(ctx context.Context, documentID string) ([]model.ShareRecord, error)
	// Revoke disables a grant. Revoking twice is not an error.
	Revoke(ctx context.Context, shareID string) (*model.ShareRecord, error)
}

type linkService struct {
	statements repository.StatementRepository
	shares     repository.ShareLogRepository
	recorder   *audit.Recorder
	metrics    *metrics.Metrics
	opts       LinkOptions
	log        *zap.Logger
	now        func() time.Time
}

// NewLinkService constructs a LinkService.
func NewLinkService(
	statements repository.StatementRepository,
	shares repository.ShareLogRepository,
	recorder *audit.Recorder,
	m *metrics.Metrics,
	opts LinkOptions,
	log *zap.Logger,
) LinkService {
	if log == nil {
		log = zap.NewNop()
	}
	return &linkService{
		statements: statements,
		shares:     shares,
		recorder:   recorder,
		metrics:    m,
		opts:       opts,
		log:        log.With(zap.String(logging.FieldComponent, "links")),
		now:        time.Now,
	}
}

func (s *linkService) ttl(expiresIn *int64) (time.Duration, error) {
	ttl := s.opts.DefaultTTL
	if expiresIn != nil {
		secs := *expiresIn
		if secs < 1 || secs > int64(s.opts.MaxTTL/time.Second) {
			return 0, ErrInvalidExpiration
		}
		ttl = time.Duration(secs) * time.Second
	}
	return min(ttl, s.opts.Window), nil
}

func (s *linkService) Issue(ctx context.Context, in IssueInput) (*IssuedLink, error) {
	if in.IssuerID == "" {
		return nil, ErrNoSession
	}
	if in.DocumentID == "" {
		return nil, ErrDocumentIDRequired
	}
	ttl, err := s.ttl(in.ExpiresIn)
	if err != nil {
		return nil, err
	}

	st, err := s.statements.FindByID(ctx, in.DocumentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("find statement: %w", err)
	}
	if st.StoragePath == "" {
		return nil, ErrDocumentNotFound
	}

	issued := s.now().Truncate(time.Second)
	issuedAt := issued.Unix()
	expiresAt := issued.Add(ttl).UTC()
	token := linktoken.Generate(st.StoragePath, s.opts.Secret, issuedAt)

	s.recorder.RecordShare(model.ShareRecord{
		DocumentID: st.ID,
		IssuerID:   in.IssuerID,
		TokenHash:  linktoken.Fingerprint(token),
		IssuedAt:   issued.UTC(),
		ExpiresAt:  expiresAt,
	})
	s.metrics.LinkIssued()

	base := s.opts.BaseURL
	if base == "" {
		base = in.RequestBaseURL
	}
	q := url.Values{}
	q.Set("path", st.StoragePath)
	q.Set("token", token)
	q.Set("ts", strconv.FormatInt(issuedAt, 10))

	s.log.Info("share link issued",
		zap.String(logging.FieldDocumentID, st.ID),
		zap.String(logging.FieldUserID, in.IssuerID),
		zap.Time("expires_at", expiresAt),
	)
	return &IssuedLink{URL: base + DownloadPath + "?" + q.Encode(), ExpiresAt: expiresAt}, nil
}

func (s *linkService) ShareLinks(ctx context.Context, documentID string) ([]model.ShareRecord, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.statements.FindByID(ctx, documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return s.shares.ListByDocument(ctx, documentID)
}

func (s *linkService) Revoke(ctx context.Context, shareID string) (*model.ShareRecord, error) {
	if shareID == "" {
		return nil, ErrIDRequired
	}
	if err := s.shares.Revoke(ctx, shareID, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShareLinkNotFound
		}
		return nil, fmt.Errorf("revoke share link: %w", err)
	}
	rec, err := s.shares.FindByID(ctx, shareID)
	if err != nil {
		return nil, fmt.Errorf("reload share link: %w", err)
	}
	s.log.Info("share link revoked",
		zap.String("share_id", shareID),
		zap.String(logging.FieldDocumentID, rec.DocumentID),
	)
	return rec, nil
}
