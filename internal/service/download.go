package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"statementapi/internal/audit"
	"statementapi/internal/linktoken"
	"statementapi/internal/logging"
	"statementapi/internal/metrics"
	"statementapi/internal/model"
	"statementapi/internal/repository"
	"statementapi/internal/storage"
)

// DefaultClockSkew is how far in the future a link timestamp may lie.
const DefaultClockSkew = 5 * time.Minute

// DownloadOptions configures the download gate.
type DownloadOptions struct {
	Secret string
	// Window is how long after issuance a token is accepted.
	Window    time.Duration
	ClockSkew time.Duration
	// CacheMaxAge is sent for token and id downloads.
	CacheMaxAge time.Duration
	// LegacyPathOpen serves bare well-formed paths without a token.
	LegacyPathOpen bool
	// TrustedOrigins are the expected Referer origins for id downloads.
	TrustedOrigins []string
}

// DownloadRequest holds the raw query of a download call.
type DownloadRequest struct {
	ID    string
	Path  string
	Token string
	TS    string

	Referer string
	// AccessorID is the session user, empty for anonymous callers.
	AccessorID string
}

// Download is an authorized, open object ready to be streamed. The caller
// must close Body.
type Download struct {
	Body         io.ReadCloser
	Size         int64
	ContentType  string
	Filename     string
	DocumentID   string
	Mode         model.AccessMethod
	CacheControl string
}

// DownloadService authorizes download requests and opens the stored file.
type DownloadService interface {
	// Fetch resolves a public download by token (path+token+ts), by id, or by
	// legacy path, in that order.
	Fetch(ctx context.Context, req DownloadRequest) (*Download, error)
	// FetchAdmin resolves a download by id for an already authorized admin.
	FetchAdmin(ctx context.Context, id, accessorID string) (*Download, error)
	// AccessLogs returns a page of access records for a statement, newest first.
	AccessLogs(ctx context.Context, documentID string, limit, offset int) ([]model.AccessRecord, error)
}

type downloadService struct {
	statements repository.StatementRepository
	shares     repository.ShareLogRepository
	access     repository.AccessLogRepository
	store      storage.Storage
	recorder   *audit.Recorder
	metrics    *metrics.Metrics
	opts       DownloadOptions
	log        *zap.Logger
	now        func() time.Time
}

// NewDownloadService constructs a DownloadService.
func NewDownloadService(
	statements repository.StatementRepository,
	shares repository.ShareLogRepository,
	access repository.AccessLogRepository,
	store storage.Storage,
	recorder *audit.Recorder,
	m *metrics.Metrics,
	opts DownloadOptions,
	log *zap.Logger,
) DownloadService {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ClockSkew <= 0 {
		opts.ClockSkew = DefaultClockSkew
	}
	return &downloadService{
		statements: statements,
		shares:     shares,
		access:     access,
		store:      store,
		recorder:   recorder,
		metrics:    m,
		opts:       opts,
		log:        log.With(zap.String(logging.FieldComponent, "download")),
		now:        time.Now,
	}
}

// resolution is the outcome of authorizing a request: which object to serve
// and under which mode. Mode is set as soon as a mode is selected.
type resolution struct {
	mode       model.AccessMethod
	path       string
	documentID string
}

func (s *downloadService) Fetch(ctx context.Context, req DownloadRequest) (*Download, error) {
	var (
		res resolution
		err error
	)
	switch {
	case req.Token != "" && req.Path != "" && req.TS != "":
		res, err = s.resolveToken(ctx, req)
	case req.ID != "":
		res, err = s.resolveID(ctx, req.ID, model.AccessByID)
		if err == nil {
			s.checkReferer(req.Referer, res.documentID)
		}
	case req.Path != "":
		res, err = s.resolveLegacyPath(req.Path)
	default:
		s.metrics.Download("none", metrics.OutcomeRejected)
		return nil, ErrParamsRequired
	}
	if err != nil {
		s.finish(res, req.AccessorID, err)
		return nil, err
	}
	return s.open(ctx, res, req.AccessorID)
}

func (s *downloadService) FetchAdmin(ctx context.Context, id, accessorID string) (*Download, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	res, err := s.resolveID(ctx, id, model.AccessByAdmin)
	if err != nil {
		s.finish(res, accessorID, err)
		return nil, err
	}
	return s.open(ctx, res, accessorID)
}

func (s *downloadService) AccessLogs(ctx context.Context, documentID string, limit, offset int) ([]model.AccessRecord, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if _, err := s.statements.FindByID(ctx, documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return s.access.ListByDocument(ctx, documentID, repository.PageQuery{Limit: limit, Offset: offset})
}

func (s *downloadService) resolveToken(ctx context.Context, req DownloadRequest) (resolution, error) {
	res := resolution{mode: model.AccessByToken, path: req.Path}

	ts, err := strconv.ParseInt(req.TS, 10, 64)
	if err != nil {
		return res, ErrLinkExpired
	}
	// Only the canonical spelling is signed; "+17..." or "017..." would
	// otherwise make one token valid under several URLs.
	if strconv.FormatInt(ts, 10) != req.TS {
		return res, ErrInvalidLink
	}
	now := s.now()
	issued := time.Unix(ts, 0)
	if now.Sub(issued) > s.opts.Window {
		return res, ErrLinkExpired
	}
	if issued.Sub(now) > s.opts.ClockSkew {
		return res, ErrInvalidLink
	}
	if !linktoken.Verify(req.Token, req.Path, s.opts.Secret, ts) {
		return res, ErrInvalidLink
	}

	grant, err := s.shares.FindByTokenHash(ctx, linktoken.Fingerprint(req.Token))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// The share audit is best-effort; the formula and window already passed.
	case err != nil:
		return res, fmt.Errorf("lookup share grant: %w", err)
	case grant.Revoked():
		return res, ErrInvalidLink
	case now.After(grant.ExpiresAt):
		return res, ErrLinkExpired
	default:
		res.documentID = grant.DocumentID
	}

	if res.documentID == "" {
		st, err := s.statements.FindByPath(ctx, req.Path)
		switch {
		case err == nil:
			res.documentID = st.ID
		case !errors.Is(err, sql.ErrNoRows):
			s.log.Warn("statement lookup by path failed", zap.String(logging.FieldPath, req.Path), zap.Error(err))
		}
	}
	return res, nil
}

func (s *downloadService) resolveID(ctx context.Context, id string, mode model.AccessMethod) (resolution, error) {
	res := resolution{mode: mode}
	st, err := s.statements.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return res, ErrDocumentNotFound
		}
		return res, fmt.Errorf("find statement: %w", err)
	}
	if st.StoragePath == "" {
		return res, ErrDocumentNotFound
	}
	res.path = st.StoragePath
	res.documentID = st.ID
	return res, nil
}

func (s *downloadService) resolveLegacyPath(p string) (resolution, error) {
	res := resolution{mode: model.AccessByPath, path: p}
	if !ValidStoragePath(p) {
		return res, ErrInvalidPath
	}
	s.log.Warn("direct path access", zap.String(logging.FieldPath, p), zap.Bool("allowed", s.opts.LegacyPathOpen))
	if !s.opts.LegacyPathOpen {
		return res, ErrInvalidLink
	}
	return res, nil
}

// checkReferer logs id downloads whose Referer is not a trusted origin. It never blocks.
func (s *downloadService) checkReferer(referer, documentID string) {
	if referer == "" {
		s.log.Debug("id download without referer", zap.String(logging.FieldDocumentID, documentID))
		return
	}
	if trustedReferer(referer, s.opts.TrustedOrigins) {
		return
	}
	s.log.Warn("id download from untrusted referer",
		zap.String(logging.FieldDocumentID, documentID),
		zap.String("referer", referer),
	)
}

func trustedReferer(referer string, origins []string) bool {
	u, err := url.Parse(referer)
	if err != nil || u.Host == "" {
		return false
	}
	origin := u.Scheme + "://" + u.Host
	for _, o := range origins {
		if strings.EqualFold(strings.TrimRight(o, "/"), origin) {
			return true
		}
	}
	return false
}

func (s *downloadService) open(ctx context.Context, res resolution, accessorID string) (*Download, error) {
	body, info, err := s.store.Get(ctx, res.path)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			err = ErrFileNotFound
		} else {
			err = fmt.Errorf("%w: %v", ErrStorage, err)
		}
		s.finish(res, accessorID, err)
		return nil, err
	}
	s.finish(res, accessorID, nil)

	cache := "no-store"
	if res.mode == model.AccessByToken || res.mode == model.AccessByID {
		cache = "public, max-age=" + strconv.Itoa(int(s.opts.CacheMaxAge/time.Second))
	}
	return &Download{
		Body:         body,
		Size:         info.Size,
		ContentType:  ContentTypeFor(res.path),
		Filename:     DownloadFilename(res.documentID, res.path),
		DocumentID:   res.documentID,
		Mode:         res.mode,
		CacheControl: cache,
	}, nil
}

// finish records the attempt in the access audit and metrics.
func (s *downloadService) finish(res resolution, accessorID string, err error) {
	outcome := outcomeOf(err)
	s.metrics.Download(string(res.mode), outcome)

	if accessorID == "" {
		accessorID = model.AnonymousAccessor
	}
	s.recorder.RecordAccess(model.AccessRecord{
		DocumentID: res.documentID,
		Accessor:   accessorID,
		Path:       res.path,
		Method:     res.mode,
		Outcome:    outcome,
	})

	if err != nil && outcome == metrics.OutcomeError {
		s.log.Error("download failed",
			zap.String(logging.FieldMode, string(res.mode)),
			zap.String(logging.FieldPath, res.path),
			zap.Error(err),
		)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeServed
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrForbidden), errors.Is(err, ErrNotFound):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
