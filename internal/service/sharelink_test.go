package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strconv"
	"testing"
	"time"

	"statementapi/internal/audit"
	"statementapi/internal/linktoken"
	"statementapi/internal/model"
	repoMocks "statementapi/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type linkFixture struct {
	statements *repoMocks.MockStatementRepository
	shares     *repoMocks.MockShareLogRepository
	recorder   *audit.Recorder
	svc        *linkService
}

func newLinkFixture(opts LinkOptions) *linkFixture {
	f := &linkFixture{
		statements: new(repoMocks.MockStatementRepository),
		shares:     new(repoMocks.MockShareLogRepository),
	}
	f.recorder = audit.NewRecorder(f.shares, new(repoMocks.MockAccessLogRepository), nil)
	f.svc = NewLinkService(f.statements, f.shares, f.recorder, newTestMetrics(), opts, nil).(*linkService)
	f.svc.now = fixedClock(testNow)
	return f
}

func int64Ptr(v int64) *int64 { return &v }

func TestLinkService_Issue(t *testing.T) {
	ctx := context.Background()
	const path = "2024/2024_abcde.pdf"
	doc := &model.Statement{ID: "doc-1", StoragePath: path}

	t.Run("happy path", func(t *testing.T) {
		f := newLinkFixture(testLinkOptions())
		wantToken := linktoken.Generate(path, testSecret, testNow.Unix())

		f.statements.On("FindByID", ctx, "doc-1").Return(doc, nil)
		f.shares.On("Create", mock.Anything, mock.MatchedBy(func(rec *model.ShareRecord) bool {
			return rec.DocumentID == "doc-1" &&
				rec.IssuerID == "admin-1" &&
				rec.TokenHash == linktoken.Fingerprint(wantToken) &&
				rec.IssuedAt.Equal(testNow) &&
				rec.ExpiresAt.Equal(testNow.Add(time.Hour))
		})).Return(nil).Once()

		link, err := f.svc.Issue(ctx, IssueInput{DocumentID: "doc-1", ExpiresIn: int64Ptr(3600), IssuerID: "admin-1"})
		require.NoError(t, err)
		f.recorder.Wait()

		want := "https://example.org/api/download-financial-statement?path=2024%2F2024_abcde.pdf&token=" +
			wantToken + "&ts=" + strconv.FormatInt(testNow.Unix(), 10)
		assert.Equal(t, want, link.URL)
		assert.Equal(t, testNow.Add(time.Hour), link.ExpiresAt)
		assert.Equal(t, time.UTC, link.ExpiresAt.Location())
		f.statements.AssertExpectations(t)
		f.shares.AssertExpectations(t)
	})

	t.Run("lifetime is bounded by the validation window", func(t *testing.T) {
		tests := []struct {
			name      string
			expiresIn *int64
			want      time.Duration
		}{
			{"default ttl", nil, time.Hour},
			{"shorter than window", int64Ptr(600), 10 * time.Minute},
			{"thirty days", int64Ptr(30 * 24 * 3600), time.Hour},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newLinkFixture(testLinkOptions())
				f.statements.On("FindByID", ctx, "doc-1").Return(doc, nil)
				f.shares.On("Create", mock.Anything, mock.Anything).Return(nil)

				link, err := f.svc.Issue(ctx, IssueInput{DocumentID: "doc-1", ExpiresIn: tt.expiresIn, IssuerID: "admin-1"})
				require.NoError(t, err)
				f.recorder.Wait()
				assert.Equal(t, testNow.Add(tt.want), link.ExpiresAt)
			})
		}
	})

	t.Run("request origin is used without a configured base url", func(t *testing.T) {
		opts := testLinkOptions()
		opts.BaseURL = ""
		f := newLinkFixture(opts)
		f.statements.On("FindByID", ctx, "doc-1").Return(doc, nil)
		f.shares.On("Create", mock.Anything, mock.Anything).Return(nil)

		link, err := f.svc.Issue(ctx, IssueInput{DocumentID: "doc-1", IssuerID: "admin-1", RequestBaseURL: "http://localhost:8080"})
		require.NoError(t, err)
		f.recorder.Wait()

		u, err := url.Parse(link.URL)
		require.NoError(t, err)
		assert.Equal(t, "localhost:8080", u.Host)
		assert.Equal(t, DownloadPath, u.Path)
		assert.Equal(t, path, u.Query().Get("path"))
	})

	t.Run("audit failure does not fail issuance", func(t *testing.T) {
		f := newLinkFixture(testLinkOptions())
		f.statements.On("FindByID", ctx, "doc-1").Return(doc, nil)
		f.shares.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

		link, err := f.svc.Issue(ctx, IssueInput{DocumentID: "doc-1", IssuerID: "admin-1"})
		f.recorder.Wait()

		assert.NoError(t, err)
		assert.NotEmpty(t, link.URL)
		f.shares.AssertExpectations(t)
	})

	errCases := []struct {
		name    string
		in      IssueInput
		setup   func(f *linkFixture)
		wantErr error
	}{
		{"no session", IssueInput{DocumentID: "doc-1"}, func(*linkFixture) {}, ErrNoSession},
		{"missing document id", IssueInput{IssuerID: "admin-1"}, func(*linkFixture) {}, ErrDocumentIDRequired},
		{"zero expiration", IssueInput{DocumentID: "doc-1", IssuerID: "a", ExpiresIn: int64Ptr(0)}, func(*linkFixture) {}, ErrInvalidExpiration},
		{"negative expiration", IssueInput{DocumentID: "doc-1", IssuerID: "a", ExpiresIn: int64Ptr(-5)}, func(*linkFixture) {}, ErrInvalidExpiration},
		{"expiration above maximum", IssueInput{DocumentID: "doc-1", IssuerID: "a", ExpiresIn: int64Ptr(720*3600 + 1)}, func(*linkFixture) {}, ErrInvalidExpiration},
		{
			"document not found",
			IssueInput{DocumentID: "doc-1", IssuerID: "a"},
			func(f *linkFixture) { f.statements.On("FindByID", ctx, "doc-1").Return(nil, sql.ErrNoRows) },
			ErrDocumentNotFound,
		},
		{
			"empty storage path",
			IssueInput{DocumentID: "doc-1", IssuerID: "a"},
			func(f *linkFixture) { f.statements.On("FindByID", ctx, "doc-1").Return(&model.Statement{ID: "doc-1"}, nil) },
			ErrDocumentNotFound,
		},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			f := newLinkFixture(testLinkOptions())
			tt.setup(f)

			link, err := f.svc.Issue(ctx, tt.in)
			f.recorder.Wait()

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, link)
			f.shares.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("repository failure is not a client error", func(t *testing.T) {
		f := newLinkFixture(testLinkOptions())
		f.statements.On("FindByID", ctx, "doc-1").Return(nil, errors.New("conn reset"))

		_, err := f.svc.Issue(ctx, IssueInput{DocumentID: "doc-1", IssuerID: "a"})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrBadRequest)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestLinkService_Issue_Repeated(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(testLinkOptions())
	f.svc.now = stepClock(testNow)

	f.statements.On("FindByID", ctx, "doc-1").Return(&model.Statement{ID: "doc-1", StoragePath: "2024/2024_abcde.pdf"}, nil)
	f.shares.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()

	first, err := f.svc.Issue(ctx, IssueInput{DocumentID: "doc-1", IssuerID: "admin-1"})
	require.NoError(t, err)
	second, err := f.svc.Issue(ctx, IssueInput{DocumentID: "doc-1", IssuerID: "admin-1"})
	require.NoError(t, err)
	f.recorder.Wait()

	u1, _ := url.Parse(first.URL)
	u2, _ := url.Parse(second.URL)
	assert.NotEqual(t, u1.Query().Get("token"), u2.Query().Get("token"))
	assert.NotEqual(t, u1.Query().Get("ts"), u2.Query().Get("ts"))
	f.shares.AssertNumberOfCalls(t, "Create", 2)
}

func TestLinkService_ShareLinks(t *testing.T) {
	ctx := context.Background()
	f := newLinkFixture(testLinkOptions())

	recs := []model.ShareRecord{{ID: "s1", DocumentID: "doc-1"}}
	f.statements.On("FindByID", ctx, "doc-1").Return(&model.Statement{ID: "doc-1"}, nil)
	f.statements.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
	f.shares.On("ListByDocument", ctx, "doc-1").Return(recs, nil)

	got, err := f.svc.ShareLinks(ctx, "doc-1")
	assert.NoError(t, err)
	assert.Equal(t, recs, got)

	_, err = f.svc.ShareLinks(ctx, "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = f.svc.ShareLinks(ctx, "")
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestLinkService_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes and returns the record", func(t *testing.T) {
		f := newLinkFixture(testLinkOptions())
		revokedAt := testNow
		f.shares.On("Revoke", ctx, "share-1", testNow).Return(nil)
		f.shares.On("FindByID", ctx, "share-1").Return(&model.ShareRecord{ID: "share-1", DocumentID: "doc-1", RevokedAt: &revokedAt}, nil)

		rec, err := f.svc.Revoke(ctx, "share-1")
		require.NoError(t, err)
		assert.True(t, rec.Revoked())
	})

	t.Run("unknown share link", func(t *testing.T) {
		f := newLinkFixture(testLinkOptions())
		f.shares.On("Revoke", ctx, "missing", mock.Anything).Return(sql.ErrNoRows)

		_, err := f.svc.Revoke(ctx, "missing")
		assert.ErrorIs(t, err, ErrShareLinkNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		f := newLinkFixture(testLinkOptions())
		_, err := f.svc.Revoke(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}
