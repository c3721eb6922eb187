package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"statementapi/internal/model"
	"statementapi/internal/service"
	serviceMocks "statementapi/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pdfDownload(mode model.AccessMethod, cacheControl string) *service.Download {
	return &service.Download{
		Body:         io.NopCloser(strings.NewReader("%PDF-1.4")),
		Size:         8,
		ContentType:  "application/pdf",
		Filename:     "statement-2023.pdf",
		DocumentID:   "doc-1",
		Mode:         mode,
		CacheControl: cacheControl,
	}
}

func assertHardened(t *testing.T, resp *http.Response) {
	t.Helper()
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'self'", resp.Header.Get("Content-Security-Policy"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestDownload(t *testing.T) {
	mockSvc := new(serviceMocks.MockDownloadService)
	app := fiber.New()
	app.Get("/dl", withUser(nil), Download(mockSvc))

	t.Run("token link served", func(t *testing.T) {
		mockSvc.On("Fetch", mock.Anything, mock.MatchedBy(func(r service.DownloadRequest) bool {
			return r.Path == "2023/2023_abc.pdf" && r.Token == "tok" && r.TS == "1717236000" && r.AccessorID == ""
		})).Return(pdfDownload(model.AccessByToken, "public, max-age=120"), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/dl?path=2023%2F2023_abc.pdf&token=tok&ts=1717236000", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename=statement-2023.pdf`, resp.Header.Get("Content-Disposition"))
		assert.Equal(t, "public, max-age=120", resp.Header.Get("Cache-Control"))
		assertHardened(t, resp)
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "%PDF-1.4", string(b))
		mockSvc.AssertExpectations(t)
	})

	t.Run("inline disposition", func(t *testing.T) {
		mockSvc.On("Fetch", mock.Anything, mock.Anything).Return(pdfDownload(model.AccessByID, "public, max-age=120"), nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/dl?id=doc-1&disposition=inline", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, `inline; filename=statement-2023.pdf`, resp.Header.Get("Content-Disposition"))
		mockSvc.AssertExpectations(t)
	})

	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"no params", service.ErrParamsRequired, http.StatusBadRequest, "Either document ID or path is required"},
		{"bad path", service.ErrInvalidPath, http.StatusBadRequest, "Invalid file path format"},
		{"expired", service.ErrLinkExpired, http.StatusUnauthorized, "Link expired"},
		{"bad token", service.ErrInvalidLink, http.StatusForbidden, "Invalid or expired link"},
		{"no row", service.ErrDocumentNotFound, http.StatusNotFound, "Document not found"},
		{"no object", service.ErrFileNotFound, http.StatusNotFound, "File not found"},
		{"storage failure", service.ErrStorage, http.StatusInternalServerError, "Error downloading file"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "An unexpected error occurred"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockSvc.On("Fetch", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			req := httptest.NewRequest(http.MethodGet, "/dl?path=x", nil)
			resp, _ := app.Test(req)

			assert.Equal(t, tc.status, resp.StatusCode)
			b, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tc.body, string(b))
			assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
			assertHardened(t, resp)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestDownload_PassesAccessor(t *testing.T) {
	mockSvc := new(serviceMocks.MockDownloadService)
	app := fiber.New()
	app.Get("/dl", withUser(adminUser), Download(mockSvc))

	mockSvc.On("Fetch", mock.Anything, mock.MatchedBy(func(r service.DownloadRequest) bool {
		return r.AccessorID == adminUser.ID && r.Referer == "https://example.org/reports"
	})).Return(pdfDownload(model.AccessByID, "public, max-age=120"), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/dl?id=doc-1", nil)
	req.Header.Set("Referer", "https://example.org/reports")
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestAdminDownload(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDownloadService)
		app := fiber.New()
		app.Get("/admin/dl", withUser(nil), AdminDownload(mockSvc))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/dl?id=doc-1", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "Unauthorized", string(b))
		assertHardened(t, resp)
		mockSvc.AssertNotCalled(t, "FetchAdmin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("pending role", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDownloadService)
		app := fiber.New()
		app.Get("/admin/dl", withUser(pendingUser), AdminDownload(mockSvc))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/dl?id=doc-1", nil))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "FetchAdmin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin served without caching", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDownloadService)
		app := fiber.New()
		app.Get("/admin/dl", withUser(adminUser), AdminDownload(mockSvc))
		mockSvc.On("FetchAdmin", mock.Anything, "doc-1", adminUser.ID).
			Return(pdfDownload(model.AccessByAdmin, "no-store"), nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/dl?id=doc-1", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing id", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDownloadService)
		app := fiber.New()
		app.Get("/admin/dl", withUser(adminUser), AdminDownload(mockSvc))
		mockSvc.On("FetchAdmin", mock.Anything, "", adminUser.ID).Return(nil, service.ErrIDRequired).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/dl", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "Document ID is required", string(b))
		mockSvc.AssertExpectations(t)
	})
}

func TestIssueLink(t *testing.T) {
	expiresAt := time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC)

	post := func(app *fiber.App, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/links", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockLinkService)
		app := fiber.New()
		app.Post("/links", withUser(adminUser), IssueLink(mockSvc))
		mockSvc.On("Issue", mock.Anything, mock.MatchedBy(func(in service.IssueInput) bool {
			return in.DocumentID == "doc-1" && in.ExpiresIn != nil && *in.ExpiresIn == 600 &&
				in.IssuerID == adminUser.ID && in.RequestBaseURL != ""
		})).Return(&service.IssuedLink{URL: "https://example.org/api/download-financial-statement?path=a", ExpiresAt: expiresAt}, nil).Once()

		resp := post(app, `{"documentId":"doc-1","expiresIn":600}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body issueLinkResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "https://example.org/api/download-financial-statement?path=a", body.URL)
		assert.Equal(t, "2024-06-01T11:00:00.000Z", body.ExpiresAt)
		mockSvc.AssertExpectations(t)
	})

	t.Run("anonymous", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockLinkService)
		app := fiber.New()
		app.Post("/links", withUser(nil), IssueLink(mockSvc))

		resp := post(app, `{"documentId":"doc-1"}`)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Unauthorized", decodeError(t, resp).Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockLinkService)
		app := fiber.New()
		app.Post("/links", withUser(adminUser), IssueLink(mockSvc))

		resp := post(app, `{"documentId":`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid request body", decodeError(t, resp).Error)
	})

	errCases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"missing document", service.ErrDocumentIDRequired, http.StatusBadRequest, "Document ID is required"},
		{"bad expiration", service.ErrInvalidExpiration, http.StatusBadRequest, "Invalid expiration"},
		{"unknown document", service.ErrDocumentNotFound, http.StatusNotFound, "Document not found"},
		{"storage of grant fails", errors.New("boom"), http.StatusInternalServerError, "Failed to generate link"},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockLinkService)
			app := fiber.New()
			app.Post("/links", withUser(adminUser), IssueLink(mockSvc))
			mockSvc.On("Issue", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			resp := post(app, `{"documentId":"doc-1","expiresIn":-5}`)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.msg, decodeError(t, resp).Error)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestDownload_SessionLookupFailure(t *testing.T) {
	accounts := new(serviceMocks.MockAccountService)
	accounts.On("Authenticate", mock.Anything, "tok").Return(nil, errors.New("db down"))
	downloads := new(serviceMocks.MockDownloadService)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, Deps{
		Statements: new(serviceMocks.MockStatementService),
		Links:      new(serviceMocks.MockLinkService),
		Downloads:  downloads,
		Accounts:   accounts,
		Cookie:     SessionCookie{Name: "statement_session"},
	})

	t.Run("public download served anonymously", func(t *testing.T) {
		downloads.On("Fetch", mock.Anything, mock.MatchedBy(func(r service.DownloadRequest) bool {
			return r.Path == "2023/2023_abc.pdf" && r.AccessorID == ""
		})).Return(nil, service.ErrInvalidLink).Once()

		req := httptest.NewRequest(http.MethodGet, "/download?path=2023%2F2023_abc.pdf&token=bad&ts=1717236000", nil)
		req.Header.Set("Authorization", "Bearer tok")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "Invalid or expired link", string(b))
		assertHardened(t, resp)
		downloads.AssertExpectations(t)
	})

	t.Run("admin download answers in plain text", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/download-financial-statement?id=doc-1", nil)
		req.Header.Set("Authorization", "Bearer tok")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "An unexpected error occurred", string(b))
		downloads.AssertNotCalled(t, "FetchAdmin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("guarded JSON route is a server error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/statements", nil)
		req.Header.Set("Authorization", "Bearer tok")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp).Code)
	})
}
