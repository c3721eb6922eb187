package handler

import (
	"errors"
	"mime"

	"github.com/gofiber/fiber/v2"

	"statementapi/internal/http/middleware"
	"statementapi/internal/service"
)

func setHardeningHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderContentSecurityPolicy, "default-src 'self'")
	c.Set(fiber.HeaderXFrameOptions, "DENY")
}

// writeDownloadError answers with the plain-text message for err.
func writeDownloadError(c *fiber.Ctx, err error) error {
	status, msg := fiber.StatusInternalServerError, "An unexpected error occurred"
	switch {
	case errors.Is(err, service.ErrParamsRequired):
		status, msg = fiber.StatusBadRequest, "Either document ID or path is required"
	case errors.Is(err, service.ErrInvalidPath):
		status, msg = fiber.StatusBadRequest, "Invalid file path format"
	case errors.Is(err, service.ErrIDRequired):
		status, msg = fiber.StatusBadRequest, "Document ID is required"
	case errors.Is(err, service.ErrLinkExpired):
		status, msg = fiber.StatusUnauthorized, "Link expired"
	case errors.Is(err, service.ErrInvalidLink):
		status, msg = fiber.StatusForbidden, "Invalid or expired link"
	case errors.Is(err, service.ErrFileNotFound):
		status, msg = fiber.StatusNotFound, "File not found"
	case errors.Is(err, service.ErrNotFound):
		status, msg = fiber.StatusNotFound, "Document not found"
	case errors.Is(err, service.ErrStorage):
		msg = "Error downloading file"
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(status).SendString(msg)
}

func sendDownload(c *fiber.Ctx, dl *service.Download) error {
	disposition := "attachment"
	if c.Query("disposition") == "inline" {
		disposition = "inline"
	}
	c.Set(fiber.HeaderContentType, dl.ContentType)
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType(disposition, map[string]string{"filename": dl.Filename}))
	c.Set(fiber.HeaderCacheControl, dl.CacheControl)
	c.Status(fiber.StatusOK)
	if dl.Size > 0 {
		return c.SendStream(dl.Body, int(dl.Size))
	}
	return c.SendStream(dl.Body)
}

// Download godoc
// @Summary Download a financial statement
// @Description Accepts path+token+ts (share link), id, or a bare legacy path.
// @Tags downloads
// @Produce application/octet-stream
// @Param id query string false "statement id"
// @Param path query string false "storage path"
// @Param token query string false "share token"
// @Param ts query int false "issuance time (unix seconds)"
// @Param disposition query string false "inline or attachment"
// @Success 200 {file} file
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Failure 403 {string} string
// @Failure 404 {string} string
// @Router /api/download-financial-statement [get]
func Download(svc service.DownloadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		setHardeningHeaders(c)

		req := service.DownloadRequest{
			ID:      c.Query("id"),
			Path:    c.Query("path"),
			Token:   c.Query("token"),
			TS:      c.Query("ts"),
			Referer: c.Get(fiber.HeaderReferer),
		}
		if u := middleware.CurrentUser(c); u != nil {
			req.AccessorID = u.ID
		}

		dl, err := svc.Fetch(c.UserContext(), req)
		if err != nil {
			return writeDownloadError(c, err)
		}
		return sendDownload(c, dl)
	}
}

// AdminDownload serves a statement by id to admins, with no caching.
func AdminDownload(svc service.DownloadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		setHardeningHeaders(c)

		u := middleware.CurrentUser(c)
		if u == nil && middleware.SessionFailed(c) {
			c.Set(fiber.HeaderCacheControl, "no-store")
			return c.Status(fiber.StatusInternalServerError).SendString("An unexpected error occurred")
		}
		if u == nil {
			c.Set(fiber.HeaderCacheControl, "no-store")
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}
		if !u.Role.IsAdmin() {
			c.Set(fiber.HeaderCacheControl, "no-store")
			return c.Status(fiber.StatusForbidden).SendString("Forbidden")
		}

		dl, err := svc.FetchAdmin(c.UserContext(), c.Query("id"), u.ID)
		if err != nil {
			return writeDownloadError(c, err)
		}
		return sendDownload(c, dl)
	}
}
