package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"statementapi/internal/service"
)

// pagination reads limit and offset query params. On a malformed value it
// writes a 400 and returns ok=false.
func pagination(c *fiber.Ctx, defaultLimit int) (limit, offset int, ok bool, err error) {
	limit, convErr := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if convErr != nil {
		return 0, 0, false, writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
	}
	offset, convErr = strconv.Atoi(c.Query("offset", "0"))
	if convErr != nil {
		return 0, 0, false, writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
	}
	return limit, offset, true, nil
}

// ListStatements godoc
// @Summary List statements
// @Tags statements
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} service.StatementListResult
// @Router /api/admin/statements [get]
func ListStatements(svc service.StatementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, err := pagination(c, 10)
		if !ok {
			return err
		}
		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return internalError(c)
		}
		return c.JSON(res)
	}
}

// ListPublicStatements returns statement metadata without storage paths.
func ListPublicStatements(svc service.StatementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year := 0
		if raw := c.Query("year"); raw != "" {
			y, err := strconv.Atoi(raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_YEAR", "invalid year")
			}
			year = y
		}
		items, err := svc.ListPublic(c.UserContext(), year)
		if err != nil {
			if errors.Is(err, service.ErrBadRequest) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_YEAR", "invalid year")
			}
			return internalError(c)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(fiber.Map{"data": items})
	}
}

// UploadStatement godoc
// @Summary Upload a statement (multipart/form-data)
// @Tags statements
// @Accept mpfd
// @Produce json
// @Param file formData file true "statement file"
// @Param year formData int true "fiscal year"
// @Param title formData string false "display title"
// @Success 201 {object} model.Statement
// @Failure 400 {object} errorPayload
// @Router /api/admin/statements [post]
func UploadStatement(svc service.StatementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		year, err := strconv.Atoi(c.FormValue("year"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_YEAR", "invalid year")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		st, err := svc.Upload(c.UserContext(), service.UploadInput{
			Year:             year,
			Title:            c.FormValue("title"),
			OriginalFilename: fh.Filename,
			Size:             fh.Size,
			Reader:           f,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidYear):
				return writeError(c, fiber.StatusBadRequest, "INVALID_YEAR", "invalid year")
			case errors.Is(err, service.ErrTitleRequired):
				return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title is required")
			case errors.Is(err, service.ErrUnsupportedType):
				return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_TYPE", "unsupported file type")
			case errors.Is(err, service.ErrBadRequest):
				return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid upload")
			default:
				return internalError(c)
			}
		}
		return c.Status(fiber.StatusCreated).JSON(st)
	}
}

// GetStatement returns a statement by ID.
func GetStatement(svc service.StatementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		st, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Document not found")
			}
			return internalError(c)
		}
		return c.JSON(st)
	}
}

// DeleteStatement removes a statement from storage and the database.
func DeleteStatement(svc service.StatementService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Document not found")
			}
			return internalError(c)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListAccessLogs returns the download audit trail of a statement.
func ListAccessLogs(svc service.DownloadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		limit, offset, ok, err := pagination(c, 50)
		if !ok {
			return err
		}
		recs, err := svc.AccessLogs(c.UserContext(), id, limit, offset)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Document not found")
			}
			return internalError(c)
		}
		return c.JSON(fiber.Map{"data": recs})
	}
}
