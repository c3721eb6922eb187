package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"statementapi/internal/http/middleware"
	"statementapi/internal/service"
)

type issueLinkRequest struct {
	DocumentID string `json:"documentId"`
	ExpiresIn  *int64 `json:"expiresIn"`
}

type issueLinkResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

// IssueLink godoc
// @Summary Generate a share link for a financial statement
// @Tags links
// @Accept json
// @Produce json
// @Param body body issueLinkRequest true "document and optional lifetime in seconds"
// @Success 200 {object} issueLinkResponse
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/generate-financial-statement-link [post]
func IssueLink(svc service.LinkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)
		if user == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		}

		var body issueLinkRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
			}
		}

		link, err := svc.Issue(c.UserContext(), service.IssueInput{
			DocumentID:     strings.TrimSpace(body.DocumentID),
			ExpiresIn:      body.ExpiresIn,
			IssuerID:       user.ID,
			RequestBaseURL: c.BaseURL(),
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrDocumentIDRequired):
				return writeError(c, fiber.StatusBadRequest, "DOCUMENT_ID_REQUIRED", "Document ID is required")
			case errors.Is(err, service.ErrInvalidExpiration):
				return writeError(c, fiber.StatusBadRequest, "INVALID_EXPIRATION", "Invalid expiration")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Document not found")
			case errors.Is(err, service.ErrUnauthorized):
				return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate link")
			}
		}

		return c.JSON(issueLinkResponse{
			URL:       link.URL,
			ExpiresAt: link.ExpiresAt.UTC().Format(service.ExpiresAtLayout),
		})
	}
}

// ListShareLinks returns the share grants issued for a statement.
func ListShareLinks(svc service.LinkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		recs, err := svc.ShareLinks(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Document not found")
			}
			return internalError(c)
		}
		return c.JSON(fiber.Map{"data": recs})
	}
}

// RevokeShareLink disables a share grant so its URL stops working.
func RevokeShareLink(svc service.LinkService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rec, err := svc.Revoke(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "share link not found")
			}
			return internalError(c)
		}
		return c.JSON(rec)
	}
}
