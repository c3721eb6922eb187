package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"statementapi/internal/http/middleware"
	"statementapi/internal/model"
	"statementapi/internal/service"
)

// ListAccessRequests returns access requests, optionally filtered by ?status.
func ListAccessRequests(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok, err := pagination(c, 10)
		if !ok {
			return err
		}
		res, err := svc.ListRequests(c.UserContext(), c.Query("status"), limit, offset)
		if err != nil {
			if errors.Is(err, service.ErrInvalidStatus) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "invalid status")
			}
			return internalError(c)
		}
		return c.JSON(res)
	}
}

// ApproveAccessRequest promotes the requesting user to admin.
func ApproveAccessRequest(svc service.AccountService) fiber.Handler {
	return decideAccessRequest(svc.Approve)
}

// RejectAccessRequest closes the request without changing the user's role.
func RejectAccessRequest(svc service.AccountService) fiber.Handler {
	return decideAccessRequest(svc.Reject)
}

type decideFunc func(ctx context.Context, requestID, reviewerID string) (*model.AccessRequest, error)

func decideAccessRequest(decide decideFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.CurrentUser(c)
		if u == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		}
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		req, err := decide(c.UserContext(), id, u.ID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "access request not found")
			case errors.Is(err, service.ErrConflict):
				return writeError(c, fiber.StatusConflict, "ALREADY_DECIDED", "access request already decided")
			default:
				return internalError(c)
			}
		}
		return c.JSON(req)
	}
}
