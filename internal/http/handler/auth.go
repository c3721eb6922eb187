package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"statementapi/internal/http/middleware"
	"statementapi/internal/model"
	"statementapi/internal/service"
)

// SessionCookie describes the cookie carrying the session token.
type SessionCookie struct {
	Name   string
	Secure bool
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=120"`
	Reason   string `json:"reason" validate:"max=1000"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Register godoc
// @Summary Request admin access
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "account and reason"
// @Success 201 {object} model.AccessRequest
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/auth/register [post]
func Register(svc service.AccountService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body registerRequest
		if ok, err := bindJSON(c, &body); !ok {
			return err
		}
		req, err := svc.Register(c.UserContext(), service.RegisterInput{
			Email:    body.Email,
			Password: body.Password,
			Name:     body.Name,
			Reason:   body.Reason,
		})
		if err != nil {
			if errors.Is(err, service.ErrEmailTaken) {
				return writeError(c, fiber.StatusConflict, "EMAIL_TAKEN", "Email already registered")
			}
			return internalError(c)
		}
		return c.Status(fiber.StatusCreated).JSON(req)
	}
}

// Login godoc
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credentials"
// @Success 200 {object} loginResponse
// @Failure 401 {object} errorPayload
// @Router /api/auth/login [post]
func Login(svc service.AccountService, cookie SessionCookie) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body loginRequest
		if ok, err := bindJSON(c, &body); !ok {
			return err
		}
		sess, err := svc.Login(c.UserContext(), body.Email, body.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			}
			return internalError(c)
		}
		c.Cookie(&fiber.Cookie{
			Name:     cookie.Name,
			Value:    sess.Token,
			Path:     "/",
			Expires:  sess.ExpiresAt,
			HTTPOnly: true,
			Secure:   cookie.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.JSON(loginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: sess.User})
	}
}

// Logout clears the session cookie.
func Logout(cookie SessionCookie) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     cookie.Name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			Secure:   cookie.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Me returns the signed-in user.
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.CurrentUser(c)
		if u == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		}
		return c.JSON(u)
	}
}
