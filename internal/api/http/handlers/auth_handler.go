package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/deskflow/helpdesk-api/internal/api/dto"
	"github.com/deskflow/helpdesk-api/internal/auth"
	"github.com/deskflow/helpdesk-api/internal/service"
	"github.com/deskflow/helpdesk-api/internal/validation"
)

// AuthHandler exposes signup, signin and me.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req validation.SignupParams
	if err := parseBody(c, &req); err != nil {
		return err
	}
	payload, err := h.auth.Signup(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAuthResponse(payload)})
}

// Signin handles POST /auth/signin.
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req validation.SigninParams
	if err := parseBody(c, &req); err != nil {
		return err
	}
	payload, err := h.auth.Signin(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuthResponse(payload)})
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.auth.Me(c.UserContext(), auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
