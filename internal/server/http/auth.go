// FILE: internal/server/http/auth.go
package http

import (
	"strings"
	"time"

	"eco/internal/server/core"

	"github.com/gofiber/fiber/v2"
)

// LoginRequest defines the authentication payload
type LoginRequest struct {
	Name   string `json:"name" validate:"required"`
	Secret string `json:"secret" validate:"required"`
}

// AuthResponse contains the JWT token and admin information
type AuthResponse struct {
	Token     string    `json:"token"`
	AdminID   string    `json:"adminId"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginHandler authenticates an admin and returns a JWT token
func (h *HTTPHandler) LoginHandler(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.ErrInvalidRequest,
			Details: err.Error(),
		})
	}

	if req.Name == "" || req.Secret == "" {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "missing credentials",
			Code:    core.ErrInvalidRequest,
			Details: "name and secret are required",
		})
	}

	// Normalize name for case-insensitive lookup
	req.Name = strings.ToLower(req.Name)

	// Authenticate admin
	admin, err := h.svc.AuthenticateAdmin(req.Name, req.Secret)
	if err != nil {
		// Always return same error to prevent admin enumeration
		return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
			Error: "invalid credentials",
			Code:  core.ErrUnauthorized,
		})
	}

	// Generate JWT token
	token, expiresAt, err := h.svc.GenerateAdminToken(admin)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "failed to generate token",
			Code:  core.ErrInternalError,
		})
	}

	// TODO: for now, non-blocking if login time update fails, log/block in the future
	_ = h.svc.UpdateLastLogin(admin.AdminID)

	return c.JSON(AuthResponse{
		Token:     token,
		AdminID:   admin.AdminID,
		Name:      admin.Name,
		ExpiresAt: expiresAt,
	})
}
