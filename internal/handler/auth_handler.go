package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pinkilang/internal/middleware"
	"pinkilang/internal/models"
	"pinkilang/internal/service"
	"pinkilang/internal/utils"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.authService.Login(req)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, err.Error(), nil)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to issue token", err)
	}

	return utils.SuccessResponse(c, "Login successful", resp)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, "User retrieved successfully", fiber.Map{
		"username": middleware.Actor(c),
		"role":     c.Locals("role"),
	})
}
