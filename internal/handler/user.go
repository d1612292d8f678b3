package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Skyebold/SponsorBlockServer/internal/middleware"
	"github.com/Skyebold/SponsorBlockServer/internal/model"
	"github.com/Skyebold/SponsorBlockServer/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Get handles GET /api/users/:userID. The path parameter is the public
// (already hashed) user ID.
func (h *UserHandler) Get(c fiber.Ctx) error {
	userID := c.Params("userID")
	if userID == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, "userID is required")
	}

	user, err := h.svc.Lookup(c.Context(), model.UserID(userID))
	if err != nil {
		return middleware.APIErrorResponse(c, err)
	}

	return c.JSON(user)
}
