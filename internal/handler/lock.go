package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Skyebold/SponsorBlockServer/internal/middleware"
	"github.com/Skyebold/SponsorBlockServer/internal/model"
	"github.com/Skyebold/SponsorBlockServer/internal/service"
	"github.com/Skyebold/SponsorBlockServer/pkg/hash"
)

type LockHandler struct {
	svc *service.LockService
}

func NewLockHandler(svc *service.LockService) *LockHandler {
	return &LockHandler{svc: svc}
}

// Get handles GET /api/lockCategories?videoID=X
func (h *LockHandler) Get(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(fiber.Query[string](c, "videoID"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, errMsg)
	}

	locks, err := h.svc.LockedCategories(c.Context(), model.VideoID(videoID), model.ParseService(fiber.Query[string](c, "service")))
	if err != nil {
		return middleware.APIErrorResponse(c, err)
	}
	if locks == nil {
		locks = []model.LockCategory{}
	}

	return c.JSON(model.LockCategoriesResponse{Categories: locks})
}

// Delete handles DELETE /api/lockCategories
func (h *LockHandler) Delete(c fiber.Ctx) error {
	var req model.DeleteLockRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, "Invalid request body")
	}

	videoID, errMsg := middleware.ValidateVideoID(req.VideoID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, errMsg)
	}
	req.VideoID = videoID

	userID, errMsg := middleware.ValidateUserID(req.UserID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, errMsg)
	}

	if errMsg := middleware.ValidateLockCategories(req.Categories); errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, errMsg)
	}

	categories := make([]model.Category, len(req.Categories))
	for i, name := range req.Categories {
		categories[i] = model.Category(name)
	}

	err := h.svc.RemoveLocks(c.Context(), hash.HashUserID(userID), model.VideoID(req.VideoID), model.ParseService(req.Service), categories)
	if err != nil {
		return middleware.APIErrorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
