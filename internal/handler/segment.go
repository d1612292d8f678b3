package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"github.com/Skyebold/SponsorBlockServer/internal/middleware"
	"github.com/Skyebold/SponsorBlockServer/internal/model"
	"github.com/Skyebold/SponsorBlockServer/internal/service"
)

type SegmentHandler struct {
	svc *service.SegmentService
}

func NewSegmentHandler(svc *service.SegmentService) *SegmentHandler {
	return &SegmentHandler{svc: svc}
}

// Get handles GET /api/descriptionSegments?videoID=X
func (h *SegmentHandler) Get(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(fiber.Query[string](c, "videoID"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, errMsg)
	}

	categories, errMsg := parseCategories(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, errMsg)
	}

	required, errMsg := parseRequiredSegments(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, errMsg)
	}

	segments, err := h.svc.Fetch(c.Context(), service.FetchRequest{
		VideoID:          model.VideoID(videoID),
		Service:          model.ParseService(fiber.Query[string](c, "service")),
		Categories:       categories,
		RequiredSegments: required,
		ViewerIP:         c.IP(),
	})
	if err != nil {
		return middleware.APIErrorResponse(c, err)
	}

	return c.JSON(segments)
}

// GetByHashPrefix handles GET /api/descriptionSegments/:hashPrefix
func (h *SegmentHandler) GetByHashPrefix(c fiber.Ctx) error {
	prefix, errMsg := middleware.ValidateHashPrefix(c.Params("hashPrefix"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, errMsg)
	}

	categories, errMsg := parseCategories(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, errMsg)
	}

	required, errMsg := parseRequiredSegments(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, errMsg)
	}

	videos, err := h.svc.FetchByHashPrefix(c.Context(), prefix, service.FetchRequest{
		Service:          model.ParseService(fiber.Query[string](c, "service")),
		Categories:       categories,
		RequiredSegments: required,
		ViewerIP:         c.IP(),
	})
	if err != nil {
		return middleware.APIErrorResponse(c, err)
	}

	return c.JSON(videos)
}

// Post handles POST /api/descriptionSegments
func (h *SegmentHandler) Post(c fiber.Ctx) error {
	var req model.SubmissionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, "Invalid request body")
		}
	}

	// Query parameters may carry a single segment instead of a JSON body.
	if req.VideoID == "" {
		req.VideoID = fiber.Query[string](c, "videoID")
	}
	if req.UserID == "" {
		req.UserID = fiber.Query[string](c, "userID")
	}
	if req.Service == "" {
		req.Service = fiber.Query[string](c, "service")
	}
	if len(req.Segments) == 0 {
		seg := model.IncomingSegment{
			Category:        model.Category(fiber.Query[string](c, "category")),
			DescriptionHash: fiber.Query[string](c, "descriptionHash"),
			FirstCharacters: fiber.Query[string](c, "firstCharacters"),
			LastCharacters:  fiber.Query[string](c, "lastCharacters"),
			Length:          fiber.Query[int](c, "length"),
			Offset:          fiber.Query[float64](c, "offset"),
		}
		if seg.Category != "" || seg.DescriptionHash != "" {
			req.Segments = []model.IncomingSegment{seg}
		}
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
	req.UserID = userID

	if len(req.Segments) == 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, "at least one segment is required")
	}
	for _, seg := range req.Segments {
		if errMsg := middleware.ValidateIncomingSegment(seg); errMsg != "" {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, model.ErrCodeValidation, errMsg)
		}
	}

	req.UserAgent = middleware.ValidateUserAgent(req.UserAgent)

	posted, err := h.svc.Submit(c.Context(), req, c.IP())
	if err != nil {
		return middleware.APIErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"segments": posted})
}

// parseCategories accepts either a JSON array in `categories` or one or more
// `category` values, defaulting to sponsor.
func parseCategories(c fiber.Ctx) ([]model.Category, string) {
	if raw := fiber.Query[string](c, "categories"); raw != "" {
		var names []string
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			return nil, "Categories parameter does not match format requirements."
		}
		categories := make([]model.Category, len(names))
		for i, n := range names {
			categories[i] = model.Category(n)
		}
		return categories, ""
	}

	if single := fiber.Query[string](c, "category"); single != "" {
		return []model.Category{model.Category(single)}, ""
	}

	return []model.Category{"sponsor"}, ""
}

// parseRequiredSegments accepts a JSON array in `requiredSegments` or a
// single `requiredSegment` value.
func parseRequiredSegments(c fiber.Ctx) ([]model.SegmentUUID, string) {
	if raw := fiber.Query[string](c, "requiredSegments"); raw != "" {
		var names []string
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			return nil, "requiredSegments parameter does not match format requirements."
		}
		uuids := make([]model.SegmentUUID, len(names))
		for i, n := range names {
			uuids[i] = model.SegmentUUID(n)
		}
		return uuids, ""
	}

	if single := fiber.Query[string](c, "requiredSegment"); single != "" {
		return []model.SegmentUUID{model.SegmentUUID(single)}, ""
	}

	return nil, ""
}
