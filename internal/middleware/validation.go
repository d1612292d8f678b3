package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Skyebold/SponsorBlockServer/internal/model"
)

// Field length limits matching database schema constraints.
const (
	MaxVideoIDLen   = 64  // segments.video_id VARCHAR(64)
	MinUserIDLen    = 30  // private user IDs must carry enough entropy
	MaxUserIDLen    = 128 // before hashing
	MaxUserAgentLen = 128 // segments.user_agent VARCHAR(128)
	MinHashPrefix   = 4
	MaxHashPrefix   = 8
	MaxMatchChars   = 5 // first/last match characters
	MinSegmentLen   = 2
)

var (
	// videoIDRe matches platform video IDs: alphanumeric, dash, underscore.
	videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// hexRe matches lowercase hex strings (hash prefixes).
	hexRe = regexp.MustCompile(`^[0-9a-f]+$`)
)

// ErrorResponse is a helper that returns the standard API error envelope.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// APIErrorResponse writes a domain error through the standard envelope.
// Unknown error values become an opaque 500.
func APIErrorResponse(c fiber.Ctx, err error) error {
	apiErr, ok := model.AsAPIError(err)
	if !ok {
		apiErr = model.NewInternalError("Internal server error")
	}
	return ErrorResponse(c, apiErr.Status, apiErr.Code, apiErr.Message)
}

// ValidateVideoID checks that a video ID is well-formed and within DB limits.
func ValidateVideoID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "videoID is required"
	}
	if len(id) > MaxVideoIDLen {
		return "", "videoID must be at most 64 characters"
	}
	if !videoIDRe.MatchString(id) {
		return "", "videoID contains invalid characters"
	}
	return id, ""
}

// ValidateUserID checks the private (pre-hash) user ID.
func ValidateUserID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "userID is required"
	}
	if len(id) < MinUserIDLen {
		return "", "userID must be at least 30 characters long"
	}
	if len(id) > MaxUserIDLen {
		return "", "userID must be at most 128 characters"
	}
	return id, ""
}

// ValidateHashPrefix checks the k-anonymity hash prefix format.
func ValidateHashPrefix(prefix string) (string, string) {
	prefix = strings.TrimSpace(strings.ToLower(prefix))
	if len(prefix) < MinHashPrefix || len(prefix) > MaxHashPrefix {
		return "", "Hash prefix must be 4-8 characters"
	}
	if !hexRe.MatchString(prefix) {
		return "", "Hash prefix must be hexadecimal"
	}
	return prefix, ""
}

// ValidateIncomingSegment checks one submitted segment descriptor.
func ValidateIncomingSegment(seg model.IncomingSegment) string {
	if seg.Category == "" {
		return "category is required"
	}
	if seg.DescriptionHash == "" {
		return "descriptionHash is required"
	}
	if seg.Length < MinSegmentLen {
		return "segment length too short, must be at least 2 characters long"
	}
	if len(seg.FirstCharacters) < 1 {
		return "first characters too short, must be at least 1 character long"
	}
	if len(seg.FirstCharacters) > MaxMatchChars {
		return "first characters too long, must be no more than 5 characters long"
	}
	if len(seg.LastCharacters) < 1 {
		return "last characters too short, must be at least 1 character long"
	}
	if len(seg.LastCharacters) > MaxMatchChars {
		return "last characters too long, must be no more than 5 characters long"
	}
	if seg.Offset < 0 {
		return "offset must not be negative"
	}
	return ""
}

// ValidateLockCategories checks that a lock removal names at least one
// well-formed category.
func ValidateLockCategories(categories []string) string {
	if len(categories) == 0 {
		return "Categories parameter does not match format requirements."
	}
	for _, c := range categories {
		if c == "" {
			return "Categories parameter does not match format requirements."
		}
	}
	return ""
}

// ValidateUserAgent trims and truncates a user agent to DB limits.
func ValidateUserAgent(ua string) string {
	ua = strings.TrimSpace(ua)
	if len(ua) > MaxUserAgentLen {
		ua = ua[:MaxUserAgentLen]
	}
	return ua
}
