package server

import (
	"reelsocial/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
// @Summary Feature flags
// @Description Configured flags and their evaluation for the caller
// @Tags flags
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Failure 401 {object} models.ErrorResponse
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
