package system

import (
	"time"

	"go-elms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DebugController struct{}

func NewDebugController() *DebugController {
	return &DebugController{}
}

// GetClaims godoc
// @Summary      Echo token claims
// @Description  Show what the server decoded from the bearer token
// @Tags         debug
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/debug/claims [get]
func (c *DebugController) GetClaims(ctx *fiber.Ctx) error {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return fiber.ErrUnauthorized
	}

	resp := fiber.Map{
		"user_id": claims.UserID,
		"name":    claims.Name,
		"email":   claims.Email,
		"role":    claims.Role,
		"title":   claims.Title,
	}
	if claims.ExpiresAt != nil {
		resp["expires_at"] = claims.ExpiresAt.Time.Format(time.RFC3339)
	}
	return ctx.JSON(resp)
}
