package system

import (
	"context"
	"time"

	"go-elms/internal/config"
	"go-elms/internal/database"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether the backing database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	config  *config.Config
	db      Pinger
	started time.Time
}

func NewHealthController(cfg *config.Config, mongodb *database.MongodbDB) *HealthController {
	h := &HealthController{config: cfg, started: time.Now()}
	if mongodb != nil {
		h.db = mongodb
	}
	return h
}

// Health godoc
// @Summary      Liveness and storage check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthController) Health(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":  "ok",
		"storage": h.config.Storage,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			resp["status"] = "degraded"
			resp["error"] = err.Error()
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
	}
	return c.JSON(resp)
}
