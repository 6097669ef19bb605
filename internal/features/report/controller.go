package report

import (
	"fmt"

	"go-elms/internal/features/letter"
	"go-elms/internal/features/permission"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	ReportService ReportService
}

func NewReportController(reportService ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// Metrics godoc
// @Summary      Dashboard metrics
// @Tags         reports
// @Produce      json
// @Success      200  {object}  Metrics
// @Router       /api/reports/metrics [get]
func (c *ReportController) Metrics(ctx *fiber.Ctx) error {
	actor, ok := permission.ActorFromContext(ctx.UserContext())
	if !ok {
		return fiber.ErrUnauthorized
	}
	metrics, err := c.ReportService.Metrics(ctx.UserContext(), actor)
	if err != nil {
		return err
	}
	return ctx.JSON(metrics)
}

// Export godoc
// @Summary      Export the letter register as Excel
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        status  query  string  false  "Status filter"
// @Router       /api/reports/export [get]
func (c *ReportController) Export(ctx *fiber.Ctx) error {
	actor, ok := permission.ActorFromContext(ctx.UserContext())
	if !ok {
		return fiber.ErrUnauthorized
	}
	data, filename, err := c.ReportService.ExportExcel(ctx.UserContext(), actor, letter.Status(ctx.Query("status")))
	if err != nil {
		return err
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return ctx.Send(data)
}
