package audit

import (
	"strconv"
	"time"

	common_models "go-elms/internal/common/models"
	apperrors "go-elms/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListLogs godoc
// @Summary      List audit logs
// @Tags         audit
// @Produce      json
// @Param        page       query  int     false  "Page"
// @Param        limit      query  int     false  "Page size"
// @Param        module     query  string  false  "Module"
// @Param        record_id  query  string  false  "Record ID"
// @Param        actor_id   query  string  false  "Actor ID"
// @Param        action     query  string  false  "Action"
// @Param        from       query  string  false  "RFC 3339 lower bound"
// @Param        to         query  string  false  "RFC 3339 upper bound (exclusive)"
// @Success      200  {object}  Page
// @Router       /api/audit-logs [get]
func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filter := Filter{
		Action:   common_models.AuditAction(c.Query("action")),
		Module:   c.Query("module"),
		RecordID: c.Query("record_id"),
		ActorID:  c.Query("actor_id"),
	}
	var err error
	if filter.From, err = parseTime(c.Query("from")); err != nil {
		return apperrors.NewValidationError("from", "must be an RFC 3339 timestamp")
	}
	if filter.To, err = parseTime(c.Query("to")); err != nil {
		return apperrors.NewValidationError("to", "must be an RFC 3339 timestamp")
	}

	result, err := ctrl.Service.ListLogs(c.UserContext(), filter, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
