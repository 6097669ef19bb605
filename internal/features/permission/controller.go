package permission

import (
	"go-elms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PermissionController struct {
	Resolver *Resolver
}

func NewPermissionController(resolver *Resolver) *PermissionController {
	return &PermissionController{Resolver: resolver}
}

// GetMyPermissions godoc
// @Summary      Get current user's permissions
// @Description  Returns the total permission map of the caller's role
// @Tags         permissions
// @Produce      json
// @Success      200  {object}  RoleInfo
// @Failure      401  {object}  errors.ErrorResponse
// @Router       /api/permissions/me [get]
func (ctrl *PermissionController) GetMyPermissions(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	role := Role(claims.Role)
	perms, err := ctrl.Resolver.Permissions(role)
	if err != nil {
		return err
	}
	return c.JSON(RoleInfo{Role: role, DisplayName: DisplayName(role), Permissions: perms})
}

// ListRoles godoc
// @Summary      List roles
// @Description  Returns every role with its permission map
// @Tags         permissions
// @Produce      json
// @Success      200  {array}   RoleInfo
// @Failure      403  {object}  errors.ErrorResponse
// @Router       /api/permissions/roles [get]
func (ctrl *PermissionController) ListRoles(c *fiber.Ctx) error {
	return c.JSON(ctrl.Resolver.Roles())
}
