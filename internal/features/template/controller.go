package template

import (
	"go-elms/internal/features/permission"

	"github.com/gofiber/fiber/v2"
)

type TemplateController struct {
	Service TemplateService
}

func NewTemplateController(service TemplateService) *TemplateController {
	return &TemplateController{Service: service}
}

func actor(c *fiber.Ctx) (permission.Actor, error) {
	a, ok := permission.ActorFromContext(c.UserContext())
	if !ok {
		return permission.Actor{}, fiber.ErrUnauthorized
	}
	return a, nil
}

// Create godoc
// @Summary      Create a letter template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        template  body      LetterTemplate  true  "Template"
// @Success      201       {object}  LetterTemplate
// @Failure      400       {object}  errors.ErrorResponse
// @Failure      403       {object}  errors.ErrorResponse
// @Router       /api/templates [post]
func (ctrl *TemplateController) Create(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var tpl LetterTemplate
	if err := c.BodyParser(&tpl); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctrl.Service.CreateTemplate(c.UserContext(), a, &tpl); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tpl)
}

// List godoc
// @Summary      List letter templates
// @Tags         templates
// @Produce      json
// @Param        category  query  string  false  "Category filter"
// @Success      200  {array}  LetterTemplate
// @Router       /api/templates [get]
func (ctrl *TemplateController) List(c *fiber.Ctx) error {
	templates, err := ctrl.Service.ListTemplates(c.UserContext(), c.Query("category"))
	if err != nil {
		return err
	}
	return c.JSON(templates)
}

// Get godoc
// @Summary      Get a letter template
// @Tags         templates
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  LetterTemplate
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /api/templates/{id} [get]
func (ctrl *TemplateController) Get(c *fiber.Ctx) error {
	tpl, err := ctrl.Service.GetTemplate(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(tpl)
}

// Update godoc
// @Summary      Update a letter template
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        id        path      string          true  "Template ID"
// @Param        template  body      LetterTemplate  true  "Template"
// @Success      200       {object}  LetterTemplate
// @Router       /api/templates/{id} [put]
func (ctrl *TemplateController) Update(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var tpl LetterTemplate
	if err := c.BodyParser(&tpl); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	tpl.ID = c.Params("id")
	if err := ctrl.Service.UpdateTemplate(c.UserContext(), a, &tpl); err != nil {
		return err
	}
	return c.JSON(tpl)
}

// Delete godoc
// @Summary      Delete a letter template
// @Tags         templates
// @Param        id   path  string  true  "Template ID"
// @Success      204
// @Router       /api/templates/{id} [delete]
func (ctrl *TemplateController) Delete(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	if err := ctrl.Service.DeleteTemplate(c.UserContext(), a, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Preview godoc
// @Summary      Preview a template with merge values
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        id       path      string          true  "Template ID"
// @Param        request  body      PreviewRequest  true  "Merge values"
// @Success      200      {object}  PreviewResponse
// @Router       /api/templates/{id}/preview [post]
func (ctrl *TemplateController) Preview(c *fiber.Ctx) error {
	var req PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	preview, err := ctrl.Service.Preview(c.UserContext(), c.Params("id"), req.Values)
	if err != nil {
		return err
	}
	return c.JSON(preview)
}

// Fields godoc
// @Summary      List a template's declared fields
// @Tags         templates
// @Produce      json
// @Param        id   path     string  true  "Template ID"
// @Success      200  {array}  TemplateField
// @Router       /api/templates/{id}/fields [get]
func (ctrl *TemplateController) Fields(c *fiber.Ctx) error {
	fields, err := ctrl.Service.Fields(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fields)
}
