package workflow

import (
	"strconv"

	"go-elms/internal/features/letter"
	"go-elms/internal/features/permission"

	"github.com/gofiber/fiber/v2"
)

type WorkflowController struct {
	Service WorkflowService
}

func NewWorkflowController(service WorkflowService) *WorkflowController {
	return &WorkflowController{Service: service}
}

func actor(c *fiber.Ctx) (permission.Actor, error) {
	a, ok := permission.ActorFromContext(c.UserContext())
	if !ok {
		return permission.Actor{}, fiber.ErrUnauthorized
	}
	return a, nil
}

// Create godoc
// @Summary      Create a draft letter
// @Tags         letters
// @Accept       json
// @Produce      json
// @Param        letter  body      CreateLetterInput  true  "Letter"
// @Success      201     {object}  letter.Letter
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      403     {object}  errors.ErrorResponse
// @Router       /api/letters [post]
func (ctrl *WorkflowController) Create(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var input CreateLetterInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	l, err := ctrl.Service.CreateLetter(c.UserContext(), a, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(l)
}

// List godoc
// @Summary      List visible letters
// @Tags         letters
// @Produce      json
// @Param        status  query  string  false  "Status filter"
// @Param        q       query  string  false  "Search in subject, reference and department"
// @Param        limit   query  int     false  "Maximum number of letters"
// @Success      200  {array}  letter.Letter
// @Router       /api/letters [get]
func (ctrl *WorkflowController) List(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.Query("limit", "0"))
	letters, err := ctrl.Service.ListLetters(c.UserContext(), a, letter.Filter{
		Status: letter.Status(c.Query("status")),
		Query:  c.Query("q"),
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(letters)
}

// Get godoc
// @Summary      Get a letter
// @Tags         letters
// @Produce      json
// @Param        id   path      string  true  "Letter ID"
// @Success      200  {object}  letter.Letter
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /api/letters/{id} [get]
func (ctrl *WorkflowController) Get(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	l, err := ctrl.Service.GetLetter(c.UserContext(), a, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(l)
}

// Update godoc
// @Summary      Edit a draft letter
// @Tags         letters
// @Accept       json
// @Produce      json
// @Param        id     path      string          true  "Letter ID"
// @Param        input  body      EditDraftInput  true  "Changes"
// @Success      200    {object}  letter.Letter
// @Failure      409    {object}  errors.ErrorResponse
// @Router       /api/letters/{id} [put]
func (ctrl *WorkflowController) Update(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var input EditDraftInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	l, err := ctrl.Service.EditDraft(c.UserContext(), a, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(l)
}

// Delete godoc
// @Summary      Delete a draft letter
// @Tags         letters
// @Param        id   path  string  true  "Letter ID"
// @Success      204
// @Router       /api/letters/{id} [delete]
func (ctrl *WorkflowController) Delete(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	if err := ctrl.Service.DeleteDraft(c.UserContext(), a, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Submit godoc
// @Summary      Submit a draft for approval
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Letter ID"
// @Success      200  {object}  letter.Letter
// @Router       /api/letters/{id}/submit [post]
func (ctrl *WorkflowController) Submit(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req SubmitRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	l, err := ctrl.Service.SubmitLetter(c.UserContext(), a, c.Params("id"), req.ExpectedVersion)
	if err != nil {
		return err
	}
	return c.JSON(l)
}

// ActOnStep godoc
// @Summary      Approve or reject a workflow level
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Param        id      path      string      true  "Letter ID"
// @Param        level   path      int         true  "Workflow level"
// @Param        action  body      StepAction  true  "Outcome"
// @Success      200     {object}  letter.Letter
// @Router       /api/letters/{id}/steps/{level} [post]
func (ctrl *WorkflowController) ActOnStep(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	level, err := c.ParamsInt("level")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid level")
	}
	var action StepAction
	if err := c.BodyParser(&action); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	action.Level = level
	l, err := ctrl.Service.ActOnStep(c.UserContext(), a, c.Params("id"), action)
	if err != nil {
		return err
	}
	return c.JSON(l)
}

type decisionRequest struct {
	Comment         string `json:"comment"`
	ExpectedVersion int64  `json:"version,omitempty"`
}

func (ctrl *WorkflowController) decide(c *fiber.Ctx, outcome Outcome) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req decisionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	l, err := ctrl.Service.ActOnCurrentStep(c.UserContext(), a, c.Params("id"), outcome, req.Comment, req.ExpectedVersion)
	if err != nil {
		return err
	}
	return c.JSON(l)
}

// Approve godoc
// @Summary      Approve the pending workflow level
// @Tags         workflow
// @Param        id   path      string  true  "Letter ID"
// @Success      200  {object}  letter.Letter
// @Router       /api/letters/{id}/approve [post]
func (ctrl *WorkflowController) Approve(c *fiber.Ctx) error {
	return ctrl.decide(c, OutcomeApproved)
}

// Reject godoc
// @Summary      Reject the pending workflow level
// @Tags         workflow
// @Param        id   path      string  true  "Letter ID"
// @Success      200  {object}  letter.Letter
// @Router       /api/letters/{id}/reject [post]
func (ctrl *WorkflowController) Reject(c *fiber.Ctx) error {
	return ctrl.decide(c, OutcomeRejected)
}

// Sign godoc
// @Summary      Sign an approved letter
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Param        id   path      string       true  "Letter ID"
// @Param        req  body      SignRequest  false "Signature note"
// @Success      200  {object}  letter.Letter
// @Router       /api/letters/{id}/sign [post]
func (ctrl *WorkflowController) Sign(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req SignRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	l, err := ctrl.Service.SignLetter(c.UserContext(), a, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(l)
}

// ListChains godoc
// @Summary      List configured approval chains
// @Tags         workflow
// @Produce      json
// @Success      200  {array}  ApprovalChain
// @Router       /api/workflow/chains [get]
func (ctrl *WorkflowController) ListChains(c *fiber.Ctx) error {
	return c.JSON(ctrl.Service.Chains())
}
