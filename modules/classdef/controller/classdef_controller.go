package controller

import (
	"github.com/labstack/echo/v4"

	"studio-api/core/controller"
	"studio-api/core/errors"
	"studio-api/modules/classdef/dto"
	"studio-api/modules/classdef/service"
)

type ClassDefController struct {
	service service.ClassDefServiceInterface
	controller.BaseController
}

func NewClassDefController(service service.ClassDefServiceInterface) *ClassDefController {
	return &ClassDefController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// Create registers a new class definition
// @Summary Create class definition
// @Tags ClassDefinition
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateClassDefinitionRequest true "Class definition"
// @Success 200 {object} dto.ClassDefinitionResponse
// @Router /private/class-definitions [post]
func (c *ClassDefController) Create(ctx echo.Context) error {
	req := new(dto.CreateClassDefinitionRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	resp, appErr := c.service.Create(ctx.Request().Context(), req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Class definition created")
}

// GetByID returns one class definition
// @Summary Get class definition
// @Tags ClassDefinition
// @Security BearerAuth
// @Produce json
// @Param id path string true "Class definition ID"
// @Success 200 {object} dto.ClassDefinitionResponse
// @Router /private/class-definitions/{id} [get]
func (c *ClassDefController) GetByID(ctx echo.Context) error {
	resp, appErr := c.service.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Class definition retrieved")
}

// GetBySlug resolves a class definition by its URL slug
// @Summary Get class definition by slug
// @Tags ClassDefinition
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Class definition slug"
// @Success 200 {object} dto.ClassDefinitionResponse
// @Router /private/class-definitions/slug/{slug} [get]
func (c *ClassDefController) GetBySlug(ctx echo.Context) error {
	resp, appErr := c.service.GetBySlug(ctx.Request().Context(), ctx.Param("slug"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Class definition retrieved")
}

// List returns all class definitions
// @Summary List class definitions
// @Tags ClassDefinition
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.ClassDefinitionResponse
// @Router /private/class-definitions [get]
func (c *ClassDefController) List(ctx echo.Context) error {
	resp, appErr := c.service.List(ctx.Request().Context())
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Class definitions retrieved")
}

// Update edits a class definition
// @Summary Update class definition
// @Tags ClassDefinition
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Class definition ID"
// @Param request body dto.UpdateClassDefinitionRequest true "Fields to update"
// @Success 200 {object} dto.ClassDefinitionResponse
// @Router /private/class-definitions/{id} [put]
func (c *ClassDefController) Update(ctx echo.Context) error {
	req := new(dto.UpdateClassDefinitionRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	resp, appErr := c.service.Update(ctx.Request().Context(), ctx.Param("id"), req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, resp, "Class definition updated")
}

// Delete removes an unreferenced class definition
// @Summary Delete class definition
// @Tags ClassDefinition
// @Security BearerAuth
// @Produce json
// @Param id path string true "Class definition ID"
// @Success 200 {object} map[string]string
// @Router /private/class-definitions/{id} [delete]
func (c *ClassDefController) Delete(ctx echo.Context) error {
	if appErr := c.service.Delete(ctx.Request().Context(), ctx.Param("id")); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Class definition deleted")
}
