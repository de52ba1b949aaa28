package controller

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"studio-api/core/constants"
	"studio-api/core/controller"
	"studio-api/core/errors"
	"studio-api/modules/schedule/dto"
	"studio-api/modules/schedule/service"
)

type ScheduleController struct {
	service service.ScheduleServiceInterface
	controller.BaseController
}

func NewScheduleController(service service.ScheduleServiceInterface) *ScheduleController {
	return &ScheduleController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// Create creates a weekly recurring schedule
// @Summary Create a recurring schedule
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateScheduleRequest true "Schedule template"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} errors.AppError
// @Router /private/schedules [post]
func (c *ScheduleController) Create(ctx echo.Context) error {
	req := new(dto.CreateScheduleRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	resp, svcErr := c.service.Create(ctx.Request().Context(), req)
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Schedule created")
}

// GetByID returns one recurring schedule
// @Summary Get a schedule
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 404 {object} errors.AppError
// @Router /private/schedules/{id} [get]
func (c *ScheduleController) GetByID(ctx echo.Context) error {
	resp, svcErr := c.service.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Schedule retrieved")
}

// ListByLocation lists recurring schedules for a location
// @Summary List schedules
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param location_id query string true "Location ID"
// @Success 200 {array} dto.ScheduleResponse
// @Router /private/schedules [get]
func (c *ScheduleController) ListByLocation(ctx echo.Context) error {
	locationID, err := uuid.Parse(ctx.QueryParam("location_id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "location_id must be a UUID", nil)
	}

	resp, svcErr := c.service.ListByLocation(ctx.Request().Context(), locationID)
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Schedules retrieved")
}

// Update edits the recurring template going forward
// @Summary Update a schedule
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param request body dto.UpdateScheduleRequest true "Fields to change"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 404 {object} errors.AppError
// @Router /private/schedules/{id} [put]
func (c *ScheduleController) Update(ctx echo.Context) error {
	req := new(dto.UpdateScheduleRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	resp, svcErr := c.service.Update(ctx.Request().Context(), ctx.Param("id"), req)
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Schedule updated")
}

// Delete removes a recurring schedule
// @Summary Delete a schedule
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.AppError
// @Router /private/schedules/{id} [delete]
func (c *ScheduleController) Delete(ctx echo.Context) error {
	if svcErr := c.service.Delete(ctx.Request().Context(), ctx.Param("id")); svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, nil, "Schedule deleted")
}

// EditInstance overrides one occurrence without touching the template
// @Summary Override a single class instance
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param date path string true "Class date (YYYY-MM-DD)"
// @Param request body dto.EditInstanceRequest true "Override fields"
// @Success 200 {object} dto.ExceptionResponse
// @Failure 409 {object} errors.AppError
// @Router /private/schedules/{id}/instances/{date} [patch]
func (c *ScheduleController) EditInstance(ctx echo.Context) error {
	date, ok := c.instanceDate(ctx)
	if !ok {
		return c.BadRequest(errors.ErrInvalidInput, "date must be YYYY-MM-DD", nil)
	}

	req := new(dto.EditInstanceRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	resp, svcErr := c.service.EditInstance(ctx.Request().Context(), ctx.Param("id"), date, req)
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Instance updated")
}

// CancelInstance strikes one occurrence and cancels its bookings
// @Summary Cancel a single class instance
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param id path string true "Schedule ID"
// @Param date path string true "Class date (YYYY-MM-DD)"
// @Success 200 {object} dto.ExceptionResponse
// @Failure 409 {object} errors.AppError
// @Router /private/schedules/{id}/instances/{date}/cancel [post]
func (c *ScheduleController) CancelInstance(ctx echo.Context) error {
	date, ok := c.instanceDate(ctx)
	if !ok {
		return c.BadRequest(errors.ErrInvalidInput, "date must be YYYY-MM-DD", nil)
	}

	resp, svcErr := c.service.CancelInstance(ctx.Request().Context(), ctx.Param("id"), date)
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Instance cancelled")
}

// DeleteInstance silently removes one occurrence
// @Summary Delete a single class instance
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param id path string true "Schedule ID"
// @Param date path string true "Class date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} errors.AppError
// @Router /private/schedules/{id}/instances/{date} [delete]
func (c *ScheduleController) DeleteInstance(ctx echo.Context) error {
	date, ok := c.instanceDate(ctx)
	if !ok {
		return c.BadRequest(errors.ErrInvalidInput, "date must be YYYY-MM-DD", nil)
	}

	if svcErr := c.service.DeleteInstance(ctx.Request().Context(), ctx.Param("id"), date); svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, nil, "Instance deleted")
}

func (c *ScheduleController) instanceDate(ctx echo.Context) (time.Time, bool) {
	date, err := time.Parse(constants.DateLayout, ctx.Param("date"))
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
