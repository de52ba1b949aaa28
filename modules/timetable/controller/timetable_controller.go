package controller

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"studio-api/core/constants"
	"studio-api/core/controller"
	"studio-api/core/errors"
	"studio-api/core/middleware"
	"studio-api/core/utils"
	"studio-api/modules/timetable/service"
)

type TimetableController struct {
	service service.TimetableServiceInterface
	controller.BaseController
}

func NewTimetableController(service service.TimetableServiceInterface) *TimetableController {
	return &TimetableController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetTimetable materializes the bookable window for a location
// @Summary Get timetable
// @Tags Timetable
// @Security BearerAuth
// @Produce json
// @Param location_id query string true "Location ID"
// @Param from query string false "Window start (YYYY-MM-DD, default today)"
// @Param days query int false "Window length in days"
// @Param view query string false "participant (default) or management"
// @Success 200 {object} dto.TimetableResponse
// @Failure 400 {object} errors.AppError
// @Router /private/timetable [get]
func (c *TimetableController) GetTimetable(ctx echo.Context) error {
	claims, appErr := middleware.ClaimsFromContext(ctx)
	if appErr != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	locationID, err := uuid.Parse(ctx.QueryParam("location_id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "location_id is required", nil)
	}

	from := time.Now()
	if raw := ctx.QueryParam("from"); raw != "" {
		from, err = time.Parse(constants.DateLayout, raw)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidInput, "from must be YYYY-MM-DD", nil)
		}
	}

	days := 0
	if raw := ctx.QueryParam("days"); raw != "" {
		if days, err = strconv.Atoi(raw); err != nil {
			return c.BadRequest(errors.ErrInvalidInput, "days must be an integer", nil)
		}
	}

	view := service.ViewParticipant
	if ctx.QueryParam("view") == string(service.ViewManagement) {
		if claims.Role != utils.RoleStaff {
			return c.Forbidden(errors.ErrForbidden, "Management view requires staff access", nil)
		}
		view = service.ViewManagement
	}

	resp, svcErr := c.service.GetTimetable(ctx.Request().Context(), locationID, from, days, claims.UserID, view)
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Timetable retrieved")
}

// GetInstanceDetail returns one instance with its roster
// @Summary Get class instance detail
// @Tags Timetable
// @Security BearerAuth
// @Produce json
// @Param scheduleId path string true "Schedule ID"
// @Param date path string true "Class date (YYYY-MM-DD)"
// @Success 200 {object} dto.InstanceDetailResponse
// @Failure 404 {object} errors.AppError
// @Router /private/timetable/{scheduleId}/{date} [get]
func (c *TimetableController) GetInstanceDetail(ctx echo.Context) error {
	date, err := time.Parse(constants.DateLayout, ctx.Param("date"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "date must be YYYY-MM-DD", nil)
	}

	resp, svcErr := c.service.GetInstanceDetail(ctx.Request().Context(), ctx.Param("scheduleId"), date)
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Instance retrieved")
}
