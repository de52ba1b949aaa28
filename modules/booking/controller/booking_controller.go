package controller

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"studio-api/core/constants"
	"studio-api/core/controller"
	"studio-api/core/errors"
	"studio-api/core/middleware"
	"studio-api/core/utils"
	"studio-api/modules/booking/dto"
	"studio-api/modules/booking/service"
)

type BookingController struct {
	service service.BookingServiceInterface
	controller.BaseController
}

func NewBookingController(service service.BookingServiceInterface) *BookingController {
	return &BookingController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// Book creates a booking (or waitlist entry) for a class instance
// @Summary Book a class
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.BookRequest true "Instance to book"
// @Success 200 {object} dto.BookingResponse
// @Failure 409 {object} errors.AppError
// @Failure 410 {object} errors.AppError
// @Router /private/bookings [post]
func (c *BookingController) Book(ctx echo.Context) error {
	claims, appErr := middleware.ClaimsFromContext(ctx)
	if appErr != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	req := new(dto.BookRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	classDate, err := time.Parse(constants.DateLayout, req.ClassDate)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "class_date must be YYYY-MM-DD", nil)
	}

	participantID := claims.UserID
	if req.ParticipantID != "" && claims.Role == utils.RoleStaff {
		participantID, err = uuid.Parse(req.ParticipantID)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidInput, "participant_id must be a UUID", nil)
		}
	}

	resp, svcErr := c.service.Book(ctx.Request().Context(), participantID, req.ScheduleID, classDate)
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Booking created")
}

// Cancel cancels a booking
// @Summary Cancel a booking
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 422 {object} errors.AppError
// @Router /private/bookings/{id} [delete]
func (c *BookingController) Cancel(ctx echo.Context) error {
	claims, appErr := middleware.ClaimsFromContext(ctx)
	if appErr != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	byStaff := claims.Role == utils.RoleStaff
	resp, svcErr := c.service.CancelBooking(ctx.Request().Context(), ctx.Param("id"), claims.UserID, byStaff)
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Booking cancelled")
}

// Promote explicitly promotes a waitlisted booking (staff)
// @Summary Promote from waitlist
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 409 {object} errors.AppError
// @Router /private/bookings/{id}/promote [post]
func (c *BookingController) Promote(ctx echo.Context) error {
	resp, svcErr := c.service.PromoteFromWaitlist(ctx.Request().Context(), ctx.Param("id"))
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Booking promoted")
}

// CheckIn marks a booked participant present (staff)
// @Summary Check in
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingResponse
// @Router /private/bookings/{id}/check-in [post]
func (c *BookingController) CheckIn(ctx echo.Context) error {
	resp, svcErr := c.service.CheckIn(ctx.Request().Context(), ctx.Param("id"))
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Checked in")
}

// UndoCheckIn reverts a check-in (staff)
// @Summary Undo check-in
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingResponse
// @Router /private/bookings/{id}/undo-check-in [post]
func (c *BookingController) UndoCheckIn(ctx echo.Context) error {
	resp, svcErr := c.service.UndoCheckIn(ctx.Request().Context(), ctx.Param("id"))
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Check-in reverted")
}

// GetMyBookings lists the caller's upcoming bookings
// @Summary List my bookings
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.BookingResponse
// @Router /private/bookings/my [get]
func (c *BookingController) GetMyBookings(ctx echo.Context) error {
	claims, appErr := middleware.ClaimsFromContext(ctx)
	if appErr != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized", nil)
	}

	resp, svcErr := c.service.GetMyBookings(ctx.Request().Context(), claims.UserID)
	if svcErr != nil {
		return c.ErrorResponse(ctx, svcErr)
	}
	return c.SuccessResponse(ctx, resp, "Bookings retrieved")
}
