package router

import (
	"github.com/labstack/echo/v4"

	"studio-api/core/middleware"
	"studio-api/modules/booking/controller"
)

type BookingRouter struct {
	controller *controller.BookingController
}

func NewBookingRouter(controller *controller.BookingController) *BookingRouter {
	return &BookingRouter{controller: controller}
}

func (r *BookingRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/bookings", mw.AuthMiddleware())
	group.POST("", r.controller.Book)
	group.GET("/my", r.controller.GetMyBookings)
	group.DELETE("/:id", r.controller.Cancel)

	staff := group.Group("", mw.StaffOnly())
	staff.POST("/:id/promote", r.controller.Promote)
	staff.POST("/:id/check-in", r.controller.CheckIn)
	staff.POST("/:id/undo-check-in", r.controller.UndoCheckIn)
}
