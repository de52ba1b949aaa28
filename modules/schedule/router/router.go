package router

import (
	"github.com/labstack/echo/v4"

	"studio-api/core/middleware"
	"studio-api/modules/schedule/controller"
)

type ScheduleRouter struct {
	controller *controller.ScheduleController
}

func NewScheduleRouter(controller *controller.ScheduleController) *ScheduleRouter {
	return &ScheduleRouter{controller: controller}
}

func (r *ScheduleRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/schedules", mw.AuthMiddleware())
	group.GET("", r.controller.ListByLocation)
	group.GET("/:id", r.controller.GetByID)

	staff := group.Group("", mw.StaffOnly())
	staff.POST("", r.controller.Create)
	staff.PUT("/:id", r.controller.Update)
	staff.DELETE("/:id", r.controller.Delete)
	staff.PATCH("/:id/instances/:date", r.controller.EditInstance)
	staff.POST("/:id/instances/:date/cancel", r.controller.CancelInstance)
	staff.DELETE("/:id/instances/:date", r.controller.DeleteInstance)
}
