package router

import (
	"github.com/labstack/echo/v4"

	"studio-api/core/middleware"
	"studio-api/modules/timetable/controller"
)

type TimetableRouter struct {
	controller *controller.TimetableController
}

func NewTimetableRouter(controller *controller.TimetableController) *TimetableRouter {
	return &TimetableRouter{controller: controller}
}

func (r *TimetableRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/timetable", mw.AuthMiddleware())
	group.GET("", r.controller.GetTimetable)
	group.GET("/:scheduleId/:date", r.controller.GetInstanceDetail)
}
