package router

import (
	"github.com/labstack/echo/v4"

	"studio-api/core/middleware"
	"studio-api/modules/classdef/controller"
)

type ClassDefRouter struct {
	controller *controller.ClassDefController
}

func NewClassDefRouter(controller *controller.ClassDefController) *ClassDefRouter {
	return &ClassDefRouter{controller: controller}
}

func (r *ClassDefRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/class-definitions", mw.AuthMiddleware())
	group.GET("", r.controller.List)
	group.GET("/slug/:slug", r.controller.GetBySlug)
	group.GET("/:id", r.controller.GetByID)

	staff := group.Group("", mw.StaffOnly())
	staff.POST("", r.controller.Create)
	staff.PUT("/:id", r.controller.Update)
	staff.DELETE("/:id", r.controller.Delete)
}
