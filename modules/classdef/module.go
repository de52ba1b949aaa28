package classdef

import (
	"github.com/labstack/echo/v4"

	"studio-api/core/database"
	"studio-api/core/middleware"
	"studio-api/modules/classdef/controller"
	"studio-api/modules/classdef/repository"
	"studio-api/modules/classdef/router"
	"studio-api/modules/classdef/service"
)

func Init(e *echo.Group, db database.Database, mw *middleware.Middleware) service.ClassDefServiceInterface {
	repo := repository.NewClassDefRepository(db)
	svc := service.NewClassDefService(repo)
	ctrl := controller.NewClassDefController(svc)

	router.NewClassDefRouter(ctrl).Register(e, mw)

	return svc
}
