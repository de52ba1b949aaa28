package schedule

import (
	"github.com/labstack/echo/v4"

	"studio-api/core/database"
	"studio-api/core/middleware"
	bookingRepo "studio-api/modules/booking/repository"
	classdefRepo "studio-api/modules/classdef/repository"
	notificationService "studio-api/modules/notification/service"
	"studio-api/modules/schedule/controller"
	"studio-api/modules/schedule/repository"
	"studio-api/modules/schedule/router"
	"studio-api/modules/schedule/service"
)

func Init(
	e *echo.Group,
	db database.Database,
	mw *middleware.Middleware,
	dispatcher notificationService.Dispatcher,
) service.ScheduleServiceInterface {
	svc := service.NewScheduleService(
		repository.NewScheduleRepository(db),
		bookingRepo.NewBookingRepository(db),
		classdefRepo.NewClassDefRepository(db),
		dispatcher,
		&db,
	)
	ctrl := controller.NewScheduleController(svc)

	router.NewScheduleRouter(ctrl).Register(e, mw)

	return svc
}
