package booking

import (
	"time"

	"github.com/labstack/echo/v4"

	"studio-api/core/clock"
	"studio-api/core/config"
	"studio-api/core/database"
	"studio-api/core/middleware"
	"studio-api/modules/booking/controller"
	"studio-api/modules/booking/repository"
	"studio-api/modules/booking/router"
	"studio-api/modules/booking/service"
	classdefRepo "studio-api/modules/classdef/repository"
	notificationService "studio-api/modules/notification/service"
	scheduleRepo "studio-api/modules/schedule/repository"
	timetableService "studio-api/modules/timetable/service"
)

func Init(
	e *echo.Group,
	db database.Database,
	mw *middleware.Middleware,
	dispatcher notificationService.Dispatcher,
	loc *time.Location,
	clk clock.Clock,
	cfg config.BookingConfig,
) service.BookingServiceInterface {
	svc := service.NewBookingService(
		repository.NewBookingRepository(db),
		scheduleRepo.NewScheduleRepository(db),
		classdefRepo.NewClassDefRepository(db),
		dispatcher,
		timetableService.NewMaterializer(loc),
		&db,
		clk,
		cfg.CancellationCutoffHours,
	)
	ctrl := controller.NewBookingController(svc)

	router.NewBookingRouter(ctrl).Register(e, mw)

	return svc
}
