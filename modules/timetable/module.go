package timetable

import (
	"time"

	"github.com/labstack/echo/v4"

	"studio-api/core/clock"
	"studio-api/core/database"
	"studio-api/core/middleware"
	bookingRepo "studio-api/modules/booking/repository"
	classdefRepo "studio-api/modules/classdef/repository"
	memberService "studio-api/modules/member/service"
	scheduleRepo "studio-api/modules/schedule/repository"
	"studio-api/modules/timetable/controller"
	"studio-api/modules/timetable/router"
	"studio-api/modules/timetable/service"
)

func Init(
	e *echo.Group,
	db database.Database,
	mw *middleware.Middleware,
	members memberService.MemberServiceInterface,
	loc *time.Location,
	clk clock.Clock,
) service.TimetableServiceInterface {
	svc := service.NewTimetableService(
		scheduleRepo.NewScheduleRepository(db),
		bookingRepo.NewBookingRepository(db),
		classdefRepo.NewClassDefRepository(db),
		members,
		service.NewMaterializer(loc),
		clk,
	)
	ctrl := controller.NewTimetableController(svc)

	router.NewTimetableRouter(ctrl).Register(e, mw)

	return svc
}
