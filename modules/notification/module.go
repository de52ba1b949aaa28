package notification

import (
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"

	"studio-api/core/database"
	"studio-api/core/middleware"
	"studio-api/modules/notification/controller"
	"studio-api/modules/notification/repository"
	"studio-api/modules/notification/router"
	"studio-api/modules/notification/service"
)

// Init wires the notification module and returns the service (for the
// worker's task handler) plus the dispatcher the booking engine emits
// intents through.
func Init(e *echo.Group, db database.Database, mw *middleware.Middleware, asynqClient *asynq.Client) (*service.NotificationService, service.Dispatcher) {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(e, mw)

	return svc, service.NewAsynqDispatcher(asynqClient)
}
