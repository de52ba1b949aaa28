package worker

import (
	"fmt"

	"github.com/hibiken/asynq"

	"studio-api/core/logger"
)

// Worker is the in-process asynq consumer for background tasks, currently
// notification intent delivery. It shares the API server's redis.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func New(redisOpt asynq.RedisClientOpt, concurrency int) *Worker {
	return &Worker{
		server: asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: concurrency,
			Logger:      asynqLogger{},
		}),
		mux: asynq.NewServeMux(),
	}
}

// Handle registers a handler for one task type. Must be called before Start.
func (w *Worker) Handle(taskType string, handler asynq.HandlerFunc) {
	w.mux.HandleFunc(taskType, handler)
}

// Start runs the consumer in the background.
func (w *Worker) Start() {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			logger.Error("Worker:Run", err)
		}
	}()
}

// Shutdown waits for in-flight tasks to finish.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

// asynqLogger routes asynq's own log lines through the app logger.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...any) { logger.Debug(fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...any)  { logger.Info(fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...any)  { logger.Warn(fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...any) { logger.Error(fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...any) { logger.Error(fmt.Sprint(args...)) }
