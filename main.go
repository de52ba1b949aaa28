package main

import (
	"studio-api/core/logger"
	"studio-api/core/server"
)

// @title Studio API
// @version 1.0
// @description Group-class scheduling and booking backend for studio operations.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
	}
}
