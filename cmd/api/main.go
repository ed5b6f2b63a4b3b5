package main

import (
	"os"

	"github.com/uniconnect/backend/internal/pkg/logger" // Still needed for initial error logging
	"github.com/uniconnect/backend/internal/server"
)

// @title UniConnect API
// @version 1.0
// @description API for UniConnect, a student and alumni networking platform
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://www.uniconnect.app/support
// @contact.email support@uniconnect.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	// NewServer orchestrates config loading, database setup, dependency
	// wiring and router construction.
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal arrives
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
	os.Exit(0)
}
