package main

import (
	"context"
	"flag"
	"os"

	"github.com/aggiereview/aggiereview/internal/pkg/logger"
	"github.com/aggiereview/aggiereview/internal/server"
)

// @title Aggie Review API
// @version 1.0
// @description Professor and course reviews for NC A&T students
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@aggiereview.app

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
	configPath := flag.String("config", "", "path to the YAML config file (default configs/config.yaml)")
	flag.Parse()

	lgr := logger.Default()

	srv, err := server.NewServer(context.Background(), *configPath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		lgr.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	lgr.Info().Msg("Application finished gracefully.")
}
