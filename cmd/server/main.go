// Package main provides the entry point for the relations API server
//
// @title Emergent Relations API
// @description Serves stored records together with every entity they reference
// @BasePath /
// @schemes http https
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/emergent-company/emergent.relations/domain/health"
	"github.com/emergent-company/emergent.relations/domain/records"
	"github.com/emergent-company/emergent.relations/domain/relations"
	"github.com/emergent-company/emergent.relations/domain/tracing"
	"github.com/emergent-company/emergent.relations/internal/config"
	"github.com/emergent-company/emergent.relations/internal/docstore"
	"github.com/emergent-company/emergent.relations/internal/migrate"
	"github.com/emergent-company/emergent.relations/internal/server"
	"github.com/emergent-company/emergent.relations/internal/version"
	"github.com/emergent-company/emergent.relations/pkg/logger"
)

func main() {
	// .env.local overrides .env; Load() won't overwrite existing vars
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	backend := os.Getenv("DOCSTORE_BACKEND")
	if backend == "" {
		backend = config.BackendPostgres
	}

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		server.Module,
		tracing.Module,

		// Document store for the configured backend
		storeModules(backend),

		// Domain modules
		relations.Module,
		records.Module,
		health.Module,

		fx.Invoke(func(log *slog.Logger) {
			log.Info("emergent relations server", slog.Any("build", version.Info()), slog.String("docstore", backend))
		}),
	).Run()
}

// storeModules returns the document store for backend, migrating Postgres on start when enabled.
func storeModules(backend string) fx.Option {
	if backend == config.BackendPostgres {
		return fx.Options(docstore.BackendModule(backend), migrate.AutoMigrateModule)
	}
	return docstore.BackendModule(backend)
}
