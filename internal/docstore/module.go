package docstore

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/emergent-company/emergent.relations/internal/config"
	"github.com/emergent-company/emergent.relations/internal/database"
	"github.com/emergent-company/emergent.relations/internal/storage"
)

// PostgresModule stores records in kb.documents. Requires database.Module.
var PostgresModule = fx.Module("docstore",
	fx.Provide(
		fx.Annotate(NewPostgresStore, fx.As(new(Store))),
	),
)

// S3Module stores records as objects. Requires storage.Module.
var S3Module = fx.Module("docstore",
	fx.Provide(
		fx.Annotate(newS3Store, fx.As(new(Store))),
	),
)

// MemoryModule keeps records in process memory.
var MemoryModule = fx.Module("docstore",
	fx.Provide(
		fx.Annotate(NewMemoryStore, fx.As(new(Store))),
	),
)

// ModuleFor returns the store module of backend, MemoryModule when unknown.
func ModuleFor(backend string) fx.Option {
	switch backend {
	case config.BackendPostgres:
		return PostgresModule
	case config.BackendS3:
		return S3Module
	default:
		return MemoryModule
	}
}

// BackendModule returns ModuleFor(backend) together with the infrastructure it needs.
func BackendModule(backend string) fx.Option {
	switch backend {
	case config.BackendPostgres:
		return fx.Options(database.Module, PostgresModule)
	case config.BackendS3:
		return fx.Options(storage.Module, S3Module)
	default:
		return MemoryModule
	}
}

func newS3Store(svc *storage.Service, cfg *config.Config, log *slog.Logger) *S3Store {
	return NewS3Store(svc, cfg.DocStore.S3Prefix, cfg.DocStore.S3Concurrency, log)
}
