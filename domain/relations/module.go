package relations

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/emergent-company/emergent.relations/internal/config"
)

// Module provides the hydration pipeline. A BatchReader must be supplied by
// the storage layer.
var Module = fx.Module("relations",
	fx.Provide(
		newLinkBuilder,
		newService,
	),
)

func newLinkBuilder(cfg *config.Config) *LinkBuilder {
	return NewLinkBuilder(cfg.Relations.APIPrefix, cfg.Relations.UIBaseURL)
}

func newService(reader BatchReader, links *LinkBuilder, cfg *config.Config, log *slog.Logger) *Service {
	return NewService(reader, links, Options{
		MaxConcurrentFetches: cfg.Relations.MaxConcurrentFetches,
		FailOpen:             cfg.Relations.FailOpen,
	}, log)
}
