package relations

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/emergent-company/emergent.relations/pkg/logger"
	"github.com/emergent-company/emergent.relations/pkg/tracing"
)

// Options tunes the hydration pipeline.
type Options struct {
	// MaxConcurrentFetches bounds concurrent per-collection reads, 0 = unbounded.
	MaxConcurrentFetches int
	// FailOpen returns data with no relations instead of failing on storage errors.
	FailOpen bool
}

// Service runs the hydration pipeline: scan, group, load, coerce, build the
// relations map and normalize.
type Service struct {
	scanner    *Scanner
	loader     *Loader
	normalizer *Normalizer
	failOpen   bool
	log        *slog.Logger
}

// NewService creates a new relations service.
func NewService(reader BatchReader, links *LinkBuilder, opts Options, log *slog.Logger) *Service {
	return &Service{
		scanner:    NewScanner(DefaultRegistry()),
		loader:     NewLoader(reader, opts.MaxConcurrentFetches, log),
		normalizer: NewNormalizer(links),
		failOpen:   opts.FailOpen,
		log:        log.With(logger.Scope("relations.svc")),
	}
}

// Resolve loads every entity referenced by records. It returns a nil map when
// the records reference nothing.
func (s *Service) Resolve(ctx context.Context, records []any) (RelationsMap, error) {
	group, err := s.scanner.Group(records)
	if err != nil {
		return nil, err
	}
	if len(group) == 0 {
		return nil, nil
	}

	loaded, err := s.loader.Load(ctx, group)
	if err != nil {
		return nil, err
	}
	return BuildRelationsMap(loaded, s.log)
}

// Hydrate coerces raw primary data of collection and returns it with its
// relations. data is nil, one record, or a sequence of records.
func (s *Service) Hydrate(ctx context.Context, collection string, data any) (*NormalizedResponse, error) {
	ctx, span := tracing.Start(ctx, "relations.hydrate",
		attribute.String("relations.collection", collection),
	)
	defer span.End()

	var (
		primary any
		records []any
	)
	switch v := data.(type) {
	case nil:
	case map[string]any:
		e, err := Coerce(collection, v)
		if err != nil {
			tracing.Fail(span, err)
			return nil, err
		}
		primary, records = e, []any{v}
	case []any:
		entities, err := CoerceAll(collection, v)
		if err != nil {
			tracing.Fail(span, err)
			return nil, err
		}
		primary, records = entities, v
	case []Record:
		records = make([]any, len(v))
		for i, rec := range v {
			records[i] = rec
		}
		entities, err := CoerceAll(collection, records)
		if err != nil {
			tracing.Fail(span, err)
			return nil, err
		}
		primary = entities
	default:
		err := ErrInvalidData.WithDetails(map[string]any{"type": fmt.Sprintf("%T", data)})
		tracing.Fail(span, err)
		return nil, err
	}

	return s.finish(ctx, span, primary, records)
}

// HydrateEntities returns typed primary data with its relations. Foreign keys
// are read through the registry. data is nil, an Entity or a []Entity.
func (s *Service) HydrateEntities(ctx context.Context, data any) (*NormalizedResponse, error) {
	ctx, span := tracing.Start(ctx, "relations.hydrate_entities")
	defer span.End()

	var records []any
	switch v := data.(type) {
	case nil:
	case Entity:
		records = []any{v}
	case []Entity:
		records = make([]any, len(v))
		for i, e := range v {
			records[i] = e
		}
	default:
		err := ErrInvalidData.WithDetails(map[string]any{"type": fmt.Sprintf("%T", data)})
		tracing.Fail(span, err)
		return nil, err
	}

	return s.finish(ctx, span, data, records)
}

// Normalize decorates already resolved data and relations.
func (s *Service) Normalize(data any, rels RelationsMap) (*NormalizedResponse, error) {
	return s.normalizer.Normalize(data, rels)
}

func (s *Service) finish(ctx context.Context, span trace.Span, primary any, records []any) (*NormalizedResponse, error) {
	rels, err := s.Resolve(ctx, records)
	if err != nil {
		if !s.failOpen || !IsStorage(err) || ctx.Err() != nil {
			tracing.Fail(span, err)
			return nil, err
		}
		s.log.Warn("relation resolution failed, responding without relations", logger.Error(err))
		rels = nil
	}

	resp, err := s.normalizer.Normalize(primary, rels)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("relations.records", len(records)),
		attribute.Int("relations.entities", rels.Size()),
	)
	return resp, nil
}
