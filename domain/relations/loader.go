package relations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/emergent-company/emergent.relations/pkg/logger"
	"github.com/emergent-company/emergent.relations/pkg/tracing"
)

// BatchReader reads every record of collection whose id is in ids. Ids that do
// not exist are simply absent from the result.
type BatchReader interface {
	BatchReadByIDs(ctx context.Context, collection string, ids []string) ([]Record, error)
}

// Loader fetches the entities of a RelationGroup, one read per collection.
type Loader struct {
	reader BatchReader
	limit  int
	log    *slog.Logger
}

// NewLoader creates a loader. limit bounds the number of concurrent reads;
// zero or less means one goroutine per collection.
func NewLoader(reader BatchReader, limit int, log *slog.Logger) *Loader {
	return &Loader{
		reader: reader,
		limit:  limit,
		log:    log.With(logger.Scope("relations.loader")),
	}
}

// Load issues one concurrent read per collection of group and waits for all of
// them. The first failure cancels the remaining reads and is returned as
// ErrRelationStorage; no partial result is returned with it.
func (l *Loader) Load(ctx context.Context, group RelationGroup) (map[string][]Record, error) {
	collections := group.Collections()
	loaded := make(map[string][]Record, len(collections))
	if len(collections) == 0 {
		return loaded, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if l.limit > 0 {
		g.SetLimit(l.limit)
	}

	for _, collection := range collections {
		ids := group[collection]
		g.Go(func() error {
			records, err := l.fetch(gctx, collection, ids)
			if err != nil {
				return err
			}
			mu.Lock()
			loaded[collection] = records
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, ErrRelationStorage.WithInternal(err)
	}
	return loaded, nil
}

func (l *Loader) fetch(ctx context.Context, collection string, ids []string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracing.Start(ctx, "relations.batch_fetch",
		attribute.String("relations.collection", collection),
		attribute.Int("relations.ids", len(ids)),
	)
	defer span.End()

	start := time.Now()
	records, err := l.reader.BatchReadByIDs(ctx, collection, ids)
	elapsed := time.Since(start)

	if err != nil {
		outcome := outcomeError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = outcomeCanceled
		}
		FetchDuration.WithLabelValues(collection, outcome).Observe(elapsed.Seconds())
		tracing.Fail(span, err)
		l.log.Error("batch read failed",
			slog.String("collection", collection),
			slog.Int("ids", len(ids)),
			logger.Error(err),
		)
		return nil, fmt.Errorf("batch read %q: %w", collection, err)
	}
	FetchDuration.WithLabelValues(collection, outcomeOK).Observe(elapsed.Seconds())

	if records == nil {
		records = []Record{}
	}
	span.SetAttributes(attribute.Int("relations.found", len(records)))

	if missing := missingIDs(ids, records); len(missing) > 0 {
		MissingEntities.WithLabelValues(collection).Add(float64(len(missing)))
		l.log.Debug("referenced entities not found",
			slog.String("collection", collection),
			slog.Any("ids", missing),
		)
	}

	l.log.Debug("batch read",
		slog.String("collection", collection),
		slog.Int("requested", len(ids)),
		slog.Int("found", len(records)),
		slog.Duration("took", elapsed),
	)
	return records, nil
}

func missingIDs(ids []string, records []Record) []string {
	found := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if id := idString(rec[fieldID]); id != "" {
			found[id] = struct{}{}
		}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
