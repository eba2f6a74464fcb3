package docstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/emergent-company/emergent.relations/pkg/apperror"
	"github.com/emergent-company/emergent.relations/pkg/logger"
)

// Document is one row of kb.documents.
type Document struct {
	bun.BaseModel `bun:"table:kb.documents,alias:d"`

	Collection string         `bun:"collection,pk"`
	ID         string         `bun:"id,pk"`
	Body       map[string]any `bun:"body,type:jsonb,notnull,default:'{}'"`
	CreatedAt  time.Time      `bun:"created_at,notnull,default:now()"`
	UpdatedAt  time.Time      `bun:"updated_at,notnull,default:now()"`
}

// record returns the body with the row id applied.
func (d *Document) record() Record {
	rec := make(Record, len(d.Body)+1)
	for k, v := range d.Body {
		rec[k] = v
	}
	rec["id"] = d.ID
	return rec
}

// PostgresStore stores records as jsonb rows in kb.documents.
type PostgresStore struct {
	db  bun.IDB
	log *slog.Logger
}

// NewPostgresStore creates a store over db.
func NewPostgresStore(db bun.IDB, log *slog.Logger) *PostgresStore {
	return &PostgresStore{
		db:  db,
		log: log.With(logger.Scope("docstore.postgres")),
	}
}

// BatchReadByIDs reads all requested rows of collection in one query.
func (s *PostgresStore) BatchReadByIDs(ctx context.Context, collection string, ids []string) ([]Record, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []Record{}, nil
	}

	var docs []Document
	err := s.db.NewSelect().
		Model(&docs).
		Where("collection = ?", collection).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		s.log.Error("batch read failed",
			slog.String("collection", collection),
			slog.Int("ids", len(ids)),
			logger.Error(err),
		)
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	out := make([]Record, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].record())
	}
	return out, nil
}

// List returns one page of collection, newest first.
func (s *PostgresStore) List(ctx context.Context, collection string, opts ListOptions) ([]Record, error) {
	opts = opts.normalize()

	var docs []Document
	err := s.db.NewSelect().
		Model(&docs).
		Where("collection = ?", collection).
		Order("created_at DESC", "id ASC").
		Limit(opts.Limit).
		Offset(opts.Offset).
		Scan(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	out := make([]Record, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].record())
	}
	return out, nil
}

// Put upserts the record; an existing row keeps its created_at.
func (s *PostgresStore) Put(ctx context.Context, collection string, rec Record) (Record, error) {
	rec, id, err := prepare(collection, rec)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doc := &Document{
		Collection: collection,
		ID:         id,
		Body:       rec,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err = s.db.NewInsert().
		Model(doc).
		On("CONFLICT (collection, id) DO UPDATE").
		Set("body = EXCLUDED.body").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		s.log.Error("failed to put document",
			slog.String("collection", collection),
			slog.String("id", id),
			logger.Error(err),
		)
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return rec, nil
}

// Ping runs a trivial query.
func (s *PostgresStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.NewSelect().ColumnExpr("1").Scan(ctx, &one); err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}
