package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/emergent-company/emergent.relations/internal/storage"
	"github.com/emergent-company/emergent.relations/pkg/apperror"
	"github.com/emergent-company/emergent.relations/pkg/logger"
)

const objectSuffix = ".json"

// ObjectStore is the subset of storage.Service the S3 backend uses.
type ObjectStore interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	ListKeys(ctx context.Context, prefix, startAfter string, limit int) ([]string, error)
	Ping(ctx context.Context) error
}

// S3Store keeps each record as a JSON object at {prefix}{collection}/{id}.json.
type S3Store struct {
	objects     ObjectStore
	prefix      string
	concurrency int
	log         *slog.Logger
}

// NewS3Store creates a store over objects. concurrency bounds the parallel
// reads of one batch.
func NewS3Store(objects ObjectStore, prefix string, concurrency int, log *slog.Logger) *S3Store {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &S3Store{
		objects:     objects,
		prefix:      prefix,
		concurrency: concurrency,
		log:         log.With(logger.Scope("docstore.s3")),
	}
}

// ObjectKey returns the key holding the record id of collection.
func (s *S3Store) ObjectKey(collection, id string) string {
	return s.collectionPrefix(collection) + url.PathEscape(id) + objectSuffix
}

func (s *S3Store) collectionPrefix(collection string) string {
	return s.prefix + url.PathEscape(collection) + "/"
}

// BatchReadByIDs reads the requested objects in parallel. Missing keys are absent.
func (s *S3Store) BatchReadByIDs(ctx context.Context, collection string, ids []string) ([]Record, error) {
	ids = uniqueIDs(ids)
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.ObjectKey(collection, id)
	}
	return s.readKeys(ctx, keys)
}

// List returns one page of collection in key order.
func (s *S3Store) List(ctx context.Context, collection string, opts ListOptions) ([]Record, error) {
	opts = opts.normalize()

	keys, err := s.objects.ListKeys(ctx, s.collectionPrefix(collection), "", opts.Offset+opts.Limit)
	if err != nil {
		return nil, apperror.ErrStorage.WithInternal(err)
	}
	if opts.Offset >= len(keys) {
		return []Record{}, nil
	}
	return s.readKeys(ctx, keys[opts.Offset:])
}

// Put writes the record as JSON.
func (s *S3Store) Put(ctx context.Context, collection string, rec Record) (Record, error) {
	rec, id, err := prepare(collection, rec)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return nil, apperror.NewBadRequest("record is not serializable").WithInternal(err)
	}
	if err := s.objects.PutObject(ctx, s.ObjectKey(collection, id), body, "application/json"); err != nil {
		return nil, apperror.ErrStorage.WithInternal(err)
	}
	return rec, nil
}

// Ping checks the bucket.
func (s *S3Store) Ping(ctx context.Context) error {
	if err := s.objects.Ping(ctx); err != nil {
		return apperror.ErrStorage.WithInternal(err)
	}
	return nil
}

// readKeys fetches keys concurrently and returns the found records in key order.
func (s *S3Store) readKeys(ctx context.Context, keys []string) ([]Record, error) {
	found := make([]Record, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, key := range keys {
		g.Go(func() error {
			data, err := s.objects.GetObject(gctx, key)
			if err != nil {
				if storage.IsNotFound(err) {
					return nil
				}
				return fmt.Errorf("get %s: %w", key, err)
			}

			var rec Record
			if err := json.Unmarshal(data, &rec); err != nil || rec == nil {
				s.log.Warn("skipping malformed object", slog.String("key", key))
				return nil
			}
			if recordID(rec) == "" {
				rec["id"] = idFromKey(key)
			}

			found[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, apperror.ErrStorage.WithInternal(err)
	}

	out := make([]Record, 0, len(keys))
	for _, rec := range found {
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func idFromKey(key string) string {
	name := key[strings.LastIndex(key, "/")+1:]
	name = strings.TrimSuffix(name, objectSuffix)
	if id, err := url.PathUnescape(name); err == nil {
		return id
	}
	return name
}
