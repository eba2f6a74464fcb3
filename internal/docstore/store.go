// Package docstore holds the domain records the relations engine hydrates.
// Every backend stores schemaless JSON objects addressed by (collection, id).
package docstore

import (
	"context"
	"maps"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/emergent-company/emergent.relations/pkg/apperror"
)

// Record is one stored JSON object.
type Record = map[string]any

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ListOptions pages through a collection.
type ListOptions struct {
	Limit  int
	Offset int
}

// normalize clamps the page to [1, MaxListLimit] with a non-negative offset.
func (o ListOptions) normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// Store reads and writes records by collection.
type Store interface {
	// BatchReadByIDs returns the records of collection whose id is in ids.
	// Unknown ids and unknown collections yield no records and no error.
	BatchReadByIDs(ctx context.Context, collection string, ids []string) ([]Record, error)
	// List returns one page of collection.
	List(ctx context.Context, collection string, opts ListOptions) ([]Record, error)
	// Put inserts or replaces a record, assigning a new id when it has none.
	Put(ctx context.Context, collection string, rec Record) (Record, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// prepare validates a record for Put and returns a copy carrying its id.
func prepare(collection string, rec Record) (Record, string, error) {
	if collection == "" {
		return nil, "", apperror.NewBadRequest("collection is required")
	}
	if rec == nil {
		return nil, "", apperror.NewBadRequest("record must be a JSON object")
	}

	out := maps.Clone(rec)
	id := recordID(out)
	if id == "" {
		id = uuid.New().String()
	}
	out["id"] = id
	return out, id, nil
}

func recordID(rec Record) string {
	switch id := rec["id"].(type) {
	case string:
		return id
	case float64:
		if id == math.Trunc(id) && !math.IsInf(id, 0) {
			return strconv.FormatFloat(id, 'f', -1, 64)
		}
	}
	return ""
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
