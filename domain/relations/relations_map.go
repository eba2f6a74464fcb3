package relations

import (
	"log/slog"
	"sort"
	"strings"
)

// RelationsMap is the hydrated lookup table: lower-cased collection -> id -> entity.
type RelationsMap map[string]map[string]Entity

// Get returns the entity with id in collection. The collection name is
// matched in its lower-cased form, so "Team" and "team" are equivalent.
func (m RelationsMap) Get(collection, id string) (Entity, bool) {
	if m == nil || id == "" {
		return nil, false
	}
	e, ok := m[mapKey(collection)][id]
	return e, ok
}

// Size returns the number of entities across all collections.
func (m RelationsMap) Size() int {
	n := 0
	for _, byID := range m {
		n += len(byID)
	}
	return n
}

func mapKey(collection string) string {
	return strings.ToLower(collection)
}

// BuildRelationsMap coerces loaded records into a RelationsMap. Every loaded
// collection gets a key, even when nothing was found. Records without an id
// are skipped. A repeated (collection, id) keeps the later record.
func BuildRelationsMap(loaded map[string][]Record, log *slog.Logger) (RelationsMap, error) {
	collections := make([]string, 0, len(loaded))
	for c := range loaded {
		collections = append(collections, c)
	}
	sort.Strings(collections)

	rels := make(RelationsMap, len(collections))
	for _, collection := range collections {
		records := loaded[collection]
		key := mapKey(collection)
		byID, ok := rels[key]
		if !ok {
			byID = make(map[string]Entity, len(records))
			rels[key] = byID
		}

		if KindOf(collection) == KindOpaque && len(records) > 0 {
			UnknownCollections.WithLabelValues(collection).Add(float64(len(records)))
			log.Warn("unknown collection, carrying records as opaque entities",
				slog.String("collection", collection),
				slog.Int("count", len(records)),
			)
		}

		for i, raw := range records {
			e, err := Coerce(collection, raw)
			if err != nil {
				return nil, withIndex(err, i)
			}
			id := e.EntityID()
			if id == "" {
				log.Warn("related record has no id, skipping",
					slog.String("collection", collection),
					slog.Int("index", i),
				)
				continue
			}
			byID[id] = e
		}
	}
	return rels, nil
}
