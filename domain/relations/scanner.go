package relations

import (
	"sort"
)

// Reference is one discovered pointer from a record into a collection.
type Reference struct {
	Collection string
	ID         string
}

// RelationGroup maps a capitalized collection name to the unique ids to fetch
// from it, in first-seen order.
type RelationGroup map[string][]string

// Collections returns the group's collection names, sorted.
func (g RelationGroup) Collections() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the number of ids across all collections.
func (g RelationGroup) Size() int {
	n := 0
	for _, ids := range g {
		n += len(ids)
	}
	return n
}

// Scanner discovers references in records and typed entities.
type Scanner struct {
	registry *Registry
}

// NewScanner creates a scanner. A nil registry means DefaultRegistry.
func NewScanner(registry *Registry) *Scanner {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Scanner{registry: registry}
}

// Scan returns the references held by the top-level fields of v. Plain records
// are scanned by field-name convention, typed entities through the registry
// and by convention over their undeclared fields.
// Duplicates inside one record are kept.
func (s *Scanner) Scan(v any) ([]Reference, error) {
	switch rec := v.(type) {
	case Opaque:
		return scanConvention(rec.Fields), nil
	case Entity:
		refs := scanFields(rec.Record(), s.registry.Fields(rec.Kind()))
		return append(refs, scanConvention(rec.extras())...), nil
	}

	rec, ok := asRecord(v)
	if !ok {
		return nil, invalidRecord(v)
	}
	return scanConvention(rec), nil
}

// Group scans every record and collects the referenced ids per collection,
// deduplicated. The result is empty, never nil, when nothing is referenced.
func (s *Scanner) Group(records []any) (RelationGroup, error) {
	group := make(RelationGroup)
	seen := make(map[Reference]struct{})

	for i, rec := range records {
		refs, err := s.Scan(rec)
		if err != nil {
			return nil, withIndex(err, i)
		}
		for _, ref := range refs {
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			group[ref.Collection] = append(group[ref.Collection], ref.ID)
		}
	}
	return group, nil
}

func scanConvention(rec Record) []Reference {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]RelationField, 0, len(keys))
	for _, k := range keys {
		if f, ok := ParseRelationField(k); ok {
			fields = append(fields, f)
		}
	}
	return scanFields(rec, fields)
}

func scanFields(rec Record, fields []RelationField) []Reference {
	var refs []Reference
	for _, f := range fields {
		if f.Plural {
			for _, id := range idList(rec[f.Field]) {
				refs = append(refs, Reference{Collection: f.Target, ID: id})
			}
			continue
		}
		if id, ok := rec[f.Field].(string); ok && id != "" {
			refs = append(refs, Reference{Collection: f.Target, ID: id})
		}
	}
	return refs
}

func idList(v any) []string {
	var ids []string
	switch list := v.(type) {
	case []string:
		for _, id := range list {
			if id != "" {
				ids = append(ids, id)
			}
		}
	case []any:
		for _, elem := range list {
			if id, ok := elem.(string); ok && id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
