package relations

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Record is an open document as stored in and returned by the document store.
type Record = map[string]any

// Kind identifies an entity variant. The zero value is KindOpaque.
type Kind string

const (
	KindOpaque       Kind = ""
	KindUser         Kind = "User"
	KindReport       Kind = "Report"
	KindComment      Kind = "Comment"
	KindTeam         Kind = "Team"
	KindOrganization Kind = "Organization"
)

// KnownKinds lists every typed variant.
var KnownKinds = []Kind{KindUser, KindReport, KindComment, KindTeam, KindOrganization}

// KindOf resolves a collection name to its variant, KindOpaque when unknown.
func KindOf(collection string) Kind {
	for _, k := range KnownKinds {
		if strings.EqualFold(string(k), collection) {
			return k
		}
	}
	return KindOpaque
}

// KindFromPlural resolves a URL path segment such as "reports".
func KindFromPlural(segment string) (Kind, bool) {
	for _, k := range KnownKinds {
		if k.Plural() == segment {
			return k, true
		}
	}
	return KindOpaque, false
}

// Plural returns the lower-cased path segment of the variant.
func (k Kind) Plural() string {
	return strings.ToLower(string(k)) + "s"
}

// RelationField describes one foreign key field.
type RelationField struct {
	Field  string
	Target string
	Plural bool
}

const (
	singularSuffix = "_id"
	pluralSuffix   = "_ids"
)

// ParseRelationField applies the naming convention: a field ending in "_id"
// holds one id, a field ending in "_ids" holds a list of ids, and the target
// collection is the remaining base with its first character upper-cased
// ("team_id" -> "Team"). Fields with an empty base such as "_id" are not
// relation fields.
func ParseRelationField(name string) (RelationField, bool) {
	var base string
	var plural bool
	switch {
	case strings.HasSuffix(name, pluralSuffix):
		base, plural = strings.TrimSuffix(name, pluralSuffix), true
	case strings.HasSuffix(name, singularSuffix):
		base = strings.TrimSuffix(name, singularSuffix)
	default:
		return RelationField{}, false
	}
	if base == "" {
		return RelationField{}, false
	}
	first, size := utf8.DecodeRuneInString(base)
	return RelationField{Field: name, Target: string(unicode.ToUpper(first)) + base[size:], Plural: plural}, true
}

// Registry is the explicit (variant, field) -> target table for typed entities.
// Records of unknown shape are scanned with ParseRelationField instead.
type Registry struct {
	fields map[Kind][]RelationField
}

// NewRegistry builds a registry from per-variant field lists.
func NewRegistry(fields map[Kind][]RelationField) *Registry {
	r := &Registry{fields: make(map[Kind][]RelationField, len(fields))}
	for kind, list := range fields {
		sorted := append([]RelationField(nil), list...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Field < sorted[j].Field })
		r.fields[kind] = sorted
	}
	return r
}

// DefaultRegistry declares the foreign keys of the built-in variants.
func DefaultRegistry() *Registry {
	return NewRegistry(map[Kind][]RelationField{
		KindUser: {
			{Field: fieldTeamID, Target: string(KindTeam)},
			{Field: fieldOrganizationID, Target: string(KindOrganization)},
		},
		KindTeam: {
			{Field: fieldOrganizationID, Target: string(KindOrganization)},
			{Field: fieldUserIDs, Target: string(KindUser), Plural: true},
		},
		KindReport: {
			{Field: fieldTeamID, Target: string(KindTeam)},
			{Field: fieldUserID, Target: string(KindUser)},
			{Field: fieldCommentIDs, Target: string(KindComment), Plural: true},
		},
		KindComment: {
			{Field: fieldReportID, Target: string(KindReport)},
			{Field: fieldUserID, Target: string(KindUser)},
		},
		KindOrganization: nil,
	})
}

// Fields returns the declared relation fields of kind, sorted by field name.
func (r *Registry) Fields(kind Kind) []RelationField {
	return r.fields[kind]
}

// Has reports whether kind has a registry entry.
func (r *Registry) Has(kind Kind) bool {
	_, ok := r.fields[kind]
	return ok
}
