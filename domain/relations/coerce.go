package relations

import (
	"maps"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
)

// Coerce converts a raw record of collection into its typed variant. Missing or
// wrongly typed declared fields become zero values; undeclared fields are kept
// as they are and rendered alongside the declared ones. A stored self_url is
// dropped since links are recomputed. Collections without a variant are
// wrapped unchanged as Opaque.
func Coerce(collection string, raw any) (Entity, error) {
	rec, ok := asRecord(raw)
	if !ok {
		return nil, invalidRecord(raw).WithDetails(map[string]any{"collection": collection})
	}

	switch KindOf(collection) {
	case KindUser:
		return User{
			ID:             idString(rec[fieldID]),
			Username:       stringField(rec, "username"),
			Email:          stringField(rec, "email"),
			DisplayName:    stringField(rec, "display_name"),
			TeamID:         stringField(rec, fieldTeamID),
			OrganizationID: stringField(rec, fieldOrganizationID),
			CreatedAt:      stringField(rec, "created_at"),
			extra:          leftovers(rec, userFields),
		}, nil
	case KindTeam:
		return Team{
			ID:             idString(rec[fieldID]),
			Name:           stringField(rec, "name"),
			Description:    stringField(rec, "description"),
			OrganizationID: stringField(rec, fieldOrganizationID),
			UserIDs:        stringsField(rec, fieldUserIDs),
			CreatedAt:      stringField(rec, "created_at"),
			extra:          leftovers(rec, teamFields),
		}, nil
	case KindOrganization:
		return Organization{
			ID:        idString(rec[fieldID]),
			Name:      stringField(rec, "name"),
			Slug:      stringField(rec, "slug"),
			CreatedAt: stringField(rec, "created_at"),
			extra:     leftovers(rec, organizationFields),
		}, nil
	case KindReport:
		return Report{
			ID:         idString(rec[fieldID]),
			Title:      stringField(rec, "title"),
			Status:     stringField(rec, "status"),
			Summary:    stringField(rec, "summary"),
			TeamID:     stringField(rec, fieldTeamID),
			UserID:     stringField(rec, fieldUserID),
			CommentIDs: stringsField(rec, fieldCommentIDs),
			CreatedAt:  stringField(rec, "created_at"),
			UpdatedAt:  stringField(rec, "updated_at"),
			extra:      leftovers(rec, reportFields),
		}, nil
	case KindComment:
		return Comment{
			ID:        idString(rec[fieldID]),
			Body:      stringField(rec, "body"),
			ReportID:  stringField(rec, fieldReportID),
			UserID:    stringField(rec, fieldUserID),
			CreatedAt: stringField(rec, "created_at"),
			extra:     leftovers(rec, commentFields),
		}, nil
	default:
		return Opaque{Name: collection, Fields: maps.Clone(rec)}, nil
	}
}

// Declared JSON fields per variant.
var (
	userFields         = fieldSet(fieldID, "username", "email", "display_name", fieldTeamID, fieldOrganizationID, "created_at")
	teamFields         = fieldSet(fieldID, "name", "description", fieldOrganizationID, fieldUserIDs, "created_at")
	organizationFields = fieldSet(fieldID, "name", "slug", "created_at")
	reportFields       = fieldSet(fieldID, "title", "status", "summary", fieldTeamID, fieldUserID, fieldCommentIDs, "created_at", "updated_at")
	commentFields      = fieldSet(fieldID, "body", fieldReportID, fieldUserID, "created_at")
)

func fieldSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names)+1)
	for _, n := range names {
		set[n] = true
	}
	set[fieldSelfURL] = true
	return set
}

// leftovers copies the fields of rec outside declared, nil when there are none.
func leftovers(rec Record, declared map[string]bool) Record {
	var extra Record
	for k, v := range rec {
		if declared[k] {
			continue
		}
		if extra == nil {
			extra = make(Record)
		}
		extra[k] = v
	}
	return extra
}

// CoerceAll coerces every raw record of one collection, preserving order.
func CoerceAll(collection string, raws []any) ([]Entity, error) {
	entities := make([]Entity, 0, len(raws))
	for i, raw := range raws {
		e, err := Coerce(collection, raw)
		if err != nil {
			return nil, withIndex(err, i)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func asRecord(v any) (Record, bool) {
	rec, ok := v.(map[string]any)
	if !ok || rec == nil {
		return nil, false
	}
	return rec, true
}

func stringField(rec Record, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func stringsField(rec Record, key string) []string {
	switch v := rec[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			if s, ok := elem.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// idString renders an id value. Stores may hand back numeric ids, so integral
// numbers are accepted alongside strings.
func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		if id == math.Trunc(id) && !math.IsInf(id, 0) {
			return strconv.FormatFloat(id, 'f', -1, 64)
		}
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	}
	return ""
}
