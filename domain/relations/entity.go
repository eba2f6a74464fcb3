package relations

import (
	"maps"
	"slices"

	json "github.com/goccy/go-json"
)

// Field names shared by variants and the registry.
const (
	fieldID             = "id"
	fieldTeamID         = "team_id"
	fieldUserID         = "user_id"
	fieldUserIDs        = "user_ids"
	fieldOrganizationID = "organization_id"
	fieldReportID       = "report_id"
	fieldCommentIDs     = "comment_ids"
	fieldSelfURL        = "self_url"
)

// Link is a navigable pair of paths for one entity.
type Link struct {
	API string `json:"api"`
	UI  string `json:"ui"`
}

// Entity is one hydrated record. The set of implementations is closed:
// User, Report, Comment, Team, Organization and Opaque.
type Entity interface {
	// Kind returns the variant, KindOpaque for untyped records.
	Kind() Kind
	// Collection returns the store collection the entity belongs to.
	Collection() string
	// EntityID returns the stable id of the entity.
	EntityID() string
	// Record returns the structural field view of the entity, without links.
	Record() Record

	decorate(b *LinkBuilder, rels RelationsMap) Entity
	// extras returns the fields the variant does not declare.
	extras() Record
}

// User is a member account.
type User struct {
	ID             string `json:"id"`
	Username       string `json:"username,omitempty"`
	Email          string `json:"email,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
	TeamID         string `json:"team_id,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	SelfURL        *Link  `json:"self_url,omitempty"`

	extra Record
}

func (User) Kind() Kind { return KindUser }
func (User) Collection() string { return string(KindUser) }
func (u User) EntityID() string { return u.ID }
func (u User) Record() Record {
	return withExtra(compact(Record{
		fieldID:             u.ID,
		"username":          u.Username,
		"email":             u.Email,
		"display_name":      u.DisplayName,
		fieldTeamID:         u.TeamID,
		fieldOrganizationID: u.OrganizationID,
		"created_at":        u.CreatedAt,
	}), u.extra)
}

func (u User) decorate(b *LinkBuilder, rels RelationsMap) Entity {
	u.extra = maps.Clone(u.extra)
	u.SelfURL = b.userLink(u)
	return u
}

func (u User) extras() Record { return u.extra }

// MarshalJSON renders the declared fields with the undeclared ones merged in.
func (u User) MarshalJSON() ([]byte, error) {
	type user User
	return marshalWithExtra(user(u), u.extra)
}

// Team groups users inside an organization.
type Team struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	Description    string   `json:"description,omitempty"`
	OrganizationID string   `json:"organization_id,omitempty"`
	UserIDs        []string `json:"user_ids,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
	SelfURL        *Link    `json:"self_url,omitempty"`

	extra Record
}

func (Team) Kind() Kind { return KindTeam }
func (Team) Collection() string { return string(KindTeam) }
func (t Team) EntityID() string { return t.ID }
func (t Team) Record() Record {
	return withExtra(compact(Record{
		fieldID:             t.ID,
		"name":              t.Name,
		"description":       t.Description,
		fieldOrganizationID: t.OrganizationID,
		fieldUserIDs:        slices.Clone(t.UserIDs),
		"created_at":        t.CreatedAt,
	}), t.extra)
}

func (t Team) decorate(b *LinkBuilder, rels RelationsMap) Entity {
	t.extra = maps.Clone(t.extra)
	t.UserIDs = slices.Clone(t.UserIDs)
	t.SelfURL = b.teamLink(t, rels)
	return t
}

func (t Team) extras() Record { return t.extra }

// MarshalJSON renders the declared fields with the undeclared ones merged in.
func (t Team) MarshalJSON() ([]byte, error) {
	type team Team
	return marshalWithExtra(team(t), t.extra)
}

// Organization is the top-level tenant.
type Organization struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Slug      string `json:"slug,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	SelfURL   *Link  `json:"self_url,omitempty"`

	extra Record
}

func (Organization) Kind() Kind { return KindOrganization }
func (Organization) Collection() string { return string(KindOrganization) }
func (o Organization) EntityID() string { return o.ID }
func (o Organization) Record() Record {
	return withExtra(compact(Record{
		fieldID:      o.ID,
		"name":       o.Name,
		"slug":       o.Slug,
		"created_at": o.CreatedAt,
	}), o.extra)
}

func (o Organization) decorate(b *LinkBuilder, rels RelationsMap) Entity {
	o.extra = maps.Clone(o.extra)
	o.SelfURL = b.organizationLink(o)
	return o
}

func (o Organization) extras() Record { return o.extra }

// MarshalJSON renders the declared fields with the undeclared ones merged in.
func (o Organization) MarshalJSON() ([]byte, error) {
	type organization Organization
	return marshalWithExtra(organization(o), o.extra)
}

// Report is a document owned by a team and authored by a user.
type Report struct {
	ID         string   `json:"id"`
	Title      string   `json:"title,omitempty"`
	Status     string   `json:"status,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	TeamID     string   `json:"team_id,omitempty"`
	UserID     string   `json:"user_id,omitempty"`
	CommentIDs []string `json:"comment_ids,omitempty"`
	CreatedAt  string   `json:"created_at,omitempty"`
	UpdatedAt  string   `json:"updated_at,omitempty"`
	SelfURL    *Link    `json:"self_url,omitempty"`

	extra Record
}

func (Report) Kind() Kind { return KindReport }
func (Report) Collection() string { return string(KindReport) }
func (r Report) EntityID() string { return r.ID }
func (r Report) Record() Record {
	return withExtra(compact(Record{
		fieldID:         r.ID,
		"title":         r.Title,
		"status":        r.Status,
		"summary":       r.Summary,
		fieldTeamID:     r.TeamID,
		fieldUserID:     r.UserID,
		fieldCommentIDs: slices.Clone(r.CommentIDs),
		"created_at":    r.CreatedAt,
		"updated_at":    r.UpdatedAt,
	}), r.extra)
}

func (r Report) decorate(b *LinkBuilder, rels RelationsMap) Entity {
	r.extra = maps.Clone(r.extra)
	r.CommentIDs = slices.Clone(r.CommentIDs)
	r.SelfURL = b.reportLink(r, rels)
	return r
}

func (r Report) extras() Record { return r.extra }

// MarshalJSON renders the declared fields with the undeclared ones merged in.
func (r Report) MarshalJSON() ([]byte, error) {
	type report Report
	return marshalWithExtra(report(r), r.extra)
}

// Comment is a remark on a report.
type Comment struct {
	ID        string `json:"id"`
	Body      string `json:"body,omitempty"`
	ReportID  string `json:"report_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	SelfURL   *Link  `json:"self_url,omitempty"`

	extra Record
}

func (Comment) Kind() Kind { return KindComment }
func (Comment) Collection() string { return string(KindComment) }
func (c Comment) EntityID() string { return c.ID }
func (c Comment) Record() Record {
	return withExtra(compact(Record{
		fieldID:       c.ID,
		"body":        c.Body,
		fieldReportID: c.ReportID,
		fieldUserID:   c.UserID,
		"created_at":  c.CreatedAt,
	}), c.extra)
}

func (c Comment) decorate(b *LinkBuilder, rels RelationsMap) Entity {
	c.extra = maps.Clone(c.extra)
	c.SelfURL = b.commentLink(c, rels)
	return c
}

func (c Comment) extras() Record { return c.extra }

// MarshalJSON renders the declared fields with the undeclared ones merged in.
func (c Comment) MarshalJSON() ([]byte, error) {
	type comment Comment
	return marshalWithExtra(comment(c), c.extra)
}

// Opaque carries a record of a collection with no typed variant, unchanged.
type Opaque struct {
	Name    string
	Fields  Record
	SelfURL *Link
}

func (Opaque) Kind() Kind { return KindOpaque }
func (o Opaque) Collection() string { return o.Name }
func (o Opaque) EntityID() string { return idString(o.Fields[fieldID]) }
func (o Opaque) Record() Record { return maps.Clone(o.Fields) }

func (Opaque) extras() Record { return nil }

func (o Opaque) decorate(b *LinkBuilder, rels RelationsMap) Entity {
	o.Fields = maps.Clone(o.Fields)
	o.SelfURL = b.opaqueLink(o)
	return o
}

// MarshalJSON renders the original fields with self_url merged in.
func (o Opaque) MarshalJSON() ([]byte, error) {
	out := make(Record, len(o.Fields)+1)
	maps.Copy(out, o.Fields)
	if o.SelfURL != nil {
		out[fieldSelfURL] = o.SelfURL
	}
	return json.Marshal(out)
}

// sameVariant reports whether a and b share one concrete variant.
func sameVariant(a, b Entity) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	return a.Kind() != KindOpaque || a.Collection() == b.Collection()
}

// compact drops empty fields so Record mirrors the omitempty JSON shape.
func compact(rec Record) Record {
	for k, v := range rec {
		switch val := v.(type) {
		case string:
			if val == "" {
				delete(rec, k)
			}
		case []string:
			if len(val) == 0 {
				delete(rec, k)
			}
		}
	}
	return rec
}

// withExtra adds the undeclared fields to a declared-field view.
func withExtra(rec, extra Record) Record {
	for k, v := range extra {
		if _, declared := rec[k]; !declared {
			rec[k] = v
		}
	}
	return rec
}

// marshalWithExtra encodes v and merges extra under its fields. Declared
// fields win on a key collision.
func marshalWithExtra(v any, extra Record) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var declared Record
	if err := json.Unmarshal(data, &declared); err != nil {
		return nil, err
	}
	out := maps.Clone(extra)
	maps.Copy(out, declared)
	return json.Marshal(out)
}
