package relations

import (
	"net/url"
	"strings"
)

// LinkBuilder computes the self_url of each entity variant. Links that depend
// on a related entity look it up in the relations map through the entity's own
// foreign key and fall back to an id-only path when it is absent.
type LinkBuilder struct {
	apiPrefix string
	uiBase    string
}

// NewLinkBuilder creates a builder rooting API paths at apiPrefix and UI paths
// at uiBase. Trailing slashes are ignored.
func NewLinkBuilder(apiPrefix, uiBase string) *LinkBuilder {
	return &LinkBuilder{
		apiPrefix: strings.TrimRight(apiPrefix, "/"),
		uiBase:    strings.TrimRight(uiBase, "/"),
	}
}

// Link returns the self_url of e computed against rels.
func (b *LinkBuilder) Link(e Entity, rels RelationsMap) *Link {
	switch v := e.decorate(b, rels).(type) {
	case User:
		return v.SelfURL
	case Team:
		return v.SelfURL
	case Organization:
		return v.SelfURL
	case Report:
		return v.SelfURL
	case Comment:
		return v.SelfURL
	case Opaque:
		return v.SelfURL
	}
	return nil
}

func (b *LinkBuilder) userLink(u User) *Link {
	handle := u.Username
	if handle == "" {
		handle = u.ID
	}
	return b.link(KindUser.Plural(), u.ID, "/users/"+seg(handle))
}

func (b *LinkBuilder) organizationLink(o Organization) *Link {
	return b.link(KindOrganization.Plural(), o.ID, "/organizations/"+seg(o.ID))
}

// teamLink nests the UI path under the owning organization's name when known.
func (b *LinkBuilder) teamLink(t Team, rels RelationsMap) *Link {
	ui := "/teams/" + seg(t.ID)
	if org, ok := lookup[Organization](rels, KindOrganization, t.OrganizationID); ok && org.Name != "" {
		handle := t.Name
		if handle == "" {
			handle = t.ID
		}
		ui = "/organizations/" + seg(org.Name) + "/teams/" + seg(handle)
	}
	return b.link(KindTeam.Plural(), t.ID, ui)
}

// reportLink nests the UI path under the owning team's name when known.
func (b *LinkBuilder) reportLink(r Report, rels RelationsMap) *Link {
	ui := "/reports/" + seg(r.ID)
	if name := b.teamName(rels, r.TeamID); name != "" {
		ui = "/teams/" + seg(name) + ui
	}
	return b.link(KindReport.Plural(), r.ID, ui)
}

// commentLink anchors the comment inside its report. The team prefix needs
// both the report and its team in rels.
func (b *LinkBuilder) commentLink(c Comment, rels RelationsMap) *Link {
	if c.ReportID == "" {
		return b.link(KindComment.Plural(), c.ID, "/comments/"+seg(c.ID))
	}
	ui := "/reports/" + seg(c.ReportID) + "#comment-" + seg(c.ID)
	if report, ok := lookup[Report](rels, KindReport, c.ReportID); ok {
		if name := b.teamName(rels, report.TeamID); name != "" {
			ui = "/teams/" + seg(name) + ui
		}
	}
	return b.link(KindComment.Plural(), c.ID, ui)
}

func (b *LinkBuilder) opaqueLink(o Opaque) *Link {
	plural := strings.ToLower(o.Name) + "s"
	id := o.EntityID()
	return b.link(plural, id, "/"+seg(plural)+"/"+seg(id))
}

func (b *LinkBuilder) teamName(rels RelationsMap, teamID string) string {
	team, ok := lookup[Team](rels, KindTeam, teamID)
	if !ok {
		return ""
	}
	return team.Name
}

func (b *LinkBuilder) link(plural, id, ui string) *Link {
	if id == "" {
		return nil
	}
	return &Link{
		API: b.apiPrefix + "/" + seg(plural) + "/" + seg(id),
		UI:  b.uiBase + ui,
	}
}

// lookup finds a related entity of variant T in rels.
func lookup[T Entity](rels RelationsMap, kind Kind, id string) (T, bool) {
	var zero T
	e, ok := rels.Get(string(kind), id)
	if !ok {
		return zero, false
	}
	v, ok := e.(T)
	return v, ok
}

func seg(s string) string {
	return url.PathEscape(s)
}
