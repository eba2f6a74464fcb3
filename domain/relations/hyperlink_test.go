package relations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkBuilder(t *testing.T) {
	b := NewLinkBuilder("/api/", "")

	rels := RelationsMap{
		"organization": {"o1": Organization{ID: "o1", Name: "Acme Inc"}},
		"team":         {"t1": Team{ID: "t1", Name: "acme", OrganizationID: "o1"}},
		"report":       {"r1": Report{ID: "r1", TeamID: "t1"}},
	}

	tests := []struct {
		name     string
		entity   Entity
		rels     RelationsMap
		expected *Link
	}{
		{
			name:     "user by username",
			entity:   User{ID: "u1", Username: "bob"},
			expected: &Link{API: "/api/users/u1", UI: "/users/bob"},
		},
		{
			name:     "user without username",
			entity:   User{ID: "u1"},
			expected: &Link{API: "/api/users/u1", UI: "/users/u1"},
		},
		{
			name:     "organization",
			entity:   Organization{ID: "o1", Name: "Acme Inc"},
			expected: &Link{API: "/api/organizations/o1", UI: "/organizations/o1"},
		},
		{
			name:     "team nested under organization",
			entity:   Team{ID: "t1", Name: "acme", OrganizationID: "o1"},
			rels:     rels,
			expected: &Link{API: "/api/teams/t1", UI: "/organizations/Acme%20Inc/teams/acme"},
		},
		{
			name:     "team without organization",
			entity:   Team{ID: "t1", Name: "acme", OrganizationID: "o9"},
			rels:     rels,
			expected: &Link{API: "/api/teams/t1", UI: "/teams/t1"},
		},
		{
			name:     "report nested under team",
			entity:   Report{ID: "r1", TeamID: "t1", UserID: "u1"},
			rels:     rels,
			expected: &Link{API: "/api/reports/r1", UI: "/teams/acme/reports/r1"},
		},
		{
			name:     "report without relations",
			entity:   Report{ID: "r1", TeamID: "t1"},
			expected: &Link{API: "/api/reports/r1", UI: "/reports/r1"},
		},
		{
			name:     "comment with report and team",
			entity:   Comment{ID: "c1", ReportID: "r1"},
			rels:     rels,
			expected: &Link{API: "/api/comments/c1", UI: "/teams/acme/reports/r1#comment-c1"},
		},
		{
			name:     "comment with unresolved report",
			entity:   Comment{ID: "c1", ReportID: "r2"},
			rels:     rels,
			expected: &Link{API: "/api/comments/c1", UI: "/reports/r2#comment-c1"},
		},
		{
			name:     "comment without report",
			entity:   Comment{ID: "c1"},
			expected: &Link{API: "/api/comments/c1", UI: "/comments/c1"},
		},
		{
			name:     "opaque",
			entity:   Opaque{Name: "Invoice", Fields: Record{"id": "i/1"}},
			expected: &Link{API: "/api/invoices/i%2F1", UI: "/invoices/i%2F1"},
		},
		{
			name:     "no id means no link",
			entity:   Report{Title: "draft"},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, b.Link(tt.entity, tt.rels))
		})
	}
}

func TestLinkBuilderMissingRelationTolerance(t *testing.T) {
	b := NewLinkBuilder("/api", "")

	// team present under another id, and an entry of the wrong variant under t1
	rels := RelationsMap{
		"team": {"t2": Team{ID: "t2", Name: "other"}},
		"user": {"t1": User{ID: "t1"}},
	}

	link := b.Link(Report{ID: "r1", TeamID: "t1"}, rels)
	assert.Equal(t, &Link{API: "/api/reports/r1", UI: "/reports/r1"}, link)

	link = b.Link(Report{ID: "r1", TeamID: "t1"}, RelationsMap{"team": {"t1": User{ID: "t1"}}})
	assert.Equal(t, &Link{API: "/api/reports/r1", UI: "/reports/r1"}, link)
}

func TestLinkBuilderUIBase(t *testing.T) {
	b := NewLinkBuilder("/v1", "https://app.example.com/")

	link := b.Link(User{ID: "u1", Username: "bob"}, nil)
	assert.Equal(t, &Link{API: "/v1/users/u1", UI: "https://app.example.com/users/bob"}, link)
}
