package relations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelationField(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		want   RelationField
		wantOK bool
	}{
		{"singular", "team_id", RelationField{Field: "team_id", Target: "Team"}, true},
		{"plural", "user_ids", RelationField{Field: "user_ids", Target: "User", Plural: true}, true},
		{"multi word base keeps underscores", "parent_report_id", RelationField{Field: "parent_report_id", Target: "Parent_report"}, true},
		{"already capitalized", "Team_id", RelationField{Field: "Team_id", Target: "Team"}, true},
		{"non-ascii base", "équipe_id", RelationField{Field: "équipe_id", Target: "Équipe"}, true},
		{"bare singular suffix", "_id", RelationField{}, false},
		{"bare plural suffix", "_ids", RelationField{}, false},
		{"plain id", "id", RelationField{}, false},
		{"no separator", "userid", RelationField{}, false},
		{"suffix in the middle", "team_id_old", RelationField{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRelationField(tt.field)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultRegistryAgreesWithConvention(t *testing.T) {
	reg := DefaultRegistry()

	for _, kind := range KnownKinds {
		require.True(t, reg.Has(kind), "kind %s", kind)
		for _, f := range reg.Fields(kind) {
			parsed, ok := ParseRelationField(f.Field)
			require.True(t, ok, "%s.%s", kind, f.Field)
			assert.Equal(t, parsed, f, "%s.%s", kind, f.Field)
		}
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindTeam, KindOf("Team"))
	assert.Equal(t, KindTeam, KindOf("team"))
	assert.Equal(t, KindOrganization, KindOf("ORGANIZATION"))
	assert.Equal(t, KindOpaque, KindOf("Invoice"))
	assert.Equal(t, KindOpaque, KindOf(""))
}

func TestKindPlural(t *testing.T) {
	assert.Equal(t, "users", KindUser.Plural())
	assert.Equal(t, "organizations", KindOrganization.Plural())

	kind, ok := KindFromPlural("reports")
	assert.True(t, ok)
	assert.Equal(t, KindReport, kind)

	_, ok = KindFromPlural("invoices")
	assert.False(t, ok)
}

func TestNewRegistrySortsFields(t *testing.T) {
	reg := NewRegistry(map[Kind][]RelationField{
		KindUser: {
			{Field: "team_id", Target: "Team"},
			{Field: "organization_id", Target: "Organization"},
		},
	})

	fields := reg.Fields(KindUser)
	require.Len(t, fields, 2)
	assert.Equal(t, "organization_id", fields[0].Field)
	assert.Equal(t, "team_id", fields[1].Field)
	assert.False(t, reg.Has(KindTeam))
}
