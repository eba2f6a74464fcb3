package relations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRelationsMap(t *testing.T) {
	rels, err := BuildRelationsMap(map[string][]Record{
		"Team":    {{"id": "t1", "name": "acme"}},
		"User":    {{"id": "u1", "username": "bob"}, {"username": "ghost"}},
		"Comment": {},
		"Invoice": {{"id": "i1", "total": 10.0}},
	}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, RelationsMap{
		"team":    {"t1": Team{ID: "t1", Name: "acme"}},
		"user":    {"u1": User{ID: "u1", Username: "bob"}},
		"comment": {},
		"invoice": {"i1": Opaque{Name: "Invoice", Fields: Record{"id": "i1", "total": 10.0}}},
	}, rels)
	assert.Equal(t, 3, rels.Size())
}

func TestBuildRelationsMapLaterDuplicateWins(t *testing.T) {
	rels, err := BuildRelationsMap(map[string][]Record{
		"Team": {{"id": "t1", "name": "first"}, {"id": "t1", "name": "second"}},
	}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, Team{ID: "t1", Name: "second"}, rels["team"]["t1"])
}

func TestBuildRelationsMapEveryRequestedIDResolvedOrAbsent(t *testing.T) {
	group := RelationGroup{"Team": {"t1", "t2"}, "User": {"u1"}}
	reader := newFakeReader(map[string][]Record{
		"Team": {{"id": "t1"}},
		"User": {{"id": "u1"}},
	})

	loaded, err := NewLoader(reader, 0, testLogger()).Load(t.Context(), group)
	require.NoError(t, err)
	rels, err := BuildRelationsMap(loaded, testLogger())
	require.NoError(t, err)

	for collection, ids := range group {
		byID, ok := rels[mapKey(collection)]
		require.True(t, ok, collection)
		for _, id := range ids {
			if e, found := byID[id]; found {
				assert.NotNil(t, e)
				assert.Equal(t, id, e.EntityID())
			}
		}
	}
	_, ok := rels.Get("Team", "t2")
	assert.False(t, ok)
}

func TestRelationsMapGet(t *testing.T) {
	rels := RelationsMap{"team": {"t1": Team{ID: "t1"}}}

	e, ok := rels.Get("Team", "t1")
	require.True(t, ok)
	assert.Equal(t, "t1", e.EntityID())

	_, ok = rels.Get("team", "")
	assert.False(t, ok)

	var empty RelationsMap
	_, ok = empty.Get("team", "t1")
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Size())
}

func TestBuildRelationsMapRejectsNonObjects(t *testing.T) {
	_, err := BuildRelationsMap(map[string][]Record{"Team": {nil}}, testLogger())
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
