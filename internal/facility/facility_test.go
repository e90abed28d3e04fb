package facility

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"library", CategoryLibrary, true},
		{"  Dining ", CategoryDining, true},
		{"SPORTS", CategorySports, true},
		{"", "", false},
		{"all", "", false},
		{"cafeteria", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategory_Valid(t *testing.T) {
	assert.True(t, CategoryHealth.Valid())
	assert.False(t, Category("Health").Valid(), "Valid is exact; use ParseCategory for user input")
	assert.False(t, Category("").Valid())
}

func TestAllCategories_ReturnsCopy(t *testing.T) {
	all := AllCategories()
	require.NotEmpty(t, all)
	all[0] = "mutated"

	assert.Equal(t, CategoryAcademic, AllCategories()[0])
}

func TestFacility_HasLocation(t *testing.T) {
	assert.False(t, Facility{}.HasLocation())
	assert.True(t, Facility{Lat: 14.6}.HasLocation())
	assert.True(t, Facility{Lng: -0.1}.HasLocation())
}

func TestFind(t *testing.T) {
	items := []Facility{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}

	f, ok := Find(items, "b")
	require.True(t, ok)
	assert.Equal(t, "B", f.Name)

	_, ok = Find(items, "zzz")
	assert.False(t, ok)

	_, ok = Find(items, "")
	assert.False(t, ok)
}

func TestMemorySource_ListAndGetMany(t *testing.T) {
	ctx := context.Background()
	src := NewMemorySource([]Facility{
		{ID: "lib", Name: "Main Library"},
		{ID: "gym", Name: "Gymnasium"},
		{ID: "caf", Name: "Cafeteria"},
	}, nil)

	all, err := src.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	all[0].Name = "mutated"
	again, err := src.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Main Library", again[0].Name, "List must return a copy")

	some, err := src.GetManyByIDs(ctx, []string{"caf", "missing", "lib"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "caf", some[0].ID)
	assert.Equal(t, "lib", some[1].ID)
}

func TestMemorySource_SearchRooms(t *testing.T) {
	ctx := context.Background()
	src := NewMemorySource(nil, []Room{
		{ID: "r1", FacilityID: "sci", Code: "SCI-101", Name: "Lecture Hall"},
		{ID: "r2", FacilityID: "lib", Code: "LIB-2F", Name: "Reading Room"},
	})

	rooms, err := src.SearchRooms(ctx, "sci-1")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "sci", rooms[0].FacilityID)

	rooms, err = src.SearchRooms(ctx, "reading")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "r2", rooms[0].ID)

	rooms, err = src.SearchRooms(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestMemorySource_FailWith(t *testing.T) {
	ctx := context.Background()
	src := NewMemorySource([]Facility{{ID: "a"}}, nil)
	boom := errors.New("backend unavailable")

	src.FailWith(boom)
	_, err := src.List(ctx)
	assert.ErrorIs(t, err, boom)

	src.FailWith(nil)
	all, err := src.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
