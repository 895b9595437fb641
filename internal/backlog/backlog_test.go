package backlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkazm04/goat-sub002/internal/domain"
)

func testItem(id, name string, tags ...string) domain.Item {
	if tags == nil {
		tags = []string{}
	}
	return domain.Item{ID: id, Name: name, Tags: tags}
}

func testGroups() []domain.Group {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []domain.Group{
		{
			Timestamps:  domain.Timestamps{CreatedAt: created, UpdatedAt: created},
			ID:          "g1",
			Name:        "Strikers",
			Description: "Forwards of the nineties",
			Category:    "sports",
			Subcategory: "football",
			IsOpen:      true,
			Items: []domain.Item{
				{
					ID:          "i1",
					Name:        "Ronaldo",
					Description: "Il Fenomeno",
					Category:    "sports",
					YearRange:   &domain.YearRange{Start: 1993, End: 2011},
					Tags:        []string{"brazil", "striker"},
				},
				testItem("i2", "Batistuta", "argentina", "striker"),
			},
			ItemCount: 2,
		},
		{
			ID:          "g2",
			Name:        "Playmakers",
			Category:    "sports",
			Subcategory: "football",
			Items:       []domain.Item{testItem("i3", "Zidane", "france")},
			ItemCount:   1,
		},
		{
			ID:        "g3",
			Name:      "Directors",
			Category:  "movies",
			Items:     []domain.Item{testItem("i4", "Kubrick", "usa")},
			ItemCount: 1,
		},
	}
}

func TestNormalize_RoundTrip(t *testing.T) {
	groups := testGroups()

	data := Normalize(groups)
	require.NoError(t, Validate(data))

	assert.Equal(t, []string{"g1", "g2", "g3"}, data.GroupOrder)
	assert.Len(t, data.ItemsByID, 4)
	assert.Equal(t, "g1", data.ItemsByID["i2"].GroupID)
	assert.Equal(t, domain.BacklogVersion, data.Version)

	assert.Equal(t, groups, Denormalize(data))
}

func TestNormalize_FillsDefaults(t *testing.T) {
	groups := []domain.Group{{
		ID:        "g1",
		Name:      "Bare",
		Items:     []domain.Item{{ID: "i1", Name: "No tags", MatchedWith: "grid-3"}},
		ItemCount: 7, // stale
	}}

	got := Denormalize(Normalize(groups))

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ItemCount)
	assert.Equal(t, []string{}, got[0].Items[0].Tags)
	assert.Empty(t, got[0].Items[0].MatchedWith, "unmatched item must not keep a slot reference")
}

func TestNormalize_DropsDuplicateIDs(t *testing.T) {
	groups := []domain.Group{
		{ID: "g1", Items: []domain.Item{testItem("i1", "a"), testItem("i1", "dup")}},
		{ID: "g2", Items: []domain.Item{testItem("i1", "other group"), testItem("i2", "b")}},
		{ID: "g1", Items: []domain.Item{testItem("i9", "dup group")}},
		{ID: "", Items: []domain.Item{testItem("i8", "no group id")}},
	}

	data := Normalize(groups)

	require.NoError(t, Validate(data))
	assert.Equal(t, []string{"g1", "g2"}, data.GroupOrder)
	assert.Equal(t, []string{"i1"}, data.GroupsByID["g1"].ItemIDs)
	assert.Equal(t, []string{"i2"}, data.GroupsByID["g2"].ItemIDs)
	assert.Equal(t, "a", data.ItemsByID["i1"].Name)
}

func TestDenormalize_Nil(t *testing.T) {
	assert.Equal(t, []domain.Group{}, Denormalize(nil))
}

func TestAddItem(t *testing.T) {
	data := Normalize(testGroups())

	next := AddItem(data, "g2", domain.Item{ID: "i5", Name: "Totti", Matched: true, MatchedWith: "grid-0"})

	require.NotSame(t, data, next)
	require.NoError(t, Validate(next))
	assert.Equal(t, []string{"i3", "i5"}, next.GroupsByID["g2"].ItemIDs)
	assert.Equal(t, 2, next.GroupsByID["g2"].ItemCount)
	assert.False(t, next.ItemsByID["i5"].Matched, "new items enter unmatched")
	assert.Empty(t, next.ItemsByID["i5"].MatchedWith)

	// Input untouched.
	assert.Equal(t, []string{"i3"}, data.GroupsByID["g2"].ItemIDs)
	assert.NotContains(t, data.ItemsByID, "i5")
}

func TestAddItem_SilentFailures(t *testing.T) {
	data := Normalize(testGroups())

	assert.Same(t, data, AddItem(data, "missing", testItem("i9", "x")))
	assert.Same(t, data, AddItem(data, "g1", testItem("i3", "taken elsewhere")))
	assert.Same(t, data, AddItem(data, "g1", testItem("", "no id")))
}

func TestAddItem_DoesNotAliasItemIDs(t *testing.T) {
	data := Normalize([]domain.Group{{ID: "g1", Items: []domain.Item{testItem("a", "a")}}})

	// Give the group spare capacity so a careless append would share it.
	meta := data.GroupsByID["g1"]
	meta.ItemIDs = append(make([]string, 0, 8), meta.ItemIDs...)
	data.GroupsByID["g1"] = meta

	left := AddItem(data, "g1", testItem("b", "b"))
	right := AddItem(data, "g1", testItem("c", "c"))

	assert.Equal(t, []string{"a", "b"}, left.GroupsByID["g1"].ItemIDs)
	assert.Equal(t, []string{"a", "c"}, right.GroupsByID["g1"].ItemIDs)
}

func TestRemoveItem(t *testing.T) {
	data := Normalize(testGroups())

	next := RemoveItem(data, "g1", "i1")

	require.NoError(t, Validate(next))
	assert.Equal(t, []string{"i2"}, next.GroupsByID["g1"].ItemIDs)
	assert.Equal(t, 1, next.GroupsByID["g1"].ItemCount)
	assert.NotContains(t, next.ItemsByID, "i1")
	assert.Contains(t, data.ItemsByID, "i1")
}

func TestRemoveItem_SilentFailures(t *testing.T) {
	data := Normalize(testGroups())

	assert.Same(t, data, RemoveItem(data, "missing", "i1"))
	assert.Same(t, data, RemoveItem(data, "g1", "missing"))
	assert.Same(t, data, RemoveItem(data, "g2", "i1"), "item owned by another group")
}

func TestAddRemoveSymmetry(t *testing.T) {
	data := Normalize(testGroups())
	x := testItem("x", "Maldini", "italy")

	got := RemoveItem(AddItem(data, "g1", x), "g1", x.ID)

	assert.Equal(t, data, got)
}

func TestUpdateGroupItems(t *testing.T) {
	data := Normalize(testGroups())

	next := UpdateGroupItems(data, "g1", []domain.Item{
		testItem("n1", "Henry"),
		testItem("i3", "taken by g2"),
		testItem("n2", "Shevchenko"),
		testItem("n1", "repeat"),
		testItem("", "no id"),
	})

	require.NoError(t, Validate(next))
	assert.Equal(t, []string{"n1", "n2"}, next.GroupsByID["g1"].ItemIDs)
	assert.Equal(t, 2, next.GroupsByID["g1"].ItemCount)
	assert.NotContains(t, next.ItemsByID, "i1")
	assert.NotContains(t, next.ItemsByID, "i2")
	assert.Equal(t, "g2", next.ItemsByID["i3"].GroupID)

	assert.Same(t, data, UpdateGroupItems(data, "missing", nil))
}

func TestUpdateGroupItems_CanReuseOwnIDs(t *testing.T) {
	data := Normalize(testGroups())

	next := UpdateGroupItems(data, "g1", []domain.Item{testItem("i2", "Batigol")})

	require.NoError(t, Validate(next))
	assert.Equal(t, []string{"i2"}, next.GroupsByID["g1"].ItemIDs)
	assert.Equal(t, "Batigol", next.ItemsByID["i2"].Name)
}

func TestCountInvariant_AfterEveryOperation(t *testing.T) {
	data := Normalize(testGroups())
	steps := []func(*domain.NormalizedBacklogData) *domain.NormalizedBacklogData{
		func(d *domain.NormalizedBacklogData) *domain.NormalizedBacklogData { return AddItem(d, "g3", testItem("a", "a")) },
		func(d *domain.NormalizedBacklogData) *domain.NormalizedBacklogData { return AddItem(d, "g3", testItem("b", "b")) },
		func(d *domain.NormalizedBacklogData) *domain.NormalizedBacklogData { return RemoveItem(d, "g3", "i4") },
		func(d *domain.NormalizedBacklogData) *domain.NormalizedBacklogData { return RemoveItem(d, "g3", "i4") },
		func(d *domain.NormalizedBacklogData) *domain.NormalizedBacklogData {
			return UpdateGroupItems(d, "g1", []domain.Item{testItem("c", "c")})
		},
		func(d *domain.NormalizedBacklogData) *domain.NormalizedBacklogData { return UpdateGroupItems(d, "g2", nil) },
		func(d *domain.NormalizedBacklogData) *domain.NormalizedBacklogData { return ToggleGroup(d, "g2") },
		func(d *domain.NormalizedBacklogData) *domain.NormalizedBacklogData { return SetItemMatch(d, "c", true, "grid-0") },
	}

	for i, step := range steps {
		data = step(data)
		require.NoError(t, Validate(data), "step %d", i)
		for id, meta := range data.GroupsByID {
			assert.Equal(t, len(meta.ItemIDs), meta.ItemCount, "group %s after step %d", id, i)
		}
	}
}

func TestToggleGroup(t *testing.T) {
	data := Normalize(testGroups())

	closed := ToggleGroup(data, "g1")
	assert.False(t, closed.GroupsByID["g1"].IsOpen)
	assert.True(t, data.GroupsByID["g1"].IsOpen)

	reopened := ToggleGroup(closed, "g1")
	assert.True(t, reopened.GroupsByID["g1"].IsOpen)

	assert.Same(t, data, ToggleGroup(data, "missing"))
	assert.Same(t, data, SetGroupOpen(data, "g1", true))
}

func TestSetItemMatch(t *testing.T) {
	data := Normalize(testGroups())

	matched := SetItemMatch(data, "i1", true, "grid-2")
	assert.True(t, matched.ItemsByID["i1"].Matched)
	assert.Equal(t, "grid-2", matched.ItemsByID["i1"].MatchedWith)
	assert.False(t, data.ItemsByID["i1"].Matched)

	assert.Same(t, matched, SetItemMatch(matched, "i1", true, "grid-2"))
	assert.Same(t, data, SetItemMatch(data, "missing", true, "grid-0"))

	cleared := SetItemMatch(matched, "i1", false, "grid-2")
	assert.False(t, cleared.ItemsByID["i1"].Matched)
	assert.Empty(t, cleared.ItemsByID["i1"].MatchedWith)
}

func TestGroupItemsAndAllItems(t *testing.T) {
	data := Normalize(testGroups())

	items := GroupItems(data, "g1")
	require.Len(t, items, 2)
	assert.Equal(t, "i1", items[0].ID)
	assert.Equal(t, "i2", items[1].ID)

	assert.Empty(t, GroupItems(data, "missing"))

	var ids []string
	for _, item := range AllItems(data) {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"i1", "i2", "i3", "i4"}, ids)
}

func TestSearchGroups(t *testing.T) {
	data := Normalize(testGroups())

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"group name", "PLAYMAKERS", []string{"g2"}},
		{"group description", "nineties", []string{"g1"}},
		{"item name", "kubrick", []string{"g3"}},
		{"item description", "fenomeno", []string{"g1"}},
		{"tag", "ARGENTINA", []string{"g1"}},
		{"order preserved", "a", []string{"g1", "g2", "g3"}},
		{"no match", "cricket", []string{}},
		{"blank term", "  ", []string{"g1", "g2", "g3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchGroups(data, tt.term)
			ids := make([]string, 0, len(got))
			for _, g := range got {
				ids = append(ids, g.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSearchGroups_UnicodeFolding(t *testing.T) {
	data := Normalize([]domain.Group{{ID: "g1", Name: "Die Ärzte"}})

	assert.Len(t, SearchGroups(data, "ärzte"), 1)
	assert.Len(t, SearchGroups(data, "ÄRZTE"), 1)
}

func TestSearchGroups_ReturnsWholeGroup(t *testing.T) {
	data := Normalize(testGroups())

	got := SearchGroups(data, "ronaldo")

	require.Len(t, got, 1)
	assert.Len(t, got[0].Items, 2)
}

func TestGroupsByCategory(t *testing.T) {
	data := Normalize(testGroups())

	assert.Len(t, GroupsByCategory(data, "sports", ""), 2)
	assert.Len(t, GroupsByCategory(data, "sports", "football"), 2)
	assert.Empty(t, GroupsByCategory(data, "sports", "tennis"))
	assert.Len(t, GroupsByCategory(data, "movies", ""), 1)
	assert.Empty(t, GroupsByCategory(data, "Movies", ""), "category match is exact")
}

func TestMemo(t *testing.T) {
	data := Normalize(testGroups())
	var memo Memo

	first := memo.Denormalize(data)
	second := memo.Denormalize(data)

	assert.Equal(t, 1, memo.computes)
	assert.Same(t, &first[0], &second[0])

	next := ToggleGroup(data, "g1")
	third := memo.Denormalize(next)
	assert.Equal(t, 2, memo.computes)
	assert.False(t, third[0].IsOpen)

	// A no-op keeps the pointer, so the cache still hits.
	memo.Denormalize(ToggleGroup(next, "missing"))
	assert.Equal(t, 2, memo.computes)

	memo.Reset()
	memo.Denormalize(next)
	assert.Equal(t, 3, memo.computes)
}

func TestValidate_DetectsCorruption(t *testing.T) {
	data := Normalize(testGroups())

	meta := data.GroupsByID["g1"]
	meta.ItemCount = 5
	data.GroupsByID["g1"] = meta

	assert.ErrorContains(t, Validate(data), "item_count")

	broken := Normalize(testGroups())
	item := broken.ItemsByID["i1"]
	item.GroupID = "g2"
	broken.ItemsByID["i1"] = item

	assert.ErrorContains(t, Validate(broken), "back-references")
}
