package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/xkazm04/goat-sub002/internal/errors"
)

func (ts *testServer) assign(t *testing.T, itemID string, position string) GridMutationResponse {
	t.Helper()
	resp := ts.api.Put("/api/v1/session/grid/"+position, map[string]any{"item_id": itemID})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decode[GridMutationResponse](t, resp).Data
}

func TestGetGrid(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 3)

	resp := ts.api.Get("/api/v1/session/grid")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	grid := decode[GridResponse](t, resp).Data
	require.Len(t, grid.Items, 3)
	for i, slot := range grid.Items {
		assert.Equal(t, i, slot.Position)
		assert.False(t, slot.Matched)
	}
	assert.Equal(t, 3, grid.Progress.TotalSize)
}

func TestAssignGridItem(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 3)
	ts.setBacklog(t)

	res := ts.assign(t, "alien", "0")
	assert.True(t, res.Applied)
	assert.Equal(t, 1, res.Progress.MatchedCount)

	tests := []struct {
		name     string
		itemID   string
		position string
	}{
		{"occupied position", "solaris", "0"},
		{"already placed item", "alien", "1"},
		{"unknown item", "missing", "1"},
		{"out of range", "solaris", "3"},
		{"negative position", "solaris", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ts.assign(t, tt.itemID, tt.position)
			assert.False(t, res.Applied)
			assert.Equal(t, 1, res.Progress.MatchedCount)
		})
	}

	grid := decode[GridResponse](t, ts.api.Get("/api/v1/session/grid")).Data
	assert.Equal(t, "alien", grid.Items[0].MatchedWith)
	assert.Equal(t, "Alien", grid.Items[0].Title)

	groups := decode[GroupsResponse](t, ts.api.Get("/api/v1/session/backlog/groups")).Data.Groups
	require.NotEmpty(t, groups)
	require.NotEmpty(t, groups[0].Items)
	assert.True(t, groups[0].Items[0].Matched, "the backlog item is flagged as placed")
}

func TestAssignGridItem_MissingItemID(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 3)

	resp := ts.api.Put("/api/v1/session/grid/0", map[string]any{})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code, resp.Body.String())
	assert.Equal(t, string(domainerrors.CodeValidation), decode[any](t, resp).Code)
}

func TestMoveGridItem(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 3)
	ts.setBacklog(t)
	ts.assign(t, "alien", "0")
	ts.assign(t, "solaris", "1")

	resp := ts.api.Post("/api/v1/session/grid/move", map[string]any{"from": 0, "to": 2})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, decode[GridMutationResponse](t, resp).Data.Applied)

	grid := decode[GridResponse](t, ts.api.Get("/api/v1/session/grid")).Data
	assert.False(t, grid.Items[0].Matched)
	assert.Equal(t, "alien", grid.Items[2].MatchedWith)

	// Moving onto an occupied position swaps.
	resp = ts.api.Post("/api/v1/session/grid/move", map[string]any{"from": 2, "to": 1})
	assert.True(t, decode[GridMutationResponse](t, resp).Data.Applied)
	grid = decode[GridResponse](t, ts.api.Get("/api/v1/session/grid")).Data
	assert.Equal(t, "alien", grid.Items[1].MatchedWith)
	assert.Equal(t, "solaris", grid.Items[2].MatchedWith)
	assert.Equal(t, 2, grid.Progress.MatchedCount)

	for _, body := range []map[string]any{
		{"from": 0, "to": 1}, // empty source
		{"from": 1, "to": 1}, // same position
		{"from": 1, "to": 7}, // out of range
	} {
		resp := ts.api.Post("/api/v1/session/grid/move", body)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.False(t, decode[GridMutationResponse](t, resp).Data.Applied, "move %v", body)
	}
}

func TestRemoveAndClearGrid(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 3)
	ts.setBacklog(t)
	ts.assign(t, "alien", "0")
	ts.assign(t, "casablanca", "1")

	resp := ts.api.Delete("/api/v1/session/grid/0")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	res := decode[GridMutationResponse](t, resp).Data
	assert.True(t, res.Applied)
	assert.Equal(t, 1, res.Progress.MatchedCount)

	resp = ts.api.Delete("/api/v1/session/grid/0")
	assert.False(t, decode[GridMutationResponse](t, resp).Data.Applied)

	resp = ts.api.Delete("/api/v1/session/grid")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	res = decode[GridMutationResponse](t, resp).Data
	assert.True(t, res.Applied)
	assert.Equal(t, 0, res.Progress.MatchedCount)

	resp = ts.api.Delete("/api/v1/session/grid")
	assert.False(t, decode[GridMutationResponse](t, resp).Data.Applied)

	items := decode[ItemsResponse](t, ts.api.Get("/api/v1/session/backlog/available")).Data.Items
	assert.Len(t, items, 4, "every item is back in the backlog")
}

func TestDropZones(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 4)
	ts.setBacklog(t)
	ts.assign(t, "alien", "1")

	resp := ts.api.Get("/api/v1/session/grid/drop-zones?item_id=solaris")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	zones := decode[DropZonesResponse](t, resp).Data.Zones
	require.Len(t, zones, 3, "the occupied slot is not offered to an unplaced item")
	positions := []int{zones[0].Position, zones[1].Position, zones[2].Position}
	assert.ElementsMatch(t, []int{0, 2, 3}, positions)
	assert.Equal(t, "grid-0", zones[0].SlotID, "shared tags and an early position rank first")
	assert.GreaterOrEqual(t, zones[0].Score, zones[1].Score)

	resp = ts.api.Get("/api/v1/session/grid/drop-zones?item_id=dune&hover=3")
	zones = decode[DropZonesResponse](t, resp).Data.Zones
	require.Len(t, zones, 3)
	assert.Equal(t, []int{3, 2, 0}, []int{zones[0].Position, zones[1].Position, zones[2].Position},
		"without shared tags the hovered position wins and distance decides the rest")

	resp = ts.api.Get("/api/v1/session/grid/drop-zones?item_id=missing")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, string(domainerrors.CodeNotFound), decode[any](t, resp).Code)
}

func TestPredictPosition(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 2)
	ts.setBacklog(t)
	ts.assign(t, "alien", "0")

	resp := ts.api.Get("/api/v1/session/grid/predict?item_id=solaris")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	pred := decode[PredictResponse](t, resp).Data
	assert.True(t, pred.Found)
	assert.Equal(t, 1, pred.Position)
	assert.Equal(t, "grid-1", pred.SlotID)

	ts.assign(t, "casablanca", "1")
	pred = decode[PredictResponse](t, ts.api.Get("/api/v1/session/grid/predict?item_id=solaris")).Data
	assert.False(t, pred.Found)
	assert.Empty(t, pred.SlotID)

	resp = ts.api.Get("/api/v1/session/grid/predict")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
