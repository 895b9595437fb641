package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkazm04/goat-sub002/internal/catalog"
	"github.com/xkazm04/goat-sub002/internal/domain"
	domainerrors "github.com/xkazm04/goat-sub002/internal/errors"
	"github.com/xkazm04/goat-sub002/internal/sessionstore"
)

func TestCreateSession(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/sessions", map[string]any{"list_id": "films", "list_size": 3})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	envelope := decode[domain.ListSession](t, resp)
	assert.True(t, envelope.Success)
	assert.Equal(t, "films", envelope.Data.ID)
	assert.Equal(t, 3, envelope.Data.ListSize)
	assert.Len(t, envelope.Data.GridItems, 3)
	assert.Equal(t, "films", ts.sessions.ActiveSessionID())
}

func TestCreateSession_DefaultSize(t *testing.T) {
	ts := setupTestServer(t, sessionstore.WithDefaultListSize(7))

	resp := ts.api.Post("/api/v1/sessions", map[string]any{"list_id": "films"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Equal(t, 7, decode[domain.ListSession](t, resp).Data.ListSize)
}

func TestCreateSession_Validation(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("list id too long", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/sessions", map[string]any{"list_id": strings.Repeat("x", 201)})
		require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

		envelope := decode[any](t, resp)
		assert.False(t, envelope.Success)
		assert.Equal(t, string(domainerrors.CodeValidation), envelope.Code)
		assert.Contains(t, envelope.Details, "list_id")
	})

	t.Run("list size out of range", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/sessions", map[string]any{"list_id": "films", "list_size": 5000})
		require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
		assert.Contains(t, decode[any](t, resp).Details, "list_size")
	})

	t.Run("missing list id", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/sessions", map[string]any{"list_size": 3})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code, resp.Body.String())

		envelope := decode[any](t, resp)
		assert.Equal(t, string(domainerrors.CodeValidation), envelope.Code)
		assert.NotEmpty(t, envelope.Details)
	})

	assert.Empty(t, ts.sessions.Sessions())
}

func TestListAndGetSessions(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 3)
	ts.createSession(t, "books", 5)

	envelope := decode[ListSessionsResponse](t, ts.api.Get("/api/v1/sessions"))
	require.Len(t, envelope.Data.Sessions, 2)
	assert.Equal(t, "books", envelope.Data.ActiveSessionID)

	ids := []string{envelope.Data.Sessions[0].ListID, envelope.Data.Sessions[1].ListID}
	assert.ElementsMatch(t, []string{"films", "books"}, ids)

	resp := ts.api.Get("/api/v1/sessions/films")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 3, decode[domain.ListSession](t, resp).Data.ListSize)

	resp = ts.api.Get("/api/v1/sessions/missing")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, string(domainerrors.CodeNotFound), decode[any](t, resp).Code)
}

func TestSwitchAndLoadSession(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 3)
	ts.createSession(t, "books", 5)

	resp := ts.api.Post("/api/v1/sessions/films/switch")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "films", decode[domain.ListSession](t, resp).Data.ID)
	assert.Equal(t, "films", ts.sessions.ActiveSessionID())

	resp = ts.api.Post("/api/v1/sessions/games/load?size=4")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	loaded := decode[domain.ListSession](t, resp).Data
	assert.Equal(t, "games", loaded.ID)
	assert.Equal(t, 4, loaded.ListSize)
	assert.Equal(t, "games", ts.sessions.ActiveSessionID())
}

func TestSaveActiveSession(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 3)

	resp := ts.api.Post("/api/v1/session/save")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.NotNil(t, decode[domain.ListSession](t, resp).Data.LastSavedAt)

	meta := decode[domain.SessionMetadata](t, ts.api.Get("/api/v1/session/metadata"))
	assert.Equal(t, "films", meta.Data.ListID)
	assert.False(t, meta.Data.HasUnsavedChanges)
}

func TestDeleteSession(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 3)

	resp := ts.api.Delete("/api/v1/sessions/films")
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	assert.Equal(t, http.StatusConflict, ts.api.Get("/api/v1/session").Code)
	assert.Equal(t, http.StatusNotFound, ts.api.Get("/api/v1/sessions/films").Code)

	// Deleting an unknown list is not an error.
	assert.Equal(t, http.StatusNoContent, ts.api.Delete("/api/v1/sessions/films").Code)
}

func TestResetStore(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 3)
	ts.createSession(t, "books", 3)

	resp := ts.api.Post("/api/v1/store/reset")
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	envelope := decode[ListSessionsResponse](t, ts.api.Get("/api/v1/sessions"))
	assert.Empty(t, envelope.Data.Sessions)
	assert.Empty(t, envelope.Data.ActiveSessionID)
}

func TestProgress(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 4)

	envelope := decode[domain.Progress](t, ts.api.Get("/api/v1/session/progress"))
	assert.Equal(t, domain.Progress{TotalSize: 4}, envelope.Data)
}

func TestSetSelection(t *testing.T) {
	ts := setupTestServer(t)
	ts.createSession(t, "films", 3)
	ts.setBacklog(t)

	resp := ts.api.Put("/api/v1/session/selection", map[string]any{"backlog_item_id": "alien"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, decode[AppliedResponse](t, resp).Data.Applied)

	// Same selection again changes nothing.
	resp = ts.api.Put("/api/v1/session/selection", map[string]any{"backlog_item_id": "alien"})
	assert.False(t, decode[AppliedResponse](t, resp).Data.Applied)

	resp = ts.api.Put("/api/v1/session/selection", map[string]any{"grid_item_id": "grid-2"})
	assert.True(t, decode[AppliedResponse](t, resp).Data.Applied)

	resp = ts.api.Put("/api/v1/session/selection", map[string]any{"grid_item_id": "grid-99"})
	assert.False(t, decode[AppliedResponse](t, resp).Data.Applied)

	sess := decode[domain.ListSession](t, ts.api.Get("/api/v1/session")).Data
	require.NotNil(t, sess.SelectedBacklogItem)
	require.NotNil(t, sess.SelectedGridItem)
	assert.Equal(t, "alien", *sess.SelectedBacklogItem)
	assert.Equal(t, "grid-2", *sess.SelectedGridItem)

	resp = ts.api.Put("/api/v1/session/selection", map[string]any{"backlog_item_id": ""})
	assert.True(t, decode[AppliedResponse](t, resp).Data.Applied)
	sess = decode[domain.ListSession](t, ts.api.Get("/api/v1/session")).Data
	assert.Nil(t, sess.SelectedBacklogItem)
}

func TestSyncSession(t *testing.T) {
	var gotPath, gotCategory string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCategory = r.URL.Query().Get("category")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"groups":[{"id":"scifi","name":"Sci-Fi","category":"film",
			"items":[{"id":"alien","name":"Alien"},{"id":"solaris","name":"Solaris"}]}]}`))
	}))
	defer backend.Close()

	client, err := catalog.New(backend.URL, time.Second, 100, nil)
	require.NoError(t, err)
	defer client.Close()

	ts := setupTestServer(t, sessionstore.WithBackend(client))
	ts.createSession(t, "films", 3)

	resp := ts.api.Post("/api/v1/sessions/films/sync?category=film")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	sess := decode[domain.ListSession](t, resp).Data
	assert.Equal(t, "/lists/films/groups", gotPath)
	assert.Equal(t, "film", gotCategory)
	assert.True(t, sess.Synced)
	assert.Equal(t, "film", sess.Category)
	require.Len(t, sess.BacklogGroups, 1)
	assert.Len(t, sess.BacklogGroups[0].Items, 2)
	assert.Equal(t, "film", sess.BacklogGroups[0].Items[0].Category)
}

func TestSyncSession_BackendFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()

	client, err := catalog.New(backend.URL, time.Second, 100, nil)
	require.NoError(t, err)
	defer client.Close()

	ts := setupTestServer(t, sessionstore.WithBackend(client))
	ts.createSession(t, "films", 3)

	resp := ts.api.Post("/api/v1/sessions/films/sync")
	require.Equal(t, http.StatusBadGateway, resp.Code, resp.Body.String())
	assert.Equal(t, string(domainerrors.CodeUnavailable), decode[any](t, resp).Code)
}

func TestSyncSession_NotConfigured(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/sessions/films/sync")
	require.Equal(t, http.StatusBadGateway, resp.Code, resp.Body.String())
	assert.Equal(t, string(domainerrors.CodeUnavailable), decode[any](t, resp).Code)
}
