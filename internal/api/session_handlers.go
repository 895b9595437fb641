package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/xkazm04/goat-sub002/internal/domain"
	domainerrors "github.com/xkazm04/goat-sub002/internal/errors"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions",
		Summary:     "List sessions",
		Description: "Returns metadata for every known session, most recently updated first",
		Tags:        []string{"Sessions"},
	}, s.handleListSessions)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createSession",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions",
		Summary:       "Create session",
		Description:   "Starts an empty session for a list and makes it active, replacing any stored one",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{listID}",
		Summary:     "Get session",
		Description: "Returns the in-memory session of a list",
		Tags:        []string{"Sessions"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteSession",
		Method:        http.MethodDelete,
		Path:          "/api/v1/sessions/{listID}",
		Summary:       "Delete session",
		Description:   "Forgets a list's session in memory and in both stores",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "switchSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{listID}/switch",
		Summary:     "Switch session",
		Description: "Saves the active session, waits for its offline copy and activates the list",
		Tags:        []string{"Sessions"},
	}, s.handleSwitchSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "loadSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{listID}/load",
		Summary:     "Load session",
		Description: "Activates the list, reconciling the local and offline copies by last update",
		Tags:        []string{"Sessions"},
	}, s.handleLoadSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "syncSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{listID}/sync",
		Summary:     "Sync with backend",
		Description: "Replaces the list's backlog with the catalog's groups, keeping placements that still exist",
		Tags:        []string{"Sessions"},
	}, s.handleSyncSession)

	huma.Register(s.api, huma.Operation{
		OperationID:   "resetStore",
		Method:        http.MethodPost,
		Path:          "/api/v1/store/reset",
		Summary:       "Reset store",
		Description:   "Drops every session from memory and both stores",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleResetStore)

	huma.Register(s.api, huma.Operation{
		OperationID: "getActiveSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/session",
		Summary:     "Get active session",
		Description: "Returns the active session with its live backlog",
		Tags:        []string{"Active session"},
	}, s.handleGetActiveSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveActiveSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/save",
		Summary:     "Save active session",
		Description: "Persists the active session now instead of waiting for the debounced save",
		Tags:        []string{"Active session"},
	}, s.handleSaveActiveSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProgress",
		Method:      http.MethodGet,
		Path:        "/api/v1/session/progress",
		Summary:     "Get progress",
		Description: "Returns how much of the active grid is filled",
		Tags:        []string{"Active session"},
	}, s.handleGetProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMetadata",
		Method:      http.MethodGet,
		Path:        "/api/v1/session/metadata",
		Summary:     "Get metadata",
		Description: "Summarises the active session",
		Tags:        []string{"Active session"},
	}, s.handleGetMetadata)

	huma.Register(s.api, huma.Operation{
		OperationID: "setSelection",
		Method:      http.MethodPut,
		Path:        "/api/v1/session/selection",
		Summary:     "Set selection",
		Description: "Selects a backlog item and/or grid slot; an empty id clears that selection",
		Tags:        []string{"Active session"},
	}, s.handleSetSelection)
}

// === DTOs ===

// SessionOutput wraps a session for Huma.
type SessionOutput struct {
	Body *domain.ListSession
}

// ListSessionsResponse contains session summaries.
type ListSessionsResponse struct {
	Sessions        []domain.SessionMetadata `json:"sessions" doc:"Session summaries"`
	ActiveSessionID string                   `json:"active_session_id,omitempty" doc:"Active list ID"`
}

// ListSessionsOutput wraps the list sessions response for Huma.
type ListSessionsOutput struct {
	Body ListSessionsResponse
}

// CreateSessionRequest is the request body for creating a session.
type CreateSessionRequest struct {
	ListID   string `json:"list_id" validate:"required,max=200" doc:"List ID"`
	ListSize int    `json:"list_size,omitempty" validate:"omitempty,min=1,max=1000" doc:"Grid size, server default when omitted"`
}

// CreateSessionInput wraps the create session request for Huma.
type CreateSessionInput struct {
	Body CreateSessionRequest
}

// SessionPathInput identifies a session by list ID.
type SessionPathInput struct {
	ListID string `path:"listID" doc:"List ID"`
}

// ActivateSessionInput contains parameters for switching or loading.
type ActivateSessionInput struct {
	ListID string `path:"listID" doc:"List ID"`
	Size   int    `query:"size" minimum:"0" maximum:"1000" doc:"Grid size if a new session is created"`
}

// SyncSessionInput contains parameters for a backend sync.
type SyncSessionInput struct {
	ListID   string `path:"listID" doc:"List ID"`
	Category string `query:"category" doc:"Catalog category filter"`
}

// ProgressOutput wraps grid progress for Huma.
type ProgressOutput struct {
	Body domain.Progress
}

// MetadataOutput wraps session metadata for Huma.
type MetadataOutput struct {
	Body domain.SessionMetadata
}

// SelectionRequest is the request body for changing the selection. Omitted
// fields are left alone.
type SelectionRequest struct {
	BacklogItemID *string `json:"backlog_item_id,omitempty" doc:"Backlog item to select, empty to clear"`
	GridItemID    *string `json:"grid_item_id,omitempty" doc:"Grid slot ID to select, empty to clear"`
}

// SelectionInput wraps the selection request for Huma.
type SelectionInput struct {
	Body SelectionRequest
}

// AppliedResponse reports whether a mutation changed anything. Mutations
// whose preconditions do not hold are not errors; they report false.
type AppliedResponse struct {
	Applied bool `json:"applied" doc:"Whether the mutation changed state"`
}

// AppliedOutput wraps an applied response for Huma.
type AppliedOutput struct {
	Body AppliedResponse
}

func applied(ok bool) *AppliedOutput {
	return &AppliedOutput{Body: AppliedResponse{Applied: ok}}
}

// === Handlers ===

func (s *Server) handleListSessions(_ context.Context, _ *struct{}) (*ListSessionsOutput, error) {
	return &ListSessionsOutput{
		Body: ListSessionsResponse{
			Sessions:        s.sessions.Sessions(),
			ActiveSessionID: s.sessions.ActiveSessionID(),
		},
	}, nil
}

func (s *Server) handleCreateSession(ctx context.Context, input *CreateSessionInput) (*SessionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	sess, err := s.sessions.CreateSession(ctx, input.Body.ListID, input.Body.ListSize)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: sess}, nil
}

func (s *Server) handleGetSession(_ context.Context, input *SessionPathInput) (*SessionOutput, error) {
	sess, err := s.sessions.Session(input.ListID)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: sess}, nil
}

func (s *Server) handleDeleteSession(ctx context.Context, input *SessionPathInput) (*struct{}, error) {
	if err := s.sessions.DeleteSession(ctx, input.ListID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleSwitchSession(ctx context.Context, input *ActivateSessionInput) (*SessionOutput, error) {
	sess, err := s.sessions.SwitchToSession(ctx, input.ListID, input.Size)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: sess}, nil
}

func (s *Server) handleLoadSession(ctx context.Context, input *ActivateSessionInput) (*SessionOutput, error) {
	sess, err := s.sessions.LoadSession(ctx, input.ListID, input.Size)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: sess}, nil
}

func (s *Server) handleSyncSession(ctx context.Context, input *SyncSessionInput) (*SessionOutput, error) {
	sess, err := s.sessions.SyncWithBackend(ctx, input.ListID, input.Category)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: sess}, nil
}

func (s *Server) handleResetStore(ctx context.Context, _ *struct{}) (*struct{}, error) {
	if err := s.sessions.ResetStore(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleGetActiveSession(_ context.Context, _ *struct{}) (*SessionOutput, error) {
	sess, err := s.sessions.ActiveSession()
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: sess}, nil
}

func (s *Server) handleSaveActiveSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	sess, err := s.sessions.SaveCurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domainerrors.ErrNoActiveSession
	}
	return &SessionOutput{Body: sess}, nil
}

func (s *Server) handleGetProgress(_ context.Context, _ *struct{}) (*ProgressOutput, error) {
	p, err := s.sessions.Progress()
	if err != nil {
		return nil, err
	}
	return &ProgressOutput{Body: p}, nil
}

func (s *Server) handleGetMetadata(_ context.Context, _ *struct{}) (*MetadataOutput, error) {
	m, err := s.sessions.Metadata()
	if err != nil {
		return nil, err
	}
	return &MetadataOutput{Body: m}, nil
}

func (s *Server) handleSetSelection(_ context.Context, input *SelectionInput) (*AppliedOutput, error) {
	var changed bool
	if id := input.Body.BacklogItemID; id != nil {
		ok, err := s.sessions.SelectBacklogItem(*id)
		if err != nil {
			return nil, err
		}
		changed = changed || ok
	}
	if id := input.Body.GridItemID; id != nil {
		ok, err := s.sessions.SelectGridItem(*id)
		if err != nil {
			return nil, err
		}
		changed = changed || ok
	}
	return applied(changed), nil
}
