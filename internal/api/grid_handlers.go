package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/xkazm04/goat-sub002/internal/domain"
	"github.com/xkazm04/goat-sub002/internal/grid"
	"github.com/xkazm04/goat-sub002/internal/placement"
)

func (s *Server) registerGridRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getGrid",
		Method:      http.MethodGet,
		Path:        "/api/v1/session/grid",
		Summary:     "Get grid",
		Description: "Returns the active grid and its progress",
		Tags:        []string{"Grid"},
	}, s.handleGetGrid)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearGrid",
		Method:      http.MethodDelete,
		Path:        "/api/v1/session/grid",
		Summary:     "Clear grid",
		Description: "Returns every placed item to the backlog",
		Tags:        []string{"Grid"},
	}, s.handleClearGrid)

	huma.Register(s.api, huma.Operation{
		OperationID: "assignGridItem",
		Method:      http.MethodPut,
		Path:        "/api/v1/session/grid/{position}",
		Summary:     "Assign item",
		Description: "Places a backlog item into an empty position",
		Tags:        []string{"Grid"},
	}, s.handleAssignGridItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeGridItem",
		Method:      http.MethodDelete,
		Path:        "/api/v1/session/grid/{position}",
		Summary:     "Remove item",
		Description: "Empties a position and returns its item to the backlog",
		Tags:        []string{"Grid"},
	}, s.handleRemoveGridItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "moveGridItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/grid/move",
		Summary:     "Move item",
		Description: "Moves an item to another position, swapping with its occupant",
		Tags:        []string{"Grid"},
	}, s.handleMoveGridItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDropZones",
		Method:      http.MethodGet,
		Path:        "/api/v1/session/grid/drop-zones",
		Summary:     "Score drop zones",
		Description: "Ranks positions for an item being dragged, best first",
		Tags:        []string{"Grid"},
	}, s.handleGetDropZones)

	huma.Register(s.api, huma.Operation{
		OperationID: "predictPosition",
		Method:      http.MethodGet,
		Path:        "/api/v1/session/grid/predict",
		Summary:     "Predict position",
		Description: "Suggests the best empty position for an item",
		Tags:        []string{"Grid"},
	}, s.handlePredictPosition)
}

// === DTOs ===

// GridResponse contains the grid and its progress.
type GridResponse struct {
	Items    []domain.GridItem `json:"items" doc:"Grid positions in order"`
	Progress domain.Progress   `json:"progress" doc:"Fill progress"`
}

// GridOutput wraps the grid response for Huma.
type GridOutput struct {
	Body GridResponse
}

// GridMutationResponse reports a grid mutation and the resulting progress.
type GridMutationResponse struct {
	Applied  bool            `json:"applied" doc:"Whether the grid changed"`
	Progress domain.Progress `json:"progress" doc:"Fill progress after the call"`
}

// GridMutationOutput wraps the grid mutation response for Huma.
type GridMutationOutput struct {
	Body GridMutationResponse
}

// AssignRequest is the request body for placing an item.
type AssignRequest struct {
	ItemID string `json:"item_id" validate:"required" doc:"Backlog item ID"`
}

// AssignInput wraps the assign request for Huma.
type AssignInput struct {
	Position int `path:"position" doc:"Grid position"`
	Body     AssignRequest
}

// PositionInput identifies a grid position.
type PositionInput struct {
	Position int `path:"position" doc:"Grid position"`
}

// MoveRequest is the request body for moving an item.
type MoveRequest struct {
	From int `json:"from" doc:"Source position"`
	To   int `json:"to" doc:"Target position"`
}

// MoveInput wraps the move request for Huma.
type MoveInput struct {
	Body MoveRequest
}

// DropZonesInput contains drag state.
type DropZonesInput struct {
	ItemID string `query:"item_id" required:"true" doc:"Dragged item ID"`
	Hover  int    `query:"hover" default:"-1" doc:"Position under the pointer, -1 when outside the grid"`
}

// DropZonesResponse contains scored positions.
type DropZonesResponse struct {
	Zones []placement.DropZone `json:"zones" doc:"Candidate positions, best first"`
}

// DropZonesOutput wraps the drop zones response for Huma.
type DropZonesOutput struct {
	Body DropZonesResponse
}

// PredictInput identifies the item to place.
type PredictInput struct {
	ItemID string `query:"item_id" required:"true" doc:"Item ID"`
}

// PredictResponse contains the suggested position.
type PredictResponse struct {
	Found    bool   `json:"found" doc:"False when the grid has no empty position"`
	Position int    `json:"position" doc:"Suggested position"`
	SlotID   string `json:"slot_id,omitempty" doc:"Suggested slot ID"`
}

// PredictOutput wraps the predict response for Huma.
type PredictOutput struct {
	Body PredictResponse
}

// === Handlers ===

func (s *Server) handleGetGrid(_ context.Context, _ *struct{}) (*GridOutput, error) {
	items, err := s.sessions.GridItems()
	if err != nil {
		return nil, err
	}
	progress, err := s.sessions.Progress()
	if err != nil {
		return nil, err
	}
	return &GridOutput{Body: GridResponse{Items: items, Progress: progress}}, nil
}

// gridResult pairs a mutation outcome with the progress after it.
func (s *Server) gridResult(ok bool, err error) (*GridMutationOutput, error) {
	if err != nil {
		return nil, err
	}
	progress, err := s.sessions.Progress()
	if err != nil {
		return nil, err
	}
	return &GridMutationOutput{Body: GridMutationResponse{Applied: ok, Progress: progress}}, nil
}

func (s *Server) handleClearGrid(_ context.Context, _ *struct{}) (*GridMutationOutput, error) {
	return s.gridResult(s.sessions.ClearGrid())
}

func (s *Server) handleAssignGridItem(_ context.Context, input *AssignInput) (*GridMutationOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	return s.gridResult(s.sessions.AssignToGrid(input.Body.ItemID, input.Position))
}

func (s *Server) handleRemoveGridItem(_ context.Context, input *PositionInput) (*GridMutationOutput, error) {
	return s.gridResult(s.sessions.RemoveFromGrid(input.Position))
}

func (s *Server) handleMoveGridItem(_ context.Context, input *MoveInput) (*GridMutationOutput, error) {
	return s.gridResult(s.sessions.MoveGridItem(input.Body.From, input.Body.To))
}

func (s *Server) handleGetDropZones(_ context.Context, input *DropZonesInput) (*DropZonesOutput, error) {
	zones, err := s.sessions.DropZones(input.ItemID, input.Hover)
	if err != nil {
		return nil, err
	}
	return &DropZonesOutput{Body: DropZonesResponse{Zones: zones}}, nil
}

func (s *Server) handlePredictPosition(_ context.Context, input *PredictInput) (*PredictOutput, error) {
	pos, ok, err := s.sessions.PredictPosition(input.ItemID)
	if err != nil {
		return nil, err
	}
	out := &PredictOutput{Body: PredictResponse{Found: ok}}
	if ok {
		out.Body.Position = pos
		out.Body.SlotID = grid.SlotID(pos)
	}
	return out, nil
}
