package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/xkazm04/goat-sub002/internal/domain"
)

func (s *Server) registerBacklogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBacklogGroups",
		Method:      http.MethodGet,
		Path:        "/api/v1/session/backlog/groups",
		Summary:     "List backlog groups",
		Description: "Returns the active backlog, optionally filtered by search term, category and subcategory",
		Tags:        []string{"Backlog"},
	}, s.handleListBacklogGroups)

	huma.Register(s.api, huma.Operation{
		OperationID: "setBacklogGroups",
		Method:      http.MethodPut,
		Path:        "/api/v1/session/backlog/groups",
		Summary:     "Replace backlog",
		Description: "Replaces the whole backlog; placements whose item is gone are emptied",
		Tags:        []string{"Backlog"},
	}, s.handleSetBacklogGroups)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleBacklogGroup",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/backlog/groups/{groupID}/toggle",
		Summary:     "Toggle group",
		Description: "Flips a group's expanded flag",
		Tags:        []string{"Backlog"},
	}, s.handleToggleBacklogGroup)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGroupItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/session/backlog/groups/{groupID}/items",
		Summary:     "Get group items",
		Description: "Returns one group's items in display order",
		Tags:        []string{"Backlog"},
	}, s.handleGetGroupItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "addGroupItem",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/backlog/groups/{groupID}/items",
		Summary:     "Add item",
		Description: "Appends an item to a group, generating an ID when none is given",
		Tags:        []string{"Backlog"},
	}, s.handleAddGroupItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceGroupItems",
		Method:      http.MethodPut,
		Path:        "/api/v1/session/backlog/groups/{groupID}/items",
		Summary:     "Replace group items",
		Description: "Replaces a group's items and reconciles grid placements",
		Tags:        []string{"Backlog"},
	}, s.handleReplaceGroupItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeGroupItem",
		Method:      http.MethodDelete,
		Path:        "/api/v1/session/backlog/groups/{groupID}/items/{itemID}",
		Summary:     "Remove item",
		Description: "Deletes an item, emptying its grid slot if placed",
		Tags:        []string{"Backlog"},
	}, s.handleRemoveGroupItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "listAvailableItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/session/backlog/available",
		Summary:     "List available items",
		Description: "Returns every backlog item not placed on the grid",
		Tags:        []string{"Backlog"},
	}, s.handleListAvailableItems)
}

// === DTOs ===

// ItemRequest describes a backlog item in request bodies.
type ItemRequest struct {
	ID          string   `json:"id,omitempty" validate:"omitempty,max=200" doc:"Item ID, generated when omitted"`
	Name        string   `json:"name" validate:"required,max=300" doc:"Display name"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=2000" doc:"Description"`
	Category    string   `json:"category,omitempty" doc:"Category, inherited from the group when omitted"`
	Subcategory string   `json:"subcategory,omitempty" doc:"Subcategory"`
	ImageURL    string   `json:"image_url,omitempty" validate:"omitempty,url" doc:"Image URL"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=50,dive,max=100" doc:"Tags"`
	YearStart   int      `json:"year_start,omitempty" doc:"First year of the item's period"`
	YearEnd     int      `json:"year_end,omitempty" validate:"omitempty,gtefield=YearStart" doc:"Last year of the item's period"`
}

func (r ItemRequest) toDomain() domain.Item {
	item := domain.Item{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		ImageURL:    r.ImageURL,
		Tags:        r.Tags,
	}
	if r.YearStart != 0 {
		item.YearRange = &domain.YearRange{Start: r.YearStart, End: r.YearEnd}
	}
	return item
}

// GroupRequest describes a backlog group in request bodies.
type GroupRequest struct {
	ID          string        `json:"id" validate:"required,max=200" doc:"Group ID"`
	Name        string        `json:"name" validate:"required,max=300" doc:"Group name"`
	Description string        `json:"description,omitempty" doc:"Description"`
	Category    string        `json:"category,omitempty" doc:"Category"`
	Subcategory string        `json:"subcategory,omitempty" doc:"Subcategory"`
	IsOpen      bool          `json:"is_open,omitempty" doc:"Whether the group is expanded"`
	Items       []ItemRequest `json:"items,omitempty" validate:"dive" doc:"Items in display order"`
}

func (r GroupRequest) toDomain() domain.Group {
	g := domain.Group{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		IsOpen:      r.IsOpen,
		Items:       make([]domain.Item, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		di := item.toDomain()
		if di.Category == "" {
			di.Category = g.Category
		}
		if di.Subcategory == "" {
			di.Subcategory = g.Subcategory
		}
		g.Items = append(g.Items, di)
	}
	g.ItemCount = len(g.Items)
	return g
}

// ListGroupsInput contains the backlog filters.
type ListGroupsInput struct {
	Term        string `query:"term" doc:"Case-insensitive search over group and item text"`
	Category    string `query:"category" doc:"Exact category"`
	Subcategory string `query:"subcategory" doc:"Exact subcategory, used with category"`
}

// GroupsResponse contains backlog groups.
type GroupsResponse struct {
	Groups []domain.Group `json:"groups" doc:"Groups in display order"`
}

// GroupsOutput wraps the groups response for Huma.
type GroupsOutput struct {
	Body GroupsResponse
}

// SetGroupsRequest is the request body for replacing the backlog.
type SetGroupsRequest struct {
	Groups []GroupRequest `json:"groups" validate:"dive" doc:"The new backlog"`
}

// SetGroupsInput wraps the set groups request for Huma.
type SetGroupsInput struct {
	Body SetGroupsRequest
}

// GroupPathInput identifies a group.
type GroupPathInput struct {
	GroupID string `path:"groupID" doc:"Group ID"`
}

// ItemsResponse contains backlog items.
type ItemsResponse struct {
	Items []domain.Item `json:"items" doc:"Items"`
}

// ItemsOutput wraps the items response for Huma.
type ItemsOutput struct {
	Body ItemsResponse
}

// AddItemInput wraps the add item request for Huma.
type AddItemInput struct {
	GroupID string `path:"groupID" doc:"Group ID"`
	Body    ItemRequest
}

// AddItemResponse reports the stored item.
type AddItemResponse struct {
	Applied bool         `json:"applied" doc:"Whether the item was added"`
	Item    *domain.Item `json:"item,omitempty" doc:"The stored item"`
}

// AddItemOutput wraps the add item response for Huma.
type AddItemOutput struct {
	Body AddItemResponse
}

// ReplaceItemsRequest is the request body for replacing a group's items.
type ReplaceItemsRequest struct {
	Items []ItemRequest `json:"items" validate:"dive" doc:"The group's new items"`
}

// ReplaceItemsInput wraps the replace items request for Huma.
type ReplaceItemsInput struct {
	GroupID string `path:"groupID" doc:"Group ID"`
	Body    ReplaceItemsRequest
}

// ItemPathInput identifies an item within a group.
type ItemPathInput struct {
	GroupID string `path:"groupID" doc:"Group ID"`
	ItemID  string `path:"itemID" doc:"Item ID"`
}

// === Handlers ===

func (s *Server) handleListBacklogGroups(_ context.Context, input *ListGroupsInput) (*GroupsOutput, error) {
	var (
		groups []domain.Group
		err    error
	)
	switch {
	case input.Term != "":
		groups, err = s.sessions.SearchGroups(input.Term)
		if err == nil && input.Category != "" {
			groups = filterCategory(groups, input.Category, input.Subcategory)
		}
	case input.Category != "":
		groups, err = s.sessions.GroupsByCategory(input.Category, input.Subcategory)
	default:
		groups, err = s.sessions.BacklogGroups()
	}
	if err != nil {
		return nil, err
	}
	return &GroupsOutput{Body: GroupsResponse{Groups: groups}}, nil
}

func filterCategory(groups []domain.Group, category, subcategory string) []domain.Group {
	out := make([]domain.Group, 0, len(groups))
	for _, g := range groups {
		if g.Category != category {
			continue
		}
		if subcategory != "" && g.Subcategory != subcategory {
			continue
		}
		out = append(out, g)
	}
	return out
}

func (s *Server) handleSetBacklogGroups(_ context.Context, input *SetGroupsInput) (*GroupsOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	groups := make([]domain.Group, 0, len(input.Body.Groups))
	for _, g := range input.Body.Groups {
		groups = append(groups, g.toDomain())
	}
	if err := s.sessions.SetBacklogGroups(groups); err != nil {
		return nil, err
	}

	current, err := s.sessions.BacklogGroups()
	if err != nil {
		return nil, err
	}
	return &GroupsOutput{Body: GroupsResponse{Groups: current}}, nil
}

func (s *Server) handleToggleBacklogGroup(_ context.Context, input *GroupPathInput) (*AppliedOutput, error) {
	ok, err := s.sessions.ToggleBacklogGroup(input.GroupID)
	if err != nil {
		return nil, err
	}
	return applied(ok), nil
}

func (s *Server) handleGetGroupItems(_ context.Context, input *GroupPathInput) (*ItemsOutput, error) {
	items, err := s.sessions.GroupItems(input.GroupID)
	if err != nil {
		return nil, err
	}
	return &ItemsOutput{Body: ItemsResponse{Items: items}}, nil
}

func (s *Server) handleAddGroupItem(_ context.Context, input *AddItemInput) (*AddItemOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	item, ok, err := s.sessions.AddItemToGroup(input.GroupID, input.Body.toDomain())
	if err != nil {
		return nil, err
	}
	out := &AddItemOutput{Body: AddItemResponse{Applied: ok}}
	if ok {
		out.Body.Item = &item
	}
	return out, nil
}

func (s *Server) handleReplaceGroupItems(_ context.Context, input *ReplaceItemsInput) (*AppliedOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(input.Body.Items))
	for _, item := range input.Body.Items {
		items = append(items, item.toDomain())
	}
	ok, err := s.sessions.UpdateGroupItems(input.GroupID, items)
	if err != nil {
		return nil, err
	}
	return applied(ok), nil
}

func (s *Server) handleRemoveGroupItem(_ context.Context, input *ItemPathInput) (*AppliedOutput, error) {
	ok, err := s.sessions.RemoveItemFromGroup(input.GroupID, input.ItemID)
	if err != nil {
		return nil, err
	}
	return applied(ok), nil
}

func (s *Server) handleListAvailableItems(_ context.Context, _ *struct{}) (*ItemsOutput, error) {
	items, err := s.sessions.AvailableItems()
	if err != nil {
		return nil, err
	}
	return &ItemsOutput{Body: ItemsResponse{Items: items}}, nil
}
