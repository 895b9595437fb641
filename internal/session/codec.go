package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/xkazm04/goat-sub002/internal/backlog"
	"github.com/xkazm04/goat-sub002/internal/domain"
	"github.com/xkazm04/goat-sub002/internal/grid"
)

// ErrMalformedRecord is returned by Decode for input that is not a JSON object.
var ErrMalformedRecord = errors.New("malformed session record")

type record struct {
	Version int `json:"version"`
	*domain.ListSession
}

// Encode serializes s in the current persisted shape, tagged with
// domain.BacklogVersion.
func Encode(s *domain.ListSession) ([]byte, error) {
	if s == nil {
		return nil, errors.New("encode nil session")
	}
	data, err := json.Marshal(record{Version: domain.BacklogVersion, ListSession: s})
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return data, nil
}

// Decode reads a persisted session. Records without a version tag were
// written before the backlog was normalized; their fields are read
// tolerantly and their backlog goes through backlog.MigrateLegacy.
// Decode does not validate the result.
func Decode(raw []byte) (*domain.ListSession, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrMalformedRecord
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, ErrMalformedRecord
	}

	if root.Get("version").Exists() {
		var s domain.ListSession
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}
		if s.BacklogGroups == nil {
			s.BacklogGroups = []domain.Group{}
		}
		return &s, nil
	}
	return decodeLegacy(root)
}

func decodeLegacy(root gjson.Result) (*domain.ListSession, error) {
	s := &domain.ListSession{
		ID:        pick(root, "id", "listId", "list_id").String(),
		ListSize:  int(pick(root, "listSize", "list_size", "size").Int()),
		Synced:    root.Get("synced").Bool(),
		Category:  root.Get("category").String(),
		CreatedAt: legacyTime(pick(root, "createdAt", "created_at")),
		UpdatedAt: legacyTime(pick(root, "updatedAt", "updated_at")),
	}
	if v := pick(root, "selectedBacklogItem", "selected_backlog_item"); v.Type == gjson.String {
		s.SelectedBacklogItem = &v.Str
	}
	if v := pick(root, "selectedGridItem", "selected_grid_item"); v.Type == gjson.String {
		s.SelectedGridItem = &v.Str
	}

	s.BacklogGroups = []domain.Group{}
	if groups := pick(root, "backlogGroups", "backlog_groups"); groups.Exists() {
		data, err := backlog.MigrateLegacy([]byte(groups.Raw))
		if err != nil {
			return nil, fmt.Errorf("migrate legacy backlog: %w", err)
		}
		s.BacklogGroups = backlog.Denormalize(data)
	}

	slots := pick(root, "gridItems", "grid_items")
	if !slots.Exists() {
		s.GridItems = grid.NewGrid(s.ListSize)
		return s, nil
	}
	entries := slots.Array()
	s.GridItems = make([]domain.GridItem, 0, len(entries))
	for i, e := range entries {
		s.GridItems = append(s.GridItems, legacySlot(e, i))
	}
	if s.ListSize == 0 {
		s.ListSize = len(s.GridItems)
	}
	return s, nil
}

// legacySlot reads one grid slot. Older clients stored no slot id and no
// position; both derive from the array index.
func legacySlot(e gjson.Result, index int) domain.GridItem {
	position := index
	if p := e.Get("position"); p.Exists() {
		position = int(p.Int())
	}
	slot := domain.GridItem{
		ID:          e.Get("id").String(),
		Position:    position,
		Title:       pick(e, "title", "name").String(),
		Description: e.Get("description").String(),
		ImageURL:    pick(e, "imageUrl", "image_url", "image").String(),
		Matched:     e.Get("matched").Bool(),
		MatchedWith: pick(e, "matchedWith", "matched_with").String(),
		Tags:        []string{},
	}
	if slot.ID == "" {
		slot.ID = grid.SlotID(position)
	}
	for _, t := range e.Get("tags").Array() {
		slot.Tags = append(slot.Tags, t.String())
	}
	if !slot.Matched {
		slot.MatchedWith = ""
	}
	return slot
}

func legacyTime(r gjson.Result) time.Time {
	if r.Type == gjson.Number {
		return time.UnixMilli(r.Int()).UTC()
	}
	t, err := time.Parse(time.RFC3339Nano, r.String())
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func pick(rec gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := rec.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}
