package backlog

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/xkazm04/goat-sub002/internal/domain"
)

// ErrMalformedGroups is returned when a group payload is not a JSON array of
// group records (optionally wrapped in {"groups": [...]}).
var ErrMalformedGroups = errors.New("malformed group payload")

// MigrateLegacy normalizes a backlog persisted in the pre-normalization
// nested-array shape. That shape predates the version tag and was written by
// several client generations, so field names are read tolerantly.
func MigrateLegacy(raw []byte) (*domain.NormalizedBacklogData, error) {
	groups, err := ParseGroups(raw)
	if err != nil {
		return nil, err
	}
	return Normalize(groups), nil
}

// ParseGroups reads loosely shaped group records: the legacy on-disk backlog
// and the backend's list/groups payload share this reader. Unknown fields are
// ignored and missing optional fields take their defaults.
func ParseGroups(raw []byte) ([]domain.Group, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrMalformedGroups
	}

	root := gjson.ParseBytes(raw)
	if root.IsObject() {
		root = first(root, "groups", "backlogGroups", "backlog_groups", "data")
	}
	if !root.IsArray() {
		return nil, ErrMalformedGroups
	}

	records := root.Array()
	groups := make([]domain.Group, 0, len(records))
	for _, rec := range records {
		if !rec.IsObject() {
			continue
		}
		groups = append(groups, parseGroup(rec))
	}
	return groups, nil
}

func parseGroup(rec gjson.Result) domain.Group {
	g := domain.Group{
		ID:          idString(first(rec, "id", "group_id", "groupId")),
		Name:        first(rec, "name", "title").String(),
		Description: first(rec, "description").String(),
		Category:    first(rec, "category").String(),
		Subcategory: first(rec, "subcategory", "sub_category", "subCategory").String(),
		IsOpen:      first(rec, "is_open", "isOpen", "isExpanded", "expanded").Bool(),
		Timestamps:  parseTimestamps(rec),
	}

	itemsRes := first(rec, "items", "backlogItems", "backlog_items")
	entries := itemsRes.Array()
	g.Items = make([]domain.Item, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsObject() {
			continue
		}
		item := parseItem(entry)
		if item.Category == "" {
			item.Category = g.Category
		}
		if item.Subcategory == "" {
			item.Subcategory = g.Subcategory
		}
		g.Items = append(g.Items, item)
	}
	g.ItemCount = len(g.Items)
	return g
}

func parseItem(rec gjson.Result) domain.Item {
	item := domain.Item{
		ID:          idString(first(rec, "id", "item_id", "itemId")),
		Name:        first(rec, "name", "title").String(),
		Description: first(rec, "description").String(),
		Category:    first(rec, "category").String(),
		Subcategory: first(rec, "subcategory", "sub_category", "subCategory").String(),
		ImageURL:    first(rec, "image_url", "imageUrl", "image").String(),
		Matched:     rec.Get("matched").Bool(),
		MatchedWith: first(rec, "matched_with", "matchedWith").String(),
		YearRange:   parseYearRange(rec),
		Tags:        parseTags(rec.Get("tags")),
		Timestamps:  parseTimestamps(rec),
	}
	if !item.Matched {
		item.MatchedWith = ""
	}
	return item
}

// parseYearRange accepts {"year_range": {"start", "end"}}, flat
// start_year/end_year (or item_year/item_year_to) and a single "year".
// Values may be numbers or numeric strings.
func parseYearRange(rec gjson.Result) *domain.YearRange {
	if yr := first(rec, "year_range", "yearRange"); yr.IsObject() {
		start := yearValue(first(yr, "start", "from"))
		if start == 0 {
			return nil
		}
		return &domain.YearRange{Start: start, End: yearValue(first(yr, "end", "to"))}
	}

	start := yearValue(first(rec, "start_year", "startYear", "item_year", "year"))
	if start == 0 {
		return nil
	}
	return &domain.YearRange{Start: start, End: yearValue(first(rec, "end_year", "endYear", "item_year_to"))}
}

func yearValue(r gjson.Result) int {
	switch r.Type {
	case gjson.Number:
		return int(r.Int())
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(r.Str))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// parseTags accepts an array of strings or a single comma separated string.
func parseTags(r gjson.Result) []string {
	tags := []string{}
	switch {
	case r.IsArray():
		for _, t := range r.Array() {
			if s := strings.TrimSpace(t.String()); s != "" {
				tags = append(tags, s)
			}
		}
	case r.Type == gjson.String:
		for _, t := range strings.Split(r.Str, ",") {
			if s := strings.TrimSpace(t); s != "" {
				tags = append(tags, s)
			}
		}
	}
	return tags
}

func parseTimestamps(rec gjson.Result) domain.Timestamps {
	return domain.Timestamps{
		CreatedAt: timeValue(first(rec, "created_at", "createdAt")),
		UpdatedAt: timeValue(first(rec, "updated_at", "updatedAt")),
	}
}

// timeValue accepts RFC 3339 strings and unix epoch milliseconds.
func timeValue(r gjson.Result) time.Time {
	switch r.Type {
	case gjson.String:
		t, err := time.Parse(time.RFC3339Nano, r.Str)
		if err != nil {
			return time.Time{}
		}
		return t.UTC()
	case gjson.Number:
		return time.UnixMilli(r.Int()).UTC()
	default:
		return time.Time{}
	}
}

// idString renders numeric ids (older backends used integer keys) as strings.
func idString(r gjson.Result) string {
	if r.Type == gjson.Number {
		return r.Raw
	}
	return r.String()
}

// first returns the first of keys present on rec.
func first(rec gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := rec.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}
