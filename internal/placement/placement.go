// Package placement ranks grid positions for an item being dragged over the
// grid. Scores are heuristics for highlighting drop targets; they never
// change state.
package placement

import (
	"cmp"
	"slices"

	"golang.org/x/text/cases"

	"github.com/xkazm04/goat-sub002/internal/domain"
	"github.com/xkazm04/goat-sub002/internal/grid"
)

// Score weights.
const (
	EmptyScore      = 1.0
	SwapScore       = 0.5
	DistancePenalty = 0.1
	MaxTagAffinity  = 0.3
	EarlyBias       = 0.05
)

// NoHover means the pointer is not over the grid.
const NoHover = -1

// DropZone is one candidate position with its score.
type DropZone struct {
	SlotID   string  `json:"slot_id"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	// Swap is set when dropping here would exchange places with the occupant.
	Swap bool `json:"swap"`
}

// ScoreDropZones scores every position item could be dropped on, best
// first. A position already holding item is skipped. Swap targets are only
// offered when item is itself placed; a backlog item can only take an
// empty slot. hover is the position under the pointer or NoHover.
func ScoreDropZones(gridItems []domain.GridItem, item domain.Item, hover int) []DropZone {
	size := len(gridItems)
	if size == 0 {
		return []DropZone{}
	}
	if hover < 0 || hover >= size {
		hover = NoHover
	}

	tags := foldTags(item.Tags)
	zones := make([]DropZone, 0, size)
	for pos, slot := range gridItems {
		if slot.Matched && slot.MatchedWith == item.ID {
			continue
		}
		if slot.Matched && !item.Matched {
			continue
		}

		z := DropZone{SlotID: slot.ID, Position: pos, Swap: slot.Matched}
		if z.Swap {
			z.Score = SwapScore
		} else {
			z.Score = EmptyScore
		}
		if hover != NoHover {
			z.Score -= DistancePenalty * float64(abs(pos-hover))
		}
		z.Score += tagAffinity(gridItems, pos, item.ID, tags)
		z.Score += EarlyBias * (1 - float64(pos)/float64(size))
		zones = append(zones, z)
	}

	slices.SortStableFunc(zones, func(a, b DropZone) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})
	return zones
}

// PredictPosition returns the best empty position for item, or false when
// the grid is full.
func PredictPosition(gridItems []domain.GridItem, item domain.Item) (int, bool) {
	if _, ok := grid.NextAvailablePosition(gridItems); !ok {
		return 0, false
	}
	for _, z := range ScoreDropZones(gridItems, item, NoHover) {
		if !z.Swap {
			return z.Position, true
		}
	}
	return 0, false
}

// tagAffinity rewards positions whose occupied neighbours share tags with
// the item, scaled by the fraction of the item's tags found next door.
func tagAffinity(gridItems []domain.GridItem, pos int, itemID string, tags map[string]struct{}) float64 {
	if len(tags) == 0 {
		return 0
	}

	shared := make(map[string]struct{}, len(tags))
	for _, n := range []int{pos - 1, pos + 1} {
		if n < 0 || n >= len(gridItems) {
			continue
		}
		slot := gridItems[n]
		if !slot.Matched || slot.MatchedWith == itemID {
			continue
		}
		for t := range foldTags(slot.Tags) {
			if _, ok := tags[t]; ok {
				shared[t] = struct{}{}
			}
		}
	}
	return MaxTagAffinity * float64(len(shared)) / float64(len(tags))
}

func foldTags(tags []string) map[string]struct{} {
	fold := cases.Fold()
	out := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		out[fold.String(t)] = struct{}{}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
