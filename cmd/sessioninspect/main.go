// Command sessioninspect prints the sessions held by the local and offline
// stores of a data directory. Stop the server first; the offline store is
// opened exclusively.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/xkazm04/goat-sub002/internal/session"
	"github.com/xkazm04/goat-sub002/internal/store"
	"github.com/xkazm04/goat-sub002/internal/store/sqlite"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/.goat")
	}
	ctx := context.Background()

	local, err := sqlite.Open(filepath.Join(dataPath, "state.db"), nil)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer local.Close()

	fmt.Println("=== Local store ===")
	fmt.Println()

	active, err := local.ActiveSessionID(ctx)
	if err != nil {
		log.Fatalf("Failed to read active session: %v", err)
	}
	summaries, err := local.ListSummaries(ctx)
	if err != nil {
		log.Fatalf("Failed to list sessions: %v", err)
	}

	for _, sum := range summaries {
		marker := " "
		if sum.ListID == active {
			marker = "*"
		}
		saved := "never"
		if sum.SavedAt != nil {
			saved = sum.SavedAt.Format(time.RFC3339)
		}
		fmt.Printf("%s %s\n", marker, sum.ListID)
		fmt.Printf("    Category: %s\n", sum.Category)
		fmt.Printf("    Size:     %d\n", sum.ListSize)
		fmt.Printf("    Synced:   %t\n", sum.Synced)
		fmt.Printf("    Updated:  %s\n", sum.UpdatedAt.Format(time.RFC3339))
		fmt.Printf("    Saved:    %s\n", saved)
	}
	fmt.Printf("\nSessions: %d (active: %q)\n", len(summaries), active)

	checkpoint, err := local.Checkpoint(ctx)
	if err != nil {
		log.Fatalf("Failed to read checkpoint: %v", err)
	}
	if checkpoint.IsZero() {
		fmt.Print("Last write: never\n\n")
	} else {
		fmt.Printf("Last write: %s\n\n", checkpoint.Format(time.RFC3339))
	}

	offline, err := store.New(filepath.Join(dataPath, "offline"), nil)
	if err != nil {
		log.Fatalf("Failed to open offline store: %v", err)
	}
	defer offline.Close()

	fmt.Println("=== Offline store ===")
	fmt.Println()

	ids, err := offline.ListIDs(ctx)
	if err != nil {
		log.Fatalf("Failed to list offline sessions: %v", err)
	}

	localIDs := make([]string, 0, len(summaries))
	for _, sum := range summaries {
		localIDs = append(localIDs, sum.ListID)
	}

	for _, id := range ids {
		sess, err := offline.Get(ctx, id)
		if err != nil {
			fmt.Printf("  %s: unreadable: %v\n", id, err)
			continue
		}
		if sess == nil {
			continue
		}
		progress := session.CalculateProgress(sess.GridItems)
		note := ""
		if !slices.Contains(localIDs, id) {
			note = " (offline only)"
		}
		fmt.Printf("  %s%s\n", id, note)
		fmt.Printf("    Updated:  %s\n", sess.UpdatedAt.Format(time.RFC3339))
		fmt.Printf("    Progress: %d/%d (%d%%)\n", progress.MatchedCount, progress.TotalSize, progress.Percentage)
	}
	fmt.Printf("\nOffline records: %d\n", len(ids))
}
