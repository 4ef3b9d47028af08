package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func saveRuns(t *testing.T, store *Store, runs ...Run) {
	t.Helper()
	for _, r := range runs {
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)
	when := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	saveRuns(t, store,
		Run{GameID: "marble", Blocks: 3, Seed: 1, Duration: 12345 * time.Millisecond, Bumps: 2, Player: "ann", CreatedAt: when},
		Run{GameID: "marble", Blocks: 3, Seed: 2, Duration: 9870 * time.Millisecond, CreatedAt: when},
		Run{GameID: "marble", Blocks: 3, Seed: 3, Duration: 15 * time.Second, CreatedAt: when},
		Run{GameID: "marble", Blocks: 10, Seed: 4, Duration: 5 * time.Second, CreatedAt: when},
		Run{GameID: "other", Blocks: 3, Seed: 5, Duration: time.Second, CreatedAt: when},
	)

	runs, err := store.BestRuns("marble", 3, 10)
	if err != nil {
		t.Fatalf("BestRuns() failed: %v", err)
	}

	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}

	// Fastest first
	want := []time.Duration{9870 * time.Millisecond, 12345 * time.Millisecond, 15 * time.Second}
	for i, d := range want {
		if runs[i].Duration != d {
			t.Errorf("runs[%d].Duration = %v, want %v", i, runs[i].Duration, d)
		}
	}

	r := runs[1]
	if r.Seed != 1 || r.Bumps != 2 || r.Player != "ann" || r.Blocks != 3 {
		t.Errorf("Round trip lost fields: %+v", r)
	}
	if !r.CreatedAt.Equal(when) {
		t.Errorf("CreatedAt = %v, want %v", r.CreatedAt, when)
	}

	all, err := store.BestRuns("marble", 0, 10)
	if err != nil {
		t.Fatalf("BestRuns() failed: %v", err)
	}
	if len(all) != 4 || all[0].Blocks != 10 {
		t.Errorf("Expected 4 runs led by the 10-block run, got %+v", all)
	}
}

func TestStoreBestRunsLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 15; i++ {
		saveRuns(t, store, Run{GameID: "marble", Blocks: 3, Seed: int64(i), Duration: time.Duration(i+1) * time.Second})
	}

	runs, err := store.BestRuns("marble", 3, 5)
	if err != nil {
		t.Fatalf("BestRuns() failed: %v", err)
	}
	if len(runs) != 5 {
		t.Errorf("Expected 5 runs with limit, got %d", len(runs))
	}

	runs, err = store.BestRuns("marble", 3, 0)
	if err != nil {
		t.Fatalf("BestRuns() failed: %v", err)
	}
	if len(runs) != 10 {
		t.Errorf("Expected default limit of 10, got %d", len(runs))
	}
}

func TestStoreBestTime(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.BestTime("marble", 3)
	if err != nil {
		t.Fatalf("BestTime() failed: %v", err)
	}
	if ok {
		t.Error("Expected no best time for empty store")
	}

	saveRuns(t, store,
		Run{GameID: "marble", Blocks: 3, Duration: 8 * time.Second},
		Run{GameID: "marble", Blocks: 3, Duration: 7500 * time.Millisecond},
		Run{GameID: "marble", Blocks: 5, Duration: time.Second},
	)

	best, ok, err := store.BestTime("marble", 3)
	if err != nil {
		t.Fatalf("BestTime() failed: %v", err)
	}
	if !ok || best != 7500*time.Millisecond {
		t.Errorf("BestTime() = %v, %v; want 7.5s, true", best, ok)
	}
}

func TestStoreRecentRuns(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	saveRuns(t, store,
		Run{GameID: "marble", Blocks: 3, Seed: 1, Duration: time.Second, CreatedAt: base},
		Run{GameID: "marble", Blocks: 3, Seed: 2, Duration: time.Second, CreatedAt: base.Add(2 * time.Hour)},
		Run{GameID: "marble", Blocks: 3, Seed: 3, Duration: time.Second, CreatedAt: base.Add(time.Hour)},
	)

	runs, err := store.RecentRuns("marble", 2)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].Seed != 2 || runs[1].Seed != 3 {
		t.Errorf("Expected newest first (seeds 2, 3), got %d, %d", runs[0].Seed, runs[1].Seed)
	}
}

func TestStoreSaveRunRejectsInvalid(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveRun(Run{Blocks: 3, Duration: time.Second}); err == nil {
		t.Error("Expected error for missing game id")
	}
	if _, err := store.SaveRun(Run{GameID: "marble", Duration: -time.Second}); err == nil {
		t.Error("Expected error for negative duration")
	}
}

func TestStoreClearRuns(t *testing.T) {
	store := openTestStore(t)

	saveRuns(t, store,
		Run{GameID: "marble", Blocks: 3, Duration: time.Second},
		Run{GameID: "other", Blocks: 3, Duration: time.Second},
	)

	if err := store.ClearRuns("marble"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	runs, _ := store.BestRuns("marble", 0, 10)
	if len(runs) != 0 {
		t.Errorf("Expected no runs after clear, got %d", len(runs))
	}

	// Other games should be unaffected
	other, _ := store.BestRuns("other", 0, 10)
	if len(other) != 1 {
		t.Errorf("Expected other game runs to remain, got %d", len(other))
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	saveRuns(t, store,
		Run{GameID: "marble", Blocks: 3, Duration: 10 * time.Second, Bumps: 1, CreatedAt: base},
		Run{GameID: "marble", Blocks: 3, Duration: 20 * time.Second, Bumps: 4, CreatedAt: base.Add(time.Minute)},
		Run{GameID: "marble", Blocks: 5, Duration: 30 * time.Second, CreatedAt: base},
	)

	stats, err := store.Stats("marble")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Expected stats for 2 course lengths, got %d", len(stats))
	}

	st := stats[3]
	if st.Runs != 2 {
		t.Errorf("Runs = %d, want 2", st.Runs)
	}
	if st.BestTime != 10*time.Second {
		t.Errorf("BestTime = %v, want 10s", st.BestTime)
	}
	if st.AvgTime != 15*time.Second {
		t.Errorf("AvgTime = %v, want 15s", st.AvgTime)
	}
	if st.TotalBumps != 5 {
		t.Errorf("TotalBumps = %d, want 5", st.TotalBumps)
	}
	if !st.LastPlayed.Equal(base.Add(time.Minute)) {
		t.Errorf("LastPlayed = %v, want %v", st.LastPlayed, base.Add(time.Minute))
	}

	empty, err := store.Stats("nobody")
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no stats, got %d", len(empty))
	}
}

func TestStorePersistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store1, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	saveRuns(t, store1, Run{GameID: "marble", Blocks: 3, Duration: 4321 * time.Millisecond})
	store1.Close()

	store2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store2.Close()

	best, ok, err := store2.BestTime("marble", 3)
	if err != nil {
		t.Fatalf("BestTime() failed: %v", err)
	}
	if !ok || best != 4321*time.Millisecond {
		t.Errorf("Expected persisted best time 4.321s, got %v", best)
	}
}
