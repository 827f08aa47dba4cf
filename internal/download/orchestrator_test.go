package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/davialcantara/selah/internal/bible"
	"github.com/davialcantara/selah/internal/bus"
	"github.com/davialcantara/selah/internal/remote"
	"github.com/davialcantara/selah/internal/store"
)

// scriptedFetcher serves a tiny synthetic corpus, failing the fetches whose
// 1-based call index is listed in failAt.
type scriptedFetcher struct {
	calls  int
	order  []string
	failAt map[int]bool
}

func (f *scriptedFetcher) FetchChapter(_ context.Context, translation, book string, chapter int) (*remote.Chapter, error) {
	f.calls++
	f.order = append(f.order, fmt.Sprintf("%s/%d", book, chapter))
	if f.failAt[f.calls] {
		return nil, fmt.Errorf("%w: simulated", remote.ErrFetchFailed)
	}
	return &remote.Chapter{Verses: []remote.Verse{
		{Number: 1, Text: fmt.Sprintf("%s %s %d:1", translation, book, chapter)},
	}}, nil
}

var miniCatalog = []bible.Book{
	{ID: "alpha", Name: "Alpha", Chapters: 3},
	{ID: "beta", Name: "Beta", Chapters: 3},
}

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestRunWithOneFailure is the 2x3 catalog scenario: the 5th fetch fails,
// the run still completes, marks the translation fully cached, and the store
// holds the other 5 chapters.
func TestRunWithOneFailure(t *testing.T) {
	db := testDB(t)
	f := &scriptedFetcher{failAt: map[int]bool{5: true}}
	o := NewOrchestrator(db, f, nil, zap.NewNop(), miniCatalog, 0)

	meta, err := o.Run(context.Background(), "kjv")
	if err != nil {
		t.Fatal(err)
	}
	if meta.ProcessedUnits != 6 {
		t.Errorf("processed_units = %d, want 6", meta.ProcessedUnits)
	}
	if !meta.FullyCached {
		t.Error("fully_cached = false, want true (best-effort run)")
	}
	if meta.FailedUnits != 1 {
		t.Errorf("failed_units = %d, want 1", meta.FailedUnits)
	}

	chapters, err := db.Count(store.NamespaceChapters)
	if err != nil {
		t.Fatal(err)
	}
	if chapters != 5 {
		t.Errorf("store holds %d chapters, want 5", chapters)
	}

	// Skipped unit must not be cached.
	ch, err := db.GetChapter("kjv", "beta", 2)
	if err != nil {
		t.Fatal(err)
	}
	if ch != nil {
		t.Errorf("failed chapter was cached: %+v", ch)
	}
}

func TestRunCanonicalOrder(t *testing.T) {
	db := testDB(t)
	f := &scriptedFetcher{}
	o := NewOrchestrator(db, f, nil, zap.NewNop(), miniCatalog, 0)

	if _, err := o.Run(context.Background(), "kjv"); err != nil {
		t.Fatal(err)
	}

	want := []string{"alpha/1", "alpha/2", "alpha/3", "beta/1", "beta/2", "beta/3"}
	if len(f.order) != len(want) {
		t.Fatalf("fetched %d units, want %d", len(f.order), len(want))
	}
	for i := range want {
		if f.order[i] != want[i] {
			t.Errorf("fetch[%d] = %s, want %s", i, f.order[i], want[i])
		}
	}
}

// TestProgressMonotonic: callback values never decrease, one callback per
// processed unit, final value 100.
func TestProgressMonotonic(t *testing.T) {
	db := testDB(t)
	f := &scriptedFetcher{failAt: map[int]bool{2: true}}
	o := NewOrchestrator(db, f, nil, zap.NewNop(), miniCatalog, 0)

	var percents []int
	o.OnProgress(func(p int) { percents = append(percents, p) })

	if _, err := o.Run(context.Background(), "kjv"); err != nil {
		t.Fatal(err)
	}

	if len(percents) != 6 {
		t.Fatalf("got %d callbacks, want 6 (one per unit)", len(percents))
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Errorf("progress regressed: %v", percents)
		}
	}
	if percents[len(percents)-1] != 100 {
		t.Errorf("final percent = %d, want 100", percents[len(percents)-1])
	}
	if percents[0] < 0 || percents[0] > 100 {
		t.Errorf("percent out of range: %v", percents)
	}
}

func TestProgressEvents(t *testing.T) {
	db := testDB(t)
	b := bus.New()
	ch, unsub := b.Subscribe("download.", 32)
	defer unsub()

	o := NewOrchestrator(db, &scriptedFetcher{}, b, zap.NewNop(), miniCatalog, 0)
	if _, err := o.Run(context.Background(), "kjv"); err != nil {
		t.Fatal(err)
	}

	var progress, completed int
	deadline := time.After(2 * time.Second)
	for progress+completed < 7 {
		select {
		case evt := <-ch:
			switch evt.Kind {
			case "download.progress":
				progress++
				p := evt.Payload.(Progress)
				if p.TotalUnits != 6 || p.Translation != "kjv" {
					t.Errorf("progress payload = %+v", p)
				}
			case "download.completed":
				completed++
				m := evt.Payload.(store.DownloadMeta)
				if !m.FullyCached {
					t.Error("completed event with fully_cached=false")
				}
			}
		case <-deadline:
			t.Fatalf("saw %d progress + %d completed events, want 6+1", progress, completed)
		}
	}
}

func TestRunCancelledBetweenChapters(t *testing.T) {
	db := testDB(t)
	ctx, cancel := context.WithCancel(context.Background())

	f := &scriptedFetcher{}
	o := NewOrchestrator(db, f, nil, zap.NewNop(), miniCatalog, 0)
	o.OnProgress(func(p int) {
		if f.calls == 2 {
			cancel()
		}
	})

	meta, err := o.Run(ctx, "kjv")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if meta.FullyCached {
		t.Error("cancelled run must not be marked fully cached")
	}
	if meta.ProcessedUnits != 2 {
		t.Errorf("processed_units = %d, want 2", meta.ProcessedUnits)
	}

	// Progress persisted so far survives.
	stored, err := db.GetDownloadMeta("kjv")
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil || stored.ProcessedUnits != 2 {
		t.Errorf("persisted meta = %+v", stored)
	}
}

// TestRunIdempotent: a second full run overwrites cached entries and ends in
// the same state.
func TestRunIdempotent(t *testing.T) {
	db := testDB(t)
	o := NewOrchestrator(db, &scriptedFetcher{}, nil, zap.NewNop(), miniCatalog, 0)

	if _, err := o.Run(context.Background(), "kjv"); err != nil {
		t.Fatal(err)
	}
	meta, err := o.Run(context.Background(), "kjv")
	if err != nil {
		t.Fatal(err)
	}
	if meta.ProcessedUnits != 6 || !meta.FullyCached {
		t.Errorf("meta after rerun = %+v", meta)
	}

	chapters, err := db.Count(store.NamespaceChapters)
	if err != nil {
		t.Fatal(err)
	}
	if chapters != 6 {
		t.Errorf("store holds %d chapters after rerun, want 6", chapters)
	}
}

func TestRunThrottleDelay(t *testing.T) {
	db := testDB(t)
	delay := 10 * time.Millisecond
	o := NewOrchestrator(db, &scriptedFetcher{}, nil, zap.NewNop(), miniCatalog, delay)

	start := time.Now()
	if _, err := o.Run(context.Background(), "kjv"); err != nil {
		t.Fatal(err)
	}
	// 6 units, 5 inter-request gaps.
	if elapsed := time.Since(start); elapsed < 5*delay {
		t.Errorf("run took %v, want >= %v (throttle not applied)", elapsed, 5*delay)
	}
}
