package history_test

import (
	"context"
	"testing"
	"time"

	"wxunpack/internal/history"
	"wxunpack/internal/testsupport"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndListRuns(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id, err := store.RecordRun(ctx, history.Run{
		SessionID:   "session-a",
		Root:        "/tmp/apps",
		MainPackage: "/tmp/apps/app",
		Plugin:      true,
		OK:          true,
		Elapsed:     1500 * time.Millisecond,
	}, []string{"/tmp/apps/app.wxapkg", "/tmp/apps/sub.wxapkg"})
	if err != nil {
		t.Fatalf("record run: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero run id")
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	run := runs[0]
	if run.SessionID != "session-a" || !run.OK || !run.Plugin {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.ArchiveCount != 2 {
		t.Fatalf("expected two archives, got %d", run.ArchiveCount)
	}
	if run.Elapsed != 1500*time.Millisecond {
		t.Fatalf("unexpected elapsed: %v", run.Elapsed)
	}
	if run.CreatedAt.IsZero() {
		t.Fatal("expected created timestamp")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, session := range []string{"first", "second", "third"} {
		if _, err := store.RecordRun(ctx, history.Run{SessionID: session, Root: "/tmp"}, nil); err != nil {
			t.Fatalf("record run %s: %v", session, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected limit of two, got %d", len(runs))
	}
	if runs[0].SessionID != "third" || runs[1].SessionID != "second" {
		t.Fatalf("unexpected ordering: %s, %s", runs[0].SessionID, runs[1].SessionID)
	}
}

func TestArchivesPreserveDecodeOrder(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	want := []string{"/apps/z.wxapkg", "/apps/a.wxapkg", "/apps/m.wxapkg"}
	id, err := store.RecordRun(ctx, history.Run{SessionID: "ordered", Root: "/apps"}, want)
	if err != nil {
		t.Fatalf("record run: %v", err)
	}

	got, err := store.Archives(ctx, id)
	if err != nil {
		t.Fatalf("archives: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d archives, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("archive %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestGetRunMissing(t *testing.T) {
	store := openStore(t)
	run, err := store.GetRun(context.Background(), 42)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil run, got %+v", run)
	}
}

func TestGetRunRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id, err := store.RecordRun(ctx, history.Run{SessionID: "rt", Root: "/apps", MainPackage: "/apps/app", OK: true}, []string{"/apps/app.wxapkg"})
	if err != nil {
		t.Fatalf("record run: %v", err)
	}
	run, err := store.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if run == nil {
		t.Fatal("expected run")
	}
	if run.MainPackage != "/apps/app" || run.ArchiveCount != 1 {
		t.Fatalf("unexpected run: %+v", run)
	}
}
