package store

import (
	"context"
	"testing"
	"time"

	"github.com/pacscope/pacscope/pkg/snapshot"
)

func testSnap(host string, ts time.Time) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		ID:        "test-" + ts.Format("150405"),
		Hostname:  host,
		Timestamp: ts,
		Packages: map[string]snapshot.Package{
			"bash": {Version: "5.2-1", Repo: "core"},
		},
	}
}

func TestFileStoreSaveAndLatest(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	base := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	older := testSnap("alpha", base)
	newer := testSnap("alpha", base.Add(time.Hour))

	if err := fs.Save(ctx, older); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := fs.Save(ctx, newer); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := fs.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.ID != newer.ID {
		t.Errorf("Latest ID = %q, want %q", got.ID, newer.ID)
	}
}

func TestFileStoreLatestEmpty(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	_, err = fs.Latest(context.Background())
	if err != ErrNoSnapshot {
		t.Errorf("err = %v, want ErrNoSnapshot", err)
	}
}

func TestFileStoreGet(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	base := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	older := testSnap("alpha", base)
	newer := testSnap("alpha", base.Add(time.Hour))
	for _, s := range []*snapshot.Snapshot{older, newer} {
		if err := fs.Save(ctx, s); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := fs.Get(ctx, older.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != older.ID {
		t.Errorf("Get ID = %q, want %q", got.ID, older.ID)
	}

	if _, err := fs.Get(ctx, "no-such-id"); err != ErrNoSnapshot {
		t.Errorf("Get unknown id: err = %v, want ErrNoSnapshot", err)
	}
}

func TestFileStoreList(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	base := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := fs.Save(ctx, testSnap("alpha", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	metas, err := fs.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("got %d entries, want 3", len(metas))
	}
	for i := 1; i < len(metas); i++ {
		if metas[i].Timestamp.After(metas[i-1].Timestamp) {
			t.Error("List should be newest first")
		}
	}
	if metas[0].Packages != 1 {
		t.Errorf("Packages = %d, want 1", metas[0].Packages)
	}
}
