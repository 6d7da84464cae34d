package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/harris-mohamed/sensorsync/internal/adapters/source"
	"github.com/harris-mohamed/sensorsync/internal/domain"
)

func fileEndpoint(name string, maxFolders int) domain.Endpoint {
	return domain.Endpoint{Name: name, Kind: domain.KindFile, MaxChunksPerRun: maxFolders, Active: true}
}

func makeFolders(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
		for _, f := range []string{"flight.xml", "track.kmz", "img_0001.jpg", "img_0002.JPG"} {
			if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
				t.Fatalf("write %s: %v", f, err)
			}
		}
	}
}

func TestFolderSyncCapsFoldersPerRun(t *testing.T) {
	root := t.TempDir()
	makeFolders(t, root,
		"20250301_080000", "20250301_090000", "20250301_100000", "20250301_110000", "20250301_120000")
	if err := os.MkdirAll(filepath.Join(root, ".staging"), 0o755); err != nil {
		t.Fatalf("mkdir hidden: %v", err)
	}

	wh := newMemWarehouse()
	s := NewFolderSync(source.NewDirScanner(nil), wh, wh, func(string) string { return root })
	ep := fileEndpoint("drop-1", 3)

	res, err := s.Sync(context.Background(), ep)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if res.IngestedCount != 3 || res.TotalNewFolders != 5 || res.RemainingFolders != 2 {
		t.Fatalf("first sync: got ingested=%d total=%d remaining=%d", res.IngestedCount, res.TotalNewFolders, res.RemainingFolders)
	}

	rows := wh.tables["file_metadata"]
	if rows[0][1] != filepath.Join(root, "20250301_080000") {
		t.Fatalf("folders should be ingested in name order, got %v", rows[0][1])
	}
	if rows[0][2] != "flight.xml" || rows[0][3] != "track.kmz" || rows[0][4] != 2 {
		t.Fatalf("unexpected metadata row: %v", rows[0])
	}

	res, err = s.Sync(context.Background(), ep)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if res.IngestedCount != 2 || res.RemainingFolders != 0 {
		t.Fatalf("second sync: got ingested=%d remaining=%d", res.IngestedCount, res.RemainingFolders)
	}

	res, err = s.Sync(context.Background(), ep)
	if err != nil {
		t.Fatalf("third sync: %v", err)
	}
	if res.IngestedCount != 0 || res.TotalNewFolders != 0 {
		t.Fatalf("third sync should find nothing, got %+v", res)
	}
	if wh.inserts != 2 {
		t.Fatalf("an empty scan must not write, got %d inserts", wh.inserts)
	}
	if len(wh.tables["file_metadata"]) != 5 {
		t.Fatalf("expected 5 metadata rows, got %d", len(wh.tables["file_metadata"]))
	}
}

func TestFolderSyncMissingRoot(t *testing.T) {
	wh := newMemWarehouse()
	root := filepath.Join(t.TempDir(), "not-mounted")
	s := NewFolderSync(source.NewDirScanner(nil), wh, wh, func(string) string { return root })

	res, err := s.Sync(context.Background(), fileEndpoint("drop-1", 50))
	if err != nil {
		t.Fatalf("missing root should not fail: %v", err)
	}
	if res.IngestedCount != 0 || wh.inserts != 0 {
		t.Fatalf("missing root should ingest nothing, got %+v", res)
	}
}

func TestFolderSyncUsesPerEndpointRoot(t *testing.T) {
	base := t.TempDir()
	makeFolders(t, filepath.Join(base, "a"), "20250301_080000")
	makeFolders(t, filepath.Join(base, "b"), "20250301_080000", "20250301_090000")

	wh := newMemWarehouse()
	s := NewFolderSync(source.NewDirScanner(nil), wh, wh, func(ep string) string { return filepath.Join(base, ep) })

	for ep, want := range map[string]int64{"a": 1, "b": 2} {
		res, err := s.Sync(context.Background(), fileEndpoint(ep, 50))
		if err != nil {
			t.Fatalf("sync %s: %v", ep, err)
		}
		if res.IngestedCount != want {
			t.Fatalf("sync %s: ingested %d, want %d", ep, res.IngestedCount, want)
		}
	}
}

func TestFolderSyncWriteFailureIsRetried(t *testing.T) {
	root := t.TempDir()
	makeFolders(t, root, "20250301_080000", "20250301_090000")

	wh := newMemWarehouse()
	wh.failOn = 1
	s := NewFolderSync(source.NewDirScanner(nil), wh, wh, func(string) string { return root })
	ep := fileEndpoint("drop-1", 50)

	if _, err := s.Sync(context.Background(), ep); err == nil {
		t.Fatalf("expected write failure")
	}
	res, err := s.Sync(context.Background(), ep)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.IngestedCount != 2 {
		t.Fatalf("retry should ingest both folders, got %d", res.IngestedCount)
	}
}
