package pipeline

import (
	"context"
	"fmt"

	"github.com/harris-mohamed/sensorsync/internal/domain"
	"github.com/harris-mohamed/sensorsync/internal/ports"
)

// RootFunc resolves the drop-folder root of a filesystem endpoint.
type RootFunc func(endpoint string) string

// FolderSync records metadata for drop folders not yet present in file_metadata.
type FolderSync struct {
	scanner    ports.FolderScanner
	writer     ports.BatchWriter
	watermarks ports.WatermarkStore
	root       RootFunc
}

func NewFolderSync(scanner ports.FolderScanner, writer ports.BatchWriter, wm ports.WatermarkStore, root RootFunc) *FolderSync {
	return &FolderSync{
		scanner:    scanner,
		writer:     writer,
		watermarks: wm,
		root:       root,
	}
}

// Sync ingests at most ep.MaxChunksPerRun new folders in a single batch and
// reports how many are left for the next invocation.
func (s *FolderSync) Sync(ctx context.Context, ep domain.Endpoint) (domain.Result, error) {
	res := domain.Result{Endpoint: ep.Name, Kind: ep.Kind}

	seen, err := s.watermarks.SeenFolders(ctx, ep.Name)
	if err != nil {
		return res, fmt.Errorf("read seen folders: %w", err)
	}

	root := s.root(ep.Name)
	folders, err := s.scanner.ListNewFolders(ctx, root, seen)
	if err != nil {
		return res, fmt.Errorf("scan %s: %w", root, err)
	}
	res.TotalNewFolders = len(folders)
	if len(folders) == 0 {
		return res, nil
	}

	if ep.MaxChunksPerRun > 0 && len(folders) > ep.MaxChunksPerRun {
		folders = folders[:ep.MaxChunksPerRun]
	}

	rows := make([][]any, len(folders))
	for i, f := range folders {
		rows[i] = domain.FolderRow(ep.Name, f)
	}

	n, err := s.writer.InsertBatch(ctx, domain.FileMetadata.Table, domain.FileMetadata.Columns, rows)
	if err != nil {
		return res, fmt.Errorf("write: %w", err)
	}
	res.IngestedCount = n
	res.RemainingFolders = res.TotalNewFolders - len(folders)
	return res, nil
}

var _ ports.Syncer = (*FolderSync)(nil)
