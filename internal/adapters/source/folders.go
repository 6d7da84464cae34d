package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harris-mohamed/sensorsync/internal/domain"
	"github.com/harris-mohamed/sensorsync/internal/ports"
)

// FolderTimeLayout is the YYYYMMDD_HHMMSS name drop folders are created with.
const FolderTimeLayout = "20060102_150405"

// DirScanner lists drop folders on the local filesystem.
type DirScanner struct {
	loc *time.Location
}

// NewDirScanner parses folder names in loc; nil means time.Local.
func NewDirScanner(loc *time.Location) *DirScanner {
	if loc == nil {
		loc = time.Local
	}
	return &DirScanner{loc: loc}
}

// ListNewFolders returns the immediate, non-hidden subdirectories of root that are
// not in seen, ordered by name. A missing root yields no folders and no error.
func (s *DirScanner) ListNewFolders(ctx context.Context, root string, seen map[string]struct{}) ([]domain.FolderRecord, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read root %s: %w", root, err)
	}

	var out []domain.FolderRecord
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(root, name)
		if _, ok := seen[path]; ok {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			continue
		}

		rec, err := s.describe(path, info)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *DirScanner) describe(path string, info fs.FileInfo) (domain.FolderRecord, error) {
	files, err := os.ReadDir(path)
	if err != nil {
		return domain.FolderRecord{}, fmt.Errorf("read folder %s: %w", path, err)
	}

	rec := domain.FolderRecord{Path: path}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".xml":
			if rec.XMLFile == nil {
				rec.XMLFile = &name
			}
		case ".kmz":
			if rec.KMZFile == nil {
				rec.KMZFile = &name
			}
		case ".jpg", ".jpeg", ".png":
			rec.ImageCount++
		}
	}

	created, err := time.ParseInLocation(FolderTimeLayout, info.Name(), s.loc)
	if err != nil {
		created = info.ModTime()
	}
	rec.CreatedAt = created
	return rec, nil
}

var _ ports.FolderScanner = (*DirScanner)(nil)
