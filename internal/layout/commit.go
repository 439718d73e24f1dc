package layout

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	ioutils "github.com/handiism/udemy-downloader/internal/io"
	"go.uber.org/zap"
)

// CommitReport lists what Commit did, as paths relative to the staging root.
type CommitReport struct {
	Moved     []string
	Remaining []string
}

// Commit moves every regular file below the staging root to the same
// relative path below the destination, creating directories as needed and
// replacing files that already exist there.
//
// Files are moved one at a time. Commit stops at the first failure and
// returns the report together with the error: files already moved stay at
// the destination and Remaining lists the files still in the staging root.
// Nothing is rolled back and the staging root is never removed here; call
// Discard once Commit has succeeded.
func (t *Tree) Commit(ctx context.Context) (CommitReport, error) {
	var report CommitReport

	var files []string
	err := filepath.WalkDir(t.temp, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(t.temp, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("scan staging folder: %w", err)
	}

	if err := ioutils.EnsureDir(t.base); err != nil {
		report.Remaining = files
		return report, fmt.Errorf("create destination: %w", err)
	}

	for i, rel := range files {
		dst := filepath.Join(t.base, rel)
		if err := ioutils.EnsureDir(filepath.Dir(dst)); err != nil {
			report.Remaining = files[i:]
			return report, fmt.Errorf("commit %s: %w", rel, err)
		}
		if err := ioutils.MoveFile(ctx, filepath.Join(t.temp, rel), dst); err != nil {
			report.Remaining = files[i:]
			return report, fmt.Errorf("commit %s: %w", rel, err)
		}
		report.Moved = append(report.Moved, rel)
		t.log.Debug("moved", zap.String("file", dst))
	}

	return report, nil
}
