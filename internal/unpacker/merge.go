package unpacker

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"wxunpack/internal/fileutil"
	"wxunpack/internal/logging"
	"wxunpack/internal/wxapkg"
)

// Merger folds every non-main unpack directory into the main package.
type Merger struct {
	uctx   *Context
	logger *slog.Logger
}

// NewMerger constructs a merger bound to the invocation context.
func NewMerger(uctx *Context, logger *slog.Logger) *Merger {
	return &Merger{uctx: uctx, logger: logging.NewComponentLogger(logger, "merger")}
}

// Merge moves the content of each processed archive's unpack directory into
// the main package, in decode order, then removes the drained directories.
// The main package is never merged into itself; directories already removed
// by an earlier run or by realignment are skipped.
func (m *Merger) Merge() error {
	main := m.uctx.MainPackage
	if main == "" {
		m.logger.Info("no main package reported; skipping merge")
		return nil
	}

	merged := 0
	for _, archive := range m.uctx.Processed() {
		dir := wxapkg.UnpackDir(archive)
		if dir == main {
			continue
		}
		if m.uctx.Seen(dir) {
			m.logger.Info("already merged", logging.String("dir", dir))
			continue
		}
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("unpack directory absent; nothing to merge", logging.String("dir", dir))
			continue
		}

		files, err := fileutil.ListFiles(dir)
		if err != nil {
			return fmt.Errorf("list unpack directory %s: %w", dir, err)
		}
		for _, file := range files {
			rel, err := filepath.Rel(dir, file)
			if err != nil {
				return fmt.Errorf("relativize %s: %w", file, err)
			}
			rel = strings.TrimLeft(rel, string(os.PathSeparator))
			if err := fileutil.MoveFile(file, filepath.Join(main, rel)); err != nil {
				return fmt.Errorf("merge %s: %w", file, err)
			}
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove merged directory %s: %w", dir, err)
		}
		m.uctx.MarkSeen(dir)
		merged++
		m.logger.Info("unpack directory merged",
			logging.String("dir", dir),
			logging.Int("files", len(files)),
		)
	}

	m.logger.Info("merge finished",
		logging.String("main_package", main),
		logging.Int("merged_dirs", merged),
	)
	return nil
}
