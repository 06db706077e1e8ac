package unpacker

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"wxunpack/internal/fileutil"
	"wxunpack/internal/logging"
)

// bootstrapRequire matches the loader line a packer injects into split
// files to pull in the entry script. The line only resolves inside the
// original packaging context, so relocation drops it.
var bootstrapRequire = regexp.MustCompile(`^\s*require\(["'][^"']*app-service\.js["']\);?\s*$`)

// Realigner relocates a decoded split package's content under its target
// directory inside the main package.
type Realigner struct {
	uctx   *Context
	logger *slog.Logger
}

// NewRealigner constructs a realigner bound to the invocation context.
func NewRealigner(uctx *Context, logger *slog.Logger) *Realigner {
	return &Realigner{uctx: uctx, logger: logging.NewComponentLogger(logger, "realigner")}
}

// Apply performs the relocation requested by req. Absent requests, already
// realigned targets, and requests whose entry script never materialized are
// logged no-ops; filesystem failures propagate.
func (r *Realigner) Apply(req *SubpackageRequest) error {
	if req == nil {
		r.logger.Debug("no subpackage request pending")
		return nil
	}
	if r.uctx.MainPackage == "" {
		// The merge pass still lands the files under the same relative
		// path; only the line filter is skipped.
		r.logger.Warn("main package not yet known; leaving split in place",
			logging.String("entry", req.EntryScript),
		)
		return nil
	}

	targetDir := filepath.Join(r.uctx.MainPackage, req.Root)
	if r.uctx.Seen(targetDir) {
		r.logger.Info("subpackage already processed", logging.String("target", targetDir))
		return nil
	}

	entryPath := filepath.Join(req.EntryDir, filepath.FromSlash(req.EntryScript))
	if _, err := os.Stat(entryPath); errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("subpackage signaled but entry script missing",
			logging.String("entry", entryPath),
		)
		return nil
	}

	splitRoot := filepath.Join(req.EntryDir, req.Root)
	files, err := fileutil.ListFiles(splitRoot)
	if err != nil {
		return fmt.Errorf("list split root %s: %w", splitRoot, err)
	}
	for _, file := range files {
		rel, err := filepath.Rel(splitRoot, file)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", file, err)
		}
		dst := filepath.Join(targetDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
		}
		if err := fileutil.CopyFileFiltered(file, dst, keepRelocatedLine); err != nil {
			return fmt.Errorf("relocate %s: %w", file, err)
		}
	}
	if err := os.RemoveAll(splitRoot); err != nil {
		return fmt.Errorf("remove split root %s: %w", splitRoot, err)
	}

	r.uctx.MarkSeen(targetDir)
	r.logger.Info("subpackage realigned",
		logging.String("target", targetDir),
		logging.Int("files", len(files)),
	)
	return nil
}

func keepRelocatedLine(line string) bool {
	return !bootstrapRequire.MatchString(line)
}
