package wxapkg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"wxunpack/internal/logging"
)

// Result describes one decoded archive.
type Result struct {
	// Dir is the directory the archive was extracted into.
	Dir string
	// Files holds the extracted paths relative to Dir, in index order.
	Files []string
	// IsMain reports that the archive is the application's main package.
	IsMain bool
	// Plugin reports that the archive carries an embedded plugin.
	Plugin bool
	// Split is set when the archive is a subpackage whose content must be
	// relocated under the main package.
	Split *Split
}

// Split identifies a decoded split subpackage.
type Split struct {
	// EntryScript is the subpackage entry script relative to the unpack
	// directory, e.g. "pages/sub/app-service.js".
	EntryScript string
	// Root is the first path segment of EntryScript.
	Root string
}

// Decoder extracts archives into directories.
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder constructs a Decoder. A nil logger is replaced with a no-op.
func NewDecoder(logger *slog.Logger) *Decoder {
	return &Decoder{logger: logging.NewComponentLogger(logger, "decoder")}
}

// Decode extracts archivePath into destDir and classifies the result.
func (d *Decoder) Decode(ctx context.Context, archivePath, destDir string) (Result, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return Result{}, fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	entries, err := readIndex(file)
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", archivePath, err)
	}

	result := Result{Dir: destDir}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		rel, err := cleanEntryName(entry.Name)
		if err != nil {
			return Result{}, fmt.Errorf("extract %s: %w", archivePath, err)
		}
		if err := extractEntry(file, entry, filepath.Join(destDir, filepath.FromSlash(rel))); err != nil {
			return Result{}, fmt.Errorf("extract %s from %s: %w", rel, archivePath, err)
		}
		result.Files = append(result.Files, rel)
	}

	classify(&result)
	d.logger.Debug("archive decoded",
		logging.String("archive", archivePath),
		logging.Int("files", len(result.Files)),
		logging.Bool("main", result.IsMain),
		logging.Bool("plugin", result.Plugin),
		logging.Bool("split", result.Split != nil),
	)
	return result, nil
}

func extractEntry(file *os.File, entry Entry, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	section := io.NewSectionReader(file, int64(entry.Offset), int64(entry.Size))
	if _, err := io.Copy(out, section); err != nil {
		return err
	}
	return out.Close()
}
