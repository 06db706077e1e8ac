package unpacker

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"wxunpack/internal/logging"
	"wxunpack/internal/wxapkg"
)

// pluginRequire is the module require prepended to the main package's entry
// script when an embedded plugin was detected.
const pluginRequire = "require(\"plugin.js\");\n"

// InjectPlugin prepends the plugin require to the main package's entry
// script. A missing entry script is tolerated as a logged no-op.
func InjectPlugin(mainPackage string, logger *slog.Logger) error {
	logger = logging.NewComponentLogger(logger, "plugin")

	entryPath := filepath.Join(mainPackage, wxapkg.EntryScript)
	content, err := os.ReadFile(entryPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("plugin detected but entry script missing",
				logging.String("entry", entryPath),
			)
			return nil
		}
		return fmt.Errorf("read entry script: %w", err)
	}

	rewritten := append([]byte(pluginRequire), content...)
	if err := os.WriteFile(entryPath, rewritten, 0o644); err != nil {
		return fmt.Errorf("rewrite entry script: %w", err)
	}
	logger.Info("plugin require injected", logging.String("entry", entryPath))
	return nil
}
