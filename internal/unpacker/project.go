package unpacker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"wxunpack/internal/logging"
)

const projectConfigFile = "project.config.json"

type projectConfig struct {
	Description string         `json:"description"`
	Setting     projectSetting `json:"setting"`
}

type projectSetting struct {
	URLCheck bool `json:"urlCheck"`
}

// WriteProjectConfig writes the developer-tool project descriptor into the
// main package directory so the unpacked tree opens as an IDE project. An
// existing descriptor is overwritten.
func WriteProjectConfig(mainPackage string, logger *slog.Logger) error {
	cfg := projectConfig{
		Description: "Project configuration file, generated by wxunpack",
		Setting:     projectSetting{URLCheck: false},
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project config: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(mainPackage, projectConfigFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project config: %w", err)
	}
	logging.NewComponentLogger(logger, "project").Info("project config written",
		logging.String("path", path),
	)
	return nil
}
