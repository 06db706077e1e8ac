package unpacker

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"wxunpack/internal/logging"
	"wxunpack/internal/testsupport"
)

func TestInjectPluginPrependsRequire(t *testing.T) {
	mainDir := t.TempDir()
	entry := filepath.Join(mainDir, "app-service.js")
	testsupport.WriteFile(t, entry, "App({});\n")

	if err := InjectPlugin(mainDir, logging.NewNop()); err != nil {
		t.Fatalf("inject: %v", err)
	}
	got := testsupport.ReadFile(t, entry)
	if got != "require(\"plugin.js\");\nApp({});\n" {
		t.Fatalf("unexpected entry content: %q", got)
	}
}

func TestInjectPluginMissingEntryIsNoOp(t *testing.T) {
	if err := InjectPlugin(t.TempDir(), logging.NewNop()); err != nil {
		t.Fatalf("inject: %v", err)
	}
}

func TestWriteProjectConfig(t *testing.T) {
	mainDir := t.TempDir()
	if err := WriteProjectConfig(mainDir, logging.NewNop()); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw := testsupport.ReadFile(t, filepath.Join(mainDir, "project.config.json"))
	if !strings.HasSuffix(raw, "\n") {
		t.Fatal("expected trailing newline")
	}

	var decoded struct {
		Description string `json:"description"`
		Setting     struct {
			URLCheck bool `json:"urlCheck"`
		} `json:"setting"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("decode project config: %v", err)
	}
	if decoded.Description == "" {
		t.Fatal("expected non-empty description")
	}
	if decoded.Setting.URLCheck {
		t.Fatal("urlCheck must be disabled")
	}
}

func TestWriteProjectConfigOverwritesExisting(t *testing.T) {
	mainDir := t.TempDir()
	path := filepath.Join(mainDir, "project.config.json")
	testsupport.WriteFile(t, path, "{}")

	if err := WriteProjectConfig(mainDir, logging.NewNop()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := testsupport.ReadFile(t, path); got == "{}" {
		t.Fatal("expected descriptor to be rewritten")
	}
}
