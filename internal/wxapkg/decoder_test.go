package wxapkg_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"wxunpack/internal/logging"
	"wxunpack/internal/testsupport"
	"wxunpack/internal/wxapkg"
)

func decode(t *testing.T, files map[string]string) wxapkg.Result {
	t.Helper()

	dir := t.TempDir()
	archive := filepath.Join(dir, "pkg.wxapkg")
	testsupport.BuildArchive(t, archive, files)

	decoder := wxapkg.NewDecoder(logging.NewNop())
	result, err := decoder.Decode(context.Background(), archive, wxapkg.UnpackDir(archive))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return result
}

func TestDecodeExtractsFileTree(t *testing.T) {
	result := decode(t, map[string]string{
		"app-service.js":     "module.exports = {};",
		"pages/index.js":     "Page({});",
		"pages/index.wxml":   "<view/>",
		"static/logo.base64": "aGVsbG8=",
	})

	if len(result.Files) != 4 {
		t.Fatalf("expected 4 files, got %v", result.Files)
	}
	got, err := os.ReadFile(filepath.Join(result.Dir, "pages", "index.js"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(got) != "Page({});" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestDecodeDetectsMainPackage(t *testing.T) {
	result := decode(t, map[string]string{
		"app-service.js": "App({});",
		"pages/index.js": "Page({});",
	})
	if !result.IsMain {
		t.Fatal("root app-service.js should mark the main package")
	}
	if result.Split != nil {
		t.Fatal("main package must not be classified as a split")
	}
}

func TestDecodeDetectsMainPackageByAppConfig(t *testing.T) {
	result := decode(t, map[string]string{
		"app-config.json": "{}",
	})
	if !result.IsMain {
		t.Fatal("root app-config.json should mark the main package")
	}
}

func TestDecodeDetectsSplitSubpackage(t *testing.T) {
	result := decode(t, map[string]string{
		"sub1/app-service.js": "require(\"/app-service.js\");",
		"sub1/pages/a.js":     "Page({});",
	})
	if result.IsMain {
		t.Fatal("subpackage misclassified as main")
	}
	if result.Split == nil {
		t.Fatal("expected split classification")
	}
	if result.Split.Root != "sub1" {
		t.Fatalf("split root %q, want sub1", result.Split.Root)
	}
	if result.Split.EntryScript != "sub1/app-service.js" {
		t.Fatalf("split entry %q", result.Split.EntryScript)
	}
}

func TestDecodeSplitPrefersShallowestEntry(t *testing.T) {
	result := decode(t, map[string]string{
		"deep/nested/app-service.js": "x",
		"top/app-service.js":         "x",
	})
	if result.Split == nil || result.Split.Root != "top" {
		t.Fatalf("expected shallowest split root, got %+v", result.Split)
	}
}

func TestDecodeDetectsPlugin(t *testing.T) {
	result := decode(t, map[string]string{
		"app-service.js": "App({});",
		"plugin.js":      "module.exports = {};",
	})
	if !result.Plugin {
		t.Fatal("plugin.js should set the plugin flag")
	}
}

func TestDecodeRejectsCorruptHeader(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "broken.wxapkg")
	if err := os.WriteFile(archive, []byte("not an archive"), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	decoder := wxapkg.NewDecoder(logging.NewNop())
	if _, err := decoder.Decode(context.Background(), archive, wxapkg.UnpackDir(archive)); err == nil {
		t.Fatal("expected error for corrupt header")
	}
}

func TestUnpackDirStripsExtension(t *testing.T) {
	if got := wxapkg.UnpackDir("/tmp/app.wxapkg"); got != "/tmp/app" {
		t.Fatalf("got %q", got)
	}
	if got := wxapkg.UnpackDir("/tmp/plain"); got != "/tmp/plain" {
		t.Fatalf("got %q", got)
	}
}

func TestIsFramework(t *testing.T) {
	if !wxapkg.IsFramework("/pkgs/WeChatAppExService.wxapkg") {
		t.Fatal("framework bundle not recognized")
	}
	if wxapkg.IsFramework("/pkgs/app.wxapkg") {
		t.Fatal("application archive misclassified as framework")
	}
}
