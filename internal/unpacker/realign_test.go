package unpacker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wxunpack/internal/logging"
	"wxunpack/internal/testsupport"
)

func splitFixture(t *testing.T) (uctx *Context, req *SubpackageRequest, mainDir string) {
	t.Helper()
	base := t.TempDir()
	mainDir = filepath.Join(base, "app")
	entryDir := filepath.Join(base, "sub")

	testsupport.WriteFile(t, filepath.Join(mainDir, "app-service.js"), "// main\n")
	testsupport.WriteFile(t, filepath.Join(entryDir, "pkg", "app-service.js"),
		"require(\"../../app-service.js\");\nmodule.exports = {};\n")
	testsupport.WriteFile(t, filepath.Join(entryDir, "pkg", "pages", "detail.js"),
		"require('../../../app-service.js');\nPage({});\n")

	uctx = NewContext()
	uctx.MainPackage = mainDir
	req = &SubpackageRequest{
		EntryScript: "pkg/app-service.js",
		EntryDir:    entryDir,
		Root:        "pkg",
	}
	return uctx, req, mainDir
}

func TestApplyRelocatesAndFiltersBootstrapRequire(t *testing.T) {
	uctx, req, mainDir := splitFixture(t)
	realigner := NewRealigner(uctx, logging.NewNop())

	if err := realigner.Apply(req); err != nil {
		t.Fatalf("apply: %v", err)
	}

	entry := testsupport.ReadFile(t, filepath.Join(mainDir, "pkg", "app-service.js"))
	if strings.Contains(entry, "require(") {
		t.Fatalf("bootstrap require survived relocation: %q", entry)
	}
	if !strings.Contains(entry, "module.exports") {
		t.Fatalf("entry content lost: %q", entry)
	}

	page := testsupport.ReadFile(t, filepath.Join(mainDir, "pkg", "pages", "detail.js"))
	if strings.Contains(page, "app-service.js") {
		t.Fatalf("bootstrap require survived in nested file: %q", page)
	}
	if !strings.Contains(page, "Page({})") {
		t.Fatalf("nested content lost: %q", page)
	}

	if _, err := os.Stat(filepath.Join(req.EntryDir, "pkg")); !os.IsNotExist(err) {
		t.Fatal("expected split root to be removed after relocation")
	}
	if !uctx.Seen(filepath.Join(mainDir, "pkg")) {
		t.Fatal("expected target directory to be marked seen")
	}
}

func TestApplySecondRequestForSameTargetIsNoOp(t *testing.T) {
	uctx, req, mainDir := splitFixture(t)
	realigner := NewRealigner(uctx, logging.NewNop())

	if err := realigner.Apply(req); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	marker := filepath.Join(mainDir, "pkg", "app-service.js")
	before := testsupport.ReadFile(t, marker)

	// A later decode of the same subpackage signals the same target again.
	testsupport.WriteFile(t, filepath.Join(req.EntryDir, "pkg", "app-service.js"), "overwritten\n")
	if err := realigner.Apply(req); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if after := testsupport.ReadFile(t, marker); after != before {
		t.Fatalf("second apply modified target: %q", after)
	}
}

func TestApplyNilRequestIsNoOp(t *testing.T) {
	uctx := NewContext()
	uctx.MainPackage = t.TempDir()
	if err := NewRealigner(uctx, logging.NewNop()).Apply(nil); err != nil {
		t.Fatalf("apply nil: %v", err)
	}
}

func TestApplyWithoutMainPackageLeavesSplitInPlace(t *testing.T) {
	uctx, req, _ := splitFixture(t)
	uctx.MainPackage = ""
	realigner := NewRealigner(uctx, logging.NewNop())

	if err := realigner.Apply(req); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := os.Stat(filepath.Join(req.EntryDir, "pkg", "app-service.js")); err != nil {
		t.Fatalf("split content should remain in place: %v", err)
	}
}

func TestApplyMissingEntryScriptIsNoOp(t *testing.T) {
	uctx, req, mainDir := splitFixture(t)
	if err := os.Remove(filepath.Join(req.EntryDir, "pkg", "app-service.js")); err != nil {
		t.Fatalf("remove entry: %v", err)
	}
	realigner := NewRealigner(uctx, logging.NewNop())

	if err := realigner.Apply(req); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := os.Stat(filepath.Join(mainDir, "pkg")); !os.IsNotExist(err) {
		t.Fatal("expected no relocation without entry script")
	}
	if uctx.Seen(filepath.Join(mainDir, "pkg")) {
		t.Fatal("target must not be marked seen without relocation")
	}
}

func TestBootstrapRequireMatching(t *testing.T) {
	cases := []struct {
		line string
		drop bool
	}{
		{`require("../../app-service.js");`, true},
		{`require('../../../app-service.js')`, true},
		{`  require("app-service.js");  `, true},
		{`require("./util.js");`, false},
		{`// require("../../app-service.js");`, false},
		{`const svc = require("../../app-service.js");`, false},
	}
	for _, tc := range cases {
		if got := !keepRelocatedLine(tc.line); got != tc.drop {
			t.Errorf("line %q: drop = %t, expected %t", tc.line, got, tc.drop)
		}
	}
}
