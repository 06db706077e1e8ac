package testsupport

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// BuildArchive writes a mini-program container at path holding the given
// files, keyed by archive-internal name (stored with the leading slash real
// packers emit). Returns nothing; failures end the test.
func BuildArchive(t testing.TB, path string, files map[string]string) {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	indexLen := 4
	bodyLen := 0
	for _, name := range names {
		indexLen += 12 + len("/"+name)
		bodyLen += len(files[name])
	}
	// header: marker, reserved, index length, body length, marker
	headerLen := 1 + 4 + 4 + 4 + 1

	var buf bytes.Buffer
	buf.WriteByte(0xBE)
	writeUint32(t, &buf, 0)
	writeUint32(t, &buf, uint32(indexLen))
	writeUint32(t, &buf, uint32(bodyLen))
	buf.WriteByte(0xED)
	writeUint32(t, &buf, uint32(len(names)))

	offset := headerLen + indexLen
	for _, name := range names {
		stored := "/" + name
		writeUint32(t, &buf, uint32(len(stored)))
		buf.WriteString(stored)
		writeUint32(t, &buf, uint32(offset))
		writeUint32(t, &buf, uint32(len(files[name])))
		offset += len(files[name])
	}
	for _, name := range names {
		buf.WriteString(files[name])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write archive %s: %v", path, err)
	}
}

func writeUint32(t testing.TB, buf *bytes.Buffer, value uint32) {
	t.Helper()
	if err := binary.Write(buf, binary.BigEndian, value); err != nil {
		t.Fatalf("write uint32: %v", err)
	}
}
