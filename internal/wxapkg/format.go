package wxapkg

import (
	"encoding/binary"
	"fmt"
	"io"
	"path"
	"strings"
)

// Ext is the archive file extension.
const Ext = ".wxapkg"

const (
	firstMark byte = 0xBE
	lastMark  byte = 0xED

	// Entry names are bounded to keep a corrupt index from allocating
	// unbounded memory.
	maxNameLen = 4096
)

// Entry describes one file stored in an archive.
type Entry struct {
	Name   string
	Offset uint32
	Size   uint32
}

// UnpackDir derives the unpack directory for an archive path: the path with
// the extension stripped.
func UnpackDir(archivePath string) string {
	return strings.TrimSuffix(archivePath, Ext)
}

// frameworkPrefixes lists base-name prefixes of the bundled runtime
// framework archives shipped alongside application archives.
var frameworkPrefixes = []string{"WeChatAppEx"}

// IsFramework reports whether the archive is the bundled runtime framework
// bundle rather than an application archive.
func IsFramework(archivePath string) bool {
	base := path.Base(strings.ReplaceAll(archivePath, "\\", "/"))
	for _, prefix := range frameworkPrefixes {
		if strings.HasPrefix(base, prefix) {
			return true
		}
	}
	return false
}

// readIndex parses the archive header and index from r.
func readIndex(r io.Reader) ([]Entry, error) {
	var header struct {
		First     byte
		Reserved  uint32
		IndexLen  uint32
		BodyLen   uint32
		Last      byte
		FileCount uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if header.First != firstMark || header.Last != lastMark {
		return nil, fmt.Errorf("bad header markers 0x%02X/0x%02X", header.First, header.Last)
	}

	entries := make([]Entry, 0, header.FileCount)
	for i := uint32(0); i < header.FileCount; i++ {
		var nameLen uint32
		if err := binary.Read(r, binary.BigEndian, &nameLen); err != nil {
			return nil, fmt.Errorf("read name length of entry %d: %w", i, err)
		}
		if nameLen > maxNameLen {
			return nil, fmt.Errorf("entry %d name length %d exceeds limit", i, nameLen)
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, fmt.Errorf("read name of entry %d: %w", i, err)
		}
		var offsetAndSize [2]uint32
		if err := binary.Read(r, binary.BigEndian, &offsetAndSize); err != nil {
			return nil, fmt.Errorf("read location of entry %d: %w", i, err)
		}
		entries = append(entries, Entry{
			Name:   string(name),
			Offset: offsetAndSize[0],
			Size:   offsetAndSize[1],
		})
	}
	return entries, nil
}

// cleanEntryName normalizes a stored name to a safe relative path: leading
// separators are stripped and escapes above the unpack root are rejected.
func cleanEntryName(name string) (string, error) {
	normalized := strings.ReplaceAll(name, "\\", "/")
	normalized = strings.TrimLeft(normalized, "/")
	cleaned := path.Clean(normalized)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("entry name %q escapes the unpack root", name)
	}
	return cleaned, nil
}
