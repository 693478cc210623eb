// Package fsops provides thin, total wrappers over platform calls: content
// hashing, text file read/write, and directory listing. Platform errors are
// reported inside the returned result values so the calling boundary never
// sees a panic and never has to unwrap error chains.
package fsops

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
)

// HashDigest returns the lowercase hex SHA-256 digest of payload.
func HashDigest(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// ReadResult is the outcome of ReadTextFile.
type ReadResult struct {
	OK      bool
	Content string
	Error   string
}

// ReadTextFile reads path as text.
func ReadTextFile(path string) ReadResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return ReadResult{Error: fmt.Sprintf("Read error: %v", err)}
	}
	return ReadResult{OK: true, Content: string(content)}
}

// WriteResult is the outcome of WriteTextFile.
type WriteResult struct {
	OK           bool
	BytesWritten int
	Error        string
}

// WriteTextFile writes content to path, creating the file if needed.
func WriteTextFile(path, content string) WriteResult {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return WriteResult{Error: fmt.Sprintf("Write error: %v", err)}
	}
	return WriteResult{OK: true, BytesWritten: len(content)}
}

// DirEntry is one entry of a directory listing.
type DirEntry struct {
	Name  string
	IsDir bool
}

// ListResult is the outcome of ListDirEntries.
type ListResult struct {
	OK      bool
	Entries []DirEntry
	Error   string
}

// ListDirEntries lists the entries of path sorted lexicographically by name
// so repeated calls are deterministic.
func ListDirEntries(path string) ListResult {
	items, err := os.ReadDir(path)
	if err != nil {
		return ListResult{Error: fmt.Sprintf("List error: %v", err)}
	}
	entries := make([]DirEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, DirEntry{Name: item.Name(), IsDir: item.IsDir()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return ListResult{OK: true, Entries: entries}
}
