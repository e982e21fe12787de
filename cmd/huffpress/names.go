package main

import (
	"path/filepath"
	"strings"
)

const (
	compressedSuffix   = "_compressed"
	decompressedSuffix = "_decompressed"
)

// deriveNames inserts the job suffixes before the first '.' of the file's
// base name, or appends them when the name has no dot:
//
//	docs/notes.txt -> docs/notes_compressed.txt, docs/notes_decompressed.txt
func deriveNames(path string) (compressed, decompressed string) {
	dir, base := filepath.Split(path)
	stem, ext := base, ""
	if i := strings.IndexByte(base, '.'); i >= 0 {
		stem, ext = base[:i], base[i:]
	}
	return dir + stem + compressedSuffix + ext, dir + stem + decompressedSuffix + ext
}
