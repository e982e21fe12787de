package main

import (
	"path/filepath"
	"testing"
)

func TestDeriveNames(t *testing.T) {
	tests := []struct {
		in, compressed, decompressed string
	}{
		{"EmptyTest.txt", "EmptyTest_compressed.txt", "EmptyTest_decompressed.txt"},
		{"archive.tar.gz", "archive_compressed.tar.gz", "archive_decompressed.tar.gz"},
		{"README", "README_compressed", "README_decompressed"},
		{filepath.Join("some.dir", "data.bin"), filepath.Join("some.dir", "data_compressed.bin"), filepath.Join("some.dir", "data_decompressed.bin")},
		{".profile", "_compressed.profile", "_decompressed.profile"},
	}
	for _, tt := range tests {
		c, d := deriveNames(tt.in)
		if c != tt.compressed || d != tt.decompressed {
			t.Errorf("deriveNames(%q) = %q, %q; want %q, %q", tt.in, c, d, tt.compressed, tt.decompressed)
		}
	}
}
