package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// Input creates a file named name in a fresh temp directory and returns its
// path. The content is a simple repeating pattern of size bytes; a size <= 0
// leaves the file empty. Opener stubs never read it, so only the name matters
// to product identification.
func Input(t testing.TB, name string, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	WriteFile(t, path, size)
	return path
}

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}
