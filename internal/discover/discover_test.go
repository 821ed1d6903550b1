package discover

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestFiles_Recursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"))
	writeFile(t, filepath.Join(root, "sub", "b.md"))
	writeFile(t, filepath.Join(root, "sub", "deep", "nested", "c.TXT"))
	writeFile(t, filepath.Join(root, "sub", "skip.exe"))
	writeFile(t, filepath.Join(root, "skip.jpg"))

	paths, err := Files(root, map[string]bool{".txt": true, ".md": true})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("got %d paths, want 3: %v", len(paths), paths)
	}
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			t.Errorf("path %q is not absolute", p)
		}
		if strings.HasSuffix(p, ".exe") || strings.HasSuffix(p, ".jpg") {
			t.Errorf("disallowed extension leaked through: %q", p)
		}
	}
}

func TestFiles_CaseInsensitiveExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "REPORT.MD"))

	paths, err := Files(root, map[string]bool{".md": true})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(paths))
	}
}

func TestFiles_MissingRoot(t *testing.T) {
	paths, err := Files(filepath.Join(t.TempDir(), "nope"), map[string]bool{".txt": true})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("got %d paths for missing root, want 0", len(paths))
	}
}

func TestFiles_Deterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "z.txt"))
	writeFile(t, filepath.Join(root, "a.txt"))
	writeFile(t, filepath.Join(root, "m", "k.txt"))

	first, err := Files(root, map[string]bool{".txt": true})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Files(root, map[string]bool{".txt": true})
		if err != nil {
			t.Fatalf("Files: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d paths, want %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("run %d: order changed at %d: %q vs %q", i, j, again[j], first[j])
			}
		}
	}
}
