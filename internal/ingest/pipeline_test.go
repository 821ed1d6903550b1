package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/raglet/raglet/internal/splitter"
)

var txtOnly = map[string]bool{".txt": true, ".md": true, ".csv": true}

func writeDoc(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestRun_CollectsChunksWithSources(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.txt", "The sky is blue.")
	writeDoc(t, root, "sub/b.md", "Grass is green.")

	p := New(splitter.New(500, 50), 2)
	chunks, err := p.Run(context.Background(), root, txtOnly)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}

	sources := map[string]bool{}
	for _, c := range chunks {
		sources[c.Source] = true
	}
	if !sources["a.txt"] || !sources["b.md"] {
		t.Errorf("sources = %v, want a.txt and b.md", sources)
	}
}

func TestRun_EmptyFolder(t *testing.T) {
	p := New(splitter.New(500, 50), 5)

	_, err := p.Run(context.Background(), t.TempDir(), txtOnly)
	if !errors.Is(err, ErrEmptyKnowledgeBase) {
		t.Fatalf("err = %v, want ErrEmptyKnowledgeBase", err)
	}
}

func TestRun_MissingFolder(t *testing.T) {
	p := New(splitter.New(500, 50), 5)

	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "nope"), txtOnly)
	if !errors.Is(err, ErrEmptyKnowledgeBase) {
		t.Fatalf("err = %v, want ErrEmptyKnowledgeBase", err)
	}
}

func TestRun_SkipsFailingFiles(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "good.txt", "Solid content here.")
	writeDoc(t, root, "bad.csv", "a,\"unterminated\nquote,b")

	p := New(splitter.New(500, 50), 5)
	chunks, err := p.Run(context.Background(), root, txtOnly)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, c := range chunks {
		if c.Source == "bad.csv" {
			t.Errorf("failing file contributed a chunk: %+v", c)
		}
	}
	if len(chunks) == 0 {
		t.Fatal("healthy file should still produce chunks")
	}
}

func TestRun_AllFilesFail(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "only.csv", "\"broken")

	p := New(splitter.New(500, 50), 5)
	_, err := p.Run(context.Background(), root, txtOnly)
	if !errors.Is(err, ErrEmptyKnowledgeBase) {
		t.Fatalf("err = %v, want ErrEmptyKnowledgeBase", err)
	}
}

func TestRun_DeterministicAcrossBatchSizes(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt", "f.txt", "g.txt"} {
		writeDoc(t, root, name, "Content of "+name)
	}

	p1 := New(splitter.New(500, 50), 2)
	first, err := p1.Run(context.Background(), root, txtOnly)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	p2 := New(splitter.New(500, 50), 5)
	second, err := p2.Run(context.Background(), root, txtOnly)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs across batch sizes: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRun_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "a.txt", "content")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(splitter.New(500, 50), 5)
	if _, err := p.Run(ctx, root, txtOnly); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
