package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"go.uber.org/goleak"

	"github.com/matzehuels/interestmap/pkg/core/tree"
)

func TestWatchTreeFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "me.yaml")
	if err := os.WriteFile(path, []byte("name: Ada\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	type result struct {
		root tree.Entity
		err  error
	}
	got := make(chan result, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	go func() {
		done <- watchTreeFile(ctx, path, logger, func(root tree.Entity, err error) {
			got <- result{root, err}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	// Unrelated files in the directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("name: Ada\nchildren:\n  - name: Music\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-got:
		if r.err != nil {
			t.Fatalf("reload error: %v", r.err)
		}
		if len(r.root.Children) != 1 || r.root.Children[0].Name != "Music" {
			t.Errorf("reloaded tree = %+v, want one child Music", r.root)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	if err := os.WriteFile(path, []byte("name: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-got:
		if r.err == nil {
			t.Error("broken tree file should report an error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for failed reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watchTreeFile() error: %v", err)
	}
}

func TestWatchTreeFileMissingDir(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	err := watchTreeFile(context.Background(), filepath.Join(t.TempDir(), "gone", "me.yaml"), logger, func(tree.Entity, error) {})
	if err == nil {
		t.Error("watching a missing directory should fail")
	}
}
