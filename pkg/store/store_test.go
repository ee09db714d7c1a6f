package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/interestmap/pkg/errors"
	"github.com/matzehuels/interestmap/pkg/graph"
)

func sample(title string) graph.Snapshot {
	return graph.Snapshot{
		Header: graph.Header{MapID: "m1", Title: title, Seed: 42, Tick: 300, Width: 1200, Height: 800},
		Nodes: []graph.Node{
			{ID: "center", Name: title, Color: "#3B82F6", Fixed: true},
			{ID: "l1_0", Name: "Go", Level: 1, X: 160, Color: "#8B5CF6", Parent: "center", Root: "l1_0"},
		},
		Links: []graph.Link{{Source: "center", Target: "l1_0", Color: "#8B5CF6", Opacity: 0.7, X2: 160}},
	}
}

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	mem := NewMemoryStore()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "snapshots"))
	if err != nil {
		t.Fatal(err)
	}
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	mem.now = (&stepClock{t: base}).now
	fs.now = (&stepClock{t: base}).now
	return map[string]Store{"memory": mem, "file": fs}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			first, err := s.Save(ctx, sample("First"))
			if err != nil {
				t.Fatal(err)
			}
			if first.ID == "" || first.CreatedAt.IsZero() {
				t.Fatalf("Save did not fill id/created_at: %+v", first.Header)
			}
			second, err := s.Save(ctx, sample("Second"))
			if err != nil {
				t.Fatal(err)
			}

			got, err := s.Get(ctx, first.ID)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(first, got); diff != "" {
				t.Errorf("Get mismatch (-want +got):\n%s", diff)
			}

			list, err := s.List(ctx)
			if err != nil {
				t.Fatal(err)
			}
			want := []Summary{Summarize(second), Summarize(first)}
			if diff := cmp.Diff(want, list); diff != "" {
				t.Errorf("List mismatch (-want +got):\n%s", diff)
			}

			if err := s.Delete(ctx, first.ID); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Get(ctx, first.ID); !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
				t.Errorf("Get after delete: err = %v", err)
			}
			if err := s.Delete(ctx, first.ID); !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
				t.Errorf("second Delete: err = %v", err)
			}
		})
	}
}

func TestSaveKeepsIDAndReplaces(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			snap := sample("Mine")
			snap.ID = "my-map"
			if _, err := s.Save(ctx, snap); err != nil {
				t.Fatal(err)
			}
			snap.Title = "Renamed"
			if _, err := s.Save(ctx, snap); err != nil {
				t.Fatal(err)
			}
			list, _ := s.List(ctx)
			if len(list) != 1 || list[0].ID != "my-map" || list[0].Title != "Renamed" {
				t.Errorf("list = %+v", list)
			}

			snap.ID = "../escape"
			if _, err := s.Save(ctx, snap); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("unsafe id: err = %v", err)
			}
		})
	}
}

func TestFileStoreSkipsJunk(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(fs.Path(), "broken.json"), []byte("{"), 0o600)
	os.WriteFile(filepath.Join(fs.Path(), "notes.txt"), []byte("hi"), 0o600)
	fs.Save(context.Background(), sample("Ok"))

	list, err := fs.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Errorf("List = %+v, %v", list, err)
	}
	if _, err := fs.Get(context.Background(), "../../etc/passwd"); !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
		t.Errorf("traversal id: err = %v", err)
	}
	if _, err := NewFileStore(""); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("empty dir: err = %v", err)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("INTERESTMAP_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("INTERESTMAP_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewMongoStore(ctx, uri, "interestmap_test", "snapshots_"+time.Now().Format("150405"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	defer s.coll.Drop(context.Background())

	saved, err := s.Save(ctx, sample("Mongo"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, saved.ID)
	if err != nil || got.Title != "Mongo" || len(got.Nodes) != 2 {
		t.Fatalf("Get = %+v, %v", got.Header, err)
	}
	if err := s.Delete(ctx, saved.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, saved.ID); !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
		t.Errorf("Get after delete: err = %v", err)
	}
}
