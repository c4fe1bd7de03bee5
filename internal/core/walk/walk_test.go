package walk

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Ning0612/hfind/internal/core/prune"
	"github.com/Ning0612/hfind/internal/domain"
	"github.com/Ning0612/hfind/internal/progress"
	"github.com/Ning0612/hfind/internal/testutil"
)

func collect(t *testing.T, w *Walker) []string {
	t.Helper()
	var result []string
	for {
		e, ok := w.Next()
		if !ok {
			break
		}
		result = append(result, e.Path)
	}
	return result
}

func roots(t *testing.T, fs *testutil.MemFS, pattern string) []domain.Entry {
	t.Helper()
	r, err := fs.Glob(context.Background(), pattern)
	if err != nil {
		t.Fatalf("Glob(%q) error = %v", pattern, err)
	}
	return r
}

func sampleTree() *testutil.MemFS {
	return testutil.NewMemFS().
		Dir("/a").
		File("/a/f1", 2048).
		Dir("/a/b").
		File("/a/b/f2", 10).
		Dir("/a/.cache").
		File("/a/.cache/blob", 99).
		File("/a/._hidden", 1).
		File("/a/f3", 5)
}

func TestWalker_PreOrder(t *testing.T) {
	fs := sampleTree()
	w := New(context.Background(), fs, roots(t, fs, "/a"), nil, nil)

	got := collect(t, w)
	expected := []string{"/a", "/a/f1", "/a/b", "/a/b/f2", "/a/.cache", "/a/.cache/blob", "/a/._hidden", "/a/f3"}
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Errorf("got %v, want %v", got, expected)
	}
	if err := w.Err(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestWalker_PrunesHiddenSubtrees(t *testing.T) {
	fs := sampleTree()
	reporter := progress.NewCallbackReporter(nil)
	w := New(context.Background(), fs, roots(t, fs, "/a"), prune.Hidden{Enabled: true}, reporter)

	got := collect(t, w)
	expected := []string{"/a", "/a/f1", "/a/b", "/a/b/f2", "/a/f3"}
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Errorf("got %v, want %v", got, expected)
	}

	for _, p := range fs.Listed {
		if p == "/a/.cache" {
			t.Error("pruned directory must not be listed")
		}
	}
	if reporter.Stats().Pruned != 2 {
		t.Errorf("expected 2 pruned entries, got %d", reporter.Stats().Pruned)
	}
}

func TestWalker_RootIsNeverPruned(t *testing.T) {
	fs := sampleTree()
	w := New(context.Background(), fs, roots(t, fs, "/a/.cache"), prune.Hidden{Enabled: true}, nil)

	got := collect(t, w)
	expected := []string{"/a/.cache", "/a/.cache/blob"}
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Errorf("got %v, want %v", got, expected)
	}
}

func TestWalker_MultipleRoots(t *testing.T) {
	fs := testutil.NewMemFS().
		File("/logs/2024-01/a", 1).
		File("/logs/2024-02/b", 1).
		File("/logs/2023-12/c", 1)

	w := New(context.Background(), fs, roots(t, fs, "/logs/2024-*"), nil, nil)
	got := collect(t, w)
	expected := []string{"/logs/2024-01", "/logs/2024-01/a", "/logs/2024-02", "/logs/2024-02/b"}
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Errorf("got %v, want %v", got, expected)
	}
}

func TestWalker_DirectoryEmittedBeforeListingError(t *testing.T) {
	fs := sampleTree().FailList("/a/b", domain.ErrPermissionDenied)
	w := New(context.Background(), fs, roots(t, fs, "/a"), nil, nil)

	got := collect(t, w)
	expected := []string{"/a", "/a/f1", "/a/b"}
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Errorf("got %v, want %v", got, expected)
	}

	err := w.Err()
	if !errors.Is(err, domain.ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("expected wrapped ErrPermissionDenied, got %v", err)
	}
	var be *domain.BackendError
	if !errors.As(err, &be) || be.Path != "/a/b" {
		t.Errorf("expected BackendError for /a/b, got %v", err)
	}

	// the walker stays finished
	if _, ok := w.Next(); ok {
		t.Error("Next after failure should return false")
	}
}

func TestWalker_Cancelled(t *testing.T) {
	fs := sampleTree()
	ctx, cancel := context.WithCancel(context.Background())
	w := New(ctx, fs, roots(t, fs, "/a"), nil, nil)

	if _, ok := w.Next(); !ok {
		t.Fatal("expected first entry")
	}
	cancel()

	if _, ok := w.Next(); ok {
		t.Error("expected walk to stop after cancel")
	}
	if !errors.Is(w.Err(), context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", w.Err())
	}
}

func TestWalker_NoRoots(t *testing.T) {
	w := New(context.Background(), testutil.NewMemFS(), nil, nil, nil)
	if _, ok := w.Next(); ok {
		t.Error("expected empty walk")
	}
	if w.Err() != nil {
		t.Errorf("unexpected error %v", w.Err())
	}
}
