package local

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Ning0612/hfind/internal/domain"
	"github.com/Ning0612/hfind/internal/testutil"
)

func setupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.CreateTestFileWithSize(t, root, "a/f1", 2048)
	testutil.CreateTestFile(t, root, "a/f2", []byte("x"))
	testutil.CreateTestDir(t, root, "a/sub")
	testutil.CreateTestFile(t, root, "b/f3", nil)
	return filepath.ToSlash(root)
}

func TestAdapter_List(t *testing.T) {
	root := setupTree(t)
	a := New()
	ctx := context.Background()

	entries, err := a.List(ctx, root+"/a")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []struct {
		name  string
		isDir bool
		size  int64
		repl  int
	}{
		{"f1", false, 2048, 1},
		{"f2", false, 1, 1},
		{"sub", true, 0, 0},
	}
	if len(entries) != len(want) {
		t.Fatalf("List() returned %d entries, want %d", len(entries), len(want))
	}
	for i, w := range want {
		e := entries[i]
		if e.Name() != w.name || e.IsDir != w.isDir || e.Size != w.size || e.Replication != w.repl {
			t.Errorf("entry %d = %+v, want %+v", i, e, w)
		}
		if e.Path != root+"/a/"+w.name {
			t.Errorf("entry %d path = %q", i, e.Path)
		}
		if e.URI != "file:"+e.Path || e.Scheme != Scheme {
			t.Errorf("entry %d uri = %q scheme = %q", i, e.URI, e.Scheme)
		}
	}
}

func TestAdapter_ListErrors(t *testing.T) {
	root := setupTree(t)
	a := New()
	ctx := context.Background()

	if _, err := a.List(ctx, root+"/missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("List(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := a.List(ctx, root+"/a/f1"); !errors.Is(err, domain.ErrNotDirectory) {
		t.Errorf("List(file) error = %v, want ErrNotDirectory", err)
	}
}

func TestAdapter_Stat(t *testing.T) {
	root := setupTree(t)
	a := New()

	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	testutil.SetModTime(t, filepath.FromSlash(root+"/a/f2"), mtime)

	e, err := a.Stat(context.Background(), root+"/a/f2")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !e.ModTime.Equal(mtime) {
		t.Errorf("ModTime = %v, want %v", e.ModTime, mtime)
	}
	// umask may strip bits but never adds them
	if runtime.GOOS != "windows" && e.Perm&^0644 != 0 {
		t.Errorf("Perm = %v", e.Perm)
	}

	if _, err := a.Stat(context.Background(), root+"/nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Stat(missing) error = %v, want ErrNotFound", err)
	}
}

func TestAdapter_Owner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no uid/gid on windows")
	}
	root := setupTree(t)

	e, err := New().Stat(context.Background(), root+"/a/f1")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if e.Owner == "" || e.Group == "" {
		t.Errorf("owner/group not resolved: %q/%q", e.Owner, e.Group)
	}
}

func TestAdapter_Glob(t *testing.T) {
	root := setupTree(t)
	a := New()
	ctx := context.Background()

	matches, err := a.Glob(ctx, root+"/*/f?")
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	var got []string
	for _, m := range matches {
		got = append(got, m.Path)
	}
	want := []string{root + "/a/f1", root + "/a/f2", root + "/b/f3"}
	if len(got) != len(want) {
		t.Fatalf("Glob() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Glob()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := a.Glob(ctx, root+"/missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Glob(literal missing) error = %v, want ErrNotFound", err)
	}
	if m, err := a.Glob(ctx, root+"/zz*"); err != nil || len(m) != 0 {
		t.Errorf("Glob(no match) = %v, %v", m, err)
	}
}

func TestAdapter_Sticky(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("sticky bit unsupported")
	}
	root := setupTree(t)
	dir := filepath.FromSlash(root + "/a/sub")
	if err := os.Chmod(dir, 0777|os.ModeSticky); err != nil {
		t.Skipf("chmod sticky: %v", err)
	}

	e, err := New().Stat(context.Background(), root+"/a/sub")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if got := e.PermissionString(); got != "rwxrwxrwt" {
		t.Errorf("PermissionString() = %q, want rwxrwxrwt", got)
	}
}

func TestAdapter_HomeAndWorkingDir(t *testing.T) {
	a := New()

	if home, err := a.Home(context.Background()); err == nil && home == "" {
		t.Error("Home() returned empty path")
	}
	wd, err := a.WorkingDir()
	if err != nil || wd == "" {
		t.Errorf("WorkingDir() = %q, %v", wd, err)
	}
}

func TestFactory(t *testing.T) {
	var f Factory
	if !f.Supports("file") || f.Supports("hdfs") {
		t.Error("Supports() mismatch")
	}
	fs, err := f.Open(context.Background(), &url.URL{Scheme: "file", Path: "/tmp"})
	if err != nil || fs == nil {
		t.Fatalf("Open() = %v, %v", fs, err)
	}
	defer fs.Close()
}
