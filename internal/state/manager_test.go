package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestNewManager(t *testing.T) {
	tmpDir := t.TempDir()

	manager, err := NewManager(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, DBFile)); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestNewManager_EmptyDir(t *testing.T) {
	if _, err := NewManager(""); err == nil {
		t.Error("Expected error for empty directory, got nil")
	}
}

func TestSaveRun_AssignsID(t *testing.T) {
	manager := newTestManager(t)

	start := time.Now().Add(-2 * time.Second)
	id, err := manager.SaveRun(RunRecord{
		Root:         "hdfs://nn/data",
		Query:        "-t f -s +1G",
		StartTime:    start,
		EndTime:      start.Add(2 * time.Second),
		Status:       StatusSuccess,
		Visited:      120,
		Matched:      4,
		BytesMatched: 5 << 30,
	})
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("SaveRun() id %q is not a UUID: %v", id, err)
	}

	records, err := manager.GetHistory("hdfs://nn/data", 10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}

	r := records[0]
	if r.ID != id || r.Query != "-t f -s +1G" || r.Visited != 120 || r.Matched != 4 || r.BytesMatched != 5<<30 {
		t.Errorf("record = %+v", r)
	}
	if r.Duration().Round(time.Second) != 2*time.Second {
		t.Errorf("Duration() = %v", r.Duration())
	}
}

func TestSaveRun_Validation(t *testing.T) {
	manager := newTestManager(t)
	now := time.Now()

	if _, err := manager.SaveRun(RunRecord{Root: "/", StartTime: now, EndTime: now, Status: "partial"}); err == nil {
		t.Error("Expected error for invalid status")
	}
	if _, err := manager.SaveRun(RunRecord{ID: "not-a-uuid", Root: "/", StartTime: now, EndTime: now, Status: StatusFailed}); err == nil {
		t.Error("Expected error for invalid id")
	}

	id := uuid.NewString()
	got, err := manager.SaveRun(RunRecord{ID: id, Root: "/", StartTime: now, EndTime: now, Status: StatusCancelled})
	if err != nil || got != id {
		t.Errorf("SaveRun(explicit id) = %q, %v", got, err)
	}
}

func TestGetRecentAndLastSuccess(t *testing.T) {
	manager := newTestManager(t)
	base := time.Now().Add(-time.Hour)

	runs := []RunRecord{
		{Root: "/a", Status: StatusSuccess, Matched: 1},
		{Root: "/b", Status: StatusSuccess, Matched: 2},
		{Root: "/a", Status: StatusFailed, Error: "list /a/x: permission denied"},
	}
	for i, r := range runs {
		r.StartTime = base.Add(time.Duration(i) * time.Minute)
		r.EndTime = r.StartTime.Add(time.Second)
		if _, err := manager.SaveRun(r); err != nil {
			t.Fatalf("SaveRun(%d) error = %v", i, err)
		}
	}

	recent, err := manager.GetRecent(2)
	if err != nil {
		t.Fatalf("GetRecent() error = %v", err)
	}
	if len(recent) != 2 || recent[0].Status != StatusFailed || recent[1].Root != "/b" {
		t.Errorf("GetRecent(2) = %+v", recent)
	}
	if recent[0].Error != "list /a/x: permission denied" {
		t.Errorf("Error = %q", recent[0].Error)
	}

	last, err := manager.GetLastSuccess("/a")
	if err != nil {
		t.Fatalf("GetLastSuccess() error = %v", err)
	}
	if last == nil || last.Matched != 1 {
		t.Errorf("GetLastSuccess(/a) = %+v", last)
	}

	none, err := manager.GetLastSuccess("/never")
	if err != nil || none != nil {
		t.Errorf("GetLastSuccess(/never) = %+v, %v", none, err)
	}

	if _, err := manager.GetRecent(0); err == nil {
		t.Error("Expected error for zero limit")
	}
	if _, err := manager.GetHistory("/a", -1); err == nil {
		t.Error("Expected error for negative limit")
	}
}
