package archive

import (
	"testing"
	"time"
)

func TestBuildIndexAggregates(t *testing.T) {
	early := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

	rows := []map[string]any{
		{"user_id": "u1", "endpoint": "/a", "created_at": late},
		{"user_id": "u1", "endpoint": "/b", "created_at": early},
		{"user_id": "u2", "endpoint": "/a", "created_at": early},
	}

	entries := BuildIndex("arc-1", rows)

	byKey := map[string]IndexEntry{}
	for _, e := range entries {
		if e.ArchiveUUID != "arc-1" {
			t.Fatalf("wrong archive uuid: %s", e.ArchiveUUID)
		}
		byKey[e.EntityType+"/"+e.EntityValue] = e
	}
	if len(byKey) != 4 {
		t.Fatalf("expected 4 distinct entities, got %d", len(byKey))
	}

	u1 := byKey[EntityUser+"/u1"]
	if u1.RecordCount != 2 {
		t.Fatalf("u1 count = %d, want 2", u1.RecordCount)
	}
	if !u1.FirstOccurrence.Equal(early) || !u1.LastOccurrence.Equal(late) {
		t.Fatalf("u1 occurrence window wrong: %v .. %v", u1.FirstOccurrence, u1.LastOccurrence)
	}

	slashA := byKey[EntityEndpoint+"//a"]
	if slashA.RecordCount != 2 {
		t.Fatalf("/a count = %d, want 2", slashA.RecordCount)
	}
}

func TestBuildIndexSkipsAbsentDimensions(t *testing.T) {
	rows := []map[string]any{
		{"user_id": "u1"},
		{"status": 200},
	}
	entries := BuildIndex("arc-2", rows)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.RecordCount != 1 {
			t.Fatalf("expected count 1, got %d", e.RecordCount)
		}
	}
}

func TestBuildIndexDeterministicOrder(t *testing.T) {
	rows := []map[string]any{
		{"user_id": "b"},
		{"user_id": "a"},
	}
	first := BuildIndex("arc-3", rows)
	second := BuildIndex("arc-3", rows)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 entries, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].EntityValue != second[i].EntityValue {
			t.Fatal("index order must be deterministic")
		}
	}
	if first[0].EntityValue != "a" {
		t.Fatalf("expected sorted values, got %s first", first[0].EntityValue)
	}
}

func TestBuildIndexEmptyRows(t *testing.T) {
	if entries := BuildIndex("arc-4", nil); len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
