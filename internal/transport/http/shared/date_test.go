package shared

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-03-15T10:30:00Z")
	if err != nil || !got.Equal(time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("RFC3339 parse failed: %v %v", got, err)
	}

	got, err = ParseDate(" 2026-03-15 ")
	if err != nil || !got.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("bare date must mean midnight UTC and tolerate whitespace: %v %v", got, err)
	}

	got, err = ParseDate("")
	if err != nil || !got.IsZero() {
		t.Fatalf("empty input must yield the zero time: %v %v", got, err)
	}

	if _, err := ParseDate("15/03/2026"); err == nil {
		t.Fatal("unsupported layout must error")
	}
}
