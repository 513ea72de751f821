package shared

import (
	"net/http/httptest"
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "/archives", 50, 0},
		{"explicit", "/archives?limit=20&offset=40", 20, 40},
		{"clamped to max", "/archives?limit=9000", 500, 0},
		{"negative values ignored", "/archives?limit=-5&offset=-10", 50, 0},
		{"garbage ignored", "/archives?limit=abc&offset=xyz", 50, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tc.url, nil)
			page := ParsePagination(r, 50, 500)
			if page.Limit != tc.wantLimit || page.Offset != tc.wantOffset {
				t.Fatalf("got limit=%d offset=%d, want limit=%d offset=%d",
					page.Limit, page.Offset, tc.wantLimit, tc.wantOffset)
			}
		})
	}
}
