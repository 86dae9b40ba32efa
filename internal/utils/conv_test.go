package utils

import (
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{"defaults on empty", "", "", 1, 20},
		{"valid values", "3", "50", 3, 50},
		{"garbage input", "abc", "xyz", 1, 20},
		{"zero and negative", "0", "-5", 1, 20},
		{"limit above cap", "2", "500", 2, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := ParsePagination(tt.page, tt.limit, 20, 100)
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Errorf("ParsePagination(%q, %q) = %d, %d; want %d, %d",
					tt.page, tt.limit, page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}
