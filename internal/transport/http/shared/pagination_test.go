package shared

import (
	"net/http/httptest"
	"testing"
)

func TestParsePaginationDefaults(t *testing.T) {
	limit, offset := ParsePagination(httptest.NewRequest("GET", "/audit", nil))
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults 50/0, got %d/%d", limit, offset)
	}
}

func TestParsePaginationClampsLimit(t *testing.T) {
	limit, _ := ParsePagination(httptest.NewRequest("GET", "/audit?limit=9999", nil))
	if limit != 500 {
		t.Fatalf("expected clamp to 500, got %d", limit)
	}
}

func TestParsePaginationIgnoresGarbage(t *testing.T) {
	limit, offset := ParsePagination(httptest.NewRequest("GET", "/audit?limit=abc&offset=-5", nil))
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults on bad input, got %d/%d", limit, offset)
	}
}
