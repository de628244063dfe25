package validators

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/parkloop/parkloop-backend/pkg/pagination"
)

func TestParseQueryUUID(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/?user_id="+id.String(), nil)

	got, err := ParseQueryUUID(req, "user_id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != id {
		t.Fatalf("expected %s got %s", id, got)
	}
}

func TestParseQueryUUIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := ParseQueryUUID(req, "user_id"); err == nil {
		t.Fatal("expected missing parameter error")
	}
}

func TestParseQueryUUIDMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?user_id=abc", nil)
	if _, err := ParseQueryUUID(req, "user_id"); err == nil {
		t.Fatal("expected malformed uuid error")
	}
}

func TestParsePathUUID(t *testing.T) {
	id := uuid.New()
	got, err := ParsePathUUID(id.String(), "bookingId")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != id {
		t.Fatalf("expected %s got %s", id, got)
	}

	if _, err := ParsePathUUID("nonsense", "bookingId"); err == nil {
		t.Fatal("expected malformed path uuid error")
	}
}

func TestParsePaginationDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	params, err := ParsePagination(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Limit != 0 {
		t.Fatalf("expected zero limit before normalization, got %d", params.Limit)
	}
	if params.Cursor != "" {
		t.Fatalf("expected empty cursor, got %q", params.Cursor)
	}
}

func TestParsePaginationBounds(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=10&cursor=abc", nil)
	params, err := ParsePagination(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Limit != 10 || params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", params)
	}

	over := httptest.NewRequest(http.MethodGet, "/?limit=9999", nil)
	if _, err := ParsePagination(over); err == nil {
		t.Fatal("expected limit above maximum to be rejected")
	}

	negative := httptest.NewRequest(http.MethodGet, "/?limit=-1", nil)
	if _, err := ParsePagination(negative); err == nil {
		t.Fatal("expected negative limit to be rejected")
	}

	if _, err := ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?limit=abc", nil), "limit", 0, 0, pagination.MaxLimit); err == nil {
		t.Fatal("expected non-numeric limit to be rejected")
	}
}
