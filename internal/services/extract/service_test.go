package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractText_EmptyURL(t *testing.T) {
	svc := NewService()
	if _, err := svc.ExtractText(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestExtractText_DownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewService()
	if _, err := svc.ExtractText(context.Background(), srv.URL+"/missing.pdf"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestExtractText_NotAPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not a pdf</html>"))
	}))
	defer srv.Close()

	svc := NewService()
	if _, err := svc.ExtractText(context.Background(), srv.URL+"/page.html"); err == nil {
		t.Fatal("expected error for non-PDF content")
	}
}

func TestExtractAll_SettlesAllSlots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewService()
	urls := []string{
		srv.URL + "/a.pdf",
		"http://127.0.0.1:1/unreachable.pdf",
		srv.URL + "/b.pdf",
	}

	results := svc.ExtractAll(context.Background(), urls)

	// One result per URL, in order, failures replaced by the placeholder.
	if len(results) != len(urls) {
		t.Fatalf("got %d results, want %d", len(results), len(urls))
	}
	for i, r := range results {
		if r != FailedExtractionPlaceholder {
			t.Errorf("slot %d = %q, want placeholder", i, r)
		}
	}
}

func TestTruncateText(t *testing.T) {
	if got := truncateText("abcdef", 3); got != "abc" {
		t.Errorf("truncateText = %q", got)
	}
	if got := truncateText("abc", 10); got != "abc" {
		t.Errorf("short input changed: %q", got)
	}

	// A cap landing inside a multi-byte character backs up to the previous
	// rune boundary instead of emitting a partial byte sequence.
	text := strings.Repeat("ă", 10)
	got := truncateText(text, 5)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if got != strings.Repeat("ă", 2) {
		t.Errorf("got %q, want %q", got, strings.Repeat("ă", 2))
	}
}

func TestExtractAll_Empty(t *testing.T) {
	svc := NewService()
	results := svc.ExtractAll(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}
