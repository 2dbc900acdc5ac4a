package simplize

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func reportListJSON() string {
	return `{"data": [
		{"id": 1, "ticker": "VIC", "title": "Report A", "issueDate": "08/09/2025", "recommend": "MUA", "targetPrice": 90000, "attachedLink": "https://x/a.pdf"},
		{"id": 2, "ticker": "VIC", "title": "Report B", "issueDate": "20/08/2025", "recommend": "TRUNG LẬP", "targetPrice": 82000, "attachedLink": "https://x/b.pdf"},
		{"id": 3, "ticker": "VIC", "title": "Report C", "issueDate": "01/05/2025", "recommend": "BÁN", "targetPrice": 70000, "attachedLink": "https://x/c.pdf"},
		{"id": 4, "ticker": "VIC", "title": "Report D", "issueDate": "not-a-date", "recommend": "MUA", "targetPrice": 0, "attachedLink": "https://x/d.pdf"}
	]}`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(WithBaseURL(srv.URL))
	return c, srv
}

func TestGetReports(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(reportListJSON()))
	})

	reports, err := c.GetReports(context.Background(), "vic", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 4 {
		t.Fatalf("got %d reports, want 4", len(reports))
	}
	if reports[0].Title != "Report A" {
		t.Errorf("first report = %q, want Report A", reports[0].Title)
	}

	for _, want := range []string{"ticker=VIC", "page=0", "size=20"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestGetReports_Empty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	})

	_, err := c.GetReports(context.Background(), "XYZ", 20)
	var noReports *NoReportsError
	if !errors.As(err, &noReports) {
		t.Fatalf("expected NoReportsError, got %v", err)
	}
	if noReports.Ticker != "XYZ" {
		t.Errorf("ticker = %q, want XYZ", noReports.Ticker)
	}
}

func TestGetReports_APIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.GetReports(context.Background(), "VIC", 20)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", apiErr.StatusCode)
	}
}

func TestGetLatestReports_Slices(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(reportListJSON()))
	})

	reports, err := c.GetLatestReports(context.Background(), "VIC", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if reports[0].Title != "Report A" || reports[1].Title != "Report B" {
		t.Errorf("unexpected order: %q, %q", reports[0].Title, reports[1].Title)
	}
}

func TestGetValidReports_FiltersByAge(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(reportListJSON()))
	})
	c.now = func() time.Time {
		return time.Date(2025, 9, 10, 0, 0, 0, 0, time.Local)
	}

	// Report A is 2 days old, B is 21, C is over 60, D is unparseable.
	reports, err := c.GetValidReports(context.Background(), "VIC", 5, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if reports[0].Title != "Report A" || reports[1].Title != "Report B" {
		t.Errorf("unexpected reports: %q, %q", reports[0].Title, reports[1].Title)
	}
}

func TestGetValidReports_NoneWithinWindow(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(reportListJSON()))
	})
	c.now = func() time.Time {
		return time.Date(2026, 6, 1, 0, 0, 0, 0, time.Local)
	}

	_, err := c.GetValidReports(context.Background(), "VIC", 5, 60)
	var noReports *NoReportsError
	if !errors.As(err, &noReports) {
		t.Fatalf("expected NoReportsError, got %v", err)
	}
	if noReports.MaxAgeDays != 60 {
		t.Errorf("MaxAgeDays = %d, want 60", noReports.MaxAgeDays)
	}
}
