package models

import (
	"testing"
	"time"
)

func TestParseIssueDate(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantOK  bool
		wantDay int
	}{
		{"standard", "15/08/2025", true, 15},
		{"single digit day and month", "5/8/2025", true, 5},
		{"missing part", "08/2025", false, 0},
		{"empty", "", false, 0},
		{"non numeric", "aa/bb/cccc", false, 0},
		{"too many parts", "1/2/3/4", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ReportMetadata{IssueDate: tt.date}
			got, ok := r.ParseIssueDate()
			if ok != tt.wantOK {
				t.Fatalf("ParseIssueDate(%q) ok = %v, want %v", tt.date, ok, tt.wantOK)
			}
			if ok && got.Day() != tt.wantDay {
				t.Errorf("day = %d, want %d", got.Day(), tt.wantDay)
			}
		})
	}
}

func TestAgeDays(t *testing.T) {
	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.Local)

	r := ReportMetadata{IssueDate: "01/09/2025"}
	age, ok := r.AgeDays(now)
	if !ok {
		t.Fatal("expected parseable date")
	}
	if age != 9 {
		t.Errorf("age = %d, want 9", age)
	}

	bad := ReportMetadata{IssueDate: "recently"}
	if _, ok := bad.AgeDays(now); ok {
		t.Error("expected unparseable date to report false")
	}
}

func TestSummary(t *testing.T) {
	r := ReportMetadata{
		Title:        "VIC - Trien vong tich cuc",
		Source:       "SSI",
		IssueDate:    "01/09/2025",
		Recommend:    "MUA",
		TargetPrice:  85000,
		AttachedLink: "https://example.com/report.pdf",
	}

	s := r.Summary()
	if s.Title != r.Title || s.Source != r.Source || s.IssueDate != r.IssueDate {
		t.Errorf("summary metadata mismatch: %+v", s)
	}
	if s.PDFLink != r.AttachedLink {
		t.Errorf("PDFLink = %q, want %q", s.PDFLink, r.AttachedLink)
	}
	if s.TargetPrice != 85000 {
		t.Errorf("TargetPrice = %v, want 85000", s.TargetPrice)
	}
}
