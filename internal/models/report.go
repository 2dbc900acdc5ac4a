// Package models defines the data types used across Arix
package models

import (
	"strconv"
	"strings"
	"time"
)

// ReportMetadata is one broker-issued analysis report as returned by the
// Simplize report list API. Immutable once fetched; lives for one request.
type ReportMetadata struct {
	ID           int64   `json:"id"`
	Ticker       string  `json:"ticker"`
	TickerName   string  `json:"tickerName"`
	ReportType   int     `json:"reportType"`
	Source       string  `json:"source"`
	IssueDate    string  `json:"issueDate"`
	Title        string  `json:"title"`
	AttachedLink string  `json:"attachedLink"`
	FileName     string  `json:"fileName"`
	TargetPrice  float64 `json:"targetPrice"`
	Recommend    string  `json:"recommend"`
}

// ParseIssueDate parses the report issue date in dd/MM/yyyy form (single
// digit day/month accepted). Returns false when the string does not split
// into exactly three numeric parts.
func (r *ReportMetadata) ParseIssueDate() (time.Time, bool) {
	parts := strings.Split(r.IssueDate, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
}

// AgeDays returns the report age in whole days relative to now.
// The second return value is false when the issue date cannot be parsed.
func (r *ReportMetadata) AgeDays(now time.Time) (int, bool) {
	issued, ok := r.ParseIssueDate()
	if !ok {
		return 0, false
	}
	return int(now.Sub(issued).Hours() / 24), true
}

// ReportSummary is the trimmed report view returned in chat responses.
type ReportSummary struct {
	Title       string  `json:"title"`
	Source      string  `json:"source"`
	IssueDate   string  `json:"issueDate"`
	Recommend   string  `json:"recommend"`
	TargetPrice float64 `json:"targetPrice,omitempty"`
	PDFLink     string  `json:"pdfLink"`
}

// Summary converts report metadata to its response view.
func (r *ReportMetadata) Summary() ReportSummary {
	return ReportSummary{
		Title:       r.Title,
		Source:      r.Source,
		IssueDate:   r.IssueDate,
		Recommend:   r.Recommend,
		TargetPrice: r.TargetPrice,
		PDFLink:     r.AttachedLink,
	}
}
