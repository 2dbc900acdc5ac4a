package models

import (
	"regexp"
	"strconv"
)

// AnnualQuarter is the upstream provider's sentinel quarter value marking an
// annual aggregate row rather than a calendar quarter. Preserved verbatim
// because ingested payloads and downstream consumers depend on the literal.
const AnnualQuarter = 5

// StatisticsSection is the vector-store section holding the fused
// statistics time series used for "latest" retrieval.
const StatisticsSection = "statistics-financial"

// FinancialDataPoint is one fused financial-statement fact stored in the
// vector index. Text is the pre-rendered human-readable block; Year/Quarter
// are derived from its embedded period marker.
type FinancialDataPoint struct {
	Text    string `json:"text"`
	Section string `json:"section"`
	Ticker  string `json:"ticker"`
	Year    int    `json:"year,omitempty"`
	Quarter int    `json:"quarter,omitempty"`
}

// Period identifies a reporting period. The zero Period means "no period
// parseable" and sorts after every real period.
type Period struct {
	Quarter int
	Year    int
}

// IsAnnual reports whether the period is an annual aggregate row.
func (p Period) IsAnnual() bool {
	return p.Quarter == AnnualQuarter
}

var periodPattern = regexp.MustCompile(`\(Q(\d+)/(\d+)\)`)

// ExtractPeriod pulls the (Qq/yyyy) period marker out of a data point's
// text. Text without a marker yields the zero Period.
func ExtractPeriod(text string) Period {
	m := periodPattern.FindStringSubmatch(text)
	if m == nil {
		return Period{}
	}
	quarter, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	return Period{Quarter: quarter, Year: year}
}

// NewerThan reports whether p comes before other under the newest-first
// order: year descending, then quarter descending.
func (p Period) NewerThan(other Period) bool {
	if p.Year != other.Year {
		return p.Year > other.Year
	}
	return p.Quarter > other.Quarter
}
