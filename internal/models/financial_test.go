package models

import "testing"

func TestExtractPeriod(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantQuarter int
		wantYear    int
	}{
		{"quarterly", "statistics-financial (Q2/2025)\nroe: 18.5", 2, 2025},
		{"annual sentinel", "statistics-financial (Q5/2024)\nrevenue: 1000", 5, 2024},
		{"no marker", "statistics-financial\nrevenue: 1000", 0, 0},
		{"marker mid text", "doanh thu tăng (Q3/2023) so với cùng kỳ", 3, 2023},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ExtractPeriod(tt.text)
			if p.Quarter != tt.wantQuarter || p.Year != tt.wantYear {
				t.Errorf("ExtractPeriod = Q%d/%d, want Q%d/%d", p.Quarter, p.Year, tt.wantQuarter, tt.wantYear)
			}
		})
	}
}

func TestPeriodIsAnnual(t *testing.T) {
	if !(Period{Quarter: AnnualQuarter, Year: 2024}).IsAnnual() {
		t.Error("Q5 should be annual")
	}
	if (Period{Quarter: 4, Year: 2024}).IsAnnual() {
		t.Error("Q4 should not be annual")
	}
}

func TestPeriodNewerThan(t *testing.T) {
	tests := []struct {
		name string
		a, b Period
		want bool
	}{
		{"later year wins", Period{Quarter: 1, Year: 2025}, Period{Quarter: 5, Year: 2024}, true},
		{"same year later quarter wins", Period{Quarter: 3, Year: 2025}, Period{Quarter: 2, Year: 2025}, true},
		{"annual beats quarters in same year", Period{Quarter: 5, Year: 2025}, Period{Quarter: 4, Year: 2025}, true},
		{"zero period sorts last", Period{Quarter: 1, Year: 2020}, Period{}, true},
		{"equal is not newer", Period{Quarter: 2, Year: 2025}, Period{Quarter: 2, Year: 2025}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.NewerThan(tt.b); got != tt.want {
				t.Errorf("NewerThan = %v, want %v", got, tt.want)
			}
		})
	}
}
