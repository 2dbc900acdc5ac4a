package models

// OHLCSeries is one symbol's day-granularity bar series as returned by the
// IQX gap-chart endpoint. The arrays are parallel; T holds unix-second
// timestamps encoded as strings by the upstream API.
type OHLCSeries struct {
	Symbol            string    `json:"symbol"`
	Open              []float64 `json:"o"`
	High              []float64 `json:"h"`
	Low               []float64 `json:"l"`
	Close             []float64 `json:"c"`
	Volume            []float64 `json:"v"`
	Timestamp         []string  `json:"t"`
	AccumulatedVolume []float64 `json:"accumulatedVolume,omitempty"`
	AccumulatedValue  []float64 `json:"accumulatedValue,omitempty"`
}

// Len returns the number of bars in the series.
func (s *OHLCSeries) Len() int {
	return len(s.Close)
}

// Price trend labels, assigned from the percent change over the fetched
// window. Vietnamese labels match the upstream product copy.
const (
	TrendStrongUp   = "Tăng mạnh"
	TrendMildUp     = "Tăng nhẹ"
	TrendSideways   = "Sideway"
	TrendMildDown   = "Giảm nhẹ"
	TrendStrongDown = "Giảm mạnh"
)

// PriceSummary is derived from an OHLCSeries; it is never stored.
type PriceSummary struct {
	Symbol             string  `json:"symbol"`
	LatestPrice        float64 `json:"latestPrice"`
	PriceChange        float64 `json:"priceChange"`
	PriceChangePercent float64 `json:"priceChangePercent"`
	HighestPrice       float64 `json:"highestPrice"`
	LowestPrice        float64 `json:"lowestPrice"`
	TotalVolume        float64 `json:"totalVolume"`
	AverageVolume      float64 `json:"averageVolume"`
	PriceRange         string  `json:"priceRange"`
	Trend              string  `json:"trend"`
	DataPoints         int     `json:"dataPoints"`
}
