// Package price derives summaries and prompt text from OHLC bar series.
package price

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/interfaces"
	"github.com/iqx-labs/arix/internal/models"
)

// Trend thresholds in percent change over the fetched window.
const (
	strongTrendPct = 2.0
	mildTrendPct   = 0.5
)

// recentBars is how many trailing sessions the prompt table shows.
const recentBars = 5

// separator divides per-symbol sections in the combined prompt text.
var separator = strings.Repeat("=", 80)

// Service implements PriceService on top of a PriceSource.
type Service struct {
	source interfaces.PriceSource
	logger *common.Logger
}

// NewService creates a new price service
func NewService(source interfaces.PriceSource, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		source: source,
		logger: logger,
	}
}

// GetPriceContext fetches and formats price data for the prompt. A fetch
// failure yields placeholder text so the analysis can proceed without
// price context.
func (s *Service) GetPriceContext(ctx context.Context, symbols []string) string {
	series, err := s.source.GetOHLC(ctx, symbols, 0)
	if err != nil {
		s.logger.Warn().Err(err).Strs("symbols", symbols).Msg("Price data fetch failed")
		return fmt.Sprintf("⚠️ Không thể lấy dữ liệu giá: %s\n\n", err.Error())
	}

	var sb strings.Builder
	sb.WriteString("# 📈 DỮ LIỆU GIÁ THỊ TRƯỜNG\n\n")
	for i := range series {
		text, err := s.FormatForPrompt(&series[i])
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", series[i].Symbol).Msg("Skipping symbol in price context")
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n" + separator + "\n\n")
	}
	return sb.String()
}

// Summarize computes the derived price summary for one series.
func (s *Service) Summarize(series *models.OHLCSeries) (*models.PriceSummary, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("no price data available for %s", series.Symbol)
	}

	latest := series.Close[series.Len()-1]
	oldest := series.Close[0]
	change := latest - oldest
	changePct := 0.0
	if oldest != 0 {
		changePct = change / oldest * 100
	}

	highest := series.High[0]
	for _, h := range series.High {
		if h > highest {
			highest = h
		}
	}
	lowest := series.Low[0]
	for _, l := range series.Low {
		if l < lowest {
			lowest = l
		}
	}

	var totalVolume float64
	for _, v := range series.Volume {
		totalVolume += v
	}
	averageVolume := 0.0
	if len(series.Volume) > 0 {
		averageVolume = totalVolume / float64(len(series.Volume))
	}

	return &models.PriceSummary{
		Symbol:             series.Symbol,
		LatestPrice:        latest,
		PriceChange:        change,
		PriceChangePercent: changePct,
		HighestPrice:       highest,
		LowestPrice:        lowest,
		TotalVolume:        totalVolume,
		AverageVolume:      averageVolume,
		PriceRange:         fmt.Sprintf("%s - %s", formatNumber(lowest), formatNumber(highest)),
		Trend:              classifyTrend(changePct),
		DataPoints:         series.Len(),
	}, nil
}

// classifyTrend maps a percent change onto the five trend labels.
func classifyTrend(changePct float64) string {
	switch {
	case changePct > strongTrendPct:
		return models.TrendStrongUp
	case changePct > mildTrendPct:
		return models.TrendMildUp
	case changePct < -strongTrendPct:
		return models.TrendStrongDown
	case changePct < -mildTrendPct:
		return models.TrendMildDown
	default:
		return models.TrendSideways
	}
}

// FormatForPrompt renders the summary plus a table of the most recent
// sessions as markdown for the completion prompt.
func (s *Service) FormatForPrompt(series *models.OHLCSeries) (string, error) {
	summary, err := s.Summarize(series)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## 📊 DỮ LIỆU GIÁ CỔ PHIẾU %s\n\n", series.Symbol)
	fmt.Fprintf(&sb, "### Tóm tắt (%d ngày giao dịch gần nhất)\n", summary.DataPoints)
	fmt.Fprintf(&sb, "- **Giá hiện tại:** %s VNĐ\n", formatNumber(summary.LatestPrice))
	fmt.Fprintf(&sb, "- **Thay đổi:** %s VNĐ (%s%%)\n", formatSigned(summary.PriceChange), formatSignedPct(summary.PriceChangePercent))
	fmt.Fprintf(&sb, "- **Xu hướng:** %s\n", summary.Trend)
	fmt.Fprintf(&sb, "- **Biên độ giá:** %s VNĐ\n", summary.PriceRange)
	fmt.Fprintf(&sb, "- **Giá cao nhất:** %s VNĐ\n", formatNumber(summary.HighestPrice))
	fmt.Fprintf(&sb, "- **Giá thấp nhất:** %s VNĐ\n", formatNumber(summary.LowestPrice))
	fmt.Fprintf(&sb, "- **Volume trung bình:** %s CP\n", formatNumber(math.Round(summary.AverageVolume)))
	fmt.Fprintf(&sb, "- **Tổng volume:** %s CP\n\n", formatNumber(math.Round(summary.TotalVolume)))

	n := series.Len()
	recent := recentBars
	if n < recent {
		recent = n
	}

	fmt.Fprintf(&sb, "### Chi tiết %d phiên giao dịch gần nhất\n", recent)
	sb.WriteString("| Ngày | Mở cửa | Cao nhất | Thấp nhất | Đóng cửa | Thay đổi | Volume |\n")
	sb.WriteString("|------|--------|----------|-----------|----------|----------|--------|\n")

	for i := n - recent; i < n; i++ {
		change := 0.0
		changePct := 0.0
		if i > 0 {
			change = series.Close[i] - series.Close[i-1]
			if series.Close[i-1] != 0 {
				changePct = change / series.Close[i-1] * 100
			}
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s (%.2f%%) | %s |\n",
			formatBarDate(series.Timestamp[i]),
			formatNumber(series.Open[i]),
			formatNumber(series.High[i]),
			formatNumber(series.Low[i]),
			formatNumber(series.Close[i]),
			formatSigned(change),
			changePct,
			formatNumber(series.Volume[i]),
		)
	}
	sb.WriteString("\n")

	return sb.String(), nil
}

// formatBarDate renders an upstream string-encoded unix timestamp as a
// dd/MM/yyyy date. Unparseable timestamps pass through verbatim.
func formatBarDate(ts string) string {
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ts
	}
	return time.Unix(sec, 0).Format("02/01/2006")
}

// formatNumber renders a value with thousands separators, dropping the
// fraction for whole numbers. Rounding to two decimals happens before the
// integer/fraction split so a fraction that rounds up carries into the
// integer digits.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	digits, frac, _ := strings.Cut(s, ".")

	var sb strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}
	out := sb.String()

	if frac != "00" {
		out += "." + frac
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}

func formatSigned(v float64) string {
	if v > 0 {
		return "+" + formatNumber(v)
	}
	return formatNumber(v)
}

func formatSignedPct(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.2f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// Ensure Service implements PriceService
var _ interfaces.PriceService = (*Service)(nil)
