package reports

import (
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/reports_backend/models"
	"bitbucket.org/mmdatafocus/reports_backend/utils"
	"github.com/shopspring/decimal"
)

type Granularity string

const (
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

// ParseGranularity falls back to month for unknown input; reports stay
// resilient rather than rejecting.
func ParseGranularity(s string) Granularity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(GranularityQuarter):
		return GranularityQuarter
	case string(GranularityYear):
		return GranularityYear
	default:
		return GranularityMonth
	}
}

type TrendDirection string

const (
	TrendGrowing   TrendDirection = "Growing"
	TrendDeclining TrendDirection = "Declining"
	TrendStable    TrendDirection = "Stable"
)

// PeriodOverview is the scalar aggregation of one calendar bucket.
type PeriodOverview struct {
	Period      string    `json:"period"`
	PeriodStart time.Time `json:"period_start"`
	ProfitOverview
}

// PeriodSeries is a chronologically ordered trend series with a
// first-vs-last growth classification over realized profit.
type PeriodSeries struct {
	Periods   []*PeriodOverview `json:"periods"`
	GrowthPct decimal.Decimal   `json:"growth_pct"`
	Trend     TrendDirection    `json:"trend"`
}

// Default window sizes when the filter carries no explicit date range,
// ending at the current period inclusive.
func defaultPeriodCount(granularity Granularity) int {
	switch granularity {
	case GranularityQuarter:
		return 4
	case GranularityYear:
		return 3
	default:
		return 12
	}
}

// AggregateByPeriod buckets the filtered set by calendar period of the
// order date. Empty buckets still appear zero-filled so charts get a
// continuous period axis.
func AggregateByPeriod(records []*models.Order, filter ReportFilter, granularity Granularity) *PeriodSeries {
	normalized := filter.Normalize()

	windowEnd := time.Now()
	if normalized.DateUntil != nil {
		windowEnd = *normalized.DateUntil
	}
	windowStart := stepPeriod(startOfPeriod(windowEnd, granularity), granularity, -(defaultPeriodCount(granularity) - 1))
	if normalized.DateFrom != nil {
		windowStart = *normalized.DateFrom
	}

	// Build the continuous bucket axis first.
	series := &PeriodSeries{Periods: []*PeriodOverview{}}
	bucketIndex := make(map[time.Time]int)
	buckets := [][]*models.Order{}
	for cursor := startOfPeriod(windowStart, granularity); !cursor.After(startOfPeriod(windowEnd, granularity)); cursor = stepPeriod(cursor, granularity, 1) {
		bucketIndex[cursor] = len(buckets)
		buckets = append(buckets, nil)
		series.Periods = append(series.Periods, &PeriodOverview{
			Period:      periodLabel(cursor, granularity),
			PeriodStart: cursor,
		})
	}

	for _, order := range FilterOrders(records, normalized) {
		idx, ok := bucketIndex[startOfPeriod(order.OrderDate, granularity)]
		if !ok {
			continue
		}
		buckets[idx] = append(buckets[idx], order)
	}

	for i, bucket := range buckets {
		series.Periods[i].ProfitOverview = *aggregateFiltered(bucket)
	}

	series.GrowthPct, series.Trend = classifyGrowth(series.Periods)
	return series
}

// classifyGrowth compares the first and last buckets' realized profit:
// pct_change = (last - first) / |first| * 100 when first != 0, else 0.
// The Growing/Declining/Stable dead-band sits at exactly 0.
func classifyGrowth(periods []*PeriodOverview) (decimal.Decimal, TrendDirection) {
	if len(periods) == 0 {
		return decimal.Zero, TrendStable
	}

	first := periods[0].Realized.TotalProfit
	last := periods[len(periods)-1].Realized.TotalProfit

	pct := decimal.Zero
	if !first.IsZero() {
		pct = last.Sub(first).Mul(decimal.NewFromInt(100)).DivRound(first.Abs(), 2)
	}

	switch {
	case pct.IsPositive():
		return pct, TrendGrowing
	case pct.IsNegative():
		return pct, TrendDeclining
	default:
		return pct, TrendStable
	}
}

func startOfPeriod(t time.Time, granularity Granularity) time.Time {
	switch granularity {
	case GranularityQuarter:
		return utils.StartOfQuarter(t.UTC())
	case GranularityYear:
		return utils.StartOfYear(t.UTC())
	default:
		return utils.StartOfMonth(t.UTC())
	}
}

func stepPeriod(t time.Time, granularity Granularity, n int) time.Time {
	switch granularity {
	case GranularityQuarter:
		return t.AddDate(0, 3*n, 0)
	case GranularityYear:
		return t.AddDate(n, 0, 0)
	default:
		return t.AddDate(0, n, 0)
	}
}

func periodLabel(start time.Time, granularity Granularity) string {
	switch granularity {
	case GranularityQuarter:
		quarter := (int(start.Month())-1)/3 + 1
		return fmt.Sprintf("Q%d %d", quarter, start.Year())
	case GranularityYear:
		return fmt.Sprint(start.Year())
	default:
		return start.Format("Jan 2006")
	}
}
