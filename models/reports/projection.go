package reports

import (
	"github.com/shopspring/decimal"
)

// View shapes for the presentation layer. The engine always computes
// full results; projection only decides which fields the viewer gets.
// Cost/profit figures are stripped for unprivileged viewers via nil
// pointers (omitted from JSON), never via a second computation path.

type ScalarOverviewView struct {
	TotalRevenue    decimal.Decimal  `json:"total_revenue"`
	TotalCost       *decimal.Decimal `json:"total_cost,omitempty"`
	TotalProfit     *decimal.Decimal `json:"total_profit,omitempty"`
	ProfitMarginPct *decimal.Decimal `json:"profit_margin_pct,omitempty"`
	OrderCount      int              `json:"order_count"`
	ItemCount       int              `json:"item_count"`
}

type ProfitOverviewView struct {
	Realized              ScalarOverviewView `json:"realized"`
	Potential             ScalarOverviewView `json:"potential"`
	PaymentRatePct        decimal.Decimal    `json:"payment_rate_pct"`
	AvgProfitPerPaidOrder *decimal.Decimal   `json:"avg_profit_per_paid_order,omitempty"`
	OrderCount            int                `json:"order_count"`
	ItemCount             int                `json:"item_count"`
}

type GroupedOverviewView struct {
	EntityId   int    `json:"entity_id"`
	EntityName string `json:"entity_name"`
	EntityCode string `json:"entity_code,omitempty"`
	ProfitOverviewView
}

type PeriodOverviewView struct {
	Period      string `json:"period"`
	PeriodStart string `json:"period_start"`
	ProfitOverviewView
}

type PeriodSeriesView struct {
	Periods   []*PeriodOverviewView `json:"periods"`
	GrowthPct *decimal.Decimal      `json:"growth_pct,omitempty"`
	Trend     TrendDirection        `json:"trend,omitempty"`
}

func ProjectScalar(scalar ScalarOverview, isPrivileged bool) ScalarOverviewView {
	view := ScalarOverviewView{
		TotalRevenue: scalar.TotalRevenue,
		OrderCount:   scalar.OrderCount,
		ItemCount:    scalar.ItemCount,
	}
	if isPrivileged {
		view.TotalCost = decimalPtr(scalar.TotalCost)
		view.TotalProfit = decimalPtr(scalar.TotalProfit)
		view.ProfitMarginPct = decimalPtr(scalar.ProfitMarginPct)
	}
	return view
}

func ProjectOverview(overview *ProfitOverview, isPrivileged bool) *ProfitOverviewView {
	if overview == nil {
		overview = ZeroProfitOverview()
	}
	view := &ProfitOverviewView{
		Realized:       ProjectScalar(overview.Realized, isPrivileged),
		Potential:      ProjectScalar(overview.Potential, isPrivileged),
		PaymentRatePct: overview.PaymentRatePct,
		OrderCount:     overview.OrderCount,
		ItemCount:      overview.ItemCount,
	}
	if isPrivileged {
		view.AvgProfitPerPaidOrder = decimalPtr(overview.AvgProfitPerPaidOrder)
	}
	return view
}

func ProjectGroups(groups []*GroupedOverview, isPrivileged bool) []*GroupedOverviewView {
	views := make([]*GroupedOverviewView, 0, len(groups))
	for _, group := range groups {
		views = append(views, &GroupedOverviewView{
			EntityId:           group.EntityId,
			EntityName:         group.EntityName,
			EntityCode:         group.EntityCode,
			ProfitOverviewView: *ProjectOverview(&group.ProfitOverview, isPrivileged),
		})
	}
	return views
}

func ProjectSeries(series *PeriodSeries, isPrivileged bool) *PeriodSeriesView {
	view := &PeriodSeriesView{Periods: make([]*PeriodOverviewView, 0, len(series.Periods))}
	for _, period := range series.Periods {
		view.Periods = append(view.Periods, &PeriodOverviewView{
			Period:             period.Period,
			PeriodStart:        period.PeriodStart.Format("2006-01-02"),
			ProfitOverviewView: *ProjectOverview(&period.ProfitOverview, isPrivileged),
		})
	}
	// Growth classifies profit movement, so it follows the profit fields.
	if isPrivileged {
		view.GrowthPct = decimalPtr(series.GrowthPct)
		view.Trend = series.Trend
	}
	return view
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
