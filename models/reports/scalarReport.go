package reports

import (
	"bitbucket.org/mmdatafocus/reports_backend/models"
	"github.com/shopspring/decimal"
)

// ScalarOverview is one side (realized or potential) of the scalar
// aggregation pass. All figures are plain data; currency formatting
// belongs to the presentation layer.
type ScalarOverview struct {
	TotalCost       decimal.Decimal `json:"total_cost"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	ProfitMarginPct decimal.Decimal `json:"profit_margin_pct"`
	OrderCount      int             `json:"order_count"`
	ItemCount       int             `json:"item_count"`
}

// ProfitOverview is the full output of the scalar aggregator: realized
// figures from paid records, potential figures from unpaid records, and
// the derived rates.
type ProfitOverview struct {
	Realized              ScalarOverview  `json:"realized"`
	Potential             ScalarOverview  `json:"potential"`
	PaymentRatePct        decimal.Decimal `json:"payment_rate_pct"`
	AvgProfitPerPaidOrder decimal.Decimal `json:"avg_profit_per_paid_order"`
	OrderCount            int             `json:"order_count"`
	ItemCount             int             `json:"item_count"`
}

// ZeroProfitOverview is the well-defined result for an empty input set.
// Consumers render zero-state output unconditionally on this shape.
func ZeroProfitOverview() *ProfitOverview {
	overview := &ProfitOverview{}
	overview.finalize()
	return overview
}

// Aggregate runs the scalar pass: filter once, then sum revenue, cost
// and counts per realized/potential classification.
func Aggregate(records []*models.Order, filter ReportFilter) *ProfitOverview {
	return aggregateFiltered(FilterOrders(records, filter))
}

// aggregateFiltered assumes the filter pass already ran. The grouped
// and temporal aggregators reuse it per partition/bucket so that
// truncation and bucketing never change what is aggregated.
func aggregateFiltered(records []*models.Order) *ProfitOverview {
	overview := &ProfitOverview{}

	for _, order := range records {
		classification := Classify(order)
		side := &overview.Potential
		if classification.Realized {
			side = &overview.Realized
		}
		side.TotalRevenue = side.TotalRevenue.Add(order.Revenue())
		side.TotalCost = side.TotalCost.Add(order.Cost())
		side.OrderCount++
		side.ItemCount += len(order.Items)
	}

	overview.finalize()
	return overview
}

func (overview *ProfitOverview) finalize() {
	overview.Realized.finalize()
	overview.Potential.finalize()

	overview.OrderCount = overview.Realized.OrderCount + overview.Potential.OrderCount
	overview.ItemCount = overview.Realized.ItemCount + overview.Potential.ItemCount

	totalAmount := overview.Realized.TotalRevenue.Add(overview.Potential.TotalRevenue)
	overview.PaymentRatePct = percentOf(overview.Realized.TotalRevenue, totalAmount)
	overview.AvgProfitPerPaidOrder = averagePerOrder(overview.Realized.TotalProfit, overview.Realized.OrderCount)
}

func (scalar *ScalarOverview) finalize() {
	scalar.TotalProfit = scalar.TotalRevenue.Sub(scalar.TotalCost)
	scalar.ProfitMarginPct = percentOf(scalar.TotalProfit, scalar.TotalRevenue)
}

// percentOf rounds to 2 decimal places; a non-positive denominator
// yields 0, never NaN or a division error.
func percentOf(part decimal.Decimal, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(decimal.NewFromInt(100)).DivRound(whole, 2)
}

func averagePerOrder(total decimal.Decimal, orderCount int) decimal.Decimal {
	if orderCount == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(orderCount)), 2)
}
