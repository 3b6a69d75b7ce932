package reports

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/reports_backend/models"
)

func sampleOverview() *ProfitOverview {
	records := []*models.Order{
		productOrder(1, day(2026, time.April, 1), models.OrderTypeCash, ps(models.PaymentStatusPaid), "1000", "600"),
		productOrder(2, day(2026, time.April, 2), models.OrderTypeCredit, ps(models.PaymentStatusUnpaid), "500", "200"),
	}
	return Aggregate(records, ReportFilter{})
}

func TestProjectOverviewPrivileged(t *testing.T) {
	view := ProjectOverview(sampleOverview(), true)

	if view.Realized.TotalCost == nil || !view.Realized.TotalCost.Equal(dec("600")) {
		t.Error("privileged view must carry cost")
	}
	if view.Realized.TotalProfit == nil || !view.Realized.TotalProfit.Equal(dec("400")) {
		t.Error("privileged view must carry profit")
	}
	if view.AvgProfitPerPaidOrder == nil {
		t.Error("privileged view must carry avg profit per paid order")
	}
}

func TestProjectOverviewUnprivileged(t *testing.T) {
	view := ProjectOverview(sampleOverview(), false)

	if view.Realized.TotalCost != nil || view.Realized.TotalProfit != nil || view.Realized.ProfitMarginPct != nil {
		t.Error("unprivileged view must not carry cost, profit or margin")
	}
	if view.AvgProfitPerPaidOrder != nil {
		t.Error("unprivileged view must not carry avg profit per paid order")
	}
	// Revenue and counts stay visible for both roles.
	if !view.Realized.TotalRevenue.Equal(dec("1000")) || view.OrderCount != 2 {
		t.Errorf("unprivileged view revenue/count = %s/%d, want 1000/2", view.Realized.TotalRevenue, view.OrderCount)
	}
}

func TestUnprivilegedJSONOmitsProfitFields(t *testing.T) {
	payload, err := json.Marshal(ProjectOverview(sampleOverview(), false))
	if err != nil {
		t.Fatal(err)
	}
	body := string(payload)
	for _, field := range []string{"total_cost", "total_profit", "profit_margin_pct", "avg_profit_per_paid_order"} {
		if strings.Contains(body, field) {
			t.Errorf("unprivileged JSON must omit %q, got %s", field, body)
		}
	}
	if !strings.Contains(body, "total_revenue") {
		t.Errorf("unprivileged JSON must keep revenue, got %s", body)
	}
}

func TestProjectSeriesHidesGrowthForUnprivileged(t *testing.T) {
	from := day(2025, time.January, 1)
	until := day(2025, time.March, 31)
	series := AggregateByPeriod([]*models.Order{
		productOrder(1, day(2025, time.January, 5), models.OrderTypeCash, ps(models.PaymentStatusPaid), "100", "40"),
		productOrder(2, day(2025, time.March, 5), models.OrderTypeCash, ps(models.PaymentStatusPaid), "200", "50"),
	}, ReportFilter{DateFrom: &from, DateUntil: &until}, GranularityMonth)

	privileged := ProjectSeries(series, true)
	if privileged.GrowthPct == nil || privileged.Trend != TrendGrowing {
		t.Error("privileged series must carry growth and trend")
	}

	unprivileged := ProjectSeries(series, false)
	if unprivileged.GrowthPct != nil || unprivileged.Trend != "" {
		t.Error("unprivileged series must not carry growth or trend")
	}
	if len(unprivileged.Periods) != len(series.Periods) {
		t.Errorf("projection changed bucket count: %d != %d", len(unprivileged.Periods), len(series.Periods))
	}
}

func TestProjectGroupsKeepsOrdering(t *testing.T) {
	groups := AggregateByBranch(branchRecords(), ReportFilter{}, map[int]models.EntityRef{
		1: {Name: "Branch A", Code: "A"},
		2: {Name: "Branch B", Code: "B"},
	})
	SortGroups(groups, SortByRealizedProfit)

	views := ProjectGroups(groups, false)
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}
	if views[0].EntityName != groups[0].EntityName || views[1].EntityName != groups[1].EntityName {
		t.Error("projection must preserve group ordering")
	}
	if views[0].Realized.TotalProfit != nil {
		t.Error("unprivileged group view must not carry profit")
	}
}
