package reports

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/reports_backend/models"
)

func TestNormalizeSwapsInvertedDates(t *testing.T) {
	from := day(2026, time.March, 1)
	until := day(2026, time.January, 1)
	filter := ReportFilter{DateFrom: &from, DateUntil: &until}

	normalized := filter.Normalize()
	if !normalized.DateFrom.Equal(until) || !normalized.DateUntil.Equal(from) {
		t.Errorf("Normalize() did not swap inverted range: from=%v until=%v", normalized.DateFrom, normalized.DateUntil)
	}
}

func TestStatusesStripsDraftAndCancelled(t *testing.T) {
	filter := ReportFilter{Status: []models.OrderStatus{
		models.OrderStatusDraft,
		models.OrderStatusDone,
		models.OrderStatusCancelled,
		models.OrderStatusProcessing,
	}}

	got := filter.Statuses()
	want := []models.OrderStatus{models.OrderStatusDone, models.OrderStatusProcessing}
	if len(got) != len(want) {
		t.Fatalf("Statuses() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Statuses()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFilterOrdersExcludesDraftAndCancelled(t *testing.T) {
	draft := productOrder(1, day(2026, time.May, 1), models.OrderTypeCash, ps(models.PaymentStatusPaid), "1000", "600")
	draft.CurrentStatus = models.OrderStatusDraft
	cancelled := productOrder(2, day(2026, time.May, 2), models.OrderTypeCash, ps(models.PaymentStatusPaid), "1000", "600")
	cancelled.CurrentStatus = models.OrderStatusCancelled
	done := productOrder(3, day(2026, time.May, 3), models.OrderTypeCash, ps(models.PaymentStatusPaid), "1000", "600")

	got := FilterOrders([]*models.Order{draft, cancelled, done, nil}, ReportFilter{})
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("FilterOrders() kept %d orders, want only order 3", len(got))
	}
}

func TestFilterOrdersOutstandingOnly(t *testing.T) {
	paid := productOrder(1, day(2026, time.May, 1), models.OrderTypeCredit, ps(models.PaymentStatusPaid), "1000", "600")
	unpaid := productOrder(2, day(2026, time.May, 2), models.OrderTypeCredit, ps(models.PaymentStatusUnpaid), "1000", "600")
	missing := productOrder(3, day(2026, time.May, 3), models.OrderTypeCredit, nil, "1000", "600")

	got := FilterOrders([]*models.Order{paid, unpaid, missing}, ReportFilter{OutstandingOnly: true})
	if len(got) != 2 {
		t.Fatalf("FilterOrders(OutstandingOnly) kept %d orders, want 2", len(got))
	}
	for _, order := range got {
		if order.ID == 1 {
			t.Errorf("FilterOrders(OutstandingOnly) kept paid order %d", order.ID)
		}
	}
}

func TestFilterOrdersDateUntilInclusiveOfWholeDay(t *testing.T) {
	until := day(2026, time.May, 10)
	lateInDay := productOrder(1, time.Date(2026, time.May, 10, 18, 30, 0, 0, time.UTC), models.OrderTypeCash, ps(models.PaymentStatusPaid), "1000", "600")
	nextDay := productOrder(2, day(2026, time.May, 11), models.OrderTypeCash, ps(models.PaymentStatusPaid), "1000", "600")

	got := FilterOrders([]*models.Order{lateInDay, nextDay}, ReportFilter{DateUntil: &until})
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("date-only upper bound should include the whole day; kept %d orders", len(got))
	}
}

func TestFilterOrdersPriceBand(t *testing.T) {
	small := productOrder(1, day(2026, time.May, 1), models.OrderTypeCash, ps(models.PaymentStatusPaid), "500", "300")
	mid := productOrder(2, day(2026, time.May, 2), models.OrderTypeCash, ps(models.PaymentStatusPaid), "1500", "900")
	large := productOrder(3, day(2026, time.May, 3), models.OrderTypeCash, ps(models.PaymentStatusPaid), "9000", "5000")

	min := dec("1000")
	max := dec("2000")
	got := FilterOrders([]*models.Order{small, mid, large}, ReportFilter{PriceMin: &min, PriceMax: &max})
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("price band kept %d orders, want only order 2", len(got))
	}
}

func TestFilterOrdersItemLevelKeys(t *testing.T) {
	order := serviceOrder(1, day(2026, time.May, 1), models.OrderTypeCash, ps(models.PaymentStatusPaid), 7, "1000", "400")
	other := serviceOrder(2, day(2026, time.May, 2), models.OrderTypeCash, ps(models.PaymentStatusPaid), 8, "1000", "400")

	got := FilterOrders([]*models.Order{order, other}, ReportFilter{TechnicianId: 7})
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("technician filter kept %d orders, want only order 1", len(got))
	}
}

func TestCacheKeyStableAndDistinct(t *testing.T) {
	from := day(2026, time.January, 1)
	a := ReportFilter{DateFrom: &from, BranchId: 1}
	b := ReportFilter{DateFrom: &from, BranchId: 1}
	c := ReportFilter{DateFrom: &from, BranchId: 2}

	if a.CacheKey() != b.CacheKey() {
		t.Error("equal filters must produce equal cache keys")
	}
	if a.CacheKey() == c.CacheKey() {
		t.Error("different filters must produce different cache keys")
	}
}

func TestCacheKeyNormalizesDateOrder(t *testing.T) {
	from := day(2026, time.March, 1)
	until := day(2026, time.January, 1)
	inverted := ReportFilter{DateFrom: &from, DateUntil: &until}
	straight := ReportFilter{DateFrom: &until, DateUntil: &from}

	if inverted.CacheKey() != straight.CacheKey() {
		t.Error("inverted and normalized ranges must share one cache key")
	}
}
