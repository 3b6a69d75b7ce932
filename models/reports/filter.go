package reports

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/reports_backend/models"
	"github.com/shopspring/decimal"
)

// ReportFilter is the explicit filter value threaded through every
// aggregation call. There is no ambient/session filter state: the web
// layer owns persisting a user's last choice and passes it in here.
type ReportFilter struct {
	DateFrom        *time.Time             `json:"date_from"`
	DateUntil       *time.Time             `json:"date_until"`
	BranchId        int                    `json:"branch_id"`
	TypePo          []models.OrderType     `json:"type_po"`
	Status          []models.OrderStatus   `json:"status"`
	StatusPaid      []models.PaymentStatus `json:"status_paid"`
	OutstandingOnly bool                   `json:"outstanding_only"`
	ProductId       int                    `json:"product_id"`
	SupplierId      int                    `json:"supplier_id"`
	CategoryId      int                    `json:"category_id"`
	TechnicianId    int                    `json:"technician_id"`
	PriceMin        *decimal.Decimal       `json:"price_min"`
	PriceMax        *decimal.Decimal       `json:"price_max"`
}

// Normalize repairs malformed input instead of rejecting it: an
// inverted date range is swapped so reports stay resilient.
func (filter ReportFilter) Normalize() ReportFilter {
	if filter.DateFrom != nil && filter.DateUntil != nil && filter.DateFrom.After(*filter.DateUntil) {
		filter.DateFrom, filter.DateUntil = filter.DateUntil, filter.DateFrom
	}
	return filter
}

// CacheKey is a stable digest of the filter, used to key the short-lived
// report cache.
func (filter ReportFilter) CacheKey() string {
	normalized := filter.Normalize()
	payload, err := json.Marshal(normalized)
	if err != nil {
		// Marshal of this shape cannot realistically fail; fall back to
		// an uncacheable key.
		return fmt.Sprintf("nocache-%d", time.Now().UnixNano())
	}
	sum := sha1.Sum(payload)
	return hex.EncodeToString(sum[:])
}

// Query translates the filter into the storage-side narrowing pass.
// Item-level keys (product, technician, category) and the price band
// stay engine-side: the engine re-applies the full filter anyway.
func (filter ReportFilter) Query() models.OrderQuery {
	normalized := filter.Normalize()
	return models.OrderQuery{
		DateFrom:   normalized.DateFrom,
		DateUntil:  normalized.DateUntil,
		BranchId:   normalized.BranchId,
		SupplierId: normalized.SupplierId,
		Types:      normalized.TypePo,
		Statuses:   normalized.Statuses(),
		ActiveOnly: true,
	}
}

// Statuses returns the requested workflow statuses with Draft and
// Cancelled stripped; those never participate regardless of input.
func (filter ReportFilter) Statuses() []models.OrderStatus {
	statuses := make([]models.OrderStatus, 0, len(filter.Status))
	for _, s := range filter.Status {
		if s == models.OrderStatusDraft || s == models.OrderStatusCancelled {
			continue
		}
		statuses = append(statuses, s)
	}
	return statuses
}

// Matches reports whether an in-scope order passes every filter key.
func (filter ReportFilter) Matches(order *models.Order) bool {
	if filter.DateFrom != nil && order.OrderDate.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateUntil != nil && order.OrderDate.After(endOfDay(*filter.DateUntil)) {
		return false
	}
	if filter.BranchId > 0 && order.BranchId != filter.BranchId {
		return false
	}
	if filter.SupplierId > 0 && order.SupplierId != filter.SupplierId {
		return false
	}
	if len(filter.TypePo) > 0 && !containsOrderType(filter.TypePo, order.Type) {
		return false
	}
	if statuses := filter.Statuses(); len(statuses) > 0 && !containsOrderStatus(statuses, order.CurrentStatus) {
		return false
	}
	if len(filter.StatusPaid) > 0 && !containsPaymentStatus(filter.StatusPaid, EffectivePaymentStatus(order)) {
		return false
	}
	if filter.OutstandingOnly && EffectivePaymentStatus(order) == models.PaymentStatusPaid {
		return false
	}
	if filter.ProductId > 0 && !anyItem(order, func(item *models.OrderItem) bool { return item.ProductId == filter.ProductId }) {
		return false
	}
	if filter.CategoryId > 0 && !anyItem(order, func(item *models.OrderItem) bool { return item.CategoryId == filter.CategoryId }) {
		return false
	}
	if filter.TechnicianId > 0 && !anyItem(order, func(item *models.OrderItem) bool { return item.TechnicianId == filter.TechnicianId }) {
		return false
	}
	if filter.PriceMin != nil && order.Revenue().LessThan(*filter.PriceMin) {
		return false
	}
	if filter.PriceMax != nil && order.Revenue().GreaterThan(*filter.PriceMax) {
		return false
	}
	return true
}

// FilterOrders selects the in-scope record set every aggregation pass
// consumes. Input records are never mutated.
func FilterOrders(records []*models.Order, filter ReportFilter) []*models.Order {
	normalized := filter.Normalize()
	filtered := make([]*models.Order, 0, len(records))
	for _, order := range records {
		if order == nil {
			continue
		}
		if !Classify(order).InScope {
			continue
		}
		if !normalized.Matches(order) {
			continue
		}
		filtered = append(filtered, order)
	}
	return filtered
}

// A date-only upper bound is inclusive of the whole day.
func endOfDay(t time.Time) time.Time {
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 {
		return t
	}
	return t.Add(time.Hour*23 + time.Minute*59 + time.Second*59)
}

func containsOrderType(set []models.OrderType, v models.OrderType) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsOrderStatus(set []models.OrderStatus, v models.OrderStatus) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsPaymentStatus(set []models.PaymentStatus, v models.PaymentStatus) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func anyItem(order *models.Order, match func(*models.OrderItem) bool) bool {
	for i := range order.Items {
		if match(&order.Items[i]) {
			return true
		}
	}
	return false
}
