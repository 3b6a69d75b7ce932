package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/reports_backend/config"
	_ "github.com/go-sql-driver/mysql"
)

// OrderQuery narrows the record set fetched from storage. The engine
// re-applies its own filter pass over whatever this returns, so a
// broader-than-requested fetch is always safe (spec'd consumers may
// also hand the engine raw, unfiltered collections).
type OrderQuery struct {
	DateFrom   *time.Time
	DateUntil  *time.Time
	BranchId   int
	SupplierId int
	Types      []OrderType
	Statuses   []OrderStatus
	ActiveOnly bool
}

// GetOrders materializes order records with their line items. Draft and
// Cancelled orders are excluded when ActiveOnly is set.
func GetOrders(ctx context.Context, query OrderQuery) ([]*Order, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Model(&Order{}).Preload("Items")

	if query.DateFrom != nil {
		dbCtx = dbCtx.Where("order_date >= ?", *query.DateFrom)
	}
	if query.DateUntil != nil {
		dbCtx = dbCtx.Where("order_date <= ?", *query.DateUntil)
	}
	if query.BranchId > 0 {
		dbCtx = dbCtx.Where("branch_id = ?", query.BranchId)
	}
	if query.SupplierId > 0 {
		dbCtx = dbCtx.Where("supplier_id = ?", query.SupplierId)
	}
	if len(query.Types) > 0 {
		dbCtx = dbCtx.Where("type IN ?", query.Types)
	}
	if len(query.Statuses) > 0 {
		dbCtx = dbCtx.Where("current_status IN ?", query.Statuses)
	}
	if query.ActiveOnly {
		dbCtx = dbCtx.Where("current_status NOT IN ?", []OrderStatus{OrderStatusDraft, OrderStatusCancelled})
	}

	var orders []*Order
	if err := dbCtx.Order("order_date ASC, id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
