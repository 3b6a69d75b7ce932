package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the read-side record the aggregation engine consumes. One
// shape covers product purchases, service purchases and supplier
// purchases; Category selects how line items are priced.
type Order struct {
	ID            int            `gorm:"primary_key" json:"id"`
	OrderNumber   string         `gorm:"index;size:255;not null" json:"order_number"`
	Name          string         `gorm:"size:255" json:"name"`
	Category      OrderCategory  `gorm:"type:enum('Product','Service','Supplier');not null;default:Product" json:"category"`
	Type          OrderType      `gorm:"type:enum('Credit','Cash');not null;default:Cash" json:"type"`
	CurrentStatus OrderStatus    `gorm:"type:enum('Draft','Requested','Processing','Done','Cancelled');not null;default:Draft" json:"current_status"`
	PaymentStatus *PaymentStatus `gorm:"type:enum('Paid','Unpaid');default:null" json:"payment_status"`
	OrderDate     time.Time      `gorm:"index;not null" json:"order_date"`
	FulfilledDate *time.Time     `gorm:"default:null" json:"fulfilled_date"`
	BranchId      int            `gorm:"index" json:"branch_id"`
	SupplierId    int            `gorm:"index" json:"supplier_id"`
	// sum(item qty * unit rate) for product/supplier orders,
	// sum(item selling price) for service orders
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Items       []OrderItem     `json:"items"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderItem struct {
	ID           int    `gorm:"primary_key" json:"id"`
	OrderId      int    `gorm:"index;not null" json:"order_id"`
	ProductId    int    `gorm:"index" json:"product_id"`
	ServiceId    int    `gorm:"index" json:"service_id"`
	TechnicianId int    `gorm:"index" json:"technician_id"`
	CategoryId   int    `gorm:"index" json:"category_id"`
	Name         string `gorm:"size:255" json:"name"`
	// per-unit figures (product/supplier orders)
	DetailQty      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"detail_qty"`
	DetailUnitRate decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"detail_unit_rate"`
	DetailUnitCost decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"detail_unit_cost"`
	// per-line totals (service orders)
	SellingPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"selling_price"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Revenue returns the revenue side of one line. Service lines already
// carry totals; product/supplier lines carry per-unit figures.
func (item *OrderItem) Revenue(category OrderCategory) decimal.Decimal {
	if category == OrderCategoryService {
		return item.SellingPrice
	}
	return item.DetailQty.Mul(item.DetailUnitRate)
}

func (item *OrderItem) Cost(category OrderCategory) decimal.Decimal {
	if category == OrderCategoryService {
		return item.CostPrice
	}
	return item.DetailQty.Mul(item.DetailUnitCost)
}

// Revenue sums line revenue. Falls back to TotalAmount for records that
// arrive without materialized items.
func (order *Order) Revenue() decimal.Decimal {
	if len(order.Items) == 0 {
		return order.TotalAmount
	}
	total := decimal.Zero
	for i := range order.Items {
		total = total.Add(order.Items[i].Revenue(order.Category))
	}
	return total
}

func (order *Order) Cost() decimal.Decimal {
	total := decimal.Zero
	for i := range order.Items {
		total = total.Add(order.Items[i].Cost(order.Category))
	}
	return total
}
