package reports

import (
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/reports_backend/models"
	"github.com/shopspring/decimal"
)

func ps(s models.PaymentStatus) *models.PaymentStatus { return &s }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// productOrder builds one Done product order with a single qty-1 line.
func productOrder(id int, orderDate time.Time, orderType models.OrderType, paymentStatus *models.PaymentStatus, rate string, cost string) *models.Order {
	return &models.Order{
		ID:            id,
		OrderNumber:   fmt.Sprintf("PO-%04d", id),
		Name:          fmt.Sprintf("Order %d", id),
		Category:      models.OrderCategoryProduct,
		Type:          orderType,
		CurrentStatus: models.OrderStatusDone,
		PaymentStatus: paymentStatus,
		OrderDate:     orderDate,
		BranchId:      1,
		Items: []models.OrderItem{{
			OrderId:        id,
			ProductId:      1,
			CategoryId:     1,
			DetailQty:      dec("1"),
			DetailUnitRate: dec(rate),
			DetailUnitCost: dec(cost),
		}},
	}
}

// serviceOrder builds one Done service order with a single line assigned
// to the given technician.
func serviceOrder(id int, orderDate time.Time, orderType models.OrderType, paymentStatus *models.PaymentStatus, technicianId int, sellingPrice string, costPrice string) *models.Order {
	return &models.Order{
		ID:            id,
		OrderNumber:   fmt.Sprintf("SV-%04d", id),
		Name:          fmt.Sprintf("Service Order %d", id),
		Category:      models.OrderCategoryService,
		Type:          orderType,
		CurrentStatus: models.OrderStatusDone,
		PaymentStatus: paymentStatus,
		OrderDate:     orderDate,
		BranchId:      1,
		Items: []models.OrderItem{{
			OrderId:      id,
			ServiceId:    1,
			TechnicianId: technicianId,
			SellingPrice: dec(sellingPrice),
			CostPrice:    dec(costPrice),
		}},
	}
}

// supplierOrder builds one Done supplier purchase order.
func supplierOrder(id int, orderDate time.Time, orderType models.OrderType, paymentStatus *models.PaymentStatus, supplierId int, rate string) *models.Order {
	return &models.Order{
		ID:            id,
		OrderNumber:   fmt.Sprintf("SP-%04d", id),
		Name:          fmt.Sprintf("Supplier Order %d", id),
		Category:      models.OrderCategorySupplier,
		Type:          orderType,
		CurrentStatus: models.OrderStatusDone,
		PaymentStatus: paymentStatus,
		OrderDate:     orderDate,
		BranchId:      1,
		SupplierId:    supplierId,
		Items: []models.OrderItem{{
			OrderId:        id,
			CategoryId:     2,
			DetailQty:      dec("1"),
			DetailUnitRate: dec(rate),
			DetailUnitCost: dec(rate),
		}},
	}
}
