package models

import "errors"

type OrderType string

const (
	OrderTypeCredit OrderType = "Credit"
	OrderTypeCash   OrderType = "Cash"
)

func ParseOrderType(s string) (OrderType, error) {
	switch s {
	case "Credit":
		return OrderTypeCredit, nil
	case "Cash":
		return OrderTypeCash, nil
	default:
		return "", errors.New("invalid order type")
	}
}

type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "Paid"
	PaymentStatusUnpaid PaymentStatus = "Unpaid"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch s {
	case "Paid":
		return PaymentStatusPaid, nil
	case "Unpaid":
		return PaymentStatusUnpaid, nil
	default:
		return "", errors.New("invalid payment status")
	}
}

type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "Draft"
	OrderStatusRequested  OrderStatus = "Requested"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusDone       OrderStatus = "Done"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	orderStatuses := map[string]OrderStatus{
		"Draft":      OrderStatusDraft,
		"Requested":  OrderStatusRequested,
		"Processing": OrderStatusProcessing,
		"Done":       OrderStatusDone,
		"Cancelled":  OrderStatusCancelled,
	}
	status, ok := orderStatuses[s]
	if !ok {
		return "", errors.New("invalid order status")
	}
	return status, nil
}

// OrderCategory tells the engine how to read an order's line items:
// product and supplier orders carry per-unit figures, service orders
// carry per-line totals.
type OrderCategory string

const (
	OrderCategoryProduct  OrderCategory = "Product"
	OrderCategoryService  OrderCategory = "Service"
	OrderCategorySupplier OrderCategory = "Supplier"
)

func ParseOrderCategory(s string) (OrderCategory, error) {
	switch s {
	case "Product":
		return OrderCategoryProduct, nil
	case "Service":
		return OrderCategoryService, nil
	case "Supplier":
		return OrderCategorySupplier, nil
	default:
		return "", errors.New("invalid order category")
	}
}
