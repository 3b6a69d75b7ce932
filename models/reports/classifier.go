package reports

import (
	"bitbucket.org/mmdatafocus/reports_backend/models"
)

// Display labels substituted for missing entity references. Aggregates
// never carry nulls into the presentation layer.
const (
	PlaceholderNoBranch    = "No Branch"
	PlaceholderNotAssigned = "Not Assigned"
	PlaceholderNoCategory  = "No Category"
	PlaceholderNoSupplier  = "No Supplier"
	PlaceholderNoProduct   = "No Product"
	PlaceholderNoService   = "No Service"
)

// Classification tags one record for the aggregation passes. A record
// in scope contributes to exactly one of realized/potential, never both
// and never neither.
type Classification struct {
	InScope  bool
	Realized bool
	Credit   bool
}

// Classify is a pure function of the record's fields.
func Classify(order *models.Order) Classification {
	if order == nil {
		return Classification{}
	}
	return Classification{
		InScope:  order.CurrentStatus != models.OrderStatusDraft && order.CurrentStatus != models.OrderStatusCancelled,
		Realized: EffectivePaymentStatus(order) == models.PaymentStatusPaid,
		Credit:   order.Type == models.OrderTypeCredit,
	}
}

// EffectivePaymentStatus treats a missing payment status as unpaid,
// never as an error.
func EffectivePaymentStatus(order *models.Order) models.PaymentStatus {
	if order.PaymentStatus == nil || *order.PaymentStatus == "" {
		return models.PaymentStatusUnpaid
	}
	return *order.PaymentStatus
}
