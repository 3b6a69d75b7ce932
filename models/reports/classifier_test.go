package reports

import (
	"testing"

	"bitbucket.org/mmdatafocus/reports_backend/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		status        models.OrderStatus
		paymentStatus *models.PaymentStatus
		orderType     models.OrderType
		want          Classification
	}{
		{
			name:          "paid done cash order is realized",
			status:        models.OrderStatusDone,
			paymentStatus: ps(models.PaymentStatusPaid),
			orderType:     models.OrderTypeCash,
			want:          Classification{InScope: true, Realized: true, Credit: false},
		},
		{
			name:          "unpaid credit order is potential",
			status:        models.OrderStatusProcessing,
			paymentStatus: ps(models.PaymentStatusUnpaid),
			orderType:     models.OrderTypeCredit,
			want:          Classification{InScope: true, Realized: false, Credit: true},
		},
		{
			name:          "missing payment status counts as unpaid",
			status:        models.OrderStatusRequested,
			paymentStatus: nil,
			orderType:     models.OrderTypeCash,
			want:          Classification{InScope: true, Realized: false, Credit: false},
		},
		{
			name:          "draft order is out of scope",
			status:        models.OrderStatusDraft,
			paymentStatus: ps(models.PaymentStatusPaid),
			orderType:     models.OrderTypeCash,
			want:          Classification{InScope: false, Realized: true, Credit: false},
		},
		{
			name:          "cancelled order is out of scope",
			status:        models.OrderStatusCancelled,
			paymentStatus: ps(models.PaymentStatusUnpaid),
			orderType:     models.OrderTypeCredit,
			want:          Classification{InScope: false, Realized: false, Credit: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &models.Order{
				CurrentStatus: tt.status,
				PaymentStatus: tt.paymentStatus,
				Type:          tt.orderType,
			}
			if got := Classify(order); got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClassifyNilOrder(t *testing.T) {
	if got := Classify(nil); got != (Classification{}) {
		t.Errorf("Classify(nil) = %+v, want zero value", got)
	}
}

func TestEffectivePaymentStatus(t *testing.T) {
	empty := models.PaymentStatus("")
	tests := []struct {
		name          string
		paymentStatus *models.PaymentStatus
		want          models.PaymentStatus
	}{
		{"nil is unpaid", nil, models.PaymentStatusUnpaid},
		{"empty string is unpaid", &empty, models.PaymentStatusUnpaid},
		{"paid stays paid", ps(models.PaymentStatusPaid), models.PaymentStatusPaid},
		{"unpaid stays unpaid", ps(models.PaymentStatusUnpaid), models.PaymentStatusUnpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &models.Order{PaymentStatus: tt.paymentStatus}
			if got := EffectivePaymentStatus(order); got != tt.want {
				t.Errorf("EffectivePaymentStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}
