package reports

import (
	"sort"

	"bitbucket.org/mmdatafocus/reports_backend/models"
	"github.com/shopspring/decimal"
)

type DebtPositionSign string

const (
	NetDebtPosition   DebtPositionSign = "Net Debt Position"
	NetCreditPosition DebtPositionSign = "Net Credit Position"
)

// RatioNotAvailable is reported textually when a ratio's denominator is
// zero, never a numeric infinity.
const RatioNotAvailable = "N/A"

// DebtOverview is the derived receivable/payable position.
type DebtOverview struct {
	Receivables            decimal.Decimal  `json:"receivables"`
	Payables               decimal.Decimal  `json:"payables"`
	NetPosition            decimal.Decimal  `json:"net_position"`
	NetPositionSign        DebtPositionSign `json:"net_position_sign"`
	DebtToReceivablesRatio string           `json:"debt_to_receivables_ratio"`
}

// DeriveDebtPosition computes net position as payables minus
// receivables: positive means the business owes more than it is owed.
func DeriveDebtPosition(receivables decimal.Decimal, payables decimal.Decimal) *DebtOverview {
	overview := &DebtOverview{
		Receivables: receivables,
		Payables:    payables,
		NetPosition: payables.Sub(receivables),
	}

	if overview.NetPosition.IsPositive() {
		overview.NetPositionSign = NetDebtPosition
	} else {
		overview.NetPositionSign = NetCreditPosition
	}

	if receivables.IsZero() {
		overview.DebtToReceivablesRatio = RatioNotAvailable
	} else {
		overview.DebtToReceivablesRatio = payables.DivRound(receivables, 2).String()
	}

	return overview
}

// CashFlowOverview: actual cash in/out from realized figures, the
// outstanding (potential) sides, and the linear projection metrics.
type CashFlowOverview struct {
	ActualCashIn           decimal.Decimal `json:"actual_cash_in"`
	ActualCashOut          decimal.Decimal `json:"actual_cash_out"`
	NetCashFlow            decimal.Decimal `json:"net_cash_flow"`
	OutstandingReceivables decimal.Decimal `json:"outstanding_receivables"`
	OutstandingPayables    decimal.Decimal `json:"outstanding_payables"`
	WorkingCapital         decimal.Decimal `json:"working_capital"`
	IfReceivablesCollected decimal.Decimal `json:"if_receivables_collected"`
	IfPayablesSettled      decimal.Decimal `json:"if_payables_settled"`
	Position               *DebtOverview   `json:"position"`
}

// AnalyzeCashFlow derives the cash-flow view from one scalar pass:
// actual cash in/out are the realized revenue/cost sums across all
// record types, outstanding sides are the potential totals.
func AnalyzeCashFlow(records []*models.Order, filter ReportFilter) *CashFlowOverview {
	overview := Aggregate(records, filter)

	cashFlow := &CashFlowOverview{
		ActualCashIn:           overview.Realized.TotalRevenue,
		ActualCashOut:          overview.Realized.TotalCost,
		OutstandingReceivables: overview.Potential.TotalRevenue,
		OutstandingPayables:    overview.Potential.TotalCost,
	}
	cashFlow.NetCashFlow = cashFlow.ActualCashIn.Sub(cashFlow.ActualCashOut)
	cashFlow.WorkingCapital = cashFlow.NetCashFlow.Add(cashFlow.OutstandingReceivables).Sub(cashFlow.OutstandingPayables)
	cashFlow.IfReceivablesCollected = cashFlow.NetCashFlow.Add(cashFlow.OutstandingReceivables)
	cashFlow.IfPayablesSettled = cashFlow.NetCashFlow.Sub(cashFlow.OutstandingPayables)
	cashFlow.Position = DeriveDebtPosition(cashFlow.OutstandingReceivables, cashFlow.OutstandingPayables)

	return cashFlow
}

// EntityDebt is the outstanding-balance view per technician or
// supplier. Outstanding counts only unpaid credit records: cash orders
// settle at transaction time, so an unpaid cash order is transient data
// entry, not debt.
type EntityDebt struct {
	EntityId          int             `json:"entity_id"`
	EntityName        string          `json:"entity_name"`
	TotalCount        int             `json:"total_count"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

// GetTechnicianDebtOverview aggregates the cost side of service lines
// per technician: paid amounts from realized orders, outstanding from
// unpaid credit orders.
func GetTechnicianDebtOverview(records []*models.Order, filter ReportFilter, names map[int]models.EntityRef) []*EntityDebt {
	debts := make(map[int]*EntityDebt)

	for _, order := range FilterOrders(records, filter) {
		if order.Category != models.OrderCategoryService {
			continue
		}
		classification := Classify(order)
		for i := range order.Items {
			item := &order.Items[i]
			debt := entityDebtFor(debts, item.TechnicianId, names, PlaceholderNotAssigned)
			debt.TotalCount++
			if classification.Realized {
				debt.PaidAmount = debt.PaidAmount.Add(item.Cost(order.Category))
			} else if classification.Credit {
				debt.OutstandingAmount = debt.OutstandingAmount.Add(item.Cost(order.Category))
			}
		}
	}

	return sortEntityDebts(debts)
}

// GetSupplierDebtOverview aggregates supplier purchase orders per
// supplier, outstanding restricted to unpaid credit orders.
func GetSupplierDebtOverview(records []*models.Order, filter ReportFilter, names map[int]models.EntityRef) []*EntityDebt {
	debts := make(map[int]*EntityDebt)

	for _, order := range FilterOrders(records, filter) {
		if order.Category != models.OrderCategorySupplier {
			continue
		}
		classification := Classify(order)
		debt := entityDebtFor(debts, order.SupplierId, names, PlaceholderNoSupplier)
		debt.TotalCount++
		if classification.Realized {
			debt.PaidAmount = debt.PaidAmount.Add(order.Revenue())
		} else if classification.Credit {
			debt.OutstandingAmount = debt.OutstandingAmount.Add(order.Revenue())
		}
	}

	return sortEntityDebts(debts)
}

func entityDebtFor(debts map[int]*EntityDebt, entityId int, names map[int]models.EntityRef, placeholder string) *EntityDebt {
	debt, ok := debts[entityId]
	if !ok {
		debt = &EntityDebt{EntityId: entityId, EntityName: placeholder}
		if ref, found := names[entityId]; found && ref.Name != "" {
			debt.EntityName = ref.Name
		}
		debts[entityId] = debt
	}
	return debt
}

func sortEntityDebts(debts map[int]*EntityDebt) []*EntityDebt {
	out := make([]*EntityDebt, 0, len(debts))
	for _, debt := range debts {
		out = append(out, debt)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OutstandingAmount.Equal(out[j].OutstandingAmount) {
			return out[i].OutstandingAmount.GreaterThan(out[j].OutstandingAmount)
		}
		return out[i].EntityId < out[j].EntityId
	})
	return out
}

// DebtLedgerEntry is one step of the running-balance ledger export.
type DebtLedgerEntry struct {
	OrderDate      string          `json:"order_date"`
	OrderNumber    string          `json:"order_number"`
	EntityName     string          `json:"entity_name"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// BuildDebtLedger folds the date-ordered unpaid credit records into a
// running outstanding balance. The accumulator is carried explicitly
// per step; there is no hidden mutable state.
func BuildDebtLedger(records []*models.Order, filter ReportFilter) []*DebtLedgerEntry {
	outstanding := make([]*models.Order, 0)
	for _, order := range FilterOrders(records, filter) {
		classification := Classify(order)
		if classification.Realized || !classification.Credit {
			continue
		}
		outstanding = append(outstanding, order)
	}

	sort.SliceStable(outstanding, func(i, j int) bool {
		if !outstanding[i].OrderDate.Equal(outstanding[j].OrderDate) {
			return outstanding[i].OrderDate.Before(outstanding[j].OrderDate)
		}
		return outstanding[i].ID < outstanding[j].ID
	})

	ledger := make([]*DebtLedgerEntry, 0, len(outstanding))
	balance := decimal.Zero
	for _, order := range outstanding {
		amount := order.Revenue()
		balance = balance.Add(amount)
		ledger = append(ledger, &DebtLedgerEntry{
			OrderDate:      order.OrderDate.Format("2006-01-02"),
			OrderNumber:    order.OrderNumber,
			EntityName:     order.Name,
			Amount:         amount,
			RunningBalance: balance,
		})
	}
	return ledger
}
