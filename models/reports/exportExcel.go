package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

func setHeaderRow(f *excelize.File, headings ...string) {
	col := 'A'
	for _, h := range headings {
		f.SetCellValue(exportSheet, string(col)+"1", h)
		col++
	}
}

func setRow(f *excelize.File, rowNo int, values ...interface{}) {
	col := 'A'
	for _, value := range values {
		f.SetCellValue(exportSheet, string(col)+fmt.Sprint(rowNo), value)
		col++
	}
}

// BuildProfitOverviewWorkbook renders one scalar overview as a two-row
// (realized/potential) sheet.
func BuildProfitOverviewWorkbook(overview *ProfitOverview) (*excelize.File, error) {
	if overview == nil {
		overview = ZeroProfitOverview()
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet(exportSheet); err != nil {
		return nil, err
	}

	setHeaderRow(f, "Side", "Revenue", "Cost", "Profit", "MarginPct", "Orders", "Items")
	setRow(f, 2, "Realized",
		overview.Realized.TotalRevenue.InexactFloat64(),
		overview.Realized.TotalCost.InexactFloat64(),
		overview.Realized.TotalProfit.InexactFloat64(),
		overview.Realized.ProfitMarginPct.InexactFloat64(),
		overview.Realized.OrderCount,
		overview.Realized.ItemCount)
	setRow(f, 3, "Potential",
		overview.Potential.TotalRevenue.InexactFloat64(),
		overview.Potential.TotalCost.InexactFloat64(),
		overview.Potential.TotalProfit.InexactFloat64(),
		overview.Potential.ProfitMarginPct.InexactFloat64(),
		overview.Potential.OrderCount,
		overview.Potential.ItemCount)
	setRow(f, 5, "PaymentRatePct", overview.PaymentRatePct.InexactFloat64())
	setRow(f, 6, "AvgProfitPerPaidOrder", overview.AvgProfitPerPaidOrder.InexactFloat64())

	return f, nil
}

// BuildGroupedWorkbook renders one row per entity group.
func BuildGroupedWorkbook(entityHeading string, groups []*GroupedOverview) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(exportSheet); err != nil {
		return nil, err
	}

	setHeaderRow(f, entityHeading, "Code", "RealizedRevenue", "RealizedCost", "RealizedProfit", "MarginPct", "PotentialRevenue", "Orders")
	for i, group := range groups {
		setRow(f, i+2,
			group.EntityName,
			group.EntityCode,
			group.Realized.TotalRevenue.InexactFloat64(),
			group.Realized.TotalCost.InexactFloat64(),
			group.Realized.TotalProfit.InexactFloat64(),
			group.Realized.ProfitMarginPct.InexactFloat64(),
			group.Potential.TotalRevenue.InexactFloat64(),
			group.OrderCount)
	}

	return f, nil
}

// BuildPeriodWorkbook renders the trend series, one row per bucket.
func BuildPeriodWorkbook(series *PeriodSeries) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(exportSheet); err != nil {
		return nil, err
	}

	setHeaderRow(f, "Period", "RealizedRevenue", "RealizedCost", "RealizedProfit", "PotentialRevenue", "Orders")
	rowNo := 2
	for _, period := range series.Periods {
		setRow(f, rowNo,
			period.Period,
			period.Realized.TotalRevenue.InexactFloat64(),
			period.Realized.TotalCost.InexactFloat64(),
			period.Realized.TotalProfit.InexactFloat64(),
			period.Potential.TotalRevenue.InexactFloat64(),
			period.OrderCount)
		rowNo++
	}
	setRow(f, rowNo+1, "GrowthPct", series.GrowthPct.InexactFloat64())
	setRow(f, rowNo+2, "Trend", string(series.Trend))

	return f, nil
}

// BuildDebtLedgerWorkbook renders the running-balance ledger.
func BuildDebtLedgerWorkbook(entries []*DebtLedgerEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(exportSheet); err != nil {
		return nil, err
	}

	setHeaderRow(f, "Date", "OrderNumber", "Name", "Amount", "RunningBalance")
	for i, entry := range entries {
		setRow(f, i+2,
			entry.OrderDate,
			entry.OrderNumber,
			entry.EntityName,
			entry.Amount.InexactFloat64(),
			entry.RunningBalance.InexactFloat64())
	}

	return f, nil
}

// BuildEntityDebtWorkbook renders technician/supplier debt overviews.
func BuildEntityDebtWorkbook(entityHeading string, debts []*EntityDebt) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(exportSheet); err != nil {
		return nil, err
	}

	setHeaderRow(f, entityHeading, "Count", "PaidAmount", "OutstandingAmount")
	for i, debt := range debts {
		setRow(f, i+2,
			debt.EntityName,
			debt.TotalCount,
			debt.PaidAmount.InexactFloat64(),
			debt.OutstandingAmount.InexactFloat64())
	}

	return f, nil
}
