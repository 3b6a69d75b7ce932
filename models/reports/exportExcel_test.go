package reports

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/reports_backend/models"
)

func TestBuildProfitOverviewWorkbook(t *testing.T) {
	overview := Aggregate([]*models.Order{
		productOrder(1, day(2026, time.April, 1), models.OrderTypeCash, ps(models.PaymentStatusPaid), "1000", "600"),
	}, ReportFilter{})

	f, err := BuildProfitOverviewWorkbook(overview)
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := f.GetCellValue(exportSheet, "A2"); got != "Realized" {
		t.Errorf("A2 = %q, want Realized", got)
	}
	if got, _ := f.GetCellValue(exportSheet, "B2"); got != "1000" {
		t.Errorf("B2 = %q, want 1000", got)
	}
	if got, _ := f.GetCellValue(exportSheet, "A3"); got != "Potential" {
		t.Errorf("A3 = %q, want Potential", got)
	}
}

func TestBuildProfitOverviewWorkbookNilInput(t *testing.T) {
	f, err := BuildProfitOverviewWorkbook(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := f.GetCellValue(exportSheet, "B2"); got != "0" {
		t.Errorf("nil overview B2 = %q, want 0", got)
	}
}

func TestBuildGroupedWorkbook(t *testing.T) {
	groups := AggregateByBranch(branchRecords(), ReportFilter{}, map[int]models.EntityRef{
		1: {Name: "Branch A", Code: "A"},
		2: {Name: "Branch B", Code: "B"},
	})
	SortGroups(groups, SortByRealizedProfit)

	f, err := BuildGroupedWorkbook("Branch", groups)
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := f.GetCellValue(exportSheet, "A1"); got != "Branch" {
		t.Errorf("heading = %q, want Branch", got)
	}
	if got, _ := f.GetCellValue(exportSheet, "A2"); got != "Branch B" {
		t.Errorf("first data row = %q, want Branch B", got)
	}
	if got, _ := f.GetCellValue(exportSheet, "A3"); got != "Branch A" {
		t.Errorf("second data row = %q, want Branch A", got)
	}
}

func TestBuildDebtLedgerWorkbook(t *testing.T) {
	ledger := BuildDebtLedger([]*models.Order{
		productOrder(1, day(2026, time.April, 1), models.OrderTypeCredit, ps(models.PaymentStatusUnpaid), "100", "0"),
		productOrder(2, day(2026, time.April, 2), models.OrderTypeCredit, ps(models.PaymentStatusUnpaid), "200", "0"),
	}, ReportFilter{})

	f, err := BuildDebtLedgerWorkbook(ledger)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := f.GetCellValue(exportSheet, "E3"); got != "300" {
		t.Errorf("final running balance cell = %q, want 300", got)
	}
}
