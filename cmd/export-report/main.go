package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/reports_backend/config"
	"bitbucket.org/mmdatafocus/reports_backend/models"
	"bitbucket.org/mmdatafocus/reports_backend/models/reports"
	"bitbucket.org/mmdatafocus/reports_backend/utils"
	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
)

// export-report renders one report as an xlsx file from the command
// line, for scheduled jobs and ad-hoc extracts that should not go
// through the HTTP layer.
func main() {
	report := flag.String("report", "overview", "Report to export: overview, branch, products, services, trend, technician-debt, supplier-debt, debt-ledger")
	from := flag.String("from", "", "Optional: start date (YYYY-MM-DD)")
	to := flag.String("to", "", "Optional: end date (YYYY-MM-DD)")
	lastMonths := flag.Int("last-months", 0, "Optional: window of the last n calendar months (overrides -from/-to)")
	thisMonth := flag.Bool("this-month", false, "Optional: window of the current calendar month (overrides -from/-to)")
	branchID := flag.Int("branch-id", 0, "Optional: restrict to one branch")
	granularity := flag.String("granularity", "month", "Trend granularity: month, quarter, year")
	out := flag.String("out", "", "Output path (default report-<name>-<date>.xlsx)")
	flag.Parse()

	_ = godotenv.Load()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	filter := reports.ReportFilter{BranchId: *branchID}
	switch {
	case *lastMonths > 0:
		start, end := utils.GetLastMonthsRange(*lastMonths)
		filter.DateFrom, filter.DateUntil = &start, &end
	case *thisMonth:
		start, end := utils.GetThisMonthRange()
		filter.DateFrom, filter.DateUntil = &start, &end
	}
	if filter.DateFrom == nil && strings.TrimSpace(*from) != "" {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(*from))
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -from date: %v\n", err)
			os.Exit(1)
		}
		filter.DateFrom = &t
	}
	if filter.DateUntil == nil && strings.TrimSpace(*to) != "" {
		t, err := time.Parse("2006-01-02", strings.TrimSpace(*to))
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -to date: %v\n", err)
			os.Exit(1)
		}
		filter.DateUntil = &t
	}
	filter = filter.Normalize()

	records, err := reports.FetchOrders(ctx, filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch orders: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Fetched %d orders\n", len(records))

	f, err := buildWorkbook(ctx, strings.TrimSpace(*report), records, filter, reports.ParseGranularity(*granularity))
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	path := strings.TrimSpace(*out)
	if path == "" {
		path = "report-" + strings.TrimSpace(*report) + "-" + time.Now().Format("20060102") + ".xlsx"
	}
	if err := f.SaveAs(path); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save workbook: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}

func buildWorkbook(ctx context.Context, report string, records []*models.Order, filter reports.ReportFilter, granularity reports.Granularity) (*excelize.File, error) {
	switch report {
	case "overview":
		return reports.BuildProfitOverviewWorkbook(reports.Aggregate(records, filter))
	case "branch":
		groups := reports.AggregateByBranch(records, filter, reports.BranchNames(ctx))
		reports.SortGroups(groups, reports.SortByRealizedProfit)
		return reports.BuildGroupedWorkbook("Branch", groups)
	case "products":
		groups := reports.AggregateByProduct(records, filter, reports.ProductNames(ctx))
		reports.SortGroups(groups, reports.SortByRealizedProfit)
		return reports.BuildGroupedWorkbook("Product", groups)
	case "services":
		groups := reports.AggregateByService(records, filter, reports.ServiceNames(ctx))
		reports.SortGroups(groups, reports.SortByRealizedProfit)
		return reports.BuildGroupedWorkbook("Service", groups)
	case "trend":
		return reports.BuildPeriodWorkbook(reports.AggregateByPeriod(records, filter, granularity))
	case "technician-debt":
		return reports.BuildEntityDebtWorkbook("Technician", reports.GetTechnicianDebtOverview(records, filter, reports.TechnicianNames(ctx)))
	case "supplier-debt":
		return reports.BuildEntityDebtWorkbook("Supplier", reports.GetSupplierDebtOverview(records, filter, reports.SupplierNames(ctx)))
	case "debt-ledger":
		return reports.BuildDebtLedgerWorkbook(reports.BuildDebtLedger(records, filter))
	default:
		return nil, fmt.Errorf("unknown report %q", report)
	}
}
