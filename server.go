package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/reports_backend/config"
	"bitbucket.org/mmdatafocus/reports_backend/middlewares"
	"bitbucket.org/mmdatafocus/reports_backend/models"
	"bitbucket.org/mmdatafocus/reports_backend/models/reports"
	"bitbucket.org/mmdatafocus/reports_backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultPort = "8080"

var tracer = otel.Tracer("bitbucket.org/mmdatafocus/reports_backend")

// RateLimiter implements fixed-window rate limiting backed by Redis.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on process environment")
	}

	logger := config.GetLogger()

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate report endpoints on dependency readiness.
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// Production requires an explicit allowlist via CORS_ALLOWED_ORIGINS
	// (comma-separated); non-production allows all for developer convenience.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization", "X-Correlation-Id", "X-Viewer-Role")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", "X-Correlation-Id")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional rate limiting.
	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(middlewares.RequestContextMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	rg := r.Group("/reports")
	rg.GET("/accounting-overview", accountingOverviewHandler())
	rg.GET("/profit-by-branch", profitByBranchHandler())
	rg.GET("/top-products", topProductsHandler())
	rg.GET("/top-services", topServicesHandler())
	rg.GET("/technician-debt", technicianDebtHandler())
	rg.GET("/supplier-debt", supplierDebtHandler())
	rg.GET("/profit-trend", profitTrendHandler())
	rg.GET("/cash-flow", cashFlowHandler())
	rg.GET("/debt-analysis", debtAnalysisHandler())
	rg.GET("/export/xlsx", exportExcelHandler())

	// Ops tooling: drop one cached report entry after a backfill or data
	// fix instead of waiting out the TTL.
	r.POST("/internal/ops/report-cache/evict", reportCacheEvictHandler())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	// Start listening immediately (the startup probe is TCP based).
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running migrations
	// as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("reports backend listening on port ", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// reportQuery is the query-parameter shape shared by every report
// endpoint. Every filter key is explicit request input; nothing is
// pulled from ambient server state.
type reportQuery struct {
	DateFrom        string   `form:"date_from"`
	DateUntil       string   `form:"date_until"`
	BranchId        int      `form:"branch_id" binding:"omitempty,min=0"`
	TypePo          []string `form:"type_po"`
	Status          []string `form:"status"`
	StatusPaid      []string `form:"status_paid"`
	OutstandingOnly bool     `form:"outstanding_only"`
	ProductId       int      `form:"product_id" binding:"omitempty,min=0"`
	SupplierId      int      `form:"supplier_id" binding:"omitempty,min=0"`
	CategoryId      int      `form:"category_id" binding:"omitempty,min=0"`
	TechnicianId    int      `form:"technician_id" binding:"omitempty,min=0"`
	PriceMin        string   `form:"price_min"`
	PriceMax        string   `form:"price_max"`
	Limit           int      `form:"limit" binding:"omitempty,min=1,max=100"`
	SortBy          string   `form:"sort_by"`
	Granularity     string   `form:"granularity"`
}

func (q reportQuery) toFilter() (reports.ReportFilter, error) {
	filter := reports.ReportFilter{
		BranchId:        q.BranchId,
		OutstandingOnly: q.OutstandingOnly,
		ProductId:       q.ProductId,
		SupplierId:      q.SupplierId,
		CategoryId:      q.CategoryId,
		TechnicianId:    q.TechnicianId,
	}

	if q.DateFrom != "" {
		t, err := parseDateParam(q.DateFrom)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = &t
	}
	if q.DateUntil != "" {
		t, err := parseDateParam(q.DateUntil)
		if err != nil {
			return filter, err
		}
		filter.DateUntil = &t
	}

	for _, s := range q.TypePo {
		v, err := models.ParseOrderType(s)
		if err != nil {
			return filter, err
		}
		filter.TypePo = append(filter.TypePo, v)
	}
	for _, s := range q.Status {
		v, err := models.ParseOrderStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Status = append(filter.Status, v)
	}
	for _, s := range q.StatusPaid {
		v, err := models.ParsePaymentStatus(s)
		if err != nil {
			return filter, err
		}
		filter.StatusPaid = append(filter.StatusPaid, v)
	}

	if q.PriceMin != "" {
		d, err := utils.ParseDecimal(q.PriceMin)
		if err != nil {
			return filter, err
		}
		filter.PriceMin = &d
	}
	if q.PriceMax != "" {
		d, err := utils.ParseDecimal(q.PriceMax)
		if err != nil {
			return filter, err
		}
		filter.PriceMax = &d
	}

	return filter.Normalize(), nil
}

func parseDateParam(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// bindReportQuery binds and validates the filter parameters, writing the
// 400 response itself on failure.
func bindReportQuery(c *gin.Context) (reportQuery, reports.ReportFilter, bool) {
	var q reportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return q, reports.ReportFilter{}, false
	}
	filter, err := q.toFilter()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return q, filter, false
	}
	return q, filter, true
}

func respondReportError(c *gin.Context, span trace.Span, name string, err error) {
	span.RecordError(err)
	config.LogError(config.GetLogger(), "server.go", name, "report computation", nil, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute report"})
}

func accountingOverviewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "report.accounting-overview")
		defer span.End()

		_, filter, ok := bindReportQuery(c)
		if !ok {
			return
		}

		overview, err := reports.CachedReport(ctx, "accounting-overview", filter, func() (*reports.ProfitOverview, error) {
			records, ferr := reports.FetchOrders(ctx, filter)
			if ferr != nil {
				return nil, ferr
			}
			return reports.Aggregate(records, filter), nil
		})
		if err != nil {
			respondReportError(c, span, "accountingOverviewHandler", err)
			return
		}

		isPrivileged, _ := utils.GetIsPrivilegedFromContext(ctx)
		c.JSON(http.StatusOK, reports.ProjectOverview(overview, isPrivileged))
	}
}

func profitByBranchHandler() gin.HandlerFunc {
	return groupedReportHandler("profit-by-branch", reports.AggregateByBranch, reports.BranchNames, 0)
}

func topProductsHandler() gin.HandlerFunc {
	return groupedReportHandler("top-products", reports.AggregateByProduct, reports.ProductNames, 20)
}

func topServicesHandler() gin.HandlerFunc {
	return groupedReportHandler("top-services", reports.AggregateByService, reports.ServiceNames, 20)
}

// groupedReportHandler is the shared handler shape for every grouped
// report: fetch, partition, sort descending, optionally truncate, then
// project for the viewer. defaultLimit 0 means return all groups.
func groupedReportHandler(
	name string,
	aggregate func([]*models.Order, reports.ReportFilter, map[int]models.EntityRef) []*reports.GroupedOverview,
	entityNames func(context.Context) map[int]models.EntityRef,
	defaultLimit int,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "report."+name)
		defer span.End()

		q, filter, ok := bindReportQuery(c)
		if !ok {
			return
		}

		limit := q.Limit
		if limit == 0 {
			limit = defaultLimit
		}
		sortKey := reports.GroupSortKey(q.SortBy)

		groups, err := reports.CachedReport(ctx, groupedCacheName(name, q, defaultLimit), filter, func() ([]*reports.GroupedOverview, error) {
			records, ferr := reports.FetchOrders(ctx, filter)
			if ferr != nil {
				return nil, ferr
			}
			out := aggregate(records, filter, entityNames(ctx))
			reports.SortGroups(out, sortKey)
			return reports.TopN(out, limit), nil
		})
		if err != nil {
			respondReportError(c, span, name, err)
			return
		}

		isPrivileged, _ := utils.GetIsPrivilegedFromContext(ctx)
		c.JSON(http.StatusOK, reports.ProjectGroups(groups, isPrivileged))
	}
}

// groupedCacheName builds the cache name the grouped handlers key on;
// the evict endpoint rebuilds the same name to hit the same entry.
func groupedCacheName(name string, q reportQuery, defaultLimit int) string {
	limit := q.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	return name + ":" + q.SortBy + ":" + strconv.Itoa(limit)
}

func technicianDebtHandler() gin.HandlerFunc {
	return entityDebtHandler("technician-debt", reports.GetTechnicianDebtOverview, reports.TechnicianNames)
}

func supplierDebtHandler() gin.HandlerFunc {
	return entityDebtHandler("supplier-debt", reports.GetSupplierDebtOverview, reports.SupplierNames)
}

func entityDebtHandler(
	name string,
	aggregate func([]*models.Order, reports.ReportFilter, map[int]models.EntityRef) []*reports.EntityDebt,
	entityNames func(context.Context) map[int]models.EntityRef,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "report."+name)
		defer span.End()

		_, filter, ok := bindReportQuery(c)
		if !ok {
			return
		}

		debts, err := reports.CachedReport(ctx, name, filter, func() ([]*reports.EntityDebt, error) {
			records, ferr := reports.FetchOrders(ctx, filter)
			if ferr != nil {
				return nil, ferr
			}
			return aggregate(records, filter, entityNames(ctx)), nil
		})
		if err != nil {
			respondReportError(c, span, name, err)
			return
		}

		c.JSON(http.StatusOK, debts)
	}
}

func profitTrendHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "report.profit-trend")
		defer span.End()

		q, filter, ok := bindReportQuery(c)
		if !ok {
			return
		}
		granularity := reports.ParseGranularity(q.Granularity)

		series, err := reports.CachedReport(ctx, "profit-trend:"+string(granularity), filter, func() (*reports.PeriodSeries, error) {
			records, ferr := reports.FetchOrders(ctx, filter)
			if ferr != nil {
				return nil, ferr
			}
			return reports.AggregateByPeriod(records, filter, granularity), nil
		})
		if err != nil {
			respondReportError(c, span, "profitTrendHandler", err)
			return
		}

		isPrivileged, _ := utils.GetIsPrivilegedFromContext(ctx)
		c.JSON(http.StatusOK, reports.ProjectSeries(series, isPrivileged))
	}
}

func cashFlowHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "report.cash-flow")
		defer span.End()

		_, filter, ok := bindReportQuery(c)
		if !ok {
			return
		}

		cashFlow, err := reports.CachedReport(ctx, "cash-flow", filter, func() (*reports.CashFlowOverview, error) {
			records, ferr := reports.FetchOrders(ctx, filter)
			if ferr != nil {
				return nil, ferr
			}
			return reports.AnalyzeCashFlow(records, filter), nil
		})
		if err != nil {
			respondReportError(c, span, "cashFlowHandler", err)
			return
		}

		c.JSON(http.StatusOK, cashFlow)
	}
}

func debtAnalysisHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "report.debt-analysis")
		defer span.End()

		_, filter, ok := bindReportQuery(c)
		if !ok {
			return
		}

		position, err := reports.CachedReport(ctx, "debt-analysis", filter, func() (*reports.DebtOverview, error) {
			records, ferr := reports.FetchOrders(ctx, filter)
			if ferr != nil {
				return nil, ferr
			}
			overview := reports.Aggregate(records, filter)
			return reports.DeriveDebtPosition(overview.Potential.TotalRevenue, overview.Potential.TotalCost), nil
		})
		if err != nil {
			respondReportError(c, span, "debtAnalysisHandler", err)
			return
		}

		c.JSON(http.StatusOK, position)
	}
}

// reportCacheEvictHandler rebuilds the cache name a report request
// would use (including the grouped sort/limit and trend granularity
// suffixes) and deletes that entry.
func reportCacheEvictHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isPrivileged, _ := utils.GetIsPrivilegedFromContext(c.Request.Context()); !isPrivileged {
			c.JSON(http.StatusForbidden, gin.H{"error": "cache eviction requires a privileged role"})
			return
		}

		q, filter, ok := bindReportQuery(c)
		if !ok {
			return
		}

		report := strings.TrimSpace(c.Query("report"))
		var cacheName string
		switch report {
		case "accounting-overview", "technician-debt", "supplier-debt", "cash-flow", "debt-analysis":
			cacheName = report
		case "profit-by-branch":
			cacheName = groupedCacheName(report, q, 0)
		case "top-products", "top-services":
			cacheName = groupedCacheName(report, q, 20)
		case "profit-trend":
			cacheName = report + ":" + string(reports.ParseGranularity(q.Granularity))
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown report"})
			return
		}

		if err := reports.EvictReport(cacheName, filter); err != nil {
			config.LogError(config.GetLogger(), "server.go", "reportCacheEvictHandler", "EvictReport "+cacheName, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to evict cache entry"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"evicted": cacheName})
	}
}

const excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportExcelHandler streams one report as an xlsx download. Exports
// always carry full figures, so they require the privileged role.
func exportExcelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "report.export-xlsx")
		defer span.End()

		if isPrivileged, _ := utils.GetIsPrivilegedFromContext(ctx); !isPrivileged {
			c.JSON(http.StatusForbidden, gin.H{"error": "export requires a privileged role"})
			return
		}

		q, filter, ok := bindReportQuery(c)
		if !ok {
			return
		}

		records, err := reports.FetchOrders(ctx, filter)
		if err != nil {
			respondReportError(c, span, "exportExcelHandler", err)
			return
		}

		report := strings.TrimSpace(c.Query("report"))
		f, buildErr := buildExportWorkbook(ctx, report, records, filter, reports.ParseGranularity(q.Granularity))
		if buildErr != nil {
			if errors.Is(buildErr, errUnknownReport) {
				c.JSON(http.StatusBadRequest, gin.H{"error": buildErr.Error()})
				return
			}
			respondReportError(c, span, "exportExcelHandler", buildErr)
			return
		}

		filename := "report-" + report + "-" + time.Now().Format("20060102") + ".xlsx"
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("Content-Type", excelContentType)
		if err := f.Write(c.Writer); err != nil {
			config.LogError(config.GetLogger(), "server.go", "exportExcelHandler", "write workbook", nil, err)
		}
	}
}

var errUnknownReport = errors.New("unknown report; expected one of overview, branch, products, services, trend, technician-debt, supplier-debt, debt-ledger")

func buildExportWorkbook(ctx context.Context, report string, records []*models.Order, filter reports.ReportFilter, granularity reports.Granularity) (*excelize.File, error) {
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
		return nil, errUnknownReport
	}
}

func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func NewRateLimiter(limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{limit: limit, window: window}
}

// RateLimitMiddleware enforces a per-client fixed window using the
// shared Redis connection. It fails open while Redis is unavailable so
// reports stay reachable during a cache outage.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	client := rl.client
	if client == nil {
		client = config.GetRedisDB()
	}
	if client == nil {
		c.Next()
		return
	}

	key := "ratelimit:" + c.ClientIP()

	count, err := client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.Next()
		return
	}
	if count == 1 {
		_ = client.Expire(c.Request.Context(), key, rl.window).Err()
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "rate limit exceeded; try again in " + strconv.Itoa(int(rl.window.Seconds())) + " seconds",
		})
		return
	}

	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
