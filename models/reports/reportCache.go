package reports

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/reports_backend/config"
	"bitbucket.org/mmdatafocus/reports_backend/utils"
	"github.com/bsm/redislock"
)

func reportCacheEnabled() bool {
	v := strings.TrimSpace(os.Getenv("ENABLE_REPORT_CACHE"))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	user, _ := utils.GetUserNameFromContext(ctx)
	log.Printf("slow_report name=%s ms=%d correlation_id=%s user=%s extra=%v", name, d.Milliseconds(), cid, user, extra)
}

func cacheKeyFor(name string, filter ReportFilter) string {
	return "report:" + name + ":" + filter.CacheKey()
}

// EvictReport drops one cached report entry, for ops tooling to call
// after a backfill or data fix instead of waiting out the TTL.
func EvictReport(name string, filter ReportFilter) error {
	return config.RemoveRedisKey(cacheKeyFor(name, filter))
}

// CachedReport wraps a report computation with the short-lived redis
// cache keyed by (report name, filter hash). The redis lock is a
// best-effort stampede guard: correctness never depends on it, and any
// cache/lock failure degrades to recomputation.
func CachedReport[T any](ctx context.Context, name string, filter ReportFilter, compute func() (T, error)) (T, error) {
	started := time.Now()
	defer logSlowReport(ctx, name, started, nil)

	if !reportCacheEnabled() {
		return compute()
	}

	key := cacheKeyFor(name, filter)

	var cached T
	if hit, err := config.GetRedisObject(key, &cached); err == nil && hit {
		return cached, nil
	}

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "lock:"+key, 5*time.Second, &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 3),
		})
		if err == nil {
			defer lock.Release(ctx)
			// Another request may have filled the cache while we waited.
			if hit, gerr := config.GetRedisObject(key, &cached); gerr == nil && hit {
				return cached, nil
			}
		}
	}

	result, err := compute()
	if err != nil {
		return result, err
	}
	if serr := config.SetRedisObject(key, result, reportCacheTTL()); serr != nil {
		config.LogError(config.GetLogger(), "reportCache.go", "CachedReport", "SetRedisObject "+key, nil, serr)
	}
	return result, nil
}
