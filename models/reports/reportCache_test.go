package reports

import (
	"strings"
	"testing"
)

func TestCacheKeyForEmbedsNameAndFilterHash(t *testing.T) {
	filter := ReportFilter{BranchId: 3}

	key := cacheKeyFor("cash-flow", filter)
	if !strings.HasPrefix(key, "report:cash-flow:") {
		t.Errorf("cache key = %q, want report:cash-flow: prefix", key)
	}
	if !strings.HasSuffix(key, filter.CacheKey()) {
		t.Errorf("cache key %q must end with the filter hash", key)
	}

	other := cacheKeyFor("cash-flow", ReportFilter{BranchId: 4})
	if key == other {
		t.Error("different filters must key different cache entries")
	}
}

// Eviction is best-effort like the rest of the cache: with no redis
// connection it is a no-op, never an error.
func TestEvictReportWithoutRedis(t *testing.T) {
	if err := EvictReport("cash-flow", ReportFilter{}); err != nil {
		t.Errorf("EvictReport without redis = %v, want nil", err)
	}
}
