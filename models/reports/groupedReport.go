package reports

import (
	"sort"

	"bitbucket.org/mmdatafocus/reports_backend/models"
	"github.com/shopspring/decimal"
)

// GroupedOverview is the scalar aggregation repeated per entity, plus
// the entity's display metadata.
type GroupedOverview struct {
	EntityId   int    `json:"entity_id"`
	EntityName string `json:"entity_name"`
	EntityCode string `json:"entity_code,omitempty"`
	ProfitOverview
}

type GroupSortKey string

const (
	SortByRealizedProfit GroupSortKey = "realized_profit"
	SortByRevenue        GroupSortKey = "revenue"
	SortByOrderCount     GroupSortKey = "orders"
	SortByOutstanding    GroupSortKey = "outstanding"
)

// AggregateByBranch partitions the filtered set by the requester's
// branch and runs the scalar pass per partition.
func AggregateByBranch(records []*models.Order, filter ReportFilter, names map[int]models.EntityRef) []*GroupedOverview {
	return aggregateByOrderKey(records, filter, names, PlaceholderNoBranch, func(order *models.Order) int {
		return order.BranchId
	})
}

// AggregateBySupplier groups supplier purchase orders by supplier.
func AggregateBySupplier(records []*models.Order, filter ReportFilter, names map[int]models.EntityRef) []*GroupedOverview {
	return aggregateByOrderKey(records, filter, names, PlaceholderNoSupplier, func(order *models.Order) int {
		if order.Category != models.OrderCategorySupplier {
			return -1
		}
		return order.SupplierId
	})
}

// AggregateByProduct groups product order lines by product.
func AggregateByProduct(records []*models.Order, filter ReportFilter, names map[int]models.EntityRef) []*GroupedOverview {
	return aggregateByItemKey(records, filter, names, PlaceholderNoProduct, models.OrderCategoryProduct, func(item *models.OrderItem) int {
		return item.ProductId
	})
}

// AggregateByService groups service order lines by service.
func AggregateByService(records []*models.Order, filter ReportFilter, names map[int]models.EntityRef) []*GroupedOverview {
	return aggregateByItemKey(records, filter, names, PlaceholderNoService, models.OrderCategoryService, func(item *models.OrderItem) int {
		return item.ServiceId
	})
}

// AggregateByTechnician groups service order lines by the technician
// assigned to each line. A line's full figures attribute to its own
// technician; there is no cross-line split.
func AggregateByTechnician(records []*models.Order, filter ReportFilter, names map[int]models.EntityRef) []*GroupedOverview {
	return aggregateByItemKey(records, filter, names, PlaceholderNotAssigned, models.OrderCategoryService, func(item *models.OrderItem) int {
		return item.TechnicianId
	})
}

// AggregateByCategory groups lines of any record type by category.
func AggregateByCategory(records []*models.Order, filter ReportFilter, names map[int]models.EntityRef) []*GroupedOverview {
	return aggregateByItemKey(records, filter, names, PlaceholderNoCategory, "", func(item *models.OrderItem) int {
		return item.CategoryId
	})
}

// SortGroups orders groups descending by the requested key with a
// stable entity-id-ascending tie-break, so output is deterministic
// across runs with equal values.
func SortGroups(groups []*GroupedOverview, key GroupSortKey) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := sortValue(groups[i], key), sortValue(groups[j], key)
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return groups[i].EntityId < groups[j].EntityId
	})
}

// TopN truncates after sorting; truncation never changes which records
// were aggregated, only how many groups are returned.
func TopN(groups []*GroupedOverview, n int) []*GroupedOverview {
	if n <= 0 || n >= len(groups) {
		return groups
	}
	return groups[:n]
}

func sortValue(group *GroupedOverview, key GroupSortKey) decimal.Decimal {
	switch key {
	case SortByRevenue:
		return group.Realized.TotalRevenue.Add(group.Potential.TotalRevenue)
	case SortByOrderCount:
		return decimal.NewFromInt(int64(group.OrderCount))
	case SortByOutstanding:
		return group.Potential.TotalRevenue
	default:
		return group.Realized.TotalProfit
	}
}

// aggregateByOrderKey partitions whole orders. Sum of group order
// counts always equals the scalar pass's order count over the same
// filtered set. A key of -1 drops the order from this view.
func aggregateByOrderKey(records []*models.Order, filter ReportFilter, names map[int]models.EntityRef, placeholder string, keyOf func(*models.Order) int) []*GroupedOverview {
	filtered := FilterOrders(records, filter)

	partitions := make(map[int][]*models.Order)
	for _, order := range filtered {
		key := keyOf(order)
		if key < 0 {
			continue
		}
		partitions[key] = append(partitions[key], order)
	}

	groups := make([]*GroupedOverview, 0, len(partitions))
	for key, partition := range partitions {
		group := &GroupedOverview{EntityId: key, ProfitOverview: *aggregateFiltered(partition)}
		attachEntityRef(group, names, placeholder)
		groups = append(groups, group)
	}

	SortGroups(groups, SortByRealizedProfit)
	return groups
}

type groupAccumulator struct {
	overview        ProfitOverview
	realizedOrders  map[int]struct{}
	potentialOrders map[int]struct{}
}

// aggregateByItemKey partitions line items. Classification comes from
// the parent order; order counts are distinct parent orders per group.
func aggregateByItemKey(records []*models.Order, filter ReportFilter, names map[int]models.EntityRef, placeholder string, category models.OrderCategory, keyOf func(*models.OrderItem) int) []*GroupedOverview {
	filtered := FilterOrders(records, filter)

	accumulators := make(map[int]*groupAccumulator)
	for _, order := range filtered {
		if category != "" && order.Category != category {
			continue
		}
		classification := Classify(order)
		for i := range order.Items {
			item := &order.Items[i]
			key := keyOf(item)
			if key < 0 {
				key = 0
			}
			acc, ok := accumulators[key]
			if !ok {
				acc = &groupAccumulator{
					realizedOrders:  make(map[int]struct{}),
					potentialOrders: make(map[int]struct{}),
				}
				accumulators[key] = acc
			}

			side := &acc.overview.Potential
			orders := acc.potentialOrders
			if classification.Realized {
				side = &acc.overview.Realized
				orders = acc.realizedOrders
			}
			side.TotalRevenue = side.TotalRevenue.Add(item.Revenue(order.Category))
			side.TotalCost = side.TotalCost.Add(item.Cost(order.Category))
			side.ItemCount++
			orders[order.ID] = struct{}{}
		}
	}

	groups := make([]*GroupedOverview, 0, len(accumulators))
	for key, acc := range accumulators {
		acc.overview.Realized.OrderCount = len(acc.realizedOrders)
		acc.overview.Potential.OrderCount = len(acc.potentialOrders)
		acc.overview.finalize()

		group := &GroupedOverview{EntityId: key, ProfitOverview: acc.overview}
		attachEntityRef(group, names, placeholder)
		groups = append(groups, group)
	}

	SortGroups(groups, SortByRealizedProfit)
	return groups
}

func attachEntityRef(group *GroupedOverview, names map[int]models.EntityRef, placeholder string) {
	if ref, ok := names[group.EntityId]; ok && ref.Name != "" {
		group.EntityName = ref.Name
		group.EntityCode = ref.Code
		return
	}
	group.EntityName = placeholder
}
