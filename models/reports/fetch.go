package reports

import (
	"context"

	"bitbucket.org/mmdatafocus/reports_backend/models"
)

// FetchOrders materializes the record set for one aggregation run. The
// storage pass narrows what it can; the engine re-applies the full
// filter, so raw collections are equally acceptable input.
func FetchOrders(ctx context.Context, filter ReportFilter) ([]*models.Order, error) {
	return models.GetOrders(ctx, filter.Query())
}

func BranchNames(ctx context.Context) map[int]models.EntityRef {
	return models.GetEntityNames(ctx, &models.Branch{})
}

func SupplierNames(ctx context.Context) map[int]models.EntityRef {
	return models.GetEntityNames(ctx, &models.Supplier{})
}

func TechnicianNames(ctx context.Context) map[int]models.EntityRef {
	return models.GetEntityNames(ctx, &models.Technician{})
}

func ProductNames(ctx context.Context) map[int]models.EntityRef {
	return models.GetEntityNames(ctx, &models.Product{})
}

func ServiceNames(ctx context.Context) map[int]models.EntityRef {
	return models.GetEntityNames(ctx, &models.Service{})
}

func CategoryNames(ctx context.Context) map[int]models.EntityRef {
	return models.GetEntityNames(ctx, &models.ProductCategory{})
}
