package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/reports_backend/config"
)

// Grouping dimensions referenced by orders and line items. The engine
// only reads these for display metadata; it never owns their lifecycle.

type Branch struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Code      string    `gorm:"size:50" json:"code"`
	Address   string    `gorm:"type:text" json:"address"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Supplier struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Code      string    `gorm:"size:50" json:"code"`
	Phone     string    `gorm:"size:20" json:"phone"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Technician struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Code      string    `gorm:"size:50" json:"code"`
	BranchId  int       `gorm:"index" json:"branch_id"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type ProductCategory struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Code      string    `gorm:"size:50" json:"code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Product struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Name       string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Sku        string    `gorm:"size:100" json:"sku"`
	CategoryId int       `gorm:"index" json:"category_id"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Service struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Name       string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Code       string    `gorm:"size:50" json:"code"`
	CategoryId int       `gorm:"index" json:"category_id"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// EntityRef is the display metadata attached to grouped aggregates.
type EntityRef struct {
	Name string
	Code string
}

// entityCodeColumn maps each entity model to the column backing its
// display code. Products key their code off the SKU column.
func entityCodeColumn(model interface{}) string {
	if _, ok := model.(*Product); ok {
		return "sku AS code"
	}
	return "code"
}

// GetEntityNames loads id => display metadata for one entity table.
// Lookup failures degrade to an empty map; the aggregation layer
// substitutes placeholder labels for anything unresolved.
func GetEntityNames(ctx context.Context, model interface{}) map[int]EntityRef {
	db := config.GetDB()
	if db == nil {
		return map[int]EntityRef{}
	}

	type row struct {
		ID   int
		Name string
		Code string
	}
	var rows []row
	if err := db.WithContext(ctx).Model(model).Select("id", "name", entityCodeColumn(model)).Find(&rows).Error; err != nil {
		config.LogError(config.GetLogger(), "entities.go", "GetEntityNames", "find", nil, err)
		return map[int]EntityRef{}
	}

	refs := make(map[int]EntityRef, len(rows))
	for _, r := range rows {
		refs[r.ID] = EntityRef{Name: r.Name, Code: r.Code}
	}
	return refs
}
