package models

import (
	"log"

	"bitbucket.org/mmdatafocus/reports_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Branch{}, &Supplier{}, &Technician{},
		&ProductCategory{}, &Product{}, &Service{},
		&Order{}, &OrderItem{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
