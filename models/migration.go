package models

import (
	"log"

	"bitbucket.org/andeansoft/carniceria_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&ProductCategory{}, &Product{}, &ProductBatch{},
		&Customer{},
		&Terminal{}, &CashSession{}, &CashMovement{},
		&Sale{}, &SaleDetail{},
		&Order{}, &OrderDetail{},
		&User{},
		&SaleEventRecord{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
