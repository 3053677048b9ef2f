package database

import (
	"fmt"

	"tallybook/internal/models"

	"gorm.io/gorm"
)

// Models lists the tables created from structs. Categories are migrated
// separately because one struct backs two tables.
var Models = []interface{}{
	&models.User{},
	&models.Product{},
	&models.Income{},
	&models.Expense{},
	&models.Sale{},
	&models.SaleItem{},
	&models.AuditLog{},
}

// AutoMigrate creates or updates every table from the models.
func AutoMigrate(db *gorm.DB) error {
	for _, kind := range []models.CategoryKind{models.CategoryKindIncome, models.CategoryKindExpense} {
		if err := db.Table(kind.Table()).AutoMigrate(&models.Category{}); err != nil {
			return fmt.Errorf("migrate %s: %w", kind.Table(), err)
		}
	}
	return db.AutoMigrate(Models...)
}
