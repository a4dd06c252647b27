package tenant

import "gorm.io/gorm"

// Scope restricts a query to rows owned by one company.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}

// SharedScope also admits global rows (company_id NULL), used by policy
// tables where a platform default can be overridden per company.
func SharedScope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id IS NULL OR company_id = ?", companyID)
	}
}
