package repository

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Decimal stores a decimal.Decimal exactly: numeric on Postgres, text on
// SQLite, whose numeric affinity would otherwise coerce values to REAL.
type Decimal struct {
	decimal.Decimal
}

// NewDecimal wraps d for persistence.
func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{Decimal: d}
}

// GormDBDataType implements schema.GormDataTypeInterface per dialect.
func (Decimal) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "numeric"
	case "sqlite":
		return "text"
	default:
		return "decimal(38,18)"
	}
}
