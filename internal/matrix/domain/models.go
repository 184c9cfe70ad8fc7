package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Kind string

var (
	Base      Kind = "BASE"
	Finishing Kind = "FINISHING"
)

type QuantityMode string

var (
	QuantityFixed QuantityMode = "FIXED"
	QuantityFree  QuantityMode = "FREE"
)

type QuantityStyle string

var (
	StyleDropdown QuantityStyle = "DROPDOWN"
	StyleInput    QuantityStyle = "INPUT"
)

type AreaUnit string

var (
	UnitPiece       AreaUnit = "PIECE"
	UnitSquareMeter AreaUnit = "SQUARE_METER"
)

// Matrix is one pricing grid belonging to a product. The attribute and
// term selection is persisted as interchange text for compatibility
// with the legacy system; Selection is the canonical stored form.
type Matrix struct {
	ID            snowflake.ID  `json:"id" gorm:"primaryKey"`
	ProductID     snowflake.ID  `json:"product_id" gorm:"column:product_id;not null;index"`
	Kind          Kind          `json:"kind" gorm:"type:text;not null"`
	Title         string        `json:"title" gorm:"type:text"`
	Selection     string        `json:"selection" gorm:"type:text;not null"`
	Breakpoints   string        `json:"breakpoints" gorm:"type:text;not null;default:''"`
	QuantityMode  QuantityMode  `json:"quantity_mode" gorm:"type:text;not null;default:'FIXED'"`
	QuantityStyle QuantityStyle `json:"quantity_style" gorm:"type:text;not null;default:'DROPDOWN'"`
	AreaUnit      AreaUnit      `json:"area_unit" gorm:"type:text;not null;default:'PIECE'"`
	SortOrder     int           `json:"sort_order" gorm:"not null;default:0"`
	IsActive      bool          `json:"is_active" gorm:"not null;default:true"`
	CreatedAt     time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Matrix) TableName() string { return "price_matrices" }

// Price is one cell of the combinatorial price table, identified by
// (matrix, combination key, breakpoint). The amount is stored as text
// to keep arbitrary precision.
type Price struct {
	MatrixID       snowflake.ID `json:"matrix_id" gorm:"primaryKey;autoIncrement:false"`
	CombinationKey string       `json:"combination_key" gorm:"primaryKey;type:text"`
	Breakpoint     int          `json:"breakpoint" gorm:"primaryKey;autoIncrement:false"`
	Price          string       `json:"price" gorm:"type:text;not null;default:'0'"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Price) TableName() string { return "matrix_prices" }
