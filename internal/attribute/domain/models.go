package domain

import "time"

// Attribute is a selectable product dimension (size, paper, lamination).
type Attribute struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"type:text;not null;uniqueIndex"`
	Label     string    `json:"label" gorm:"type:text;not null"`
	SortOrder int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Terms []Term `json:"terms,omitempty" gorm:"foreignKey:AttributeID"`
}

func (Attribute) TableName() string { return "attributes" }

// Term is one concrete value of an attribute.
type Term struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	AttributeID   int64     `json:"attribute_id" gorm:"not null;index"`
	Label         string    `json:"label" gorm:"type:text;not null"`
	IsRecommended bool      `json:"is_recommended" gorm:"not null;default:false"`
	SortOrder     int       `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Term) TableName() string { return "attribute_terms" }
