package domain

import (
	"context"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	// Update persists a new definition and repairs the price table:
	// a changed attribute-id set wipes and regenerates every cell, an
	// unchanged set additively inserts missing cells while leaving
	// existing prices untouched.
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	ListByProduct(ctx context.Context, productID string) ([]Response, error)
	// GeneratePrices bootstraps the zero-price table for a fully
	// defined matrix. Running it again is a no-op per existing cell.
	GeneratePrices(ctx context.Context, id string) (*GenerateResponse, error)
	// UpdatePrices applies a batch of cell edits atomically. A single
	// unknown cell rejects the whole batch.
	UpdatePrices(ctx context.Context, req PriceUpdateRequest) error
	Delete(ctx context.Context, id string) error
	SetVisibility(ctx context.Context, id string, active bool) (*Response, error)
}

type CreateRequest struct {
	ProductID     string           `json:"product_id"`
	Kind          Kind             `json:"kind"`
	Title         string           `json:"title"`
	Selections    []AttributeTerms `json:"selections"`
	Breakpoints   string           `json:"breakpoints"`
	QuantityMode  QuantityMode     `json:"quantity_mode"`
	QuantityStyle QuantityStyle    `json:"quantity_style"`
	AreaUnit      AreaUnit         `json:"area_unit"`
	SortOrder     int              `json:"sort_order"`
	Active        *bool            `json:"active"`
}

type UpdateRequest struct {
	ID            string           `json:"-"`
	Title         string           `json:"title"`
	Selections    []AttributeTerms `json:"selections"`
	Breakpoints   string           `json:"breakpoints"`
	QuantityMode  QuantityMode     `json:"quantity_mode"`
	QuantityStyle QuantityStyle    `json:"quantity_style"`
	AreaUnit      AreaUnit         `json:"area_unit"`
	SortOrder     int              `json:"sort_order"`
}

type PriceEdit struct {
	CombinationKey string `json:"combination_key"`
	Breakpoint     int    `json:"breakpoint"`
	Price          string `json:"price"`
}

type PriceUpdateRequest struct {
	ID    string      `json:"-"`
	Edits []PriceEdit `json:"edits"`
}

type Response struct {
	ID             string            `json:"id"`
	ProductID      string            `json:"product_id"`
	Kind           Kind              `json:"kind"`
	Title          string            `json:"title"`
	AttributeOrder []int64           `json:"attribute_order"`
	Terms          map[int64][]int64 `json:"terms"`
	Breakpoints    []int             `json:"breakpoints"`
	QuantityMode   QuantityMode      `json:"quantity_mode"`
	QuantityStyle  QuantityStyle     `json:"quantity_style"`
	AreaUnit       AreaUnit          `json:"area_unit"`
	SortOrder      int               `json:"sort_order"`
	Active         bool              `json:"active"`
	PriceRowCount  int64             `json:"price_row_count"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type GenerateResponse struct {
	ID           string `json:"id"`
	Combinations int    `json:"combinations"`
	Breakpoints  int    `json:"breakpoints"`
	Rows         int    `json:"rows"`
}
