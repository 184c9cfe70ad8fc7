package domain

import (
	"context"
	"errors"

	matrixdomain "github.com/printhaus/printhaus/internal/matrix/domain"
)

// Option is one selectable term inside a calculator select.
type Option struct {
	TermID        int64  `json:"term_id"`
	Label         string `json:"label"`
	IsRecommended bool   `json:"is_recommended"`
}

// Select is one attribute dropdown shown to the pricing consumer,
// restricted to the terms that actually occur in stored combinations.
type Select struct {
	AttributeID int64    `json:"attribute_id"`
	Label       string   `json:"label"`
	Options     []Option `json:"options"`
}

// MatrixView is the read model of one matrix: breakpoints, selects and
// the (combination key, breakpoint) → price lookup.
type MatrixView struct {
	ID          string                    `json:"id"`
	Kind        matrixdomain.Kind         `json:"kind"`
	Title       string                    `json:"title"`
	Breakpoints []int                     `json:"breakpoints"`
	Selects     []Select                  `json:"selects"`
	Prices      map[string]map[int]string `json:"prices"`
}

// MatrixFailure records a matrix whose stored interchange data could
// not be decoded. It never aborts the rest of the aggregation.
type MatrixFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type ProductPricing struct {
	ProductID           string                    `json:"product_id"`
	Matrices            []MatrixView              `json:"matrices"`
	BreakpointsByMatrix map[string][]int          `json:"breakpoints_by_matrix"`
	PriceCounts         map[matrixdomain.Kind]int `json:"price_counts"`
	Failures            []MatrixFailure           `json:"failures,omitempty"`
}

type Service interface {
	ForProduct(ctx context.Context, productID string) (*ProductPricing, error)
}

var (
	ErrInvalidProduct = errors.New("invalid_product")
)
