package domain

import "errors"

var (
	ErrInvalidProduct      = errors.New("invalid_product")
	ErrInvalidKind         = errors.New("invalid_kind")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidSelection    = errors.New("invalid_attribute_selection")
	ErrInvalidBreakpoints  = errors.New("invalid_breakpoints")
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrUnknownPriceCell    = errors.New("unknown_price_cell")
	ErrCombinationCap      = errors.New("combination_cap_exceeded")
	ErrBaseExists          = errors.New("base_matrix_exists")
	ErrNotFound            = errors.New("not_found")
)
