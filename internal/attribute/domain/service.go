package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
}

type CreateRequest struct {
	Code      string          `json:"code"`
	Label     string          `json:"label"`
	SortOrder int             `json:"sort_order"`
	Terms     []TermRequest   `json:"terms"`
}

type TermRequest struct {
	Label         string `json:"label"`
	IsRecommended bool   `json:"is_recommended"`
	SortOrder     int    `json:"sort_order"`
}

type Response struct {
	ID        int64          `json:"id"`
	Code      string         `json:"code"`
	Label     string         `json:"label"`
	SortOrder int            `json:"sort_order"`
	Terms     []TermResponse `json:"terms"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type TermResponse struct {
	ID            int64  `json:"id"`
	Label         string `json:"label"`
	IsRecommended bool   `json:"is_recommended"`
	SortOrder     int    `json:"sort_order"`
}

var (
	ErrInvalidCode  = errors.New("invalid_code")
	ErrInvalidLabel = errors.New("invalid_label")
	ErrNotFound     = errors.New("not_found")
)
