package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	attributedomain "github.com/printhaus/printhaus/internal/attribute/domain"
	calculatordomain "github.com/printhaus/printhaus/internal/calculator/domain"
	"github.com/printhaus/printhaus/internal/interchange"
	matrixdomain "github.com/printhaus/printhaus/internal/matrix/domain"
	productdomain "github.com/printhaus/printhaus/internal/product/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrConflict       = errors.New("conflict")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, matrixdomain.ErrBaseExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, interchange.ErrMalformed),
		errors.Is(err, matrixdomain.ErrCombinationCap):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, productdomain.ErrInvalidCode),
		errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidID),
		errors.Is(err, attributedomain.ErrInvalidCode),
		errors.Is(err, attributedomain.ErrInvalidLabel),
		errors.Is(err, calculatordomain.ErrInvalidProduct),
		errors.Is(err, matrixdomain.ErrInvalidProduct),
		errors.Is(err, matrixdomain.ErrInvalidKind),
		errors.Is(err, matrixdomain.ErrInvalidID),
		errors.Is(err, matrixdomain.ErrInvalidSelection),
		errors.Is(err, matrixdomain.ErrInvalidBreakpoints),
		errors.Is(err, matrixdomain.ErrInvalidPrice),
		errors.Is(err, matrixdomain.ErrUnknownPriceCell):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, attributedomain.ErrNotFound),
		errors.Is(err, matrixdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
