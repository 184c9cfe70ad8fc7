package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	attributedomain "github.com/printhaus/printhaus/internal/attribute/domain"
)

func (s *Server) CreateAttribute(c *gin.Context) {
	var req attributedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.attributeSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListAttributes(c *gin.Context) {
	resp, err := s.attributeSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
