package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/printhaus/printhaus/internal/attribute"
	attributedomain "github.com/printhaus/printhaus/internal/attribute/domain"
	"github.com/printhaus/printhaus/internal/calculator"
	calculatordomain "github.com/printhaus/printhaus/internal/calculator/domain"
	"github.com/printhaus/printhaus/internal/config"
	"github.com/printhaus/printhaus/internal/matrix"
	matrixdomain "github.com/printhaus/printhaus/internal/matrix/domain"
	"github.com/printhaus/printhaus/internal/observability"
	"github.com/printhaus/printhaus/internal/product"
	productdomain "github.com/printhaus/printhaus/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	attribute.Module,
	product.Module,
	matrix.Module,
	calculator.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *observability.HTTPMetrics, reg *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	attributeSvc  attributedomain.Service
	productSvc    productdomain.Service
	matrixSvc     matrixdomain.Service
	calculatorSvc calculatordomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	AttributeSvc  attributedomain.Service
	ProductSvc    productdomain.Service
	MatrixSvc     matrixdomain.Service
	CalculatorSvc calculatordomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		attributeSvc:  p.AttributeSvc,
		productSvc:    p.ProductSvc,
		matrixSvc:     p.MatrixSvc,
		calculatorSvc: p.CalculatorSvc,
	}
}

func registerRoutes(s *Server) {
	api := s.engine.Group("/api")

	api.POST("/products", s.CreateProduct)
	api.GET("/products", s.ListProducts)
	api.GET("/products/:id", s.GetProductByID)
	api.GET("/products/:id/matrices", s.ListProductMatrices)
	api.GET("/products/:id/calculator", s.GetProductCalculator)

	api.POST("/attributes", s.CreateAttribute)
	api.GET("/attributes", s.ListAttributes)

	api.POST("/matrices", s.CreateMatrix)
	api.GET("/matrices/:id", s.GetMatrixByID)
	api.PUT("/matrices/:id", s.UpdateMatrix)
	api.DELETE("/matrices/:id", s.DeleteMatrix)
	api.POST("/matrices/:id/generate", s.GenerateMatrixPrices)
	api.POST("/matrices/:id/prices", s.UpdateMatrixPrices)
	api.POST("/matrices/:id/visibility", s.SetMatrixVisibility)
}

func run(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Fatal("http server failed", zap.Error(err))
				}
			}()
			s.log.Info("http server started", zap.String("addr", s.cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
