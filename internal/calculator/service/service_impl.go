package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	attributedomain "github.com/printhaus/printhaus/internal/attribute/domain"
	calculatordomain "github.com/printhaus/printhaus/internal/calculator/domain"
	matrixdomain "github.com/printhaus/printhaus/internal/matrix/domain"
	productdomain "github.com/printhaus/printhaus/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	MatrixRepo    matrixdomain.Repository
	ProductRepo   productdomain.Repository
	AttributeRepo attributedomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	matrixRepo    matrixdomain.Repository
	productRepo   productdomain.Repository
	attributeRepo attributedomain.Repository
}

func New(p Params) calculatordomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("calculator.service"),
		matrixRepo:    p.MatrixRepo,
		productRepo:   p.ProductRepo,
		attributeRepo: p.AttributeRepo,
	}
}

// ForProduct assembles the pricing read model of every active matrix.
// A matrix whose stored selection fails to decode is reported in
// Failures and skipped; the rest of the product keeps working.
func (s *Service) ForProduct(ctx context.Context, productID string) (*calculatordomain.ProductPricing, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(productID))
	if err != nil {
		return nil, calculatordomain.ErrInvalidProduct
	}
	product, err := s.productRepo.FindByID(ctx, s.db, id.Int64())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, calculatordomain.ErrInvalidProduct
	}

	matrices, err := s.matrixRepo.FindByProduct(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	out := &calculatordomain.ProductPricing{
		ProductID:           id.String(),
		BreakpointsByMatrix: make(map[string][]int),
		PriceCounts:         make(map[matrixdomain.Kind]int),
	}

	baseSelection, baseOK := s.baseSelection(matrices)
	for i := range matrices {
		m := &matrices[i]
		if !m.IsActive {
			continue
		}

		own, err := matrixdomain.DecodeSelection(m.Selection)
		if err != nil {
			s.log.Warn("matrix selection failed to decode",
				zap.String("matrix_id", m.ID.String()),
				zap.Error(err),
			)
			out.Failures = append(out.Failures, calculatordomain.MatrixFailure{
				ID:    m.ID.String(),
				Error: err.Error(),
			})
			continue
		}

		effective := own
		if m.Kind == matrixdomain.Finishing && baseOK {
			effective = matrixdomain.Union(baseSelection, own)
		}

		view, err := s.buildView(ctx, m, effective)
		if err != nil {
			return nil, err
		}
		out.Matrices = append(out.Matrices, *view)
		out.BreakpointsByMatrix[view.ID] = view.Breakpoints
		out.PriceCounts[m.Kind] += countCells(view.Prices)
	}

	return out, nil
}

func (s *Service) baseSelection(matrices []matrixdomain.Matrix) (matrixdomain.Selection, bool) {
	for i := range matrices {
		if matrices[i].Kind != matrixdomain.Base {
			continue
		}
		sel, err := matrixdomain.DecodeSelection(matrices[i].Selection)
		if err != nil {
			// Reported when the base matrix itself is built.
			return matrixdomain.Selection{}, false
		}
		return sel, true
	}
	return matrixdomain.Selection{}, false
}

func (s *Service) buildView(ctx context.Context, m *matrixdomain.Matrix, effective matrixdomain.Selection) (*calculatordomain.MatrixView, error) {
	rows, err := s.matrixRepo.ListPrices(ctx, s.db, m.ID)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]map[int]string, len(rows))
	occurring := make(map[int64]map[int64]struct{})
	for _, row := range rows {
		byBreakpoint, ok := prices[row.CombinationKey]
		if !ok {
			byBreakpoint = make(map[int]string)
			prices[row.CombinationKey] = byBreakpoint
		}
		byBreakpoint[row.Breakpoint] = row.Price

		pairs, err := matrixdomain.ParseCombinationKey(row.CombinationKey)
		if err != nil {
			// Stale keys from an unfinished repair are tolerated
			// in the lookup but not offered as options.
			continue
		}
		for _, pair := range pairs {
			if occurring[pair.AttributeID] == nil {
				occurring[pair.AttributeID] = make(map[int64]struct{})
			}
			for _, termID := range pair.TermIDs {
				occurring[pair.AttributeID][termID] = struct{}{}
			}
		}
	}

	selects, err := s.buildSelects(ctx, effective, occurring)
	if err != nil {
		return nil, err
	}

	return &calculatordomain.MatrixView{
		ID:          m.ID.String(),
		Kind:        m.Kind,
		Title:       m.Title,
		Breakpoints: matrixdomain.ParseBreakpoints(m.Breakpoints),
		Selects:     selects,
		Prices:      prices,
	}, nil
}

// buildSelects walks the effective attribute order (base attributes
// first for finishing matrices) and keeps only terms occurring in the
// stored combinations.
func (s *Service) buildSelects(ctx context.Context, effective matrixdomain.Selection, occurring map[int64]map[int64]struct{}) ([]calculatordomain.Select, error) {
	if len(effective.Order) == 0 {
		return nil, nil
	}

	attributes, err := s.attributeRepo.FindByIDs(ctx, s.db, effective.Order)
	if err != nil {
		return nil, err
	}
	attributeLabels := make(map[int64]string, len(attributes))
	for _, a := range attributes {
		attributeLabels[a.ID] = a.Label
	}
	terms, err := s.attributeRepo.FindTermsByAttributeIDs(ctx, s.db, effective.Order)
	if err != nil {
		return nil, err
	}

	selects := make([]calculatordomain.Select, 0, len(effective.Order))
	for _, attributeID := range effective.Order {
		present := occurring[attributeID]
		if len(present) == 0 {
			continue
		}

		termInfo := make(map[int64]attributedomain.Term, len(terms[attributeID]))
		for _, t := range terms[attributeID] {
			termInfo[t.ID] = t
		}

		options := make([]calculatordomain.Option, 0, len(present))
		for _, termID := range effective.Terms[attributeID] {
			if _, ok := present[termID]; !ok {
				continue
			}
			opt := calculatordomain.Option{TermID: termID, Label: strconv.FormatInt(termID, 10)}
			if info, ok := termInfo[termID]; ok {
				opt.Label = info.Label
				opt.IsRecommended = info.IsRecommended
			}
			options = append(options, opt)
		}
		if len(options) == 0 {
			continue
		}

		label, ok := attributeLabels[attributeID]
		if !ok {
			label = strconv.FormatInt(attributeID, 10)
		}
		selects = append(selects, calculatordomain.Select{
			AttributeID: attributeID,
			Label:       label,
			Options:     options,
		})
	}
	return selects, nil
}

func countCells(prices map[string]map[int]string) int {
	total := 0
	for _, byBreakpoint := range prices {
		total += len(byBreakpoint)
	}
	return total
}
