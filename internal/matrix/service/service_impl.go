package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	attributedomain "github.com/printhaus/printhaus/internal/attribute/domain"
	"github.com/printhaus/printhaus/internal/clock"
	"github.com/printhaus/printhaus/internal/config"
	matrixdomain "github.com/printhaus/printhaus/internal/matrix/domain"
	"github.com/printhaus/printhaus/internal/observability"
	productdomain "github.com/printhaus/printhaus/internal/product/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Cfg           config.Config
	GenID         *snowflake.Node
	Clock         clock.Clock
	Metrics       *observability.MatrixMetrics `optional:"true"`
	Repo          matrixdomain.Repository
	ProductRepo   productdomain.Repository
	AttributeRepo attributedomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	cap           int
	genID         *snowflake.Node
	clock         clock.Clock
	metrics       *observability.MatrixMetrics
	repo          matrixdomain.Repository
	productRepo   productdomain.Repository
	attributeRepo attributedomain.Repository
}

func New(p Params) matrixdomain.Service {
	combinationCap := p.Cfg.CombinationCap
	if combinationCap <= 0 {
		combinationCap = config.DefaultCombinationCap
	}
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("matrix.service"),
		cap:           combinationCap,
		genID:         p.GenID,
		clock:         p.Clock,
		metrics:       p.Metrics,
		repo:          p.Repo,
		productRepo:   p.ProductRepo,
		attributeRepo: p.AttributeRepo,
	}
}

func (s *Service) Create(ctx context.Context, req matrixdomain.CreateRequest) (*matrixdomain.Response, error) {
	productID, err := parseID(req.ProductID)
	if err != nil {
		return nil, matrixdomain.ErrInvalidProduct
	}
	product, err := s.productRepo.FindByID(ctx, s.db, productID.Int64())
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, matrixdomain.ErrInvalidProduct
	}

	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	if kind == matrixdomain.Base {
		existing, err := s.repo.FindBaseByProduct(ctx, s.db, productID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, matrixdomain.ErrBaseExists
		}
	}

	sel := matrixdomain.NewSelection(req.Selections)
	if err := s.validateSelection(ctx, req.Selections, sel); err != nil {
		return nil, err
	}
	encoded, err := matrixdomain.EncodeSelection(sel)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now()
	entity := &matrixdomain.Matrix{
		ID:            s.genID.Generate(),
		ProductID:     productID,
		Kind:          kind,
		Title:         strings.TrimSpace(req.Title),
		Selection:     encoded,
		Breakpoints:   matrixdomain.FormatBreakpoints(matrixdomain.ParseBreakpoints(req.Breakpoints)),
		QuantityMode:  defaultQuantityMode(req.QuantityMode),
		QuantityStyle: defaultQuantityStyle(req.QuantityStyle),
		AreaUnit:      defaultAreaUnit(req.AreaUnit),
		SortOrder:     req.SortOrder,
		IsActive:      active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// A matrix starts empty-priced; GeneratePrices is the bootstrap.
	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	return s.toResponse(ctx, entity, sel, 0)
}

// Update is the diff & repair path. The attribute-id set of the stored
// definition is compared to the submitted one: a changed set wipes and
// regenerates the price table, an unchanged set only inserts missing
// cells, and only when at least one row already exists.
func (s *Service) Update(ctx context.Context, req matrixdomain.UpdateRequest) (*matrixdomain.Response, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, matrixdomain.ErrInvalidID
	}
	entity, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, matrixdomain.ErrNotFound
	}

	prev, err := matrixdomain.DecodeSelection(entity.Selection)
	if err != nil {
		return nil, err
	}
	next := matrixdomain.NewSelection(req.Selections)
	if err := s.validateSelection(ctx, req.Selections, next); err != nil {
		return nil, err
	}
	encoded, err := matrixdomain.EncodeSelection(next)
	if err != nil {
		return nil, err
	}

	breakpoints := matrixdomain.ParseBreakpoints(req.Breakpoints)
	changed := !prev.AttributeSetEquals(next)

	entity.Title = strings.TrimSpace(req.Title)
	entity.Selection = encoded
	entity.Breakpoints = matrixdomain.FormatBreakpoints(breakpoints)
	entity.QuantityMode = defaultQuantityMode(req.QuantityMode)
	entity.QuantityStyle = defaultQuantityStyle(req.QuantityStyle)
	entity.AreaUnit = defaultAreaUnit(req.AreaUnit)
	entity.SortOrder = req.SortOrder
	entity.UpdatedAt = s.clock.Now()

	// The cap is enforced before any mutation is attempted.
	combinations, err := s.effectiveCombinations(ctx, entity, next, breakpoints)
	if err != nil {
		return nil, err
	}

	mode := "skip"
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, entity); err != nil {
			return err
		}

		if changed {
			// Every stored key was built against the old
			// attribute set; none can survive.
			mode = "regenerate"
			if err := s.repo.DeletePrices(ctx, tx, entity.ID); err != nil {
				return err
			}
			return s.insertZeroRows(ctx, tx, entity.ID, combinations, breakpoints)
		}

		if len(combinations) == 0 || len(breakpoints) == 0 {
			return nil
		}
		existing, err := s.repo.CountPrices(ctx, tx, entity.ID)
		if err != nil {
			return err
		}
		if existing == 0 {
			// Never auto-populate an empty table here; the
			// explicit GeneratePrices call is the bootstrap.
			return nil
		}
		mode = "additive"
		return s.insertZeroRows(ctx, tx, entity.ID, combinations, breakpoints)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RepairRuns.WithLabelValues(mode).Inc()
	}
	s.log.Info("matrix repaired",
		zap.String("matrix_id", entity.ID.String()),
		zap.String("mode", mode),
		zap.Bool("attribute_set_changed", changed),
		zap.Int("combinations", len(combinations)),
		zap.Int("breakpoints", len(breakpoints)),
	)

	return s.toResponse(ctx, entity, next, -1)
}

func (s *Service) Get(ctx context.Context, id string) (*matrixdomain.Response, error) {
	matrixID, err := parseID(id)
	if err != nil {
		return nil, matrixdomain.ErrInvalidID
	}
	entity, err := s.repo.FindByID(ctx, s.db, matrixID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, matrixdomain.ErrNotFound
	}
	sel, err := matrixdomain.DecodeSelection(entity.Selection)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, entity, sel, -1)
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]matrixdomain.Response, error) {
	id, err := parseID(productID)
	if err != nil {
		return nil, matrixdomain.ErrInvalidProduct
	}
	items, err := s.repo.FindByProduct(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	resp := make([]matrixdomain.Response, 0, len(items))
	for i := range items {
		sel, err := matrixdomain.DecodeSelection(items[i].Selection)
		if err != nil {
			return nil, err
		}
		r, err := s.toResponse(ctx, &items[i], sel, -1)
		if err != nil {
			return nil, err
		}
		resp = append(resp, *r)
	}
	return resp, nil
}

// GeneratePrices bootstraps the zero-price table of a fully defined
// matrix. Existing cells are skipped, so repeated calls are idempotent.
func (s *Service) GeneratePrices(ctx context.Context, id string) (*matrixdomain.GenerateResponse, error) {
	matrixID, err := parseID(id)
	if err != nil {
		return nil, matrixdomain.ErrInvalidID
	}
	entity, err := s.repo.FindByID(ctx, s.db, matrixID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, matrixdomain.ErrNotFound
	}

	sel, err := matrixdomain.DecodeSelection(entity.Selection)
	if err != nil {
		return nil, err
	}
	breakpoints := matrixdomain.ParseBreakpoints(entity.Breakpoints)
	combinations, err := s.effectiveCombinations(ctx, entity, sel, breakpoints)
	if err != nil {
		return nil, err
	}

	resp := &matrixdomain.GenerateResponse{
		ID:           entity.ID.String(),
		Combinations: len(combinations),
		Breakpoints:  len(breakpoints),
		Rows:         len(combinations) * len(breakpoints),
	}
	if resp.Rows == 0 {
		return resp, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.insertZeroRows(ctx, tx, entity.ID, combinations, breakpoints)
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdatePrices overwrites existing cells, all-or-nothing. A reference
// to a cell that does not exist rejects the entire batch; edits never
// create rows.
func (s *Service) UpdatePrices(ctx context.Context, req matrixdomain.PriceUpdateRequest) error {
	matrixID, err := parseID(req.ID)
	if err != nil {
		return matrixdomain.ErrInvalidID
	}
	entity, err := s.repo.FindByID(ctx, s.db, matrixID)
	if err != nil {
		return err
	}
	if entity == nil {
		return matrixdomain.ErrNotFound
	}

	for _, edit := range req.Edits {
		if _, err := decimal.NewFromString(strings.TrimSpace(edit.Price)); err != nil {
			return fmt.Errorf("%w: %q", matrixdomain.ErrInvalidPrice, edit.Price)
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, edit := range req.Edits {
			affected, err := s.repo.UpdatePrice(ctx, tx, entity.ID, edit.CombinationKey, edit.Breakpoint, strings.TrimSpace(edit.Price))
			if err != nil {
				return err
			}
			if affected == 0 {
				return fmt.Errorf("%w: %s/%d", matrixdomain.ErrUnknownPriceCell, edit.CombinationKey, edit.Breakpoint)
			}
		}
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	matrixID, err := parseID(id)
	if err != nil {
		return matrixdomain.ErrInvalidID
	}
	entity, err := s.repo.FindByID(ctx, s.db, matrixID)
	if err != nil {
		return err
	}
	if entity == nil {
		return matrixdomain.ErrNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeletePrices(ctx, tx, entity.ID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, entity.ID)
	})
}

func (s *Service) SetVisibility(ctx context.Context, id string, active bool) (*matrixdomain.Response, error) {
	matrixID, err := parseID(id)
	if err != nil {
		return nil, matrixdomain.ErrInvalidID
	}
	entity, err := s.repo.FindByID(ctx, s.db, matrixID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, matrixdomain.ErrNotFound
	}

	if err := s.repo.SetActive(ctx, s.db, entity.ID, active); err != nil {
		return nil, err
	}
	entity.IsActive = active

	sel, err := matrixdomain.DecodeSelection(entity.Selection)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, entity, sel, -1)
}

// effectiveCombinations expands the grid the matrix actually prices
// against: a finishing matrix is unioned with its product's base
// matrix first. Zero breakpoints or zero attributes expand to nothing.
func (s *Service) effectiveCombinations(ctx context.Context, m *matrixdomain.Matrix, own matrixdomain.Selection, breakpoints []int) ([]string, error) {
	if len(breakpoints) == 0 {
		return nil, nil
	}
	effective, err := s.effectiveSelection(ctx, m, own)
	if err != nil {
		return nil, err
	}
	if effective.IsEmpty() {
		return nil, nil
	}
	return effective.Combinations(s.cap)
}

func (s *Service) effectiveSelection(ctx context.Context, m *matrixdomain.Matrix, own matrixdomain.Selection) (matrixdomain.Selection, error) {
	if m.Kind != matrixdomain.Finishing {
		return own, nil
	}
	base, err := s.repo.FindBaseByProduct(ctx, s.db, m.ProductID)
	if err != nil {
		return matrixdomain.Selection{}, err
	}
	if base == nil || base.ID == m.ID {
		return own, nil
	}
	baseSel, err := matrixdomain.DecodeSelection(base.Selection)
	if err != nil {
		return matrixdomain.Selection{}, err
	}
	return matrixdomain.Union(baseSel, own), nil
}

func (s *Service) insertZeroRows(ctx context.Context, tx *gorm.DB, matrixID snowflake.ID, combinations []string, breakpoints []int) error {
	if len(combinations) == 0 || len(breakpoints) == 0 {
		return nil
	}
	now := s.clock.Now()
	rows := make([]matrixdomain.Price, 0, len(combinations)*len(breakpoints))
	for _, key := range combinations {
		for _, bp := range breakpoints {
			rows = append(rows, matrixdomain.Price{
				MatrixID:       matrixID,
				CombinationKey: key,
				Breakpoint:     bp,
				Price:          "0",
				UpdatedAt:      now,
			})
		}
	}
	if err := s.repo.InsertPricesSkipDuplicates(ctx, tx, rows); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.PriceRowsGenerated.Add(float64(len(rows)))
	}
	return nil
}

// validateSelection rejects term ids that do not belong to their
// attribute and attribute ids unknown to the catalog, before any
// diffing or mutation happens.
func (s *Service) validateSelection(ctx context.Context, raw []matrixdomain.AttributeTerms, sel matrixdomain.Selection) error {
	for _, pair := range raw {
		if pair.AttributeID <= 0 && len(pair.TermIDs) > 0 {
			return matrixdomain.ErrInvalidSelection
		}
	}
	if sel.IsEmpty() {
		return nil
	}

	known, err := s.attributeRepo.FindTermsByAttributeIDs(ctx, s.db, sel.Order)
	if err != nil {
		return err
	}
	for _, attributeID := range sel.Order {
		terms := known[attributeID]
		if len(terms) == 0 {
			return matrixdomain.ErrInvalidSelection
		}
		valid := make(map[int64]struct{}, len(terms))
		for _, t := range terms {
			valid[t.ID] = struct{}{}
		}
		for _, chosen := range sel.Terms[attributeID] {
			if _, ok := valid[chosen]; !ok {
				return matrixdomain.ErrInvalidSelection
			}
		}
	}
	return nil
}

// toResponse builds the API view. priceRowCount < 0 means "count now".
func (s *Service) toResponse(ctx context.Context, m *matrixdomain.Matrix, sel matrixdomain.Selection, priceRowCount int64) (*matrixdomain.Response, error) {
	if priceRowCount < 0 {
		count, err := s.repo.CountPrices(ctx, s.db, m.ID)
		if err != nil {
			return nil, err
		}
		priceRowCount = count
	}
	return &matrixdomain.Response{
		ID:             m.ID.String(),
		ProductID:      m.ProductID.String(),
		Kind:           m.Kind,
		Title:          m.Title,
		AttributeOrder: sel.Order,
		Terms:          sel.Terms,
		Breakpoints:    matrixdomain.ParseBreakpoints(m.Breakpoints),
		QuantityMode:   m.QuantityMode,
		QuantityStyle:  m.QuantityStyle,
		AreaUnit:       m.AreaUnit,
		SortOrder:      m.SortOrder,
		Active:         m.IsActive,
		PriceRowCount:  priceRowCount,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}

func parseKind(value matrixdomain.Kind) (matrixdomain.Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(string(value))) {
	case string(matrixdomain.Base):
		return matrixdomain.Base, nil
	case string(matrixdomain.Finishing):
		return matrixdomain.Finishing, nil
	default:
		return "", matrixdomain.ErrInvalidKind
	}
}

func defaultQuantityMode(value matrixdomain.QuantityMode) matrixdomain.QuantityMode {
	if strings.TrimSpace(string(value)) == "" {
		return matrixdomain.QuantityFixed
	}
	return value
}

func defaultQuantityStyle(value matrixdomain.QuantityStyle) matrixdomain.QuantityStyle {
	if strings.TrimSpace(string(value)) == "" {
		return matrixdomain.StyleDropdown
	}
	return value
}

func defaultAreaUnit(value matrixdomain.AreaUnit) matrixdomain.AreaUnit {
	if strings.TrimSpace(string(value)) == "" {
		return matrixdomain.UnitPiece
	}
	return value
}
