package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	attributedomain "github.com/printhaus/printhaus/internal/attribute/domain"
	"github.com/printhaus/printhaus/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  attributedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  attributedomain.Repository
}

func New(p Params) attributedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("attribute.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req attributedomain.CreateRequest) (*attributedomain.Response, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, attributedomain.ErrInvalidCode
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, attributedomain.ErrInvalidLabel
	}
	for _, t := range req.Terms {
		if strings.TrimSpace(t.Label) == "" {
			return nil, attributedomain.ErrInvalidLabel
		}
	}

	now := s.clock.Now()
	entity := &attributedomain.Attribute{
		ID:        s.genID.Generate().Int64(),
		Code:      code,
		Label:     label,
		SortOrder: req.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, entity); err != nil {
			return err
		}
		for _, t := range req.Terms {
			term := &attributedomain.Term{
				ID:            s.genID.Generate().Int64(),
				AttributeID:   entity.ID,
				Label:         strings.TrimSpace(t.Label),
				IsRecommended: t.IsRecommended,
				SortOrder:     t.SortOrder,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.repo.InsertTerm(ctx, tx, term); err != nil {
				return err
			}
			entity.Terms = append(entity.Terms, *term)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toResponse(entity), nil
}

func (s *Service) List(ctx context.Context) ([]attributedomain.Response, error) {
	items, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	resp := make([]attributedomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}
	return resp, nil
}

func toResponse(a *attributedomain.Attribute) *attributedomain.Response {
	terms := make([]attributedomain.TermResponse, 0, len(a.Terms))
	for _, t := range a.Terms {
		terms = append(terms, attributedomain.TermResponse{
			ID:            t.ID,
			Label:         t.Label,
			IsRecommended: t.IsRecommended,
			SortOrder:     t.SortOrder,
		})
	}
	return &attributedomain.Response{
		ID:        a.ID,
		Code:      a.Code,
		Label:     a.Label,
		SortOrder: a.SortOrder,
		Terms:     terms,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
