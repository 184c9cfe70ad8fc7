package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	attributedomain "github.com/printhaus/printhaus/internal/attribute/domain"
	attributerepository "github.com/printhaus/printhaus/internal/attribute/repository"
	"github.com/printhaus/printhaus/internal/clock"
	"github.com/printhaus/printhaus/internal/config"
	matrixdomain "github.com/printhaus/printhaus/internal/matrix/domain"
	matrixrepository "github.com/printhaus/printhaus/internal/matrix/repository"
	productdomain "github.com/printhaus/printhaus/internal/product/domain"
	productrepository "github.com/printhaus/printhaus/internal/product/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (matrixdomain.Service, *gorm.DB) {
	t.Helper()
	return newTestServiceWithCap(t, 1000)
}

func newTestServiceWithCap(t *testing.T, combinationCap int) (matrixdomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&productdomain.Product{},
		&attributedomain.Attribute{},
		&attributedomain.Term{},
		&matrixdomain.Matrix{},
		&matrixdomain.Price{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		Cfg:           config.Config{CombinationCap: combinationCap},
		GenID:         node,
		Clock:         clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:          matrixrepository.Provide(),
		ProductRepo:   productrepository.Provide(),
		AttributeRepo: attributerepository.Provide(),
	})
	return svc, db
}

// seedCatalog installs one product and the size/paper/lamination
// attributes used across the tests.
func seedCatalog(t *testing.T, db *gorm.DB) string {
	t.Helper()

	require.NoError(t, db.Create(&productdomain.Product{ID: 9001, Code: "flyers", Name: "Flyers"}).Error)
	require.NoError(t, db.Create(&attributedomain.Attribute{ID: 12, Code: "size", Label: "Size"}).Error)
	require.NoError(t, db.Create(&attributedomain.Attribute{ID: 13, Code: "paper", Label: "Paper"}).Error)
	require.NoError(t, db.Create(&attributedomain.Attribute{ID: 14, Code: "lamination", Label: "Lamination"}).Error)
	terms := []attributedomain.Term{
		{ID: 101, AttributeID: 12, Label: "A6"},
		{ID: 102, AttributeID: 12, Label: "A5"},
		{ID: 106, AttributeID: 12, Label: "A4"},
		{ID: 103, AttributeID: 13, Label: "Matte 170g"},
		{ID: 104, AttributeID: 14, Label: "Gloss"},
		{ID: 105, AttributeID: 14, Label: "None"},
	}
	require.NoError(t, db.Create(&terms).Error)
	return "9001"
}

func countPriceRows(t *testing.T, db *gorm.DB, id string) int64 {
	t.Helper()
	matrixID, err := snowflake.ParseString(id)
	require.NoError(t, err)
	var n int64
	require.NoError(t, db.Model(&matrixdomain.Price{}).Where("matrix_id = ?", matrixID).Count(&n).Error)
	return n
}

func priceAt(t *testing.T, db *gorm.DB, id, key string, breakpoint int) string {
	t.Helper()
	matrixID, err := snowflake.ParseString(id)
	require.NoError(t, err)
	var row matrixdomain.Price
	err = db.First(&row, "matrix_id = ? AND combination_key = ? AND breakpoint = ?", matrixID, key, breakpoint).Error
	require.NoError(t, err)
	return row.Price
}

func TestCreateAndGeneratePrices(t *testing.T) {
	svc, db := newTestService(t)
	productID := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      "base",
		Title:     "Flyer pricing",
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101, 102}},
			{AttributeID: 13, TermIDs: []int64{103}},
		},
		Breakpoints: "100|200",
	})
	require.NoError(t, err)
	assert.Equal(t, matrixdomain.Base, created.Kind)
	assert.Equal(t, []int64{12, 13}, created.AttributeOrder)
	assert.Equal(t, []int{100, 200}, created.Breakpoints)
	assert.Equal(t, matrixdomain.QuantityFixed, created.QuantityMode)
	assert.True(t, created.Active)

	// Creation never populates the price table.
	assert.EqualValues(t, 0, created.PriceRowCount)
	assert.EqualValues(t, 0, countPriceRows(t, db, created.ID))

	gen, err := svc.GeneratePrices(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.Combinations)
	assert.Equal(t, 2, gen.Breakpoints)
	assert.Equal(t, 4, gen.Rows)

	assert.EqualValues(t, 4, countPriceRows(t, db, created.ID))
	for _, key := range []string{"12:101-13:103", "12:102-13:103"} {
		for _, bp := range []int{100, 200} {
			assert.Equal(t, "0", priceAt(t, db, created.ID, key, bp))
		}
	}
}

func TestGeneratePricesIsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	productID := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Base,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101, 102}},
		},
		Breakpoints: "100",
	})
	require.NoError(t, err)

	_, err = svc.GeneratePrices(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePrices(ctx, matrixdomain.PriceUpdateRequest{
		ID:    created.ID,
		Edits: []matrixdomain.PriceEdit{{CombinationKey: "12:101", Breakpoint: 100, Price: "4.50"}},
	}))

	// A second run skips every existing cell, edited ones included.
	gen, err := svc.GeneratePrices(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.Rows)
	assert.EqualValues(t, 2, countPriceRows(t, db, created.ID))
	assert.Equal(t, "4.50", priceAt(t, db, created.ID, "12:101", 100))
}

func TestCreateSecondBaseRejected(t *testing.T) {
	svc, db := newTestService(t)
	productID := seedCatalog(t, db)
	ctx := context.Background()

	req := matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Base,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101}},
		},
		Breakpoints: "100",
	}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, matrixdomain.ErrBaseExists)

	// A finishing matrix for the same product is still fine.
	req.Kind = matrixdomain.Finishing
	req.Selections = []matrixdomain.AttributeTerms{{AttributeID: 14, TermIDs: []int64{104}}}
	_, err = svc.Create(ctx, req)
	assert.NoError(t, err)
}

func TestCreateValidatesSelection(t *testing.T) {
	svc, db := newTestService(t)
	productID := seedCatalog(t, db)
	ctx := context.Background()

	// Term 103 belongs to the paper attribute, not size.
	_, err := svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Base,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{103}},
		},
		Breakpoints: "100",
	})
	assert.ErrorIs(t, err, matrixdomain.ErrInvalidSelection)

	_, err = svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Base,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 99, TermIDs: []int64{101}},
		},
		Breakpoints: "100",
	})
	assert.ErrorIs(t, err, matrixdomain.ErrInvalidSelection)

	_, err = svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID:   "424242",
		Kind:        matrixdomain.Base,
		Breakpoints: "100",
	})
	assert.ErrorIs(t, err, matrixdomain.ErrInvalidProduct)

	_, err = svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      "SOMETHING",
	})
	assert.ErrorIs(t, err, matrixdomain.ErrInvalidKind)
}

func TestUpdateUnchangedAttributeSetPreservesPrices(t *testing.T) {
	svc, db := newTestService(t)
	productID := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Base,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101, 102}},
			{AttributeID: 13, TermIDs: []int64{103}},
		},
		Breakpoints: "100|200",
	})
	require.NoError(t, err)
	_, err = svc.GeneratePrices(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePrices(ctx, matrixdomain.PriceUpdateRequest{
		ID:    created.ID,
		Edits: []matrixdomain.PriceEdit{{CombinationKey: "12:101-13:103", Breakpoint: 100, Price: "4.50"}},
	}))

	// Same attribute set, one extra size term.
	updated, err := svc.Update(ctx, matrixdomain.UpdateRequest{
		ID: created.ID,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101, 102, 106}},
			{AttributeID: 13, TermIDs: []int64{103}},
		},
		Breakpoints: "100|200",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 6, updated.PriceRowCount)

	assert.Equal(t, "4.50", priceAt(t, db, created.ID, "12:101-13:103", 100))
	assert.Equal(t, "0", priceAt(t, db, created.ID, "12:101-13:103", 200))
	assert.Equal(t, "0", priceAt(t, db, created.ID, "12:106-13:103", 100))
	assert.Equal(t, "0", priceAt(t, db, created.ID, "12:106-13:103", 200))
}

func TestUpdateChangedAttributeSetRegenerates(t *testing.T) {
	svc, db := newTestService(t)
	productID := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Base,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101, 102}},
			{AttributeID: 13, TermIDs: []int64{103}},
		},
		Breakpoints: "100|200",
	})
	require.NoError(t, err)
	_, err = svc.GeneratePrices(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, svc.UpdatePrices(ctx, matrixdomain.PriceUpdateRequest{
		ID:    created.ID,
		Edits: []matrixdomain.PriceEdit{{CombinationKey: "12:101-13:103", Breakpoint: 100, Price: "4.50"}},
	}))

	// Lamination joins the set: every stored key is stale.
	updated, err := svc.Update(ctx, matrixdomain.UpdateRequest{
		ID: created.ID,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101, 102}},
			{AttributeID: 13, TermIDs: []int64{103}},
			{AttributeID: 14, TermIDs: []int64{104}},
		},
		Breakpoints: "100|200",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 4, updated.PriceRowCount)

	matrixID, err := snowflake.ParseString(created.ID)
	require.NoError(t, err)
	var rows []matrixdomain.Price
	require.NoError(t, db.Where("matrix_id = ?", matrixID).Find(&rows).Error)
	require.Len(t, rows, 4)
	for _, row := range rows {
		assert.Equal(t, "0", row.Price, "row %s/%d must be reset", row.CombinationKey, row.Breakpoint)
	}
}

func TestUpdateNeverBootstrapsEmptyTable(t *testing.T) {
	svc, db := newTestService(t)
	productID := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Base,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101}},
		},
		Breakpoints: "100",
	})
	require.NoError(t, err)

	// Unchanged attribute set against an empty table: GeneratePrices
	// is the only bootstrap.
	updated, err := svc.Update(ctx, matrixdomain.UpdateRequest{
		ID: created.ID,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101, 102}},
		},
		Breakpoints: "100|200",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, updated.PriceRowCount)
	assert.EqualValues(t, 0, countPriceRows(t, db, created.ID))
}

func TestUpdatePricesIsAtomic(t *testing.T) {
	svc, db := newTestService(t)
	productID := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Base,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101, 102}},
		},
		Breakpoints: "100",
	})
	require.NoError(t, err)
	_, err = svc.GeneratePrices(ctx, created.ID)
	require.NoError(t, err)

	err = svc.UpdatePrices(ctx, matrixdomain.PriceUpdateRequest{
		ID: created.ID,
		Edits: []matrixdomain.PriceEdit{
			{CombinationKey: "12:101", Breakpoint: 100, Price: "4.50"},
			{CombinationKey: "12:999", Breakpoint: 100, Price: "9.00"},
		},
	})
	assert.ErrorIs(t, err, matrixdomain.ErrUnknownPriceCell)

	// The valid edit in the rejected batch must not stick.
	assert.Equal(t, "0", priceAt(t, db, created.ID, "12:101", 100))
}

func TestUpdatePricesRejectsMalformedAmount(t *testing.T) {
	svc, db := newTestService(t)
	productID := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Base,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101}},
		},
		Breakpoints: "100",
	})
	require.NoError(t, err)
	_, err = svc.GeneratePrices(ctx, created.ID)
	require.NoError(t, err)

	err = svc.UpdatePrices(ctx, matrixdomain.PriceUpdateRequest{
		ID:    created.ID,
		Edits: []matrixdomain.PriceEdit{{CombinationKey: "12:101", Breakpoint: 100, Price: "4,50"}},
	})
	assert.ErrorIs(t, err, matrixdomain.ErrInvalidPrice)
	assert.Equal(t, "0", priceAt(t, db, created.ID, "12:101", 100))
}

func TestFinishingMatrixUnionsBaseSelection(t *testing.T) {
	svc, db := newTestService(t)
	productID := seedCatalog(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Base,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101}},
		},
		Breakpoints: "100",
	})
	require.NoError(t, err)

	finishing, err := svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Finishing,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 14, TermIDs: []int64{104, 105}},
		},
		Breakpoints: "100|200",
	})
	require.NoError(t, err)

	gen, err := svc.GeneratePrices(ctx, finishing.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.Combinations)
	assert.Equal(t, 4, gen.Rows)

	// Base attributes lead the combination keys.
	assert.Equal(t, "0", priceAt(t, db, finishing.ID, "12:101-14:104", 100))
	assert.Equal(t, "0", priceAt(t, db, finishing.ID, "12:101-14:105", 200))
}

func TestCombinationCapBlocksGeneration(t *testing.T) {
	svc, db := newTestServiceWithCap(t, 2)
	productID := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Base,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101, 102, 106}},
		},
		Breakpoints: "100",
	})
	require.NoError(t, err)

	_, err = svc.GeneratePrices(ctx, created.ID)
	assert.ErrorIs(t, err, matrixdomain.ErrCombinationCap)
	assert.EqualValues(t, 0, countPriceRows(t, db, created.ID))

	// Update fails the same way before touching the stored definition.
	_, err = svc.Update(ctx, matrixdomain.UpdateRequest{
		ID: created.ID,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101, 102, 106}},
		},
		Breakpoints: "100",
	})
	assert.ErrorIs(t, err, matrixdomain.ErrCombinationCap)
}

func TestDeleteRemovesMatrixAndPrices(t *testing.T) {
	svc, db := newTestService(t)
	productID := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Base,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101, 102}},
		},
		Breakpoints: "100",
	})
	require.NoError(t, err)
	_, err = svc.GeneratePrices(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, matrixdomain.ErrNotFound)
	assert.EqualValues(t, 0, countPriceRows(t, db, created.ID))
}

func TestSetVisibilityLeavesPricesAlone(t *testing.T) {
	svc, db := newTestService(t)
	productID := seedCatalog(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, matrixdomain.CreateRequest{
		ProductID: productID,
		Kind:      matrixdomain.Base,
		Selections: []matrixdomain.AttributeTerms{
			{AttributeID: 12, TermIDs: []int64{101}},
		},
		Breakpoints: "100",
	})
	require.NoError(t, err)
	_, err = svc.GeneratePrices(ctx, created.ID)
	require.NoError(t, err)

	hidden, err := svc.SetVisibility(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, hidden.Active)
	assert.EqualValues(t, 1, countPriceRows(t, db, created.ID))

	shown, err := svc.SetVisibility(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, shown.Active)
}
