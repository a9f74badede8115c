package pos

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moka_pos/internal/models"
)

type fakeCatalog struct {
	products map[string]*models.Product
}

func (f *fakeCatalog) ProductByID(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, errors.New("produit introuvable")
	}
	return p, nil
}

func newTestEngine(t *testing.T, products ...*models.Product) (*Engine, *Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := NewStore(rdb, "1", nil, nil)

	catalog := &fakeCatalog{products: map[string]*models.Product{}}
	for _, p := range products {
		catalog.products[p.ID.String()] = p
	}
	return NewEngine(store, catalog), store
}

func espresso() *models.Product {
	return &models.Product{
		ID:       gocql.TimeUUID(),
		Name:     "Espresso",
		Price:    2.50,
		IsActive: true,
	}
}

func latte() *models.Product {
	return &models.Product{
		ID:       gocql.TimeUUID(),
		Name:     "Latte",
		Price:    4.00,
		IsActive: true,
		OptionGroups: []models.OptionGroup{
			{
				Name: "taille",
				Options: []models.ProductOption{
					{Value: "medium", PriceDelta: 0},
					{Value: "large", PriceDelta: 0.50},
				},
			},
			{
				Name:  "extras",
				Multi: true,
				Options: []models.ProductOption{
					{Value: "chantilly", PriceDelta: 0.30},
					{Value: "caramel", PriceDelta: 0.40},
				},
			},
		},
	}
}

func TestUnitPrice(t *testing.T) {
	p := latte()

	assert.Equal(t, 4.00, UnitPrice(p, nil))
	assert.Equal(t, 4.50, UnitPrice(p, models.Customizations{"taille": "large"}))
	assert.Equal(t, 4.70, UnitPrice(p, models.Customizations{
		"taille": "medium",
		"extras": []string{"chantilly", "caramel"},
	}))

	// Valeur inconnue: comptée zéro
	assert.Equal(t, 4.00, UnitPrice(p, models.Customizations{"taille": "géante"}))

	// Sélection multiple issue d'un décodage JSON
	assert.Equal(t, 4.30, UnitPrice(p, models.Customizations{
		"extras": []interface{}{"chantilly"},
	}))
}

func TestAddLineCreatesThenMerges(t *testing.T) {
	ctx := context.Background()
	p := espresso()
	engine, _ := newTestEngine(t, p)

	snap, res := engine.AddLine(ctx, p, nil)
	require.Equal(t, AddAccepted, res)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 1, snap.Lines[0].Quantity)
	assert.Equal(t, 2.50, snap.Lines[0].LineTotal)

	snap, res = engine.AddLine(ctx, p, nil)
	require.Equal(t, AddMerged, res)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
	assert.Equal(t, 5.00, snap.Lines[0].LineTotal)
}

func TestAddLineDistinctCustomizationsSplitLines(t *testing.T) {
	ctx := context.Background()
	p := latte()
	engine, _ := newTestEngine(t, p)

	snap, res := engine.AddLine(ctx, p, models.Customizations{"taille": "medium"})
	require.Equal(t, AddAccepted, res)

	snap, res = engine.AddLine(ctx, p, models.Customizations{"taille": "large"})
	require.Equal(t, AddAccepted, res)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 4.00, snap.Lines[0].UnitPrice)
	assert.Equal(t, 4.50, snap.Lines[1].UnitPrice)

	// Mêmes options → fusion, pas de troisième ligne
	snap, res = engine.AddLine(ctx, p, models.Customizations{"taille": "large"})
	require.Equal(t, AddMerged, res)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 2, snap.Lines[1].Quantity)
}

func TestAddLineStockCap(t *testing.T) {
	ctx := context.Background()
	p := espresso()
	p.TrackStock = true
	p.Stock = 2
	engine, store := newTestEngine(t, p)

	_, res := engine.AddLine(ctx, p, nil)
	require.Equal(t, AddAccepted, res)
	_, res = engine.AddLine(ctx, p, nil)
	require.Equal(t, AddMerged, res)

	// Troisième unité refusée, panier intact
	snap, res := engine.AddLine(ctx, p, nil)
	require.Equal(t, AddRejectedStock, res)
	assert.Equal(t, 2, snap.QuantityOf(p.ID.String()))

	persisted := store.Load(ctx)
	assert.Equal(t, 2, persisted.QuantityOf(p.ID.String()))
}

func TestAddLineStockCapAcrossLines(t *testing.T) {
	ctx := context.Background()
	p := latte()
	p.TrackStock = true
	p.Stock = 2
	engine, _ := newTestEngine(t, p)

	engine.AddLine(ctx, p, models.Customizations{"taille": "medium"})
	engine.AddLine(ctx, p, models.Customizations{"taille": "large"})

	// Le plafond s'applique toutes lignes confondues
	snap, res := engine.AddLine(ctx, p, models.Customizations{"taille": "medium"})
	require.Equal(t, AddRejectedStock, res)
	assert.Len(t, snap.Lines, 2)
}

func TestUpdateLineQuantity(t *testing.T) {
	ctx := context.Background()
	p := espresso()
	engine, _ := newTestEngine(t, p)

	snap, _ := engine.AddLine(ctx, p, nil)
	lineID := snap.Lines[0].ID

	snap = engine.UpdateLineQuantity(ctx, lineID, 4)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 4, snap.Lines[0].Quantity)
	assert.Equal(t, 10.00, snap.Lines[0].LineTotal)

	// Quantité nulle → suppression
	snap = engine.UpdateLineQuantity(ctx, lineID, 0)
	assert.Empty(t, snap.Lines)
}

func TestUpdateLineQuantityClampsToStock(t *testing.T) {
	ctx := context.Background()
	p := espresso()
	p.TrackStock = true
	p.Stock = 3
	engine, _ := newTestEngine(t, p)

	snap, _ := engine.AddLine(ctx, p, nil)
	lineID := snap.Lines[0].ID

	// Demande au-delà du stock → plafonnée sans erreur
	snap = engine.UpdateLineQuantity(ctx, lineID, 10)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 3, snap.Lines[0].Quantity)
}

func TestUpdateLineQuantityKeepsCurrentWhenLookupFails(t *testing.T) {
	ctx := context.Background()
	p := espresso()
	p.TrackStock = true
	p.Stock = 2

	// Catalogue vide : le produit du panier n'est plus résoluble
	engine, store := newTestEngine(t)

	snap, res := engine.AddLine(ctx, p, nil)
	require.Equal(t, AddAccepted, res)
	lineID := snap.Lines[0].ID

	// Plafond invérifiable → la quantité demandée n'est pas appliquée
	snap = engine.UpdateLineQuantity(ctx, lineID, 99)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 1, snap.Lines[0].Quantity)
	assert.Equal(t, 2.50, snap.Lines[0].LineTotal)

	persisted := store.Load(ctx)
	require.Len(t, persisted.Lines, 1)
	assert.Equal(t, 1, persisted.Lines[0].Quantity)
}

func TestUpdateLineQuantityUnknownLineIsNoop(t *testing.T) {
	ctx := context.Background()
	p := espresso()
	engine, _ := newTestEngine(t, p)

	engine.AddLine(ctx, p, nil)
	snap := engine.UpdateLineQuantity(ctx, "inexistante", 5)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 1, snap.Lines[0].Quantity)
}

func TestRemoveLine(t *testing.T) {
	ctx := context.Background()
	p := espresso()
	engine, _ := newTestEngine(t, p)

	snap, _ := engine.AddLine(ctx, p, nil)
	snap = engine.RemoveLine(ctx, snap.Lines[0].ID)
	assert.Empty(t, snap.Lines)
}

func TestClearResetsCartAndCustomer(t *testing.T) {
	ctx := context.Background()
	p := espresso()
	engine, store := newTestEngine(t, p)

	engine.AddLine(ctx, p, nil)
	engine.SelectCustomer(ctx, &models.SelectedCustomer{ID: "c1", Name: "Alice"})

	snap := engine.Clear(ctx)
	assert.Empty(t, snap.Lines)
	assert.Nil(t, snap.Customer)

	persisted := store.Load(ctx)
	assert.Empty(t, persisted.Lines)
	assert.Nil(t, persisted.Customer)
}

func TestSelectCustomer(t *testing.T) {
	ctx := context.Background()
	p := espresso()
	engine, store := newTestEngine(t, p)

	snap := engine.SelectCustomer(ctx, &models.SelectedCustomer{ID: "c1", Name: "Alice", Points: 12})
	require.NotNil(t, snap.Customer)
	assert.Equal(t, "Alice", snap.Customer.Name)

	persisted := store.Load(ctx)
	require.NotNil(t, persisted.Customer)
	assert.Equal(t, 12, persisted.Customer.Points)

	snap = engine.SelectCustomer(ctx, nil)
	assert.Nil(t, snap.Customer)
	assert.Nil(t, store.Load(ctx).Customer)
}
