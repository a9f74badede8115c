package pos

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"moka_pos/internal/models"
)

// AddResult rend observable la décision du moteur sans lever d'erreur :
// le refus pour cause de stock est un no-op silencieux côté moteur, c'est à
// l'appelant (la caisse) d'afficher un message.
type AddResult int

const (
	AddAccepted AddResult = iota // nouvelle ligne créée
	AddMerged                    // fusionné dans une ligne existante
	AddRejectedStock             // refusé : plafond de stock atteint
)

// ProductSource fournit les produits au moteur pour les contrôles de stock.
type ProductSource interface {
	ProductByID(ctx context.Context, id string) (*models.Product, error)
}

// ProductSourceFunc adapte une fonction en ProductSource.
type ProductSourceFunc func(ctx context.Context, id string) (*models.Product, error)

func (f ProductSourceFunc) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	return f(ctx, id)
}

// Engine applique les règles de prix et de stock du panier. Chaque mutation
// déclenche exactement une fois la chaîne persistance → annonce → publication
// via Store.Save.
type Engine struct {
	store    *Store
	products ProductSource
}

func NewEngine(store *Store, products ProductSource) *Engine {
	return &Engine{store: store, products: products}
}

// Snapshot retourne l'état courant du panier.
func (e *Engine) Snapshot(ctx context.Context) models.CartSnapshot {
	return e.store.Load(ctx)
}

// UnitPrice calcule le prix unitaire : prix de base + suppléments des options
// sélectionnées. Les valeurs inconnues d'un groupe comptent pour zéro.
func UnitPrice(p *models.Product, custo models.Customizations) float64 {
	price := p.Price
	for _, group := range p.OptionGroups {
		sel, ok := custo[group.Name]
		if !ok {
			continue
		}
		if group.Multi {
			for _, v := range selectionValues(sel) {
				price += optionDelta(group, v)
			}
		} else if v, ok := sel.(string); ok {
			price += optionDelta(group, v)
		}
	}
	return price
}

// selectionValues normalise une sélection multiple ([]string natif ou
// []interface{} issu d'un décodage JSON).
func selectionValues(sel interface{}) []string {
	switch vs := sel.(type) {
	case []string:
		return vs
	case []interface{}:
		out := make([]string, 0, len(vs))
		for _, v := range vs {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{vs}
	}
	return nil
}

func optionDelta(group models.OptionGroup, value string) float64 {
	for _, opt := range group.Options {
		if opt.Value == value {
			return opt.PriceDelta
		}
	}
	return 0
}

// customizationKey produit une forme canonique comparable : deux ajouts avec
// les mêmes options fusionnent dans la même ligne.
func customizationKey(c models.Customizations) string {
	if len(c) == 0 {
		return "{}"
	}
	data, err := json.Marshal(c)
	if err != nil {
		log.Printf("⚠️ Customisations non encodables: %v", err)
		return ""
	}
	return string(data)
}

// AddLine ajoute une unité du produit au panier. Fusionne avec une ligne
// existante si produit ET options identiques ; refuse sans rien modifier si
// le stock suivi serait dépassé.
func (e *Engine) AddLine(ctx context.Context, product *models.Product, custo models.Customizations) (models.CartSnapshot, AddResult) {
	snap := e.store.Load(ctx)
	productID := product.ID.String()

	// Plafond de stock : quantité cumulée toutes lignes confondues
	if product.TrackStock && snap.QuantityOf(productID)+1 > product.Stock {
		return snap, AddRejectedStock
	}

	key := customizationKey(custo)
	for i := range snap.Lines {
		if snap.Lines[i].ProductID == productID && customizationKey(snap.Lines[i].Customizations) == key {
			snap.Lines[i].Quantity++
			snap.Lines[i].LineTotal = snap.Lines[i].UnitPrice * float64(snap.Lines[i].Quantity)
			e.store.Save(ctx, snap, AnnounceCart)
			return snap, AddMerged
		}
	}

	unit := UnitPrice(product, custo)
	snap.Lines = append(snap.Lines, models.CartLine{
		ID:             uuid.NewString(),
		ProductID:      productID,
		ProductName:    product.Name,
		UnitPrice:      unit,
		Quantity:       1,
		Customizations: custo,
		LineTotal:      unit,
	})
	e.store.Save(ctx, snap, AnnounceCart)
	return snap, AddAccepted
}

// UpdateLineQuantity fixe la quantité d'une ligne. Quantité ≤ 0 → suppression ;
// sinon la quantité est plafonnée silencieusement à la marge de stock restante
// (stock suivi moins les autres lignes du même produit).
func (e *Engine) UpdateLineQuantity(ctx context.Context, lineID string, quantity int) models.CartSnapshot {
	snap := e.store.Load(ctx)

	idx := -1
	for i := range snap.Lines {
		if snap.Lines[i].ID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return snap
	}

	if quantity <= 0 {
		snap.Lines = append(snap.Lines[:idx], snap.Lines[idx+1:]...)
		e.store.Save(ctx, snap, AnnounceCart)
		return snap
	}

	line := &snap.Lines[idx]
	if e.products != nil {
		product, err := e.products.ProductByID(ctx, line.ProductID)
		if err != nil {
			// Sans produit, pas de plafond vérifiable : la ligne garde
			// sa quantité actuelle plutôt que d'appliquer à l'aveugle
			log.Printf("⚠️ Produit %s introuvable pour contrôle de stock: %v", line.ProductID, err)
			return snap
		}
		if product.TrackStock {
			others := snap.QuantityOf(line.ProductID) - line.Quantity
			if headroom := product.Stock - others; quantity > headroom {
				quantity = headroom
			}
			if quantity <= 0 {
				snap.Lines = append(snap.Lines[:idx], snap.Lines[idx+1:]...)
				e.store.Save(ctx, snap, AnnounceCart)
				return snap
			}
		}
	}

	line.Quantity = quantity
	line.LineTotal = line.UnitPrice * float64(quantity)
	e.store.Save(ctx, snap, AnnounceCart)
	return snap
}

// RemoveLine retire une ligne du panier.
func (e *Engine) RemoveLine(ctx context.Context, lineID string) models.CartSnapshot {
	snap := e.store.Load(ctx)
	for i := range snap.Lines {
		if snap.Lines[i].ID == lineID {
			snap.Lines = append(snap.Lines[:i], snap.Lines[i+1:]...)
			break
		}
	}
	e.store.Save(ctx, snap, AnnounceCart)
	return snap
}

// Clear vide le panier et désélectionne le client.
func (e *Engine) Clear(ctx context.Context) models.CartSnapshot {
	snap := models.CartSnapshot{Lines: []models.CartLine{}}
	e.store.Save(ctx, snap, AnnounceCart)
	return snap
}

// SelectCustomer rattache (ou détache avec nil) un client fidélité au panier.
func (e *Engine) SelectCustomer(ctx context.Context, customer *models.SelectedCustomer) models.CartSnapshot {
	snap := e.store.Load(ctx)
	snap.Customer = customer
	e.store.Save(ctx, snap, AnnounceCustomer)
	return snap
}
