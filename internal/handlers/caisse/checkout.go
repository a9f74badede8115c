package caisse

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"moka_pos/internal/cache"
	"moka_pos/internal/database"
	"moka_pos/internal/models"
)

//
// 💶 POST /api/pos/checkout
//
// Encaisse le panier courant : calcule remise et rendu monnaie, enregistre la
// vente, décrémente les stocks suivis, crédite les points fidélité, écrit la
// recette en comptabilité, puis vide le panier (ce qui republie un aperçu
// vide vers l'écran client).
func Checkout(c *gin.Context) {
	var input struct {
		PaymentMethod string  `json:"payment_method"`
		Discount      float64 `json:"discount"`
		CashReceived  float64 `json:"cash_received"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = "cash"
	}
	if input.PaymentMethod != "cash" && input.PaymentMethod != "card" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mode de paiement invalide"})
		return
	}

	engine, till := engineFor(c)
	ctx := context.Background()

	snap := engine.Snapshot(ctx)
	if len(snap.Lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	}

	subtotal := snap.Subtotal()
	discount := input.Discount
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}
	total := subtotal - discount

	change := 0.0
	if input.PaymentMethod == "cash" {
		if input.CashReceived < total {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Montant reçu insuffisant"})
			return
		}
		change = input.CashReceived - total
	}

	sale := models.Sale{
		ID:            gocql.TimeUUID(),
		TillID:        till,
		Lines:         snap.Lines,
		Subtotal:      subtotal,
		Discount:      discount,
		Total:         total,
		PaymentMethod: input.PaymentMethod,
		CashReceived:  input.CashReceived,
		Change:        change,
		CashierID:     c.GetString("user_id"),
		CreatedAt:     time.Now().UTC(),
	}
	if snap.Customer != nil {
		id := snap.Customer.ID
		sale.CustomerID = &id
	}

	caisseSession, err := database.GetCaisseSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	linesJSON, _ := json.Marshal(sale.Lines)
	customerID := ""
	if sale.CustomerID != nil {
		customerID = *sale.CustomerID
	}

	err = caisseSession.Query(`INSERT INTO sales (sale_id, till_id, lines, subtotal, discount, total, payment_method, cash_received, change, customer_id, cashier_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, sale.TillID, string(linesJSON), sale.Subtotal, sale.Discount, sale.Total,
		sale.PaymentMethod, sale.CashReceived, sale.Change, customerID, sale.CashierID, sale.CreatedAt).Exec()
	if err != nil {
		log.Printf("❌ Erreur enregistrement vente: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement vente"})
		return
	}

	decrementStock(snap)
	awardLoyaltyPoints(snap, total)
	recordIncome(caisseSession, sale)

	// Panier vidé en dernier : la vente est déjà en sécurité
	engine.Clear(ctx)

	c.JSON(http.StatusOK, gin.H{
		"message": "Vente encaissée",
		"sale":    sale,
	})
}

// decrementStock décrémente le stock des produits suivis, en cumulant les
// lignes d'un même produit.
func decrementStock(snap models.CartSnapshot) {
	session, err := database.GetCatalogSession()
	if err != nil {
		log.Printf("⚠️ Stock non décrémenté: %v", err)
		return
	}

	sold := make(map[string]int)
	for _, line := range snap.Lines {
		sold[line.ProductID] += line.Quantity
	}

	for productID, qty := range sold {
		product, err := cache.GetProductFromCache(productID)
		if err != nil || !product.TrackStock {
			continue
		}

		newStock := product.Stock - qty
		if newStock < 0 {
			newStock = 0
		}

		err = session.Query("UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ?",
			newStock, time.Now().UTC(), product.ID).Exec()
		if err != nil {
			log.Printf("⚠️ Décrément stock %s échoué: %v", product.Name, err)
			continue
		}
		cache.InvalidateProduct(productID)
	}
}

// awardLoyaltyPoints crédite 1 point par euro encaissé (arrondi à l'inférieur).
func awardLoyaltyPoints(snap models.CartSnapshot, total float64) {
	if snap.Customer == nil {
		return
	}

	earned := int(total)
	if earned <= 0 {
		return
	}

	session, err := database.GetClientsSession()
	if err != nil {
		log.Printf("⚠️ Points fidélité non crédités: %v", err)
		return
	}

	cid, err := gocql.ParseUUID(snap.Customer.ID)
	if err != nil {
		log.Printf("⚠️ ID client invalide: %v", err)
		return
	}

	err = session.Query("UPDATE customers SET points = ? WHERE customer_id = ?",
		snap.Customer.Points+earned, cid).Exec()
	if err != nil {
		log.Printf("⚠️ Crédit points fidélité échoué: %v", err)
		return
	}
	cache.InvalidateCustomer(snap.Customer.ID)
}

// recordIncome écrit la recette de la vente en comptabilité.
func recordIncome(session *gocql.Session, sale models.Sale) {
	saleID := sale.ID
	err := session.Query(`INSERT INTO transactions (transaction_id, kind, amount, label, category, sale_id, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		gocql.TimeUUID(), models.TransactionIncome, sale.Total,
		"Vente caisse "+sale.TillID, "ventes", saleID, sale.CreatedAt).Exec()
	if err != nil {
		log.Printf("⚠️ Écriture de caisse non enregistrée: %v", err)
	}
}
