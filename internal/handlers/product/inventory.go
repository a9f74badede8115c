package product

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"moka_pos/internal/cache"
	"moka_pos/internal/database"
)

// nextStock calcule le stock résultant d'une opération d'inventaire.
// "restock" est relatif au stock courant, "adjustment" est une valeur
// absolue (0 compris, pour solder un produit après comptage).
func nextStock(kind string, current, quantity int) (int, error) {
	var result int
	switch kind {
	case "restock":
		result = current + quantity
	case "adjustment":
		result = quantity
	default:
		return 0, errors.New("Type d'opération invalide")
	}

	if result < 0 {
		return 0, errors.New("Le stock ne peut pas être négatif")
	}
	return result, nil
}

//
// 📦 POST /api/products/:id/stock
//
// UpdateStock - Mettre à jour le stock d'un produit
func UpdateStock(c *gin.Context) {
	productIDStr := c.Param("id")

	// Pas de binding required sur quantity : 0 est une valeur légitime
	// (ajustement à zéro après inventaire)
	var req struct {
		Quantity int    `json:"quantity"`
		Reason   string `json:"reason" binding:"required"`
		Type     string `json:"type" binding:"required"` // "restock", "adjustment"
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	productID, err := gocql.ParseUUID(productIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Récupérer le stock actuel
	var currentStock int
	var productName string

	query := `SELECT stock, name FROM products WHERE product_id = ?`
	if err := session.Query(query, productID).Scan(&currentStock, &productName); err != nil {
		log.Printf("❌ Produit non trouvé: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit non trouvé"})
		return
	}

	newStock, err := nextStock(req.Type, currentStock, req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := session.Query("UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ?",
		newStock, time.Now().UTC(), productID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour stock"})
		return
	}

	cache.InvalidateProduct(productIDStr)
	invalidateProductLists()

	log.Printf("📦 Stock %s: %d → %d (%s — %s)", productName, currentStock, newStock, req.Type, req.Reason)

	c.JSON(http.StatusOK, gin.H{
		"message":   "Stock mis à jour",
		"old_stock": currentStock,
		"new_stock": newStock,
	})
}

//
// ⚠️ GET /api/products/low-stock
//
// Produits suivis dont le stock passe sous le seuil donné (défaut 5)
func GetLowStock(c *gin.Context) {
	threshold := 5
	if v := c.Query("threshold"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			threshold = n
		}
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT product_id, name, stock, track_stock FROM products`).Iter()

	type lowStockItem struct {
		ProductID string `json:"product_id"`
		Name      string `json:"name"`
		Stock     int    `json:"stock"`
	}

	items := []lowStockItem{}
	var id gocql.UUID
	var name string
	var stock int
	var trackStock bool

	for iter.Scan(&id, &name, &stock, &trackStock) {
		if trackStock && stock <= threshold {
			items = append(items, lowStockItem{ProductID: id.String(), Name: name, Stock: stock})
		}
	}

	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "threshold": threshold})
}
