package caisse

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"moka_pos/internal/cache"
	"moka_pos/internal/models"
	"moka_pos/internal/pos"
)

//
// 🛒 GET /api/pos/cart
//
func GetCart(c *gin.Context) {
	engine, _ := engineFor(c)
	snap := engine.Snapshot(context.Background())
	c.JSON(http.StatusOK, cartResponse(snap))
}

//
// 🟢 POST /api/pos/cart/add
//
func AddToCart(c *gin.Context) {
	var input struct {
		ProductID      string                `json:"productId"`
		Customizations models.Customizations `json:"customizations"`
	}

	if err := c.ShouldBindJSON(&input); err != nil || input.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	product, err := cache.GetProductFromCache(input.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if !product.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Produit indisponible"})
		return
	}

	engine, _ := engineFor(c)
	snap, result := engine.AddLine(context.Background(), product, input.Customizations)

	// Le moteur refuse en silence ; c'est ici qu'on prévient le caissier
	if result == pos.AddRejectedStock {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Stock insuffisant pour " + product.Name,
			"items": snap.Lines,
		})
		return
	}

	c.JSON(http.StatusOK, cartResponse(snap))
}

//
// 🔁 PATCH /api/pos/cart/line/:lineId
//
func UpdateCartLine(c *gin.Context) {
	lineID := c.Param("lineId")

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	engine, _ := engineFor(c)
	snap := engine.UpdateLineQuantity(context.Background(), lineID, input.Quantity)
	c.JSON(http.StatusOK, cartResponse(snap))
}

//
// ❌ DELETE /api/pos/cart/line/:lineId
//
func RemoveCartLine(c *gin.Context) {
	engine, _ := engineFor(c)
	snap := engine.RemoveLine(context.Background(), c.Param("lineId"))
	c.JSON(http.StatusOK, cartResponse(snap))
}

//
// 🧹 DELETE /api/pos/cart
//
func ClearCart(c *gin.Context) {
	engine, _ := engineFor(c)
	snap := engine.Clear(context.Background())
	c.JSON(http.StatusOK, cartResponse(snap))
}

//
// 👤 PUT /api/pos/cart/customer
//
func SelectCartCustomer(c *gin.Context) {
	var input struct {
		CustomerID string `json:"customerId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.CustomerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	customer, err := cache.GetCustomerFromCache(input.CustomerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client introuvable"})
		return
	}

	engine, _ := engineFor(c)
	snap := engine.SelectCustomer(context.Background(), &models.SelectedCustomer{
		ID:     customer.ID.String(),
		Name:   customer.Name,
		Phone:  customer.Phone,
		Points: customer.Points,
	})
	c.JSON(http.StatusOK, cartResponse(snap))
}

//
// 👤 DELETE /api/pos/cart/customer
//
func UnselectCartCustomer(c *gin.Context) {
	engine, _ := engineFor(c)
	snap := engine.SelectCustomer(context.Background(), nil)
	c.JSON(http.StatusOK, cartResponse(snap))
}
