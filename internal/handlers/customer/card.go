package customer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moka_pos/internal/cache"
	"moka_pos/internal/utils"
)

//
// 🪪 GET /api/customers/:id/card
//
// Carte fidélité : QR code PNG encodant l'identifiant client, scanné en
// caisse pour rattacher le client au panier
func GetLoyaltyCard(c *gin.Context) {
	customer, err := cache.GetCustomerFromCache(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client introuvable"})
		return
	}

	png, err := utils.GenerateLoyaltyQR(customer.ID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
