package product

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moka_pos/internal/services"
)

//
// 🔍 GET /api/products/search?q=…
//
// Recherche plein texte via Elasticsearch (nom, description, tags)
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre 'q' manquant"})
		return
	}

	results, err := services.SearchProducts(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "total": len(results)})
}
