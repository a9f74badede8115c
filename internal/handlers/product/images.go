package product

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"moka_pos/internal/cache"
	"moka_pos/internal/database"
	"moka_pos/internal/services"
)

//
// 🖼️ POST /api/products/:id/image
//
// Upload d'une image produit vers MinIO, l'URL est ajoutée au produit
func UploadProductImage(c *gin.Context) {
	productIDStr := c.Param("id")

	productID, err := gocql.ParseUUID(productIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier 'image' manquant"})
		return
	}

	url, err := services.UploadFile("products", file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image: " + err.Error()})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var imageURLs []string
	if err := session.Query("SELECT image_urls FROM products WHERE product_id = ?", productID).Scan(&imageURLs); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	imageURLs = append(imageURLs, url)
	if err := session.Query("UPDATE products SET image_urls = ? WHERE product_id = ?", imageURLs, productID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	cache.InvalidateProduct(productIDStr)
	invalidateProductLists()

	c.JSON(http.StatusOK, gin.H{"url": url, "image_urls": imageURLs})
}
