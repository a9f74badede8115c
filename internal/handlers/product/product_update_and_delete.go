package product

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"moka_pos/internal/cache"
	"moka_pos/internal/database"
	"moka_pos/internal/models"
	"moka_pos/internal/services"
)

//
// 🟠 PATCH /api/products/:id
//
func UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	productUUID, err := gocql.ParseUUID(productID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input struct {
		Name         *string               `json:"name"`
		Description  *string               `json:"description"`
		Price        *float64              `json:"price"`
		Stock        *int                  `json:"stock"`
		TrackStock   *bool                 `json:"track_stock"`
		CategoryID   *string               `json:"category_id"`
		Tags         *[]string             `json:"tags"`
		OptionGroups *[]models.OptionGroup `json:"option_groups"`
		IsActive     *bool                 `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	updates := []string{}
	values := []interface{}{}

	if input.Name != nil {
		updates = append(updates, "name = ?")
		values = append(values, *input.Name)
	}
	if input.Description != nil {
		updates = append(updates, "description = ?")
		values = append(values, *input.Description)
	}
	if input.Price != nil {
		updates = append(updates, "price = ?")
		values = append(values, *input.Price)
	}
	if input.Stock != nil {
		updates = append(updates, "stock = ?")
		values = append(values, *input.Stock)
	}
	if input.TrackStock != nil {
		updates = append(updates, "track_stock = ?")
		values = append(values, *input.TrackStock)
	}
	if input.CategoryID != nil {
		categoryUUID, err := gocql.ParseUUID(*input.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
			return
		}
		updates = append(updates, "category_id = ?")
		values = append(values, categoryUUID)
	}
	if input.Tags != nil {
		updates = append(updates, "tags = ?")
		values = append(values, *input.Tags)
	}
	if input.OptionGroups != nil {
		optionGroupsJSON, _ := json.Marshal(*input.OptionGroups)
		updates = append(updates, "option_groups = ?")
		values = append(values, string(optionGroupsJSON))
	}
	if input.IsActive != nil {
		updates = append(updates, "is_active = ?")
		values = append(values, *input.IsActive)
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune modification fournie"})
		return
	}

	updates = append(updates, "updated_at = ?")
	values = append(values, time.Now().UTC())
	values = append(values, productUUID)

	query := "UPDATE products SET " + strings.Join(updates, ", ") + " WHERE product_id = ?"
	if err := session.Query(query, values...).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit: " + err.Error()})
		return
	}

	cache.InvalidateProduct(productID)
	invalidateProductLists()

	// 🔄 Ré-indexation Elasticsearch avec l'état frais
	if product, err := cache.GetProductFromCache(productID); err == nil {
		go services.IndexProduct(*product)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Produit mis à jour"})
}

//
// ❌ DELETE /api/products/:id
//
func DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	productUUID, err := gocql.ParseUUID(productID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query("DELETE FROM products WHERE product_id = ?", productUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit: " + err.Error()})
		return
	}

	cache.InvalidateProduct(productID)
	invalidateProductLists()

	// 🔄 Retrait de l'index de recherche
	go services.DeindexProduct(productID)

	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}
