package product

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"moka_pos/internal/cache"
	"moka_pos/internal/database"
	"moka_pos/internal/models"
	"moka_pos/internal/services"
)

//
// 🟢 POST /api/products
//
func CreateProduct(c *gin.Context) {
	var p models.Product

	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if p.Name == "" || p.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom obligatoire et prix positif requis"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// ✅ Vérifie la catégorie si fournie
	if p.CategoryID != (gocql.UUID{}) {
		var categoryName string
		if err := session.Query(`SELECT name FROM categories WHERE category_id = ?`, p.CategoryID).Scan(&categoryName); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie introuvable"})
			return
		}
	}

	p.ID = gocql.TimeUUID()
	p.IsActive = true
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	optionGroupsJSON, _ := json.Marshal(p.OptionGroups)

	query := `INSERT INTO products (product_id, name, description, price, stock, track_stock, category_id, image_urls, tags, option_groups, is_active, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if err := session.Query(query, p.ID, p.Name, p.Description, p.Price, p.Stock, p.TrackStock,
		p.CategoryID, p.ImageURLs, p.Tags, string(optionGroupsJSON), p.IsActive, p.CreatedAt, p.UpdatedAt).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit: " + err.Error()})
		return
	}

	invalidateProductLists()

	// 🔄 Indexation Elasticsearch
	go services.IndexProduct(p)

	c.JSON(http.StatusOK, p)
}

//
// 🔵 GET /api/products
//
func GetAllProducts(c *gin.Context) {
	ctx := context.Background()
	cacheKey := "products:all"

	// ✅ Vérifie le cache Redis
	if val, err := database.RedisClient.Get(ctx, cacheKey).Result(); err == nil && val != "" {
		var cached []models.Product
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT product_id, name, description, price, stock, track_stock, category_id, image_urls, tags, option_groups, is_active, created_at, updated_at FROM products`).Iter()

	products := []models.Product{}
	var p models.Product
	var optionGroupsJSON string

	for iter.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.TrackStock,
		&p.CategoryID, &p.ImageURLs, &p.Tags, &optionGroupsJSON, &p.IsActive, &p.CreatedAt, &p.UpdatedAt) {
		if optionGroupsJSON != "" {
			json.Unmarshal([]byte(optionGroupsJSON), &p.OptionGroups)
		}
		products = append(products, p)
		p = models.Product{} // Reset pour la prochaine itération
		optionGroupsJSON = ""
	}

	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits: " + err.Error()})
		return
	}

	// ✅ Met en cache
	if data, err := json.Marshal(products); err == nil {
		database.RedisClient.Set(ctx, cacheKey, data, time.Hour)
	}

	c.JSON(http.StatusOK, products)
}

//
// 🔵 GET /api/products/:id
//
func GetProduct(c *gin.Context) {
	product, err := cache.GetProductFromCache(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// invalidateProductLists purge les listes mises en cache après une écriture
func invalidateProductLists() {
	ctx := context.Background()
	database.RedisClient.Del(ctx, "products:all")
}
