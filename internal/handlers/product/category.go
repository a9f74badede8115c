package product

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"moka_pos/internal/database"
	"moka_pos/internal/models"
)

//
// 🟢 POST /api/categories
//
func CreateCategory(c *gin.Context) {
	var cat models.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if cat.Name == "" || cat.Slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les champs 'name' et 'slug' sont obligatoires"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	cat.ID = gocql.TimeUUID()
	now := time.Now().UTC()
	cat.CreatedAt = &now

	query := `INSERT INTO categories (category_id, name, slug, description, position, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if err := session.Query(query, cat.ID, cat.Name, cat.Slug, cat.Description, cat.Position, cat.CreatedAt).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création catégorie: " + err.Error()})
		return
	}

	database.RedisClient.Del(context.Background(), "categories:all")
	c.JSON(http.StatusOK, cat)
}

//
// 🔵 GET /api/categories
//
func GetAllCategories(c *gin.Context) {
	ctx := context.Background()
	cacheKey := "categories:all"

	// Cache Redis
	if val, err := database.RedisClient.Get(ctx, cacheKey).Result(); err == nil && val != "" {
		var cached []models.Category
		if json.Unmarshal([]byte(val), &cached) == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT category_id, name, slug, description, position, created_at FROM categories`).Iter()

	cats := []models.Category{}
	var cat models.Category
	for iter.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description, &cat.Position, &cat.CreatedAt) {
		cats = append(cats, cat)
		cat = models.Category{}
	}

	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catégories: " + err.Error()})
		return
	}

	data, _ := json.Marshal(cats)
	database.RedisClient.Set(ctx, cacheKey, data, time.Hour)

	c.JSON(http.StatusOK, cats)
}

//
// 🟠 PATCH /api/categories/:id
//
func UpdateCategory(c *gin.Context) {
	categoryUUID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
		return
	}

	var input struct {
		Name        *string `json:"name"`
		Slug        *string `json:"slug"`
		Description *string `json:"description"`
		Position    *int    `json:"position"`
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

	// Lecture puis réécriture complète : pas de update partiel dynamique
	var cat models.Category
	if err := session.Query(`SELECT category_id, name, slug, description, position, created_at FROM categories WHERE category_id = ?`,
		categoryUUID).Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description, &cat.Position, &cat.CreatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Catégorie introuvable"})
		return
	}

	if input.Name != nil {
		cat.Name = *input.Name
	}
	if input.Slug != nil {
		cat.Slug = *input.Slug
	}
	if input.Description != nil {
		cat.Description = *input.Description
	}
	if input.Position != nil {
		cat.Position = *input.Position
	}

	if err := session.Query(`UPDATE categories SET name = ?, slug = ?, description = ?, position = ? WHERE category_id = ?`,
		cat.Name, cat.Slug, cat.Description, cat.Position, categoryUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour catégorie: " + err.Error()})
		return
	}

	database.RedisClient.Del(context.Background(), "categories:all")
	c.JSON(http.StatusOK, cat)
}

//
// ❌ DELETE /api/categories/:id
//
func DeleteCategory(c *gin.Context) {
	categoryUUID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query("DELETE FROM categories WHERE category_id = ?", categoryUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression catégorie: " + err.Error()})
		return
	}

	database.RedisClient.Del(context.Background(), "categories:all")
	c.JSON(http.StatusOK, gin.H{"message": "Catégorie supprimée"})
}
