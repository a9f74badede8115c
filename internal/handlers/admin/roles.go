package admin

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"moka_pos/internal/database"
	"moka_pos/internal/middleware"
	"moka_pos/internal/models"
)

//
// 🔵 GET /api/admin/roles
//
func GetAllRoles(c *gin.Context) {
	session, err := database.GetClientsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	query := `SELECT id, name, display_name, description, permissions, is_active, created_at, updated_at FROM roles`
	iter := session.Query(query).Iter()

	roles := []models.Role{}
	var role models.Role
	for iter.Scan(&role.ID, &role.Name, &role.DisplayName, &role.Description,
		&role.Permissions, &role.IsActive, &role.CreatedAt, &role.UpdatedAt) {
		roles = append(roles, role)
		role = models.Role{}
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur récupération rôles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles, "total": len(roles)})
}

//
// 🟢 POST /api/admin/roles
//
func CreateRole(c *gin.Context) {
	var input struct {
		Name        string   `json:"name" binding:"required"`
		DisplayName string   `json:"display_name" binding:"required"`
		Description string   `json:"description"`
		Permissions []string `json:"permissions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	session, err := database.GetClientsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Nom déjà pris ?
	var existing string
	checkQuery := `SELECT name FROM roles WHERE name = ? LIMIT 1 ALLOW FILTERING`
	if err := session.Query(checkQuery, input.Name).Scan(&existing); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ce nom de rôle existe déjà"})
		return
	}

	now := time.Now().UTC()
	role := models.Role{
		ID:          gocql.TimeUUID().String(),
		Name:        input.Name,
		DisplayName: input.DisplayName,
		Description: input.Description,
		Permissions: input.Permissions,
		IsActive:    true,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}

	insertQuery := `INSERT INTO roles (id, name, display_name, description, permissions, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if err := session.Query(insertQuery, role.ID, role.Name, role.DisplayName, role.Description,
		role.Permissions, role.IsActive, role.CreatedAt, role.UpdatedAt).Exec(); err != nil {
		log.Printf("❌ Erreur création rôle: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du rôle"})
		return
	}

	log.Printf("✅ Rôle créé: %s", role.Name)
	c.JSON(http.StatusCreated, gin.H{"message": "Rôle créé avec succès", "role": role})
}

//
// 🟠 PATCH /api/admin/roles/:id
//
func UpdateRole(c *gin.Context) {
	roleID := c.Param("id")

	var input struct {
		DisplayName *string   `json:"display_name"`
		Description *string   `json:"description"`
		Permissions *[]string `json:"permissions"`
		IsActive    *bool     `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetClientsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var role models.Role
	query := `SELECT id, name, display_name, description, permissions, is_active FROM roles WHERE id = ?`
	if err := session.Query(query, roleID).Scan(&role.ID, &role.Name, &role.DisplayName,
		&role.Description, &role.Permissions, &role.IsActive); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rôle introuvable"})
		return
	}

	if input.DisplayName != nil {
		role.DisplayName = *input.DisplayName
	}
	if input.Description != nil {
		role.Description = *input.Description
	}
	if input.Permissions != nil {
		role.Permissions = *input.Permissions
	}
	if input.IsActive != nil {
		role.IsActive = *input.IsActive
	}

	now := time.Now().UTC()
	updateQuery := `UPDATE roles SET display_name = ?, description = ?, permissions = ?, is_active = ?, updated_at = ? WHERE id = ?`
	if err := session.Query(updateQuery, role.DisplayName, role.Description,
		role.Permissions, role.IsActive, now, role.ID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour rôle"})
		return
	}

	middleware.InvalidateRolePermissions(role.Name)
	c.JSON(http.StatusOK, role)
}

//
// 🔑 GET /api/admin/permissions
//
// Permissions effectives du rôle de l'utilisateur connecté
func GetMyPermissions(c *gin.Context) {
	role := c.GetString("role")

	permissions, err := middleware.RolePermissions(role)
	if err != nil {
		log.Printf("❌ Erreur récupération permissions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role":        role,
		"permissions": permissions,
		"total":       len(permissions),
	})
}
