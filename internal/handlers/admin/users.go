package admin

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"moka_pos/internal/database"
	"moka_pos/internal/models"
	"moka_pos/internal/utils"
)

//
// 🟢 POST /api/admin/users
//
func CreateUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required"`
		Role     string `json:"role" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
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

	// Email déjà pris ?
	var existing string
	checkQuery := `SELECT email FROM users WHERE email = ? LIMIT 1 ALLOW FILTERING`
	if err := session.Query(checkQuery, input.Email).Scan(&existing); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Cet email est déjà utilisé"})
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur hash mot de passe"})
		return
	}

	user := models.User{
		ID:        gocql.TimeUUID().String(),
		Email:     input.Email,
		Name:      input.Name,
		Role:      input.Role,
		Password:  hash,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	query := `INSERT INTO users (user_id, email, name, role, password, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if err := session.Query(query, user.ID, user.Email, user.Name, user.Role,
		user.Password, user.IsActive, user.CreatedAt).Exec(); err != nil {
		log.Printf("❌ Erreur création utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	log.Printf("✅ Utilisateur créé: %s (%s)", user.Email, user.Role)
	c.JSON(http.StatusCreated, user)
}

//
// 🔵 GET /api/admin/users
//
func GetAllUsers(c *gin.Context) {
	session, err := database.GetClientsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT user_id, email, name, role, is_active, created_at FROM users`).Iter()

	users := []models.User{}
	var user models.User
	for iter.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.IsActive, &user.CreatedAt) {
		users = append(users, user)
		user = models.User{}
	}

	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture utilisateurs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "total": len(users)})
}

//
// 🟠 PATCH /api/admin/users/:id
//
func UpdateUser(c *gin.Context) {
	userID := c.Param("id")

	var input struct {
		Name     *string `json:"name"`
		Role     *string `json:"role"`
		IsActive *bool   `json:"is_active"`
		Password *string `json:"password"`
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

	var user models.User
	query := `SELECT user_id, email, name, role, password, is_active, created_at FROM users WHERE user_id = ?`
	if err := session.Query(query, userID).Scan(&user.ID, &user.Email, &user.Name,
		&user.Role, &user.Password, &user.IsActive, &user.CreatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		hash, err := utils.HashPassword(*input.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur hash mot de passe"})
			return
		}
		user.Password = hash
	}

	updateQuery := `UPDATE users SET name = ?, role = ?, password = ?, is_active = ? WHERE user_id = ?`
	if err := session.Query(updateQuery, user.Name, user.Role, user.Password, user.IsActive, user.ID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour utilisateur"})
		return
	}

	c.JSON(http.StatusOK, user)
}

//
// ❌ DELETE /api/admin/users/:id
//
// Désactivation plutôt que suppression, pour garder la traçabilité des ventes
func DeactivateUser(c *gin.Context) {
	userID := c.Param("id")

	session, err := database.GetClientsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query(`UPDATE users SET is_active = false WHERE user_id = ?`, userID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur désactivation utilisateur"})
		return
	}

	log.Printf("🚫 Utilisateur désactivé: %s", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Utilisateur désactivé"})
}
