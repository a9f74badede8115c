package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"moka_pos/internal/database"
	"moka_pos/internal/models"
	"moka_pos/internal/utils"
)

//
// 🔐 POST /api/auth/login
//
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}

	session, err := database.GetClientsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var user models.User
	query := `SELECT user_id, email, name, role, password, is_active, created_at FROM users WHERE email = ? LIMIT 1 ALLOW FILTERING`
	if err := session.Query(query, input.Email).Scan(&user.ID, &user.Email, &user.Name,
		&user.Role, &user.Password, &user.IsActive, &user.CreatedAt); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Compte désactivé"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants invalides"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		log.Printf("❌ Erreur génération JWT: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	log.Printf("✅ Connexion: %s (%s)", user.Email, user.Role)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

//
// 👤 GET /api/auth/me
//
func Me(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetClientsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var user models.User
	query := `SELECT user_id, email, name, role, is_active, created_at FROM users WHERE user_id = ?`
	if err := session.Query(query, userID).Scan(&user.ID, &user.Email, &user.Name,
		&user.Role, &user.IsActive, &user.CreatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, user)
}
