package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"moka_pos/internal/database"
)

const rolePermissionsTTL = 5 * time.Minute

// RequirePermission vérifie que le rôle de l'utilisateur porte une permission.
// L'admin passe toujours.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
			c.Abort()
			return
		}

		roleName, _ := role.(string)
		if roleName == "admin" {
			c.Next()
			return
		}

		permissions, err := RolePermissions(roleName)
		if err != nil {
			log.Printf("❌ Erreur vérification permission: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
			c.Abort()
			return
		}

		for _, perm := range permissions {
			if perm == permission {
				c.Next()
				return
			}
		}

		log.Printf("🚫 Permission refusée: %s pour rôle %s", permission, roleName)
		c.JSON(http.StatusForbidden, gin.H{
			"error":               "Permission insuffisante",
			"required_permission": permission,
		})
		c.Abort()
	}
}

// RolePermissions retourne les permissions d'un rôle, avec cache Redis
func RolePermissions(roleName string) ([]string, error) {
	ctx := context.Background()
	cacheKey := "role:perms:" + roleName

	if cached, err := database.Redis.Get(ctx, cacheKey).Result(); err == nil {
		var permissions []string
		if json.Unmarshal([]byte(cached), &permissions) == nil {
			return permissions, nil
		}
	}

	session, err := database.GetClientsSession()
	if err != nil {
		return nil, err
	}

	var permissions []string
	query := `SELECT permissions FROM roles WHERE name = ? AND is_active = true ALLOW FILTERING`
	if err := session.Query(query, roleName).Scan(&permissions); err != nil {
		// Rôle inconnu: aucune permission
		permissions = []string{}
	}

	if data, err := json.Marshal(permissions); err == nil {
		database.Redis.Set(ctx, cacheKey, data, rolePermissionsTTL)
	}

	return permissions, nil
}

// InvalidateRolePermissions purge le cache après modification d'un rôle
func InvalidateRolePermissions(roleName string) {
	database.Redis.Del(context.Background(), "role:perms:"+roleName)
}
