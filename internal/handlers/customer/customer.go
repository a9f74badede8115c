package customer

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"moka_pos/internal/cache"
	"moka_pos/internal/database"
	"moka_pos/internal/models"
)

//
// 🟢 POST /api/customers
//
func CreateCustomer(c *gin.Context) {
	var input struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone"`
		Email string `json:"email"`
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

	customer := models.Customer{
		ID:        gocql.TimeUUID(),
		Name:      input.Name,
		Phone:     input.Phone,
		Email:     input.Email,
		Points:    0,
		CreatedAt: time.Now().UTC(),
	}

	query := `INSERT INTO customers (customer_id, name, phone, email, points, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if err := session.Query(query, customer.ID, customer.Name, customer.Phone, customer.Email,
		customer.Points, customer.CreatedAt).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création client: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, customer)
}

//
// 🔵 GET /api/customers
//
func GetAllCustomers(c *gin.Context) {
	session, err := database.GetClientsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT customer_id, name, phone, email, points, created_at FROM customers`).Iter()

	customers := []models.Customer{}
	var cust models.Customer
	for iter.Scan(&cust.ID, &cust.Name, &cust.Phone, &cust.Email, &cust.Points, &cust.CreatedAt) {
		customers = append(customers, cust)
		cust = models.Customer{}
	}

	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture clients: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": customers, "total": len(customers)})
}

//
// 🔵 GET /api/customers/:id
//
func GetCustomer(c *gin.Context) {
	customer, err := cache.GetCustomerFromCache(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client introuvable"})
		return
	}
	c.JSON(http.StatusOK, customer)
}

//
// 🟠 PATCH /api/customers/:id
//
func UpdateCustomer(c *gin.Context) {
	customerID := c.Param("id")
	customerUUID, err := gocql.ParseUUID(customerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID client invalide"})
		return
	}

	var input struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
		Email *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	customer, err := cache.GetCustomerFromCache(customerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client introuvable"})
		return
	}

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Phone != nil {
		customer.Phone = *input.Phone
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}

	session, err := database.GetClientsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query(`UPDATE customers SET name = ?, phone = ?, email = ? WHERE customer_id = ?`,
		customer.Name, customer.Phone, customer.Email, customerUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour client"})
		return
	}

	cache.InvalidateCustomer(customerID)
	c.JSON(http.StatusOK, customer)
}

//
// ❌ DELETE /api/customers/:id
//
func DeleteCustomer(c *gin.Context) {
	customerID := c.Param("id")
	customerUUID, err := gocql.ParseUUID(customerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID client invalide"})
		return
	}

	session, err := database.GetClientsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query("DELETE FROM customers WHERE customer_id = ?", customerUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression client"})
		return
	}

	cache.InvalidateCustomer(customerID)
	c.JSON(http.StatusOK, gin.H{"message": "Client supprimé"})
}

//
// ⭐ POST /api/customers/:id/points
//
// Ajustement manuel des points (geste commercial, correction)
func AdjustPoints(c *gin.Context) {
	customerID := c.Param("id")
	customerUUID, err := gocql.ParseUUID(customerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID client invalide"})
		return
	}

	var input struct {
		Delta  int    `json:"delta" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	customer, err := cache.GetCustomerFromCache(customerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client introuvable"})
		return
	}

	newPoints := customer.Points + input.Delta
	if newPoints < 0 {
		newPoints = 0
	}

	session, err := database.GetClientsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query("UPDATE customers SET points = ? WHERE customer_id = ?", newPoints, customerUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour points"})
		return
	}

	cache.InvalidateCustomer(customerID)
	c.JSON(http.StatusOK, gin.H{
		"old_points": customer.Points,
		"new_points": newPoints,
	})
}
