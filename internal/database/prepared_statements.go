package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les requêtes chaudes de la caisse
	stmtGetProductByID   *gocql.Query
	stmtUpdateStock      *gocql.Query
	stmtGetCustomerByID  *gocql.Query
	stmtAddLoyaltyPoints *gocql.Query
	stmtInsertSale       *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		catalog, err := GetCatalogSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements: %v", err)
			return
		}

		// Lecture produit au scan / à l'ajout panier
		stmtGetProductByID = catalog.Query(`SELECT product_id, name, description, price, stock, track_stock, category_id, image_urls, tags, option_groups, is_active, created_at, updated_at
			FROM products WHERE product_id = ?`)

		// Décrément de stock à l'encaissement
		stmtUpdateStock = catalog.Query("UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ?")

		clients, err := GetClientsSession()
		if err == nil {
			stmtGetCustomerByID = clients.Query("SELECT customer_id, name, phone, email, points, created_at FROM customers WHERE customer_id = ?")
			stmtAddLoyaltyPoints = clients.Query("UPDATE customers SET points = ? WHERE customer_id = ?")
		}

		caisse, err := GetCaisseSession()
		if err == nil {
			stmtInsertSale = caisse.Query(`INSERT INTO sales (sale_id, till_id, lines, subtotal, discount, total, payment_method, cash_received, change, customer_id, cashier_id, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		}

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedGetProductByID() *gocql.Query {
	return stmtGetProductByID
}

func GetPreparedUpdateStock() *gocql.Query {
	return stmtUpdateStock
}

func GetPreparedGetCustomerByID() *gocql.Query {
	return stmtGetCustomerByID
}

func GetPreparedAddLoyaltyPoints() *gocql.Query {
	return stmtAddLoyaltyPoints
}

func GetPreparedInsertSale() *gocql.Query {
	return stmtInsertSale
}
