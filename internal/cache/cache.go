package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gocql/gocql"

	"moka_pos/internal/database"
	"moka_pos/internal/models"
)

const (
	ProductCacheTTL  = 10 * time.Minute
	CustomerCacheTTL = 5 * time.Minute
)

// GetProductFromCache récupère un produit depuis Redis ou ScyllaDB
func GetProductFromCache(productID string) (*models.Product, error) {
	ctx := context.Background()
	key := "product:" + productID

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var product models.Product
		if json.Unmarshal([]byte(data), &product) == nil {
			return &product, nil
		}
	}

	// 2. Récupérer de ScyllaDB
	session, err := database.GetCatalogSession()
	if err != nil {
		return nil, err
	}

	pid, err := gocql.ParseUUID(productID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	var optionGroupsJSON string

	err = session.Query(`SELECT product_id, name, description, price, stock, track_stock, category_id, image_urls, tags, option_groups, is_active, created_at, updated_at
		FROM products WHERE product_id = ?`, pid).Scan(
		&product.ID, &product.Name, &product.Description, &product.Price, &product.Stock,
		&product.TrackStock, &product.CategoryID, &product.ImageURLs, &product.Tags,
		&optionGroupsJSON, &product.IsActive, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if optionGroupsJSON != "" {
		if err := json.Unmarshal([]byte(optionGroupsJSON), &product.OptionGroups); err != nil {
			log.Printf("⚠️ Groupes d'options illisibles pour %s: %v", productID, err)
		}
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(product)
	database.Redis.Set(ctx, key, jsonData, ProductCacheTTL)

	return &product, nil
}

// InvalidateProduct supprime un produit du cache (après modification)
func InvalidateProduct(productID string) {
	if err := database.Redis.Del(context.Background(), "product:"+productID).Err(); err != nil {
		log.Printf("⚠️ Invalidation cache produit %s échouée: %v", productID, err)
	}
}

// GetCustomerFromCache récupère un client fidélité depuis Redis ou ScyllaDB
func GetCustomerFromCache(customerID string) (*models.Customer, error) {
	ctx := context.Background()
	key := "customer:" + customerID

	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var customer models.Customer
		if json.Unmarshal([]byte(data), &customer) == nil {
			return &customer, nil
		}
	}

	session, err := database.GetClientsSession()
	if err != nil {
		return nil, err
	}

	cid, err := gocql.ParseUUID(customerID)
	if err != nil {
		return nil, err
	}

	var customer models.Customer
	err = session.Query(`SELECT customer_id, name, phone, email, points, created_at
		FROM customers WHERE customer_id = ?`, cid).Scan(
		&customer.ID, &customer.Name, &customer.Phone, &customer.Email,
		&customer.Points, &customer.CreatedAt)
	if err != nil {
		return nil, err
	}

	jsonData, _ := json.Marshal(customer)
	database.Redis.Set(ctx, key, jsonData, CustomerCacheTTL)

	return &customer, nil
}

// InvalidateCustomer supprime un client du cache
func InvalidateCustomer(customerID string) {
	if err := database.Redis.Del(context.Background(), "customer:"+customerID).Err(); err != nil {
		log.Printf("⚠️ Invalidation cache client %s échouée: %v", customerID, err)
	}
}
