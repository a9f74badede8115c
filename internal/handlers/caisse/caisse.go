package caisse

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"

	"moka_pos/internal/cache"
	"moka_pos/internal/config"
	"moka_pos/internal/database"
	"moka_pos/internal/models"
	"moka_pos/internal/pos"
)

var (
	publishers   = make(map[string]*pos.Publisher)
	publishersMu sync.Mutex
)

// publisherFor retourne le publisher d'une caisse. Un seul par caisse et par
// processus : le single-flight est garanti à l'échelle de l'instance.
func publisherFor(tillID string) *pos.Publisher {
	publishersMu.Lock()
	defer publishersMu.Unlock()

	if p, ok := publishers[tillID]; ok {
		return p
	}
	p := pos.NewPublisher(config.PreviewURL() + "?till=" + tillID)
	publishers[tillID] = p
	return p
}

// engineFor assemble le moteur de panier de la caisse demandée.
func engineFor(c *gin.Context) (*pos.Engine, string) {
	till := c.DefaultQuery("till", config.DefaultTill())

	store := pos.NewStore(
		database.Redis,
		till,
		pos.NewBroadcaster(database.Redis, till),
		publisherFor(till),
	)

	engine := pos.NewEngine(store, pos.ProductSourceFunc(
		func(_ context.Context, id string) (*models.Product, error) {
			return cache.GetProductFromCache(id)
		},
	))

	return engine, till
}

// cartResponse est la réponse commune des opérations panier.
func cartResponse(snap models.CartSnapshot) gin.H {
	return gin.H{
		"items":    snap.Lines,
		"customer": snap.Customer,
		"total":    snap.Subtotal(),
		"count":    len(snap.Lines),
	}
}
