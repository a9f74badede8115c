package pos

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"moka_pos/internal/models"
)

const (
	AnnounceCart     = "cart"
	AnnounceCustomer = "customer"
)

// Announcement est le message diffusé aux autres écrans d'une même caisse.
// Le contenu n'est qu'une indication : les écrans relisent le Store,
// jamais le payload de l'annonce.
type Announcement struct {
	Type     string                   `json:"type"`
	Items    []models.CartLine        `json:"items,omitempty"`
	Customer *models.SelectedCustomer `json:"customer,omitempty"`
}

// Broadcaster publie les mutations du panier sur le canal pub/sub de la caisse.
// Best-effort : sans Redis, toutes les opérations sont des no-op silencieux.
type Broadcaster struct {
	rdb    *redis.Client
	tillID string
}

func NewBroadcaster(rdb *redis.Client, tillID string) *Broadcaster {
	return &Broadcaster{rdb: rdb, tillID: tillID}
}

// TillChannel retourne le nom du canal pub/sub d'une caisse.
func TillChannel(tillID string) string {
	return "till:" + tillID + ":events"
}

// Announce diffuse une mutation. Les échecs sont avalés : chaque écran
// reste cohérent via ses propres lectures du Store.
func (b *Broadcaster) Announce(ctx context.Context, kind string, snap models.CartSnapshot) {
	if b == nil || b.rdb == nil {
		return
	}

	msg := Announcement{Type: kind}
	switch kind {
	case AnnounceCart:
		msg.Items = snap.Lines
	case AnnounceCustomer:
		msg.Customer = snap.Customer
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("⚠️ Erreur encodage annonce caisse %s: %v", b.tillID, err)
		return
	}

	if err := b.rdb.Publish(ctx, TillChannel(b.tillID), data).Err(); err != nil {
		log.Printf("⚠️ Annonce caisse %s perdue: %v", b.tillID, err)
	}
}
