package pos

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"moka_pos/internal/models"
)

// Durée de vie d'un panier abandonné
const cartTTL = 30 * 24 * time.Hour

// Store est l'état de référence du panier d'une caisse, persisté dans Redis
// sous deux clés JSON (lignes et client sélectionné).
//
// Save persiste toujours AVANT de déclencher l'annonce pub/sub et la
// publication vers l'écran client : un écran qui relit suite à une annonce
// ne peut jamais observer un état plus vieux que la mutation annoncée.
type Store struct {
	rdb         *redis.Client
	tillID      string
	broadcaster *Broadcaster
	publisher   *Publisher
}

func NewStore(rdb *redis.Client, tillID string, b *Broadcaster, p *Publisher) *Store {
	return &Store{rdb: rdb, tillID: tillID, broadcaster: b, publisher: p}
}

func (s *Store) cartKey() string     { return "till:" + s.tillID + ":cart" }
func (s *Store) customerKey() string { return "till:" + s.tillID + ":customer" }

// Load relit le panier persisté. Clé absente ou JSON invalide → panier vide,
// jamais d'erreur remontée.
func (s *Store) Load(ctx context.Context) models.CartSnapshot {
	snap := models.CartSnapshot{Lines: []models.CartLine{}}

	data, err := s.rdb.Get(ctx, s.cartKey()).Result()
	if err == nil && data != "" {
		var lines []models.CartLine
		if err := json.Unmarshal([]byte(data), &lines); err != nil {
			log.Printf("⚠️ Panier caisse %s illisible, repart de zéro: %v", s.tillID, err)
		} else {
			snap.Lines = lines
		}
	}

	data, err = s.rdb.Get(ctx, s.customerKey()).Result()
	if err == nil && data != "" {
		var cust models.SelectedCustomer
		if err := json.Unmarshal([]byte(data), &cust); err != nil {
			log.Printf("⚠️ Client caisse %s illisible, ignoré: %v", s.tillID, err)
		} else {
			snap.Customer = &cust
		}
	}

	return snap
}

// Save persiste le panier puis déclenche, dans cet ordre, l'annonce pub/sub
// et la publication de l'aperçu. Un échec d'annonce ou de publication ne
// remet jamais en cause la sauvegarde locale.
func (s *Store) Save(ctx context.Context, snap models.CartSnapshot, kind string) {
	linesJSON, err := json.Marshal(snap.Lines)
	if err != nil {
		log.Printf("❌ Erreur encodage panier caisse %s: %v", s.tillID, err)
		return
	}
	if err := s.rdb.Set(ctx, s.cartKey(), linesJSON, cartTTL).Err(); err != nil {
		log.Printf("⚠️ Sauvegarde panier caisse %s échouée: %v", s.tillID, err)
	}

	if snap.Customer == nil {
		if err := s.rdb.Del(ctx, s.customerKey()).Err(); err != nil {
			log.Printf("⚠️ Suppression client caisse %s échouée: %v", s.tillID, err)
		}
	} else {
		custJSON, _ := json.Marshal(snap.Customer)
		if err := s.rdb.Set(ctx, s.customerKey(), custJSON, cartTTL).Err(); err != nil {
			log.Printf("⚠️ Sauvegarde client caisse %s échouée: %v", s.tillID, err)
		}
	}

	s.broadcaster.Announce(ctx, kind, snap)
	s.publisher.Publish(models.BuildPreview(snap))
}
