package caisse

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"moka_pos/internal/database"
	"moka_pos/internal/pos"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// TillWebSocket synchronise en temps réel les écrans caissier d'une caisse.
//
// Les annonces pub/sub ne sont que des indications : à chaque message reçu,
// on relit le Store et on pousse l'état complet — jamais le payload de
// l'annonce, pour éviter des copies mémoire divergentes.
func TillWebSocket(c *gin.Context) {
	engine, till := engineFor(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	// S'abonner au canal de la caisse
	pubsub := database.Redis.Subscribe(ctx, pos.TillChannel(till))
	defer pubsub.Close()

	ch := pubsub.Channel()

	// Envoyer un message de connexion
	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Synchronisation caisse activée",
	})

	// Boucle d'écoute
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var ann pos.Announcement
			if err := json.Unmarshal([]byte(msg.Payload), &ann); err != nil {
				log.Printf("⚠️ Annonce caisse illisible: %v", err)
				continue
			}
			if ann.Type != pos.AnnounceCart && ann.Type != pos.AnnounceCustomer {
				continue
			}

			// Relire l'état de référence et pousser l'instantané complet
			snap := engine.Snapshot(ctx)
			response := map[string]interface{}{
				"type":     "cart_updated",
				"items":    snap.Lines,
				"customer": snap.Customer,
				"total":    snap.Subtotal(),
				"count":    len(snap.Lines),
			}

			if err := conn.WriteJSON(response); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
