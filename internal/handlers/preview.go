package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"moka_pos/internal/config"
	"moka_pos/internal/database"
	"moka_pos/internal/models"
)

// Durée de vie de l'instantané d'aperçu dans Redis
const previewTTL = 24 * time.Hour

func previewKey(tillID string) string     { return "preview:" + tillID }
func previewChannel(tillID string) string { return "preview:" + tillID + ":events" }

// storedPreview est la forme persistée et renvoyée par le GET.
type storedPreview struct {
	Payload   models.PreviewPayload `json:"payload"`
	UpdatedAt string                `json:"updatedAt,omitempty"`
}

// streamEnvelope est la forme de chaque message du flux SSE.
type streamEnvelope struct {
	Type    string                `json:"type"`
	Payload models.PreviewPayload `json:"payload"`
}

func tillFromQuery(c *gin.Context) string {
	return c.DefaultQuery("till", config.DefaultTill())
}

// GetOrderPreview — GET /public/order-preview
// Instantané complet, en pull. Aucun aperçu publié → payload vide.
func GetOrderPreview(c *gin.Context) {
	till := tillFromQuery(c)

	data, err := database.Redis.Get(context.Background(), previewKey(till)).Result()
	if err != nil || data == "" {
		c.JSON(http.StatusOK, storedPreview{
			Payload: models.PreviewPayload{Lines: []models.PreviewLine{}},
		})
		return
	}

	var stored storedPreview
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		log.Printf("⚠️ Aperçu caisse %s illisible: %v", till, err)
		c.JSON(http.StatusOK, storedPreview{
			Payload: models.PreviewPayload{Lines: []models.PreviewLine{}},
		})
		return
	}

	c.JSON(http.StatusOK, stored)
}

// PublishOrderPreview — POST /public/order-preview
// Remplace l'instantané stocké puis le diffuse aux flux ouverts.
func PublishOrderPreview(c *gin.Context) {
	till := tillFromQuery(c)

	var input struct {
		Payload models.PreviewPayload `json:"payload"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx := context.Background()

	stored := storedPreview{
		Payload:   input.Payload,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	storedJSON, _ := json.Marshal(stored)
	if err := database.Redis.Set(ctx, previewKey(till), storedJSON, previewTTL).Err(); err != nil {
		log.Printf("⚠️ Sauvegarde aperçu caisse %s échouée: %v", till, err)
	}

	// Diffusion aux écrans connectés — best-effort
	envJSON, _ := json.Marshal(streamEnvelope{Type: "snapshot", Payload: input.Payload})
	if err := database.Redis.Publish(ctx, previewChannel(till), envJSON).Err(); err != nil {
		log.Printf("⚠️ Diffusion aperçu caisse %s échouée: %v", till, err)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// StreamOrderPreview — GET /public/order-preview/stream
// Flux SSE : un événement "snapshot" par publication, un "ping" périodique
// pour garder la connexion (et le watchdog de l'écran) en vie.
func StreamOrderPreview(c *gin.Context) {
	till := tillFromQuery(c)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	pubsub := database.Redis.Subscribe(ctx, previewChannel(till))
	defer pubsub.Close()
	ch := pubsub.Channel()

	// Premier événement : l'instantané courant, sans attendre une mutation
	if data, err := database.Redis.Get(ctx, previewKey(till)).Result(); err == nil && data != "" {
		var stored storedPreview
		if json.Unmarshal([]byte(data), &stored) == nil {
			envJSON, _ := json.Marshal(streamEnvelope{Type: "snapshot", Payload: stored.Payload})
			c.SSEvent("snapshot", string(envJSON))
			c.Writer.Flush()
		}
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", msg.Payload)
		case <-time.After(15 * time.Second):
			c.SSEvent("ping", "keepalive")
		case <-ctx.Done():
			return false
		}
		return true
	})
}
