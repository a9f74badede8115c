package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moka_pos/internal/database"
	"moka_pos/internal/models"
)

func setupPreviewRouter(t *testing.T) *gin.Engine {
	t.Helper()

	mr := miniredis.RunT(t)
	database.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { database.Redis.Close() })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/public/order-preview", GetOrderPreview)
	r.POST("/public/order-preview", PublishOrderPreview)
	r.GET("/public/order-preview/stream", StreamOrderPreview)
	return r
}

func postPreview(t *testing.T, r *gin.Engine, payload models.PreviewPayload) {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{"payload": payload})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/public/order-preview", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetOrderPreviewEmpty(t *testing.T) {
	r := setupPreviewRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/order-preview", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Payload models.PreviewPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Payload.Lines)
	assert.Zero(t, resp.Payload.Total)
}

func TestPublishThenGetRoundTrip(t *testing.T) {
	r := setupPreviewRouter(t)

	payload := models.PreviewPayload{
		Lines: []models.PreviewLine{{ProductName: "Latte", Quantity: 2, UnitPrice: 4.00, LineTotal: 8.00}},
		Total: 8.00,
	}
	postPreview(t, r, payload)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/order-preview", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Payload   models.PreviewPayload `json:"payload"`
		UpdatedAt string                `json:"updatedAt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Payload.Lines, 1)
	assert.Equal(t, "Latte", resp.Payload.Lines[0].ProductName)
	assert.Equal(t, 8.00, resp.Payload.Total)
	assert.NotEmpty(t, resp.UpdatedAt)
}

func TestPublishReplacesSnapshot(t *testing.T) {
	r := setupPreviewRouter(t)

	postPreview(t, r, models.PreviewPayload{Total: 3.00})
	postPreview(t, r, models.PreviewPayload{Total: 5.50})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/order-preview", nil))

	var resp struct {
		Payload models.PreviewPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5.50, resp.Payload.Total)
}

func TestPreviewsIsolatedPerTill(t *testing.T) {
	r := setupPreviewRouter(t)

	body, _ := json.Marshal(map[string]interface{}{"payload": models.PreviewPayload{Total: 9.00}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/public/order-preview?till=2", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// La caisse 1 reste vide
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/order-preview?till=1", nil))
	var resp struct {
		Payload models.PreviewPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Payload.Total)

	// La caisse 2 voit son aperçu
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/order-preview?till=2", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 9.00, resp.Payload.Total)
}

func TestStreamSendsInitialSnapshot(t *testing.T) {
	r := setupPreviewRouter(t)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	postPreview(t, r, models.PreviewPayload{Total: 4.50})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/public/order-preview/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Le premier événement du flux est l'instantané courant
	scanner := bufio.NewScanner(resp.Body)
	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		if v, ok := strings.CutPrefix(line, "event:"); ok {
			event = strings.TrimSpace(v)
		}
		if v, ok := strings.CutPrefix(line, "data:"); ok {
			data = strings.TrimSpace(v)
			break
		}
	}
	require.Equal(t, "snapshot", event)

	var env struct {
		Type    string                `json:"type"`
		Payload models.PreviewPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &env))
	assert.Equal(t, "snapshot", env.Type)
	assert.Equal(t, 4.50, env.Payload.Total)
}
