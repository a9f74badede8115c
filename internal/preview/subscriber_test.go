package preview

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moka_pos/internal/models"
)

// previewServer simule l'endpoint d'aperçu : GET instantané + flux SSE.
type previewServer struct {
	mu          sync.Mutex
	snapshot    models.PreviewPayload
	fetchCount  int
	streamOK    bool
	streamFeed  chan models.PreviewPayload
	streamDrops chan struct{} // fermé pour couper le flux en cours
}

func newPreviewServer(streamOK bool) *previewServer {
	return &previewServer{
		streamOK:    streamOK,
		streamFeed:  make(chan models.PreviewPayload, 16),
		streamDrops: make(chan struct{}),
	}
}

func (ps *previewServer) setSnapshot(p models.PreviewPayload) {
	ps.mu.Lock()
	ps.snapshot = p
	ps.mu.Unlock()
}

func (ps *previewServer) fetches() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.fetchCount
}

func (ps *previewServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.fetchCount++
		snap := ps.snapshot
		ps.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"payload": snap})
	})

	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		if !ps.streamOK {
			http.NotFound(w, r)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ps.mu.Lock()
		drops := ps.streamDrops
		ps.mu.Unlock()

		for {
			select {
			case payload := <-ps.streamFeed:
				env := map[string]interface{}{"type": "snapshot", "payload": payload}
				data, _ := json.Marshal(env)
				fmt.Fprintf(w, "event:snapshot\ndata:%s\n\n", data)
				flusher.Flush()
			case <-drops:
				return
			case <-r.Context().Done():
				return
			}
		}
	})

	return mux
}

func previewWithTotal(total float64) models.PreviewPayload {
	return models.PreviewPayload{
		Lines: []models.PreviewLine{{ProductName: "Latte", Quantity: 1, UnitPrice: total, LineTotal: total}},
		Total: total,
	}
}

func startSubscriber(t *testing.T, url string, watchdog, poll time.Duration) (*Subscriber, chan models.PreviewPayload) {
	t.Helper()

	applied := make(chan models.PreviewPayload, 32)
	sub := NewSubscriber(url, watchdog, poll, func(p models.PreviewPayload) {
		applied <- p
	})
	sub.Start()
	t.Cleanup(sub.Close)
	return sub, applied
}

func waitApplied(t *testing.T, applied chan models.PreviewPayload, total float64) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case p := <-applied:
			if p.Total == total {
				return
			}
		case <-deadline:
			t.Fatalf("instantané total=%v jamais appliqué", total)
		}
	}
}

func TestStreamingAppliesSnapshots(t *testing.T) {
	ps := newPreviewServer(true)
	srv := httptest.NewServer(ps.handler())
	t.Cleanup(srv.Close)

	sub, applied := startSubscriber(t, srv.URL, time.Second, time.Second)

	// Le fetch initial applique l'instantané courant (vide)
	waitApplied(t, applied, 0)

	ps.streamFeed <- previewWithTotal(4.50)
	waitApplied(t, applied, 4.50)

	assert.Equal(t, StateStreaming, sub.State())
	assert.Equal(t, 4.50, sub.Current().Total)
}

func TestApplyIsIdempotent(t *testing.T) {
	ps := newPreviewServer(true)
	srv := httptest.NewServer(ps.handler())
	t.Cleanup(srv.Close)

	sub, applied := startSubscriber(t, srv.URL, time.Second, time.Second)

	for i := 0; i < 3; i++ {
		ps.streamFeed <- previewWithTotal(4.50)
	}
	waitApplied(t, applied, 4.50)
	waitApplied(t, applied, 4.50)
	waitApplied(t, applied, 4.50)

	// Remplacement complet : même payload, même état
	assert.Equal(t, 4.50, sub.Current().Total)
	assert.Len(t, sub.Current().Lines, 1)
}

func TestPollingFallbackWhenStreamUnavailable(t *testing.T) {
	ps := newPreviewServer(false)
	srv := httptest.NewServer(ps.handler())
	t.Cleanup(srv.Close)

	ps.setSnapshot(previewWithTotal(2.50))
	sub, applied := startSubscriber(t, srv.URL, time.Second, 20*time.Millisecond)

	waitApplied(t, applied, 2.50)

	require.Eventually(t, func() bool {
		return sub.State() == StatePolling
	}, 2*time.Second, 5*time.Millisecond)

	// Le polling continue à rafraîchir
	ps.setSnapshot(previewWithTotal(7.00))
	waitApplied(t, applied, 7.00)
}

func TestWatchdogFetchesDuringSilentStream(t *testing.T) {
	ps := newPreviewServer(true)
	srv := httptest.NewServer(ps.handler())
	t.Cleanup(srv.Close)

	ps.setSnapshot(previewWithTotal(3.00))
	sub, applied := startSubscriber(t, srv.URL, 50*time.Millisecond, time.Minute)

	// Flux ouvert mais muet : le watchdog déclenche un fetch ponctuel
	waitApplied(t, applied, 3.00)

	require.Eventually(t, func() bool {
		return ps.fetches() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	// Pas de bascule d'état : le flux reste le mécanisme nominal
	assert.Equal(t, StateStreaming, sub.State())
}

func TestStreamLossTriggersReconnect(t *testing.T) {
	ps := newPreviewServer(true)
	srv := httptest.NewServer(ps.handler())
	t.Cleanup(srv.Close)

	sub, applied := startSubscriber(t, srv.URL, time.Second, 20*time.Millisecond)

	ps.streamFeed <- previewWithTotal(1.00)
	waitApplied(t, applied, 1.00)

	// Coupure franche du flux → reconnexion immédiate
	ps.mu.Lock()
	close(ps.streamDrops)
	ps.streamDrops = make(chan struct{})
	ps.mu.Unlock()

	ps.streamFeed <- previewWithTotal(2.00)
	waitApplied(t, applied, 2.00)
	assert.Equal(t, StateStreaming, sub.State())
}

func TestInstantlyDyingStreamFallsBackToPolling(t *testing.T) {
	var mu sync.Mutex
	streamAttempts := 0
	fetches := 0
	snapshot := previewWithTotal(2.50)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		fetches++
		snap := snapshot
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"payload": snap})
	})
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		streamAttempts++
		mu.Unlock()

		// Flux accepté puis coupé aussitôt après les en-têtes
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	sub, applied := startSubscriber(t, srv.URL, 200*time.Millisecond, 30*time.Millisecond)
	waitApplied(t, applied, 2.50)

	// Le polling doit tourner malgré un flux qui meurt à chaque ouverture
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fetches >= 4
	}, 3*time.Second, 10*time.Millisecond)

	// L'état est en polling la quasi-totalité du temps (chaque tentative
	// de flux ne vit qu'un instant)
	require.Eventually(t, func() bool {
		return sub.State() == StatePolling
	}, 2*time.Second, 5*time.Millisecond)

	// Pas de boucle chaude : une tentative de flux par battement de polling
	mu.Lock()
	attempts, polls := streamAttempts, fetches
	mu.Unlock()
	assert.LessOrEqual(t, attempts, polls+2)

	// Et le polling continue bien à livrer les mises à jour
	mu.Lock()
	snapshot = previewWithTotal(7.00)
	mu.Unlock()
	waitApplied(t, applied, 7.00)
}

func TestCloseIsTerminal(t *testing.T) {
	ps := newPreviewServer(true)
	srv := httptest.NewServer(ps.handler())
	t.Cleanup(srv.Close)

	sub, _ := startSubscriber(t, srv.URL, time.Second, time.Second)
	sub.Close()

	assert.Equal(t, StateClosed, sub.State())

	// Close est idempotent et l'état reste terminal
	sub.Close()
	assert.Equal(t, StateClosed, sub.State())
}
