package pos

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moka_pos/internal/models"
)

type previewSink struct {
	mu       sync.Mutex
	payloads []models.PreviewPayload
	block    chan struct{} // si non-nil, la première requête attend ce signal
}

func (s *previewSink) handler() http.HandlerFunc {
	first := true
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		block := s.block
		wasFirst := first
		first = false
		s.mu.Unlock()

		if block != nil && wasFirst {
			<-block
		}

		var body struct {
			Payload models.PreviewPayload `json:"payload"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		s.mu.Lock()
		s.payloads = append(s.payloads, body.Payload)
		s.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
}

func (s *previewSink) received() []models.PreviewPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PreviewPayload, len(s.payloads))
	copy(out, s.payloads)
	return out
}

func payloadWithTotal(total float64) models.PreviewPayload {
	return models.PreviewPayload{
		Lines: []models.PreviewLine{{ProductName: "Espresso", Quantity: 1, UnitPrice: total, LineTotal: total}},
		Total: total,
	}
}

func waitIdle(t *testing.T, p *Publisher) {
	t.Helper()
	require.Eventually(t, p.Idle, 2*time.Second, 5*time.Millisecond, "publisher jamais revenu au repos")
}

func TestPublishSendsPayload(t *testing.T) {
	sink := &previewSink{}
	srv := httptest.NewServer(sink.handler())
	t.Cleanup(srv.Close)

	p := NewPublisher(srv.URL)
	p.Publish(payloadWithTotal(2.50))
	waitIdle(t, p)

	got := sink.received()
	require.Len(t, got, 1)
	assert.Equal(t, 2.50, got[0].Total)
}

func TestPublishCoalescesBurstToLatest(t *testing.T) {
	sink := &previewSink{block: make(chan struct{})}
	srv := httptest.NewServer(sink.handler())
	t.Cleanup(srv.Close)

	p := NewPublisher(srv.URL)

	// La première requête part puis reste bloquée côté serveur
	p.Publish(payloadWithTotal(1))
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.inFlight
	}, time.Second, time.Millisecond)

	// Rafale pendant le vol : seul le dernier payload doit survivre
	for i := 2; i <= 6; i++ {
		p.Publish(payloadWithTotal(float64(i)))
	}
	close(sink.block)
	waitIdle(t, p)

	got := sink.received()
	require.Len(t, got, 2, "une requête en vol plus une pour le payload le plus récent")
	assert.Equal(t, 1.0, got[0].Total)
	assert.Equal(t, 6.0, got[1].Total)
}

func TestPublishSequentialSendsAll(t *testing.T) {
	sink := &previewSink{}
	srv := httptest.NewServer(sink.handler())
	t.Cleanup(srv.Close)

	p := NewPublisher(srv.URL)
	for i := 1; i <= 3; i++ {
		p.Publish(payloadWithTotal(float64(i)))
		waitIdle(t, p)
	}

	got := sink.received()
	require.Len(t, got, 3)
	assert.Equal(t, 3.0, got[2].Total)
}

func TestPublishSurvivesServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	p := NewPublisher(srv.URL)
	p.Publish(payloadWithTotal(1))
	waitIdle(t, p)

	// L'échec est avalé, l'envoi suivant repart normalement
	p.Publish(payloadWithTotal(2))
	waitIdle(t, p)
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *Publisher
	p.Publish(payloadWithTotal(1))
}
