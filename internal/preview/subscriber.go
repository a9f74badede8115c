// Package preview contient le consommateur de l'aperçu de commande affiché
// sur l'écran client : flux SSE en nominal, polling de secours sinon.
package preview

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"moka_pos/internal/models"
)

// State est l'état du mécanisme de livraison.
type State int

const (
	StateStreaming State = iota // flux SSE actif
	StatePolling                // polling à intervalle fixe
	StateClosed                 // terminal : tout est arrêté
)

func (s State) String() string {
	switch s {
	case StateStreaming:
		return "streaming"
	case StatePolling:
		return "polling"
	default:
		return "closed"
	}
}

// envelope est le format de chaque message du flux.
type envelope struct {
	Type    string                `json:"type"`
	Payload models.PreviewPayload `json:"payload"`
}

// snapshotResponse est la réponse du GET /public/order-preview.
type snapshotResponse struct {
	Payload   models.PreviewPayload `json:"payload"`
	UpdatedAt string                `json:"updatedAt,omitempty"`
}

// Subscriber maintient l'état affiché à partir de l'endpoint d'aperçu.
//
// Un seul mécanisme de livraison est actif à la fois : le flux SSE tant qu'il
// vit, le polling sinon. L'application d'un instantané est un remplacement
// complet, donc idempotente — un bref chevauchement pendant une transition
// est sans conséquence.
type Subscriber struct {
	baseURL   string // …/public/order-preview
	client    *http.Client
	watchdog  time.Duration
	pollEvery time.Duration
	onApply   func(models.PreviewPayload)

	mu      sync.Mutex
	state   State
	current models.PreviewPayload
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSubscriber prépare un abonné. onApply (optionnel) est appelé à chaque
// instantané appliqué ; watchdog et pollEvery sont des constantes de réglage.
func NewSubscriber(baseURL string, watchdog, pollEvery time.Duration, onApply func(models.PreviewPayload)) *Subscriber {
	return &Subscriber{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{},
		watchdog:  watchdog,
		pollEvery: pollEvery,
		onApply:   onApply,
		current:   models.PreviewPayload{Lines: []models.PreviewLine{}},
		done:      make(chan struct{}),
	}
}

// Start lance la machine : ouverture du flux, plus un fetch immédiat pour que
// le premier affichage n'attende pas le handshake.
func (s *Subscriber) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(ctx)
}

// Close arrête définitivement l'abonné : flux fermé, timers annulés.
func (s *Subscriber) Close() {
	s.mu.Lock()
	s.state = StateClosed
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-s.done
	}
}

// State retourne l'état courant du mécanisme de livraison.
func (s *Subscriber) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current retourne le dernier instantané appliqué.
func (s *Subscriber) Current() models.PreviewPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Subscriber) run(ctx context.Context) {
	defer close(s.done)

	// Premier affichage sans attendre le flux
	s.fetchOnce(ctx)

	for ctx.Err() == nil {
		started := time.Now()
		opened := s.consumeStream(ctx)
		if ctx.Err() != nil {
			return
		}

		// Flux indisponible ou perdu → polling. La boucle retentera le
		// flux au prochain tour ; s'il se rouvre, consumeStream repasse
		// en streaming et le polling s'arrête.
		s.setState(StatePolling)

		// Reconnexion immédiate seulement si le flux a réellement vécu :
		// un flux qui meurt dès l'ouverture (proxy, handler en erreur)
		// reprendrait sinon en boucle chaude sans jamais poller.
		if opened && time.Since(started) >= s.watchdog {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.pollEvery):
		}
		s.fetchOnce(ctx)
	}
}

// consumeStream tente d'ouvrir le flux SSE et le consomme jusqu'à sa fin.
// Retourne true si le flux a effectivement été ouvert.
func (s *Subscriber) consumeStream(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/stream", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return false
	}

	s.setState(StateStreaming)
	s.readEvents(ctx, resp.Body)
	return true
}

// readEvents lit les événements SSE. Le watchdog couvre les trous : sans
// message dans le délai, un fetch ponctuel est déclenché — le flux reste
// considéré comme fiable, ce n'est pas une transition d'état.
func (s *Subscriber) readEvents(ctx context.Context, body io.Reader) {
	watchdog := time.AfterFunc(s.watchdog, func() { s.fetchOnce(ctx) })
	defer watchdog.Stop()

	scanner := bufio.NewScanner(body)
	event, data := "", ""
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" { // fin d'événement
			if event == "snapshot" && data != "" {
				var env envelope
				if err := json.Unmarshal([]byte(data), &env); err != nil {
					log.Printf("⚠️ Message d'aperçu illisible: %v", err)
				} else if env.Type == "snapshot" {
					s.apply(env.Payload)
				}
			}
			watchdog.Reset(s.watchdog)
			event, data = "", ""
			continue
		}

		if strings.HasPrefix(line, ":") { // commentaire keep-alive
			continue
		}
		if v, ok := strings.CutPrefix(line, "event:"); ok {
			event = strings.TrimSpace(v)
		} else if v, ok := strings.CutPrefix(line, "data:"); ok {
			data += strings.TrimSpace(v)
		}
	}
}

// fetchOnce récupère l'instantané courant via le GET et l'applique.
func (s *Subscriber) fetchOnce(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("⚠️ Fetch aperçu échoué: %v", err)
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return
	}

	var snap snapshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		log.Printf("⚠️ Réponse aperçu illisible: %v", err)
		return
	}
	s.apply(snap.Payload)
}

// apply remplace intégralement l'état affiché — pas de diff, pas de fusion.
func (s *Subscriber) apply(payload models.PreviewPayload) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.current = payload
	cb := s.onApply
	s.mu.Unlock()

	if cb != nil {
		cb(payload)
	}
}

// setState change d'état, sauf depuis StateClosed qui est terminal.
func (s *Subscriber) setState(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	if s.state != next {
		log.Printf("🔁 Aperçu client: %s → %s", s.state, next)
		s.state = next
	}
}
