package pos

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"moka_pos/internal/models"
)

// Publisher pousse l'aperçu du panier vers l'endpoint de l'écran client.
//
// Single-flight avec écrasement : au plus une requête en cours, et un seul
// emplacement d'attente qui ne garde que le payload le plus récent. Les
// payloads sont des instantanés complets, les états intermédiaires perdus
// sont sans importance — l'endpoint finit toujours par recevoir le dernier.
type Publisher struct {
	endpoint string
	client   *http.Client

	mu       sync.Mutex
	inFlight bool
	pending  *models.PreviewPayload // dernier payload en attente, écrasé à chaque Publish
}

func NewPublisher(endpoint string) *Publisher {
	return &Publisher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Publish envoie le payload, ou le met en attente si une requête est déjà
// en cours. Ne bloque jamais l'appelant.
func (p *Publisher) Publish(payload models.PreviewPayload) {
	if p == nil {
		return
	}

	p.mu.Lock()
	if p.inFlight {
		p.pending = &payload
		p.mu.Unlock()
		return
	}
	p.inFlight = true
	p.mu.Unlock()

	go p.run(payload)
}

// run enchaîne les envois : après chaque requête, l'emplacement d'attente est
// vidé AVANT l'envoi suivant pour éviter tout doublon.
func (p *Publisher) run(payload models.PreviewPayload) {
	for {
		p.send(payload)

		p.mu.Lock()
		if p.pending == nil {
			p.inFlight = false
			p.mu.Unlock()
			return
		}
		payload = *p.pending
		p.pending = nil
		p.mu.Unlock()
	}
}

// send poste un payload. Les échecs sont loggés puis avalés : la prochaine
// mutation produira de toute façon un instantané plus frais.
func (p *Publisher) send(payload models.PreviewPayload) {
	body, err := json.Marshal(map[string]interface{}{"payload": payload})
	if err != nil {
		log.Printf("❌ Erreur encodage aperçu: %v", err)
		return
	}

	resp, err := p.client.Post(p.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️ Publication aperçu échouée: %v", err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		log.Printf("⚠️ Publication aperçu refusée: HTTP %d", resp.StatusCode)
	}
}

// Idle indique qu'aucune requête n'est en cours ni en attente.
func (p *Publisher) Idle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.inFlight && p.pending == nil
}
