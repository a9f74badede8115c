package models

// PreviewLine est la projection d'une ligne pour l'écran client.
type PreviewLine struct {
	ProductName    string         `json:"productName"`
	Quantity       int            `json:"quantity"`
	UnitPrice      float64        `json:"unitPrice"`
	LineTotal      float64        `json:"lineTotal"`
	Customizations Customizations `json:"customizations,omitempty"`
}

type PreviewCustomer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// PreviewPayload est l'instantané complet envoyé à l'écran client.
// Toujours reconstruit à partir du panier, jamais mis à jour partiellement.
type PreviewPayload struct {
	Lines    []PreviewLine    `json:"lines"`
	Customer *PreviewCustomer `json:"customer,omitempty"`
	Total    float64          `json:"total"`
}

// BuildPreview projette un panier en payload d'aperçu.
func BuildPreview(snap CartSnapshot) PreviewPayload {
	p := PreviewPayload{Lines: []PreviewLine{}}
	for _, l := range snap.Lines {
		p.Lines = append(p.Lines, PreviewLine{
			ProductName:    l.ProductName,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			LineTotal:      l.LineTotal,
			Customizations: l.Customizations,
		})
		p.Total += l.LineTotal
	}
	if snap.Customer != nil {
		p.Customer = &PreviewCustomer{
			ID:    snap.Customer.ID,
			Name:  snap.Customer.Name,
			Phone: snap.Customer.Phone,
		}
	}
	return p
}
