package models

// Customizations contient les sélections d'options d'une ligne.
// Groupe à choix unique → string, groupe à choix multiples → []string.
type Customizations map[string]interface{}

type CartLine struct {
	ID             string         `json:"id"`
	ProductID      string         `json:"productId"`
	ProductName    string         `json:"productName"`
	UnitPrice      float64        `json:"unitPrice"`
	Quantity       int            `json:"quantity"`
	Customizations Customizations `json:"customizations,omitempty"`
	LineTotal      float64        `json:"lineTotal"`
}

// SelectedCustomer est le client fidélité rattaché au panier en cours.
type SelectedCustomer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Points int    `json:"points,omitempty"`
}

// CartSnapshot est l'état complet du panier d'une caisse à un instant donné.
// Les lignes gardent leur ordre d'insertion pour l'affichage.
type CartSnapshot struct {
	Lines    []CartLine        `json:"lines"`
	Customer *SelectedCustomer `json:"customer,omitempty"`
}

// Subtotal retourne la somme des totaux de lignes.
func (s CartSnapshot) Subtotal() float64 {
	total := 0.0
	for _, l := range s.Lines {
		total += l.LineTotal
	}
	return total
}

// QuantityOf retourne la quantité cumulée d'un produit, toutes lignes confondues.
func (s CartSnapshot) QuantityOf(productID string) int {
	n := 0
	for _, l := range s.Lines {
		if l.ProductID == productID {
			n += l.Quantity
		}
	}
	return n
}
