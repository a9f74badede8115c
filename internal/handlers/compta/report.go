package compta

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"moka_pos/internal/database"
	"moka_pos/internal/models"
	"moka_pos/internal/utils"
)

// Summary agrège les écritures d'une période.
type Summary struct {
	From        string             `json:"from,omitempty"`
	To          string             `json:"to,omitempty"`
	Income      float64            `json:"income"`
	Expense     float64            `json:"expense"`
	Net         float64            `json:"net"`
	Count       int                `json:"count"`
	ByCategory  map[string]float64 `json:"by_category"`
	SalesCount  int                `json:"sales_count"`
	AverageSale float64            `json:"average_sale"`
}

//
// 📊 GET /api/compta/summary?from=…&to=…
//
func GetSummary(c *gin.Context) {
	from, to, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := buildSummary(from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul résumé: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

//
// 📧 POST /api/compta/close-day
//
// Clôture de journée : calcule le résumé du jour et l'envoie par email
// à l'adresse REPORT_EMAIL
func CloseDay(c *gin.Context) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	summary, err := buildSummary(from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul résumé: " + err.Error()})
		return
	}

	if err := utils.SendDailyReport(now, summary.Income, summary.Expense, summary.Net,
		summary.SalesCount, summary.ByCategory); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur envoi rapport: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Journée clôturée, rapport envoyé", "summary": summary})
}

func buildSummary(from, to time.Time) (*Summary, error) {
	session, err := database.GetCaisseSession()
	if err != nil {
		return nil, err
	}

	summary := &Summary{ByCategory: map[string]float64{}}
	if !from.IsZero() {
		summary.From = from.Format(time.RFC3339)
	}
	if !to.IsZero() {
		summary.To = to.Format(time.RFC3339)
	}

	iter := session.Query(`SELECT transaction_id, kind, amount, label, category, sale_id, date FROM transactions`).Iter()

	var tx models.Transaction
	for iter.Scan(&tx.ID, &tx.Kind, &tx.Amount, &tx.Label, &tx.Category, &tx.SaleID, &tx.Date) {
		if !inPeriod(tx.Date, from, to) {
			tx = models.Transaction{}
			continue
		}

		summary.Count++
		switch tx.Kind {
		case models.TransactionIncome:
			summary.Income += tx.Amount
		case models.TransactionExpense:
			summary.Expense += tx.Amount
		}
		if tx.Category != "" {
			if tx.Kind == models.TransactionExpense {
				summary.ByCategory[tx.Category] -= tx.Amount
			} else {
				summary.ByCategory[tx.Category] += tx.Amount
			}
		}
		if tx.SaleID != nil {
			summary.SalesCount++
		}
		tx = models.Transaction{}
	}

	if err := iter.Close(); err != nil {
		return nil, err
	}

	summary.Net = summary.Income - summary.Expense
	if summary.SalesCount > 0 {
		summary.AverageSale = summary.Income / float64(summary.SalesCount)
	}

	return summary, nil
}
