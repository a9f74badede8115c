package compta

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"moka_pos/internal/database"
	"moka_pos/internal/models"
)

//
// 🟢 POST /api/compta/transactions
//
func CreateTransaction(c *gin.Context) {
	var input struct {
		Kind     string  `json:"kind" binding:"required"`
		Amount   float64 `json:"amount" binding:"required"`
		Label    string  `json:"label" binding:"required"`
		Category string  `json:"category"`
		Date     string  `json:"date"` // RFC3339, défaut maintenant
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	if input.Kind != models.TransactionIncome && input.Kind != models.TransactionExpense {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le type doit être 'income' ou 'expense'"})
		return
	}
	if input.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Montant invalide"})
		return
	}

	date := time.Now().UTC()
	if input.Date != "" {
		parsed, err := time.Parse(time.RFC3339, input.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Date invalide (format RFC3339 attendu)"})
			return
		}
		date = parsed.UTC()
	}

	session, err := database.GetCaisseSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	tx := models.Transaction{
		ID:       gocql.TimeUUID(),
		Kind:     input.Kind,
		Amount:   input.Amount,
		Label:    input.Label,
		Category: input.Category,
		Date:     date,
	}

	query := `INSERT INTO transactions (transaction_id, kind, amount, label, category, sale_id, date) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if err := session.Query(query, tx.ID, tx.Kind, tx.Amount, tx.Label, tx.Category, nil, tx.Date).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création écriture: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, tx)
}

//
// 🔵 GET /api/compta/transactions?from=…&to=…&kind=…
//
func GetTransactions(c *gin.Context) {
	from, to, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kindFilter := c.Query("kind")

	session, err := database.GetCaisseSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT transaction_id, kind, amount, label, category, sale_id, date FROM transactions`).Iter()

	transactions := []models.Transaction{}
	var tx models.Transaction
	for iter.Scan(&tx.ID, &tx.Kind, &tx.Amount, &tx.Label, &tx.Category, &tx.SaleID, &tx.Date) {
		if !inPeriod(tx.Date, from, to) {
			tx = models.Transaction{}
			continue
		}
		if kindFilter != "" && tx.Kind != kindFilter {
			tx = models.Transaction{}
			continue
		}
		transactions = append(transactions, tx)
		tx = models.Transaction{}
	}

	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture écritures: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "total": len(transactions)})
}

//
// ❌ DELETE /api/compta/transactions/:id
//
func DeleteTransaction(c *gin.Context) {
	txUUID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID écriture invalide"})
		return
	}

	session, err := database.GetCaisseSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query("DELETE FROM transactions WHERE transaction_id = ?", txUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression écriture"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Écriture supprimée"})
}

// parsePeriod lit les bornes from/to (RFC3339 ou AAAA-MM-JJ), défaut: tout
func parsePeriod(c *gin.Context) (time.Time, time.Time, error) {
	var from, to time.Time

	if v := c.Query("from"); v != "" {
		parsed, err := parseDate(v)
		if err != nil {
			return from, to, err
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := parseDate(v)
		if err != nil {
			return from, to, err
		}
		to = parsed
	}
	return from, to, nil
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func inPeriod(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
