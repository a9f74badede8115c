package utils

import (
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/wneessen/go-mail"
)

// SendDailyReport envoie le rapport de clôture de journée à REPORT_EMAIL
func SendDailyReport(day time.Time, income, expense, net float64, salesCount int, byCategory map[string]float64) error {
	to := os.Getenv("REPORT_EMAIL")
	if to == "" {
		return fmt.Errorf("REPORT_EMAIL non configuré")
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@moka-pos.local"
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject("Clôture de caisse du " + day.Format("02/01/2006"))
	msg.SetBodyString(mail.TypeTextHTML, dailyReportHTML(day, income, expense, net, salesCount, byCategory))

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return fmt.Errorf("SMTP_HOST non configuré")
	}

	client, err := mail.NewClient(host,
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi du rapport de clôture à", to)
	return client.DialAndSend(msg)
}

func dailyReportHTML(day time.Time, income, expense, net float64, salesCount int, byCategory map[string]float64) string {
	categories := make([]string, 0, len(byCategory))
	for name := range byCategory {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	rowsHTML := ""
	for _, name := range categories {
		rowsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd; text-align: right;">%.2f€</td>
			</tr>`, name, byCategory[name])
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Clôture de caisse</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Clôture de caisse du %s</h2>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tr>
				<td style="padding: 8px;">Recettes</td>
				<td style="padding: 8px; text-align: right;">%.2f€</td>
			</tr>
			<tr>
				<td style="padding: 8px;">Dépenses</td>
				<td style="padding: 8px; text-align: right;">%.2f€</td>
			</tr>
			<tr style="font-weight: bold; background-color: #f0f0f0;">
				<td style="padding: 8px;">Résultat net</td>
				<td style="padding: 8px; text-align: right;">%.2f€</td>
			</tr>
			<tr>
				<td style="padding: 8px;">Nombre de ventes</td>
				<td style="padding: 8px; text-align: right;">%d</td>
			</tr>
		</table>

		<h3>Par catégorie</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			%s
		</table>

		<p style="margin-top: 30px; color: #555;">
			Rapport généré automatiquement par la caisse.
		</p>
	</div>
</body>
</html>`, day.Format("02/01/2006"), income, expense, net, salesCount, rowsHTML)
}
