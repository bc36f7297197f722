package invoices

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shopspring/decimal"
)

// csvHeader matches the column layout accountants import into their
// bookkeeping tools.
var csvHeader = []string{"Numéro", "Client", "Projet", "Montant", "Émise le", "Échéance", "Statut"}

var statusLabels = map[Status]string{
	StatusDraft:     "Brouillon",
	StatusSent:      "Envoyée",
	StatusPaid:      "Payée",
	StatusOverdue:   "En retard",
	StatusCancelled: "Annulée",
}

// WriteCSV renders the invoices as a semicolon separated CSV with
// French number formatting, the convention of the bookkeeping side.
func WriteCSV(w io.Writer, invoices []WithRelations) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	printer := message.NewPrinter(language.French)
	for _, inv := range invoices {
		dueDate := ""
		if inv.DueDate != nil {
			dueDate = inv.DueDate.Format("02/01/2006")
		}
		record := []string{
			inv.Number,
			inv.ClientName,
			inv.ProjectTitle,
			formatAmount(printer, inv.Amount),
			inv.IssuedAt.Format("02/01/2006"),
			dueDate,
			statusLabels[inv.Status],
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatAmount renders a money amount with French separators, e.g.
// "1 234,56 €".
func formatAmount(p *message.Printer, amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return p.Sprintf("%.2f €", f)
}

// ExportFilename names a CSV download for the given instant.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("factures_%s.csv", now.Format("2006-01-02"))
}
