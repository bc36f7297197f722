package invoices

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	issued := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	rows := []WithRelations{
		{
			Invoice: Invoice{
				Number:   "2026-001",
				Amount:   decimal.RequireFromString("1234.56"),
				IssuedAt: issued,
				DueDate:  &due,
				Status:   StatusSent,
			},
			ClientName:   "Lumen Design",
			ProjectTitle: "Refonte du site vitrine",
		},
		{
			Invoice: Invoice{
				Number:   "2026-002",
				Amount:   decimal.RequireFromString("500.00"),
				IssuedAt: issued,
				Status:   StatusPaid,
			},
			ClientName:   "Girard BTP",
			ProjectTitle: "Portail intranet",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "Numéro;Client;Projet;Montant;Émise le;Échéance;Statut", lines[0])
	assert.Contains(t, lines[1], "2026-001")
	assert.Contains(t, lines[1], "Lumen Design")
	assert.Contains(t, lines[1], "10/02/2026")
	assert.Contains(t, lines[1], "12/03/2026")
	assert.Contains(t, lines[1], "Envoyée")
	// Missing due date leaves the column empty.
	assert.Contains(t, lines[2], ";;")
	assert.Contains(t, lines[2], "Payée")
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "factures_2026-03-15.csv", ExportFilename(now))
}
