package report

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-crm/atelier-crm/internal/company"
	"github.com/atelier-crm/atelier-crm/internal/invoices"
)

type profileStub struct{}

func (profileStub) Get(ctx context.Context) (*company.Profile, error) {
	return &company.Profile{
		Name:       "Atelier Numérique",
		Address:    "12 rue de la République",
		PostalCode: "69002",
		City:       "Lyon",
		SIRET:      "83214976500019",
		VATNumber:  "FR32832149765",
	}, nil
}

func TestBuildInvoiceHTML(t *testing.T) {
	exporter, err := NewExporter("http://gotenberg:3000", nil, profileStub{})
	require.NoError(t, err)

	due := time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC)
	inv := &invoices.WithRelations{
		Invoice: invoices.Invoice{
			Number:   "2026-007",
			Amount:   decimal.RequireFromString("1500.00"),
			IssuedAt: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
			DueDate:  &due,
			Status:   invoices.StatusSent,
		},
		ClientName:   "Dubois",
		ProjectTitle: "Refonte du site vitrine",
	}

	profile, err := profileStub{}.Get(context.Background())
	require.NoError(t, err)

	html, err := exporter.buildInvoiceHTML(inv, profile)
	require.NoError(t, err)

	assert.Contains(t, html, "2026-007")
	assert.Contains(t, html, "Dubois")
	assert.Contains(t, html, "Refonte du site vitrine")
	assert.Contains(t, html, "Atelier Numérique")
	assert.Contains(t, html, "15/03/2026")
	assert.Contains(t, html, "14/04/2026")
	// Net, 20 % VAT and gross.
	assert.Contains(t, html, "1")
	assert.Contains(t, html, "500,00")
	assert.Contains(t, html, "300,00")
	assert.Contains(t, html, "800,00")
}

func TestNewExporterParsesTemplates(t *testing.T) {
	exporter, err := NewExporter("http://gotenberg:3000", nil, profileStub{})
	require.NoError(t, err)
	require.NotNil(t, exporter.tpl)
}
