package report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/atelier-crm/atelier-crm/internal/company"
	"github.com/atelier-crm/atelier-crm/internal/invoices"
)

//go:embed templates/*.html
var templates embed.FS

// vatRate is the standard French VAT applied on top of the net amount.
var vatRate = decimal.NewFromFloat(0.20)

// CompanySource provides the issuing company printed on documents.
type CompanySource interface {
	Get(ctx context.Context) (*company.Profile, error)
}

// Exporter renders invoice documents through Gotenberg.
type Exporter struct {
	endpoint string
	client   *http.Client
	company  CompanySource
	tpl      *template.Template
}

// NewExporter creates an Exporter with parsed templates.
func NewExporter(endpoint string, client *http.Client, source CompanySource) (*Exporter, error) {
	printer := message.NewPrinter(language.French)
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006")
		},
		"formatDatePtr": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006")
		},
		"formatAmount": func(d decimal.Decimal) string {
			f, _ := d.Float64()
			return printer.Sprintf("%.2f €", f)
		},
	}

	tpl, err := template.New("invoice_pdf.html").Funcs(funcMap).ParseFS(
		templates, "templates/invoice_pdf.html",
	)
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}

	return &Exporter{
		endpoint: endpoint,
		client:   client,
		company:  source,
		tpl:      tpl,
	}, nil
}

// invoicePayload aggregates everything the invoice document shows.
type invoicePayload struct {
	Invoice *invoices.WithRelations
	Company *company.Profile
	Net     decimal.Decimal
	VAT     decimal.Decimal
	Gross   decimal.Decimal
}

// InvoicePDF renders the invoice as HTML and converts it to PDF.
func (e *Exporter) InvoicePDF(ctx context.Context, inv *invoices.WithRelations) ([]byte, error) {
	endpoint := strings.TrimRight(e.endpoint, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("gotenberg endpoint required")
	}
	client := e.client
	if client == nil {
		client = http.DefaultClient
	}

	profile, err := e.company.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load company profile: %w", err)
	}

	html, err := e.buildInvoiceHTML(inv, profile)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("files", "invoice.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}

	// A4 portrait with generous margins.
	fields := map[string]string{
		"paperWidth":   "8.27",
		"paperHeight":  "11.69",
		"marginTop":    "0.6",
		"marginBottom": "0.6",
		"marginLeft":   "0.6",
		"marginRight":  "0.6",
		"waitDelay":    "100",
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(data))
	}

	return io.ReadAll(resp.Body)
}

func (e *Exporter) buildInvoiceHTML(inv *invoices.WithRelations, profile *company.Profile) (string, error) {
	vat := inv.Amount.Mul(vatRate).Round(2)
	payload := invoicePayload{
		Invoice: inv,
		Company: profile,
		Net:     inv.Amount,
		VAT:     vat,
		Gross:   inv.Amount.Add(vat),
	}

	buf := &bytes.Buffer{}
	if err := e.tpl.ExecuteTemplate(buf, "invoice_pdf.html", payload); err != nil {
		return "", err
	}
	return buf.String(), nil
}
