package dashboard

import "github.com/shopspring/decimal"

// Stats aggregates the headline figures shown on the home screen.
type Stats struct {
	Clients        ClientStats     `json:"clients"`
	Projects       ProjectStats    `json:"projects"`
	Invoices       InvoiceStats    `json:"invoices"`
	MonthlyRevenue []MonthlyAmount `json:"monthly_revenue"`
}

// ClientStats counts clients by status.
type ClientStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Prospect int `json:"prospect"`
}

// ProjectStats counts projects by status.
type ProjectStats struct {
	Total      int `json:"total"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

// InvoiceStats breaks invoices down by status with the billed and
// collected totals. PaymentRate is collected over billed, in percent;
// cancelled invoices count in neither.
type InvoiceStats struct {
	Total       int             `json:"total"`
	Draft       int             `json:"draft"`
	Sent        int             `json:"sent"`
	Paid        int             `json:"paid"`
	Overdue     int             `json:"overdue"`
	Cancelled   int             `json:"cancelled"`
	TotalBilled decimal.Decimal `json:"total_billed"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	PaymentRate float64         `json:"payment_rate"`
}

// MonthlyAmount is revenue collected in one calendar month.
type MonthlyAmount struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}
