package model

// DashboardResponse aggregates per-tenant document counts and money totals
type DashboardResponse struct {
	DraftEstimates    int64  `json:"draft_estimates"`
	SentEstimates     int64  `json:"sent_estimates"`
	ApprovedEstimates int64  `json:"approved_estimates"`
	DeclinedEstimates int64  `json:"declined_estimates"`
	UnpaidInvoices    int64  `json:"unpaid_invoices"`
	OverdueInvoices   int64  `json:"overdue_invoices"`
	OutstandingTotal  string `json:"outstanding_total"` // sum of unpaid invoice totals
	OverdueTotal      string `json:"overdue_total"`
	PaidThisMonth     string `json:"paid_this_month"`
	TotalClients      int64  `json:"total_clients"`
}
