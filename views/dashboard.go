// Package views computes derived read models from collection snapshots.
// Every builder is a pure function over its inputs: no caching, no
// incremental maintenance, identical results under input permutation.
package views

import (
	"time"

	"crm-api/domain"
)

// activeClientWindow is the trailing window over Contact.LastContact that
// counts a contact as active. The boundary is inclusive: a last contact
// exactly this long ago still counts.
const activeClientWindow = 30 * 24 * time.Hour

// Summary is the dashboard's headline figures.
type Summary struct {
	ActiveListings int     `json:"activeListings"`
	PendingSales   int     `json:"pendingSales"`
	TotalRevenue   float64 `json:"totalRevenue"`
	ActiveClients  int     `json:"activeClients"`
}

// Summarize computes the dashboard summary as of now. Transactions without an
// amount contribute zero revenue.
func Summarize(transactions []domain.Transaction, contacts []domain.Contact, now time.Time) Summary {
	var s Summary
	for _, t := range transactions {
		if t.Status == domain.TransactionActive && t.Type == domain.TypeListing {
			s.ActiveListings++
		}
		if t.Status == domain.TransactionPending {
			s.PendingSales++
		}
		if t.Status == domain.TransactionClosed {
			s.TotalRevenue += t.AmountValue()
		}
	}
	cutoff := now.Add(-activeClientWindow)
	for _, c := range contacts {
		if !c.LastContact.Before(cutoff) {
			s.ActiveClients++
		}
	}
	return s
}

// TaskStatusBreakdown partitions tasks by board status.
func TaskStatusBreakdown(tasks []domain.Task) map[domain.TaskStatus]int {
	counts := map[domain.TaskStatus]int{
		domain.TaskTodo:       0,
		domain.TaskInProgress: 0,
		domain.TaskDone:       0,
	}
	for _, t := range tasks {
		if _, ok := counts[t.Status]; ok {
			counts[t.Status]++
		}
	}
	return counts
}

// TransactionTypeBreakdown partitions transactions by deal type.
func TransactionTypeBreakdown(transactions []domain.Transaction) map[domain.TransactionType]int {
	counts := map[domain.TransactionType]int{
		domain.TypeListing:       0,
		domain.TypeClosing:       0,
		domain.TypeRentalListing: 0,
		domain.TypeLease:         0,
	}
	for _, t := range transactions {
		if _, ok := counts[t.Type]; ok {
			counts[t.Type]++
		}
	}
	return counts
}

// PipelineStats partitions pipeline items by funnel stage.
func PipelineStats(items []domain.PipelineItem) map[domain.Stage]int {
	counts := make(map[domain.Stage]int, len(domain.Stages()))
	for _, stage := range domain.Stages() {
		counts[stage] = 0
	}
	for _, item := range items {
		if _, ok := counts[item.Stage]; ok {
			counts[item.Stage]++
		}
	}
	return counts
}
