package core

import "github.com/shopspring/decimal"

const (
	ViewAll       View = "all"
	ViewPending   View = "pending"
	ViewCompleted View = "completed"
)

type (
	// View names a filtered slice of the transaction history as shown to
	// the operator: everything, still-pending, or settled either way.
	View string

	// StatusRules is the per-channel status vocabulary. The upstream uses
	// different labels for deposits and withdrawals and is inconsistent
	// about casing, so the mapping lives here in one table instead of
	// being scattered across call sites. Comparisons are exact-match on
	// purpose: an unknown label must surface as an unclassified
	// transaction rather than be guessed into a bucket.
	StatusRules struct {
		Channel  Channel
		Pending  []string
		Approved []string
		Rejected []string
	}

	// Summary carries the per-channel totals the back-office dashboard
	// shows. Totals only include transactions whose amount parsed; the
	// counts include every transaction regardless.
	Summary struct {
		Channel        Channel         `json:"channel"`
		PendingTotal   decimal.Decimal `json:"pending_total"`
		ApprovedTotal  decimal.Decimal `json:"approved_total"`
		GrossTotal     decimal.Decimal `json:"gross_total"`
		FeeRevenue     decimal.Decimal `json:"fee_revenue"`
		PendingCount   int             `json:"pending_count"`
		CompletedCount int             `json:"completed_count"`
		TotalCount     int             `json:"total_count"`
	}

	// StatusCount is one row of the stats breakdown: how many
	// transactions carry a given upstream status label per channel.
	StatusCount struct {
		Channel Channel `json:"channel"`
		Status  string  `json:"status"`
		Count   int     `json:"count"`
	}
)

// DefaultRules returns the status vocabulary observed from the upstream
// backend. Deposits come back as pending until an operator approves or
// rejects them; the upstream has emitted both "Approve" and "Approved" for
// the same state. Withdrawals wait as "Awaiting Payment" and settle as
// "Completed" or "Rejected".
func DefaultRules(ch Channel) StatusRules {
	switch ch {
	case ChannelWithdrawal:
		return StatusRules{
			Channel:  ChannelWithdrawal,
			Pending:  []string{"Awaiting Payment"},
			Approved: []string{"Completed"},
			Rejected: []string{"Rejected"},
		}
	default:
		return StatusRules{
			Channel:  ChannelDeposit,
			Pending:  []string{"pending"},
			Approved: []string{"Approve", "Approved"},
			Rejected: []string{"Rejected"},
		}
	}
}

// Matches reports whether a status label belongs to the given view.
// ViewAll matches every label, including ones the rules don't know.
func (r StatusRules) Matches(view View, status string) bool {
	switch view {
	case ViewAll:
		return true
	case ViewPending:
		return contains(r.Pending, status)
	case ViewCompleted:
		return contains(r.Approved, status) || contains(r.Rejected, status)
	}
	return false
}

// Filter returns the transactions belonging to the given view, preserving
// input order. The input slice is never mutated; ViewAll returns a copy.
func (r StatusRules) Filter(txs []Transaction, view View) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if r.Matches(view, tx.Status) {
			out = append(out, tx)
		}
	}
	return out
}

// Summarize computes the dashboard totals for one channel. Gross is the sum
// over pending plus approved transactions; fee revenue is the approved
// total scaled by feeRate (the platform's cut, 0.01 upstream).
func Summarize(txs []Transaction, rules StatusRules, feeRate decimal.Decimal) Summary {
	s := Summary{
		Channel:       rules.Channel,
		PendingTotal:  decimal.Zero,
		ApprovedTotal: decimal.Zero,
		GrossTotal:    decimal.Zero,
		FeeRevenue:    decimal.Zero,
	}
	for _, tx := range txs {
		s.TotalCount++
		pending := contains(rules.Pending, tx.Status)
		approved := contains(rules.Approved, tx.Status)
		if pending {
			s.PendingCount++
		}
		if rules.Matches(ViewCompleted, tx.Status) {
			s.CompletedCount++
		}
		if !tx.AmountOK {
			continue
		}
		if pending {
			s.PendingTotal = s.PendingTotal.Add(tx.Amount)
		}
		if approved {
			s.ApprovedTotal = s.ApprovedTotal.Add(tx.Amount)
		}
		if pending || approved {
			s.GrossTotal = s.GrossTotal.Add(tx.Amount)
		}
	}
	s.FeeRevenue = s.ApprovedTotal.Mul(feeRate)
	return s
}

// CountByStatus tallies transactions per (channel, status) pair, mirroring
// the upstream's stats endpoint. Order follows first appearance.
func CountByStatus(txs []Transaction) []StatusCount {
	index := make(map[Channel]map[string]int)
	var order []StatusCount
	for _, tx := range txs {
		byStatus, ok := index[tx.Channel]
		if !ok {
			byStatus = make(map[string]int)
			index[tx.Channel] = byStatus
		}
		if _, seen := byStatus[tx.Status]; !seen {
			order = append(order, StatusCount{Channel: tx.Channel, Status: tx.Status})
		}
		byStatus[tx.Status]++
	}
	for i := range order {
		order[i].Count = index[order[i].Channel][order[i].Status]
	}
	return order
}

func contains(labels []string, status string) bool {
	for _, l := range labels {
		if l == status {
			return true
		}
	}
	return false
}
