package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func stx(status, amount string, ch Channel) Transaction {
	return ParseRecord(Record{Timestamp: "2024-05-01", Status: status, Amount: amount}, ch)
}

func TestDefaultRulesPerChannel(t *testing.T) {
	dep := DefaultRules(ChannelDeposit)
	if !dep.Matches(ViewPending, "pending") {
		t.Fatalf("deposit 'pending' must classify as pending")
	}
	if !dep.Matches(ViewCompleted, "Approved") || !dep.Matches(ViewCompleted, "Rejected") {
		t.Fatalf("deposit Approved/Rejected must classify as completed")
	}

	wd := DefaultRules(ChannelWithdrawal)
	if !wd.Matches(ViewPending, "Awaiting Payment") {
		t.Fatalf("withdrawal 'Awaiting Payment' must classify as pending")
	}
	if wd.Matches(ViewPending, "pending") {
		t.Fatalf("withdrawal vocabulary must not borrow the deposit labels")
	}
	if !wd.Matches(ViewCompleted, "Completed") {
		t.Fatalf("withdrawal 'Completed' must classify as completed")
	}
}

func TestMatchesIsCaseSensitive(t *testing.T) {
	rules := DefaultRules(ChannelDeposit)
	// Label drift like "approve" is deliberately not matched; it must fall
	// out of both views rather than be guessed into one.
	if rules.Matches(ViewCompleted, "approve") {
		t.Fatalf("lowercase 'approve' must not match the completed view")
	}
	if !rules.Matches(ViewAll, "approve") {
		t.Fatalf("ViewAll must still include unknown labels")
	}
}

func TestFilterAwaitingPayment(t *testing.T) {
	rules := DefaultRules(ChannelWithdrawal)
	txs := []Transaction{stx("Awaiting Payment", "25", ChannelWithdrawal)}

	pending := rules.Filter(txs, ViewPending)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending withdrawal, got %d", len(pending))
	}
	if completed := rules.Filter(txs, ViewCompleted); len(completed) != 0 {
		t.Fatalf("transaction must be absent from completed view, got %d", len(completed))
	}
}

func TestFilterViewsCoverKnownLabels(t *testing.T) {
	rules := DefaultRules(ChannelDeposit)
	txs := []Transaction{
		stx("pending", "1", ChannelDeposit),
		stx("Approved", "2", ChannelDeposit),
		stx("Rejected", "3", ChannelDeposit),
		stx("pending", "4", ChannelDeposit),
	}

	pending := rules.Filter(txs, ViewPending)
	completed := rules.Filter(txs, ViewCompleted)
	if len(pending)+len(completed) != len(txs) {
		t.Fatalf("views lose transactions: pending=%d completed=%d input=%d",
			len(pending), len(completed), len(txs))
	}
	if all := rules.Filter(txs, ViewAll); len(all) != len(txs) {
		t.Fatalf("ViewAll returned %d of %d", len(all), len(txs))
	}
}

func TestSummarize(t *testing.T) {
	rules := DefaultRules(ChannelDeposit)
	txs := []Transaction{
		stx("pending", "100", ChannelDeposit),
		stx("pending", "50", ChannelDeposit),
		stx("Approve", "200", ChannelDeposit),
		stx("Rejected", "75", ChannelDeposit),
		stx("pending", "oops", ChannelDeposit), // counted, excluded from totals
	}

	s := Summarize(txs, rules, decimal.RequireFromString("0.01"))
	if !s.PendingTotal.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("pending total = %s, want 150", s.PendingTotal)
	}
	if !s.ApprovedTotal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("approved total = %s, want 200", s.ApprovedTotal)
	}
	if !s.GrossTotal.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("gross total = %s, want 350", s.GrossTotal)
	}
	if !s.FeeRevenue.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("fee revenue = %s, want 2", s.FeeRevenue)
	}
	if s.PendingCount != 3 || s.CompletedCount != 2 || s.TotalCount != 5 {
		t.Fatalf("counts = %d/%d/%d, want 3/2/5", s.PendingCount, s.CompletedCount, s.TotalCount)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, DefaultRules(ChannelWithdrawal), decimal.Zero)
	if !s.PendingTotal.IsZero() || !s.GrossTotal.IsZero() || s.TotalCount != 0 {
		t.Fatalf("empty input must produce a zero summary: %+v", s)
	}
}

func TestCountByStatus(t *testing.T) {
	txs := []Transaction{
		stx("pending", "1", ChannelDeposit),
		stx("pending", "2", ChannelDeposit),
		stx("Completed", "3", ChannelWithdrawal),
		stx("Rejected", "4", ChannelDeposit),
	}
	counts := CountByStatus(txs)
	if len(counts) != 3 {
		t.Fatalf("expected 3 distinct (channel,status) rows, got %d", len(counts))
	}
	if counts[0].Channel != ChannelDeposit || counts[0].Status != "pending" || counts[0].Count != 2 {
		t.Fatalf("first row = %+v, want deposit/pending/2", counts[0])
	}
}
