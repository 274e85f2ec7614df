package http

import (
	"encoding/json"
	"net/http"
	"time"

	"rampview/internal/core"
)

// transactionJSON is the wire shape for a single transaction.
type transactionJSON struct {
	ID        string `json:"id"`
	Ref       string `json:"ref,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Amount    string `json:"amount"`
	AmountOK  bool   `json:"amount_ok"`
	Status    string `json:"status"`
	Channel   string `json:"channel"`
	Chain     string `json:"chain,omitempty"`
	Asset     string `json:"asset,omitempty"`
}

// dayBucketJSON is one day's worth of history.
type dayBucketJSON struct {
	Key          string            `json:"key"`
	Transactions []transactionJSON `json:"transactions"`
}

func toTransactionJSON(tx core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:       tx.ID,
		Ref:      tx.Ref,
		Amount:   tx.RawAmount,
		AmountOK: tx.AmountOK,
		Status:   tx.Status,
		Channel:  string(tx.Channel),
		Chain:    tx.Chain,
		Asset:    tx.Asset,
	}
	if tx.AmountOK {
		out.Amount = tx.Amount.String()
	}
	if !tx.Timestamp.IsZero() {
		out.Timestamp = tx.Timestamp.UTC().Format(time.RFC3339)
	}
	return out
}

func toTransactionsJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionJSON(tx)
	}
	return out
}

// handleHistory returns the channel history grouped into day buckets,
// optionally filtered to a view.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	channel, err := ParseChannelParam(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := ParseViewParam(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.loadTransactions(r.Context(), channel)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	filtered := s.rulesFor(channel).Filter(txs, view)
	buckets := core.GroupByDay(filtered)

	out := make([]dayBucketJSON, len(buckets))
	for i, b := range buckets {
		out[i] = dayBucketJSON{
			Key:          b.Key,
			Transactions: toTransactionsJSON(b.Transactions),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

// handleDayBucket returns the transactions for one day key, e.g.
// /api/v1/history/5/03/24 or /api/v1/history/Invalid Date.
func (s *Server) handleDayBucket(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing day key")
		return
	}

	channel, err := ParseChannelParam(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.loadTransactions(r.Context(), channel)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	bucket, ok := core.FindBucket(core.GroupByDay(txs), key)
	if !ok {
		writeError(w, http.StatusNotFound, "no transactions for day "+key)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": dayBucketJSON{
		Key:          key,
		Transactions: toTransactionsJSON(bucket),
	}})
}

// handleMonthly returns the fixed January..December revenue ledger.
func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	channel, err := ParseChannelParam(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.loadTransactions(r.Context(), channel)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	totals := core.MonthlyTotals(txs)
	writeJSON(w, http.StatusOK, map[string]any{"data": totals[:]})
}

// handleSummary returns the per-channel totals and fee revenue.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	channel, err := ParseChannelParam(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.loadTransactions(r.Context(), channel)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	summary := core.Summarize(txs, s.rulesFor(channel), s.feeRate)
	writeJSON(w, http.StatusOK, map[string]any{"data": summary})
}

// handleStats returns raw per-status counts straight from the store.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	channel, err := ParseChannelParam(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	counts, err := s.store.CountByStatus(r.Context(), channel)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to count statuses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to count statuses")
		return
	}
	if counts == nil {
		counts = []core.StatusCount{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": counts})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
