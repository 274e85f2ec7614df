package core

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ChannelDeposit    Channel = "Deposit"
	ChannelWithdrawal Channel = "Withdrawal"
)

type (
	// Channel classifies a transaction as belonging to the on-ramp
	// (deposit) or off-ramp (withdrawal) side of the wallet.
	Channel string

	// Record is the loose JSON shape the upstream backend returns.
	// Field names vary between endpoints: deposits carry the fiat value
	// in asset_equivalent, withdrawals in equivalent_fiat, raw chain
	// transactions in amount. Timestamps may be RFC3339 strings, date-only
	// strings, or unix seconds. All fields are optional in practice.
	Record struct {
		ID              string `json:"id"`
		Ref             string `json:"ref,omitempty"`
		Timestamp       string `json:"timestamp,omitempty"`
		CreatedAt       string `json:"CreatedAt,omitempty"`
		Amount          string `json:"amount,omitempty"`
		AssetEquivalent string `json:"asset_equivalent,omitempty"`
		EquivalentFiat  string `json:"equivalent_fiat,omitempty"`
		Status          string `json:"status"`
		SubType         string `json:"transaction_sub_type,omitempty"`
		Chain           string `json:"chain,omitempty"`
		Asset           string `json:"asset,omitempty"`
	}

	// Transaction is the validated form every aggregation function
	// operates on. Parsing happens once, at ParseRecord; downstream code
	// checks AmountOK / Timestamp.IsZero() instead of re-parsing fields.
	Transaction struct {
		ID        string
		Ref       string
		Timestamp time.Time // zero when the upstream value was unparseable
		RawAmount string
		Amount    decimal.Decimal
		AmountOK  bool
		Status    string
		Channel   Channel
		Chain     string
		Asset     string
	}
)

var ErrUnknownChannel = errors.New("unknown transaction channel")

// timestamp layouts the upstream has been observed to emit
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseChannel maps an upstream sub-type label onto a Channel.
func ParseChannel(subType string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(subType)) {
	case "deposit", "on-ramp", "incoming":
		return ChannelDeposit, nil
	case "withdrawal", "off-ramp", "outgoing":
		return ChannelWithdrawal, nil
	}
	return "", ErrUnknownChannel
}

// ParseRecord converts a raw upstream record into a validated Transaction.
// It never fails: a malformed amount leaves AmountOK false, a malformed
// timestamp leaves Timestamp zero. The record is otherwise kept so callers
// can still group, display and count it.
func ParseRecord(r Record, ch Channel) Transaction {
	tx := Transaction{
		ID:      r.ID,
		Ref:     r.Ref,
		Status:  r.Status,
		Channel: ch,
		Chain:   r.Chain,
		Asset:   r.Asset,
	}
	if tx.Asset == "" {
		tx.Asset = AssetForChain(r.Chain)
	}
	if parsed, err := ParseChannel(r.SubType); err == nil {
		tx.Channel = parsed
	}

	tx.RawAmount = firstNonEmpty(r.AssetEquivalent, r.EquivalentFiat, r.Amount)
	if amt, err := decimal.NewFromString(strings.TrimSpace(tx.RawAmount)); err == nil {
		tx.Amount = amt
		tx.AmountOK = true
	}

	tx.Timestamp = parseTimestamp(firstNonEmpty(r.Timestamp, r.CreatedAt))
	return tx
}

// ParseRecords applies ParseRecord to a whole upstream page.
func ParseRecords(records []Record, ch Channel) []Transaction {
	if len(records) == 0 {
		return nil
	}
	txs := make([]Transaction, 0, len(records))
	for _, r := range records {
		txs = append(txs, ParseRecord(r, ch))
	}
	return txs
}

// AssetForChain returns the stablecoin settled on the given chain.
func AssetForChain(chain string) string {
	if strings.EqualFold(strings.TrimSpace(chain), "celo") {
		return "cUSD"
	}
	return "USDC"
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	// unix seconds or milliseconds
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		if n > 1e12 {
			return time.UnixMilli(n).UTC()
		}
		return time.Unix(n, 0).UTC()
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
