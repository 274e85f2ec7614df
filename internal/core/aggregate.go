package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// InvalidDayKey labels the bucket that collects transactions whose
// timestamp could not be parsed. The anomaly stays visible instead of being
// merged into a valid day or silently dropped.
const InvalidDayKey = "Invalid Date"

type (
	// DayBucket holds the transactions sharing one calendar day, in the
	// order they appeared in the input.
	DayBucket struct {
		Key          string
		Day          time.Time // midnight UTC of the bucket's day; zero for the invalid bucket
		Transactions []Transaction
	}

	// MonthTotal is one entry of the fixed twelve-month ledger.
	MonthTotal struct {
		Month string          `json:"month"`
		Total decimal.Decimal `json:"total"`
	}
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// DayKey derives the calendar-day bucket key from a timestamp, formatted
// d/mm/yy (day without leading zero, e.g. "5/03/24"). Time of day is
// discarded. A zero time yields InvalidDayKey.
func DayKey(t time.Time) string {
	if t.IsZero() {
		return InvalidDayKey
	}
	return fmt.Sprintf("%d/%02d/%02d", t.Day(), int(t.Month()), t.Year()%100)
}

// GroupByDay partitions transactions into calendar-day buckets. Buckets are
// ordered chronologically, oldest day first, with the invalid-date bucket
// (if any) last; within a bucket the input order is preserved. The input
// slice is never mutated. An empty or nil input yields no buckets.
func GroupByDay(txs []Transaction) []DayBucket {
	if len(txs) == 0 {
		return nil
	}

	index := make(map[string]int)
	var buckets []DayBucket
	for _, tx := range txs {
		key := DayKey(tx.Timestamp)
		i, seen := index[key]
		if !seen {
			i = len(buckets)
			index[key] = i
			b := DayBucket{Key: key}
			if key != InvalidDayKey {
				ts := tx.Timestamp
				b.Day = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
			}
			buckets = append(buckets, b)
		}
		buckets[i].Transactions = append(buckets[i].Transactions, tx)
	}

	sort.SliceStable(buckets, func(a, b int) bool {
		// invalid bucket sorts after every real day
		if buckets[a].Key == InvalidDayKey {
			return false
		}
		if buckets[b].Key == InvalidDayKey {
			return true
		}
		return buckets[a].Day.Before(buckets[b].Day)
	})
	return buckets
}

// FindBucket returns the bucket matching the given day key. Absence is
// reported through the boolean, not an error.
func FindBucket(buckets []DayBucket, key string) ([]Transaction, bool) {
	for _, b := range buckets {
		if b.Key == key {
			return b.Transactions, true
		}
	}
	return nil, false
}

// MonthlyTotals folds transactions into a fixed January..December ledger.
// Each entry sums the amounts of transactions whose timestamp falls in that
// calendar month, across years. Transactions with an unparseable amount or
// timestamp contribute nothing and raise no error; months without
// transactions report exactly zero. The result always has twelve entries.
func MonthlyTotals(txs []Transaction) [12]MonthTotal {
	var ledger [12]MonthTotal
	for i := range ledger {
		ledger[i] = MonthTotal{Month: monthNames[i], Total: decimal.Zero}
	}
	for _, tx := range txs {
		if !tx.AmountOK || tx.Timestamp.IsZero() {
			continue
		}
		m := int(tx.Timestamp.Month()) - 1
		ledger[m].Total = ledger[m].Total.Add(tx.Amount)
	}
	return ledger
}

// MonthName returns the calendar name for a 1-based month number.
func MonthName(month int) (string, bool) {
	if month < 1 || month > 12 {
		return "", false
	}
	return monthNames[month-1], true
}
