package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"rampview/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists transaction snapshots fetched from the
// wallet backend. Each refresh replaces the whole snapshot for a channel;
// pos preserves the order the backend returned the rows in. Rows are
// keyed by (channel, pos) because upstream ids can be missing or reused
// across channels.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceSnapshot swaps the stored snapshot for a channel with the given
// transactions, atomically.
func (r *SQLiteRepository) ReplaceSnapshot(ctx context.Context, channel core.Channel, txs []core.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions WHERE channel = ?`, string(channel)); err != nil {
		return fmt.Errorf("clear snapshot for %s: %w", channel, err)
	}

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions (id, ref, channel, status, chain, asset, raw_amount, amount, amount_ok, ts, pos, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	fetchedAt := time.Now().UTC().Format(time.RFC3339)
	for i, t := range txs {
		ts := ""
		if !t.Timestamp.IsZero() {
			ts = t.Timestamp.UTC().Format(time.RFC3339Nano)
		}
		amountOK := 0
		if t.AmountOK {
			amountOK = 1
		}
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.Ref, string(channel), t.Status, t.Chain, t.Asset,
			t.RawAmount, t.Amount.String(), amountOK, ts, i, fetchedAt,
		); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot replaced",
		"channel", string(channel),
		"tx_count", len(txs))

	return nil
}

// ListTransactions returns the stored snapshot for a channel in the order
// the backend originally returned it.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, channel core.Channel) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ref, status, chain, asset, raw_amount, amount, amount_ok, ts
		FROM transactions
		WHERE channel = ?
		ORDER BY pos`, string(channel))
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", channel, err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			t        core.Transaction
			amount   string
			amountOK int
			ts       string
		)
		if err := rows.Scan(&t.ID, &t.Ref, &t.Status, &t.Chain, &t.Asset, &t.RawAmount, &amount, &amountOK, &ts); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Channel = channel
		t.AmountOK = amountOK == 1
		if t.AmountOK {
			if t.Amount, err = decimal.NewFromString(amount); err != nil {
				return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
			}
		}
		if ts != "" {
			parsed, err := time.Parse(time.RFC3339Nano, ts)
			if err != nil {
				return nil, fmt.Errorf("parse stored timestamp %q: %w", ts, err)
			}
			t.Timestamp = parsed
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txs, nil
}

// CountByStatus returns per-status transaction counts for a channel.
func (r *SQLiteRepository) CountByStatus(ctx context.Context, channel core.Channel) ([]core.StatusCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM transactions
		WHERE channel = ?
		GROUP BY status
		ORDER BY MIN(pos)`, string(channel))
	if err != nil {
		return nil, fmt.Errorf("count by status for %s: %w", channel, err)
	}
	defer rows.Close()

	var counts []core.StatusCount
	for rows.Next() {
		sc := core.StatusCount{Channel: channel}
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts = append(counts, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	return counts, nil
}
