package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"rampview/internal/amqp"
	"rampview/internal/backend"
	"rampview/internal/core"
	"rampview/internal/metrics"
	"rampview/internal/upstream"
)

// RefreshPublisher announces completed snapshot refreshes.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, channel string, count int) error
}

// RefreshService pulls both ramp channels from the wallet backend and
// replaces the stored snapshots. AMQP announcements are best-effort:
// a failed publish never fails the refresh, the snapshot is already saved.
type RefreshService struct {
	source    upstream.TransactionSource
	store     backend.TransactionStore
	publisher RefreshPublisher
}

func NewRefreshService(source upstream.TransactionSource, store backend.TransactionStore, publisher RefreshPublisher) *RefreshService {
	return &RefreshService{
		source:    source,
		store:     store,
		publisher: publisher,
	}
}

// RefreshAll refreshes deposits and withdrawals concurrently.
func (s *RefreshService) RefreshAll(ctx context.Context) error {
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.refreshChannel(gctx, core.ChannelDeposit) })
	g.Go(func() error { return s.refreshChannel(gctx, core.ChannelWithdrawal) })

	err := g.Wait()
	metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("refresh snapshots: %w", err)
	}
	return nil
}

func (s *RefreshService) refreshChannel(ctx context.Context, channel core.Channel) error {
	metrics.UpstreamFetches.WithLabelValues(string(channel)).Inc()

	var (
		records []core.Record
		err     error
	)
	switch channel {
	case core.ChannelDeposit:
		records, err = s.source.ListDeposits(ctx)
	case core.ChannelWithdrawal:
		records, err = s.source.ListWithdrawals(ctx)
	default:
		return fmt.Errorf("%w: %s", core.ErrUnknownChannel, channel)
	}
	if err != nil {
		metrics.UpstreamFetchErrors.WithLabelValues(string(channel)).Inc()
		return fmt.Errorf("fetch %s transactions: %w", channel, err)
	}

	txs := core.ParseRecords(records, channel)

	if err := s.store.ReplaceSnapshot(ctx, channel, txs); err != nil {
		return fmt.Errorf("store %s snapshot: %w", channel, err)
	}

	metrics.SnapshotSize.WithLabelValues(string(channel)).Set(float64(len(txs)))

	if err := s.publishRefresh(ctx, channel, len(txs)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish refresh message",
			"channel", string(channel), "error", err)
	}

	slog.InfoContext(ctx, "Channel snapshot refreshed",
		"channel", string(channel),
		"tx_count", len(txs))

	return nil
}

func (s *RefreshService) publishRefresh(ctx context.Context, channel core.Channel, count int) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping refresh message")
		return nil
	}
	return s.publisher.PublishRefresh(ctx, string(channel), count)
}

// Close releases the underlying AMQP client if it is one.
func (s *RefreshService) Close() error {
	if closer, ok := s.publisher.(*amqp.Client); ok && closer != nil {
		return closer.Close()
	}
	return nil
}
