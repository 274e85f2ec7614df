package upstream

import (
	"context"

	"github.com/shopspring/decimal"

	"rampview/internal/core"
)

// TransactionSource lists ramp transactions from the wallet backend.
type TransactionSource interface {
	ListDeposits(ctx context.Context) ([]core.Record, error)
	ListWithdrawals(ctx context.Context) ([]core.Record, error)
}

// RateSource resolves the current exchange rate for a fiat/asset pair.
type RateSource interface {
	ExchangeRate(ctx context.Context, fiatCurrency, asset string) (decimal.Decimal, error)
}
