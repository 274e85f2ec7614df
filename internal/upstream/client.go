package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rampview/internal/core"
	"rampview/internal/log"
)

const (
	depositsPath    = "/v2/admin/transaction/on-ramp"
	withdrawalsPath = "/v2/admin/transaction/off-ramp"
	ratePath        = "/v1/exchange-rate"
)

// Client talks to the wallet backend admin API.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	logger  *log.Logger
}

// Config holds upstream client configuration.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// NewClient creates an upstream client.
func NewClient(cfg Config, logger *log.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger.WithComponent(log.ComponentUpstream),
	}
}

// dataEnvelope is the backend's standard list response shape.
type dataEnvelope struct {
	Data []core.Record `json:"data"`
}

// rateEnvelope wraps the exchange rate response.
type rateEnvelope struct {
	Data struct {
		Rate json.Number `json:"rate"`
	} `json:"data"`
}

// ListDeposits fetches all on-ramp transactions.
func (c *Client) ListDeposits(ctx context.Context) ([]core.Record, error) {
	return c.listTransactions(ctx, depositsPath)
}

// ListWithdrawals fetches all off-ramp transactions.
func (c *Client) ListWithdrawals(ctx context.Context) ([]core.Record, error) {
	return c.listTransactions(ctx, withdrawalsPath)
}

func (c *Client) listTransactions(ctx context.Context, path string) ([]core.Record, error) {
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	var envelope dataEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", path, err)
	}
	return envelope.Data, nil
}

// ExchangeRate fetches the current rate for a fiat/asset pair.
func (c *Client) ExchangeRate(ctx context.Context, fiatCurrency, asset string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("fiat_currency", fiatCurrency)
	query.Set("asset", asset)

	body, err := c.get(ctx, ratePath, query)
	if err != nil {
		return decimal.Zero, err
	}

	var envelope rateEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return decimal.Zero, fmt.Errorf("decoding exchange rate response: %w", err)
	}

	rate, err := decimal.NewFromString(envelope.Data.Rate.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing exchange rate %q: %w", envelope.Data.Rate, err)
	}
	return rate, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Upstream request failed",
			log.FieldPath, path,
			log.FieldError, err.Error())
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "Upstream returned non-OK status",
			log.FieldPath, path,
			log.FieldStatusCode, resp.StatusCode)
		return nil, fmt.Errorf("upstream %s returned status %d", path, resp.StatusCode)
	}

	c.logger.DebugContext(ctx, "Upstream request completed",
		log.FieldPath, path,
		log.FieldDuration, time.Since(start).Milliseconds())

	return body, nil
}
