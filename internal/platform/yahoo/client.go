// Package yahoo implements the quote provider against the Yahoo Finance
// v8 chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/quantfall/stockbot/internal/domain"
)

// userAgent is sent on every request; Yahoo rejects the default Go agent.
const userAgent = "Mozilla/5.0 (compatible; stockbot/1.0)"

// Client is the REST client for the Yahoo Finance chart API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new chart API client.
//
// baseURL is the API root, e.g. "https://query1.finance.yahoo.com".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Quote returns the latest market snapshot for a symbol. It fetches a few
// days of daily bars so the previous close and day OHLCV come from real
// bars rather than zero-filled meta fields.
func (c *Client) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	res, err := c.chart(ctx, symbol, "5d", "1d")
	if err != nil {
		return domain.Quote{}, fmt.Errorf("yahoo: quote %s: %w", symbol, err)
	}

	bars := res.candles()
	if len(bars) == 0 {
		return domain.Quote{}, fmt.Errorf("yahoo: quote %s: %w", symbol, domain.ErrNoData)
	}

	last := bars[len(bars)-1]
	price := last.Close
	if res.Meta.RegularMarketPrice != nil {
		price = *res.Meta.RegularMarketPrice
	}

	prevClose := last.Close
	switch {
	case len(bars) > 1:
		prevClose = bars[len(bars)-2].Close
	case res.Meta.PreviousClose != nil:
		prevClose = *res.Meta.PreviousClose
	case res.Meta.ChartPreviousClose != nil:
		prevClose = *res.Meta.ChartPreviousClose
	}

	var change, changePct float64
	if prevClose != 0 {
		change = price - prevClose
		changePct = change / prevClose * 100
	}

	return domain.Quote{
		Symbol:        symbol,
		CurrentPrice:  price,
		OpenPrice:     last.Open,
		HighPrice:     last.High,
		LowPrice:      last.Low,
		Volume:        last.Volume,
		PreviousClose: prevClose,
		Change:        change,
		ChangePercent: changePct,
		Timestamp:     time.Now().UTC(),
	}, nil
}

// History returns chronological OHLCV bars for a symbol over the given
// range (e.g. "3mo") and interval (e.g. "1d").
func (c *Client) History(ctx context.Context, symbol, period, interval string) ([]domain.Candle, error) {
	res, err := c.chart(ctx, symbol, period, interval)
	if err != nil {
		return nil, fmt.Errorf("yahoo: history %s: %w", symbol, err)
	}

	bars := res.candles()
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo: history %s: %w", symbol, domain.ErrNoData)
	}
	return bars, nil
}

// chart fetches and decodes one chart API result.
func (c *Client) chart(ctx context.Context, symbol, rng, interval string) (chartResult, error) {
	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", interval)

	path := fmt.Sprintf("/v8/finance/chart/%s?%s", url.PathEscape(symbol), params.Encode())

	body, status, err := c.doGet(ctx, path)
	if err != nil {
		return chartResult{}, err
	}
	if status == http.StatusNotFound {
		return chartResult{}, domain.ErrNoData
	}
	if status != http.StatusOK {
		return chartResult{}, fmt.Errorf("unexpected status %d", status)
	}

	var decoded chartResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return chartResult{}, fmt.Errorf("decode chart: %w", err)
	}
	if decoded.Chart.Error != nil {
		return chartResult{}, fmt.Errorf("%s: %w", decoded.Chart.Error.Code, domain.ErrNoData)
	}
	if len(decoded.Chart.Result) == 0 {
		return chartResult{}, domain.ErrNoData
	}

	return decoded.Chart.Result[0], nil
}

// doGet performs a GET request against the API root and returns the raw
// body and status code.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// Compile-time interface check.
var _ domain.QuoteProvider = (*Client)(nil)
