package polygon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	xhttp "StockCast/pkg/http"
	"StockCast/pkg/util"
)

// Client fetches daily aggregates and per-date closes from the Polygon
// REST API. It implements both HistoryProvider and QuoteProvider.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
	metrics repository.Metrics
}

// New creates a Polygon client.
func New(baseURL, apiKey string, timeout time.Duration, m repository.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		metrics: m,
	}
}

type aggsResult struct {
	Timestamp int64   `json:"t"` // ms
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

type aggsResponse struct {
	Status  string       `json:"status"`
	Error   string       `json:"error"`
	Results []aggsResult `json:"results"`
}

// DailyHistory returns daily bars for the ticker between from and to,
// ordered ascending by date.
func (c *Client) DailyHistory(ctx context.Context, ticker string, from, to time.Time) ([]models.DailyBar, error) {
	start := time.Now()
	defer c.observe("polygon_aggs", start)

	u := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s",
		c.baseURL, ticker, util.FormatDay(from), util.FormatDay(to))

	var resp aggsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    u,
		QueryParams: map[string][]string{
			"adjusted": {"true"},
			"sort":     {"asc"},
			"limit":    {"50000"},
			"apiKey":   {c.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, models.UpstreamFetchError(fmt.Sprintf("polygon aggs %s", ticker), err)
	}
	if !okStatus(resp.Status) {
		return nil, models.UpstreamFetchError(
			fmt.Sprintf("polygon aggs %s", ticker),
			fmt.Errorf("status %s %s", resp.Status, resp.Error))
	}
	if len(resp.Results) == 0 {
		return nil, models.UpstreamFetchError(fmt.Sprintf("polygon aggs %s", ticker), errNoData)
	}

	bars := make([]models.DailyBar, 0, len(resp.Results))
	for _, r := range resp.Results {
		bars = append(bars, models.DailyBar{
			Date:   time.UnixMilli(r.Timestamp).UTC().Truncate(24 * time.Hour),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}
	return bars, nil
}

type openCloseResponse struct {
	Status string  `json:"status"`
	Close  float64 `json:"close"`
}

// CloseOn returns the realized close for the ticker on a date, or nil when
// the provider has no data for that day.
func (c *Client) CloseOn(ctx context.Context, ticker string, date time.Time) (*float64, error) {
	start := time.Now()
	defer c.observe("polygon_open_close", start)

	u := fmt.Sprintf("%s/v1/open-close/%s/%s", c.baseURL, ticker, util.FormatDay(date))

	var resp openCloseResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    u,
		QueryParams: map[string][]string{
			"adjusted": {"true"},
			"apiKey":   {c.apiKey},
		},
	}, &resp)
	if err != nil {
		if xhttp.IsStatus(err, 404) {
			// No bar for the date (holiday, delisting): absent, not an error.
			return nil, nil
		}
		return nil, models.UpstreamFetchError(
			fmt.Sprintf("polygon open-close %s %s", ticker, util.FormatDay(date)), err)
	}
	if !okStatus(resp.Status) {
		return nil, nil
	}
	px := resp.Close
	return &px, nil
}

var errNoData = errors.New("no data returned")

func okStatus(s string) bool {
	switch strings.ToUpper(s) {
	case "OK", "DELAYED":
		return true
	}
	return false
}

func (c *Client) observe(op string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordProviderLatency(op, time.Since(start).Seconds())
	}
}

var (
	_ repository.HistoryProvider = (*Client)(nil)
	_ repository.QuoteProvider   = (*Client)(nil)
)
