package fred

import (
	"context"
	"strconv"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	xhttp "StockCast/pkg/http"
)

const (
	seriesFedFunds = "FEDFUNDS"
	seriesCPI      = "CPIAUCSL"
)

// Client fetches the latest macro observations from the FRED API. It is
// tolerant of absence: any failure yields the default snapshot, never an
// error, so the forecast pipeline cannot fail on macro data alone.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
	metrics repository.Metrics
}

// New creates a FRED client.
func New(baseURL, apiKey string, timeout time.Duration, m repository.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		metrics: m,
	}
}

type observationsResponse struct {
	Observations []struct {
		Value string `json:"value"`
	} `json:"observations"`
}

// Latest returns the most recent fed funds rate and CPI readings, with
// per-field defaults substituted on any fetch or parse failure.
func (c *Client) Latest(ctx context.Context) (models.MacroSnapshot, error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordProviderLatency("fred", time.Since(start).Seconds())
		}
	}()

	snap := models.DefaultMacro()
	if v, ok := c.latestValue(ctx, seriesFedFunds); ok {
		snap.FedFundsRate = v
	}
	if v, ok := c.latestValue(ctx, seriesCPI); ok {
		snap.CPI = v
	}
	return snap, nil
}

func (c *Client) latestValue(ctx context.Context, series string) (float64, bool) {
	var resp observationsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/fred/series/observations",
		QueryParams: map[string][]string{
			"series_id":  {series},
			"api_key":    {c.apiKey},
			"file_type":  {"json"},
			"sort_order": {"desc"},
			"limit":      {"1"},
		},
	}, &resp)
	if err != nil || len(resp.Observations) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(resp.Observations[0].Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var _ repository.MacroProvider = (*Client)(nil)
