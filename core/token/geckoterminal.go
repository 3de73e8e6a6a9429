package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/tekrabyte/tekraswap/core/apperror"
	"github.com/tekrabyte/tekraswap/core/model"
)

// GeckoTerminalClient fetches OHLCV candles for a pool on the solana
// network. Candles come back as [time, open, high, low, close, volume]
// tuples; only close price and volume are kept.
type GeckoTerminalClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewGeckoTerminalClient(baseURL string) *GeckoTerminalClient {
	if baseURL == "" {
		baseURL = "https://api.geckoterminal.com"
	}
	return &GeckoTerminalClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type geckoOHLCVResponse struct {
	Data struct {
		Attributes struct {
			OHLCVList [][]float64 `json:"ohlcv_list"`
		} `json:"attributes"`
	} `json:"data"`
}

// timeframe maps the API interval to the GeckoTerminal path segment and
// candle count: 1h means 24 hourly candles, anything else 30 daily ones.
func timeframe(interval string) (string, int) {
	if interval == "1h" {
		return "hour", 24
	}
	return "day", 30
}

// Candles returns up to limit close-price points for the pool, sorted
// oldest first.
func (c *GeckoTerminalClient) Candles(ctx context.Context, poolAddress, interval string) ([]model.ChartPoint, error) {
	tf, limit := timeframe(interval)

	url := fmt.Sprintf("%s/api/v2/networks/solana/pools/%s/ohlcv/%s?limit=%d", c.baseURL, poolAddress, tf, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Upstream(err, "chart source unreachable")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, apperror.Upstream(nil, "chart source returned status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperror.Upstream(err, "chart source read failed")
	}

	var data geckoOHLCVResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, apperror.Upstream(err, "chart source decode failed")
	}

	points := make([]model.ChartPoint, 0, len(data.Data.Attributes.OHLCVList))
	for _, item := range data.Data.Attributes.OHLCVList {
		if len(item) < 6 {
			continue
		}
		points = append(points, model.ChartPoint{
			Timestamp: int64(item[0]) * 1000,
			Price:     item[4],
			Volume:    item[5],
		})
	}

	// the API sometimes returns newest-first
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})

	return points, nil
}
