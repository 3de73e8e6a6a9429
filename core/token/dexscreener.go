package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tekrabyte/tekraswap/core/apperror"
	"github.com/tekrabyte/tekraswap/core/cache"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

const dexScreenerCacheTTL = time.Minute

// wire format of api.dexscreener.com/latest/dex/tokens/{mint}
type dexPairToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type dexPair struct {
	ChainID     string       `json:"chainId"`
	PairAddress string       `json:"pairAddress"`
	BaseToken   dexPairToken `json:"baseToken"`
	PriceUsd    string       `json:"priceUsd"`
	Volume      struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	Fdv       float64 `json:"fdv"`
	MarketCap float64 `json:"marketCap"`
	Info      struct {
		ImageURL string `json:"imageUrl"`
	} `json:"info"`
}

type dexScreenerResponse struct {
	Pairs []dexPair `json:"pairs"`
}

// MarketData is the normalized DexScreener record for a mint's most liquid
// Solana pair.
type MarketData struct {
	PriceUSD    float64 `json:"price_usd"`
	Volume24H   float64 `json:"volume_24h"`
	MarketCap   float64 `json:"market_cap"`
	PairAddress string  `json:"pair_address"`
	BaseName    string  `json:"base_name"`
	BaseSymbol  string  `json:"base_symbol"`
	ImageURL    string  `json:"image_url"`
}

// DexScreenerClient reads token market data. Responses are cached for a
// minute; prices move too fast for anything longer.
type DexScreenerClient struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Cache
}

func NewDexScreenerClient(baseURL string, c cache.Cache) *DexScreenerClient {
	return &DexScreenerClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		cache:      c,
	}
}

func (c *DexScreenerClient) fetch(ctx context.Context, mint string) (*MarketData, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Upstream(err, "market data lookup failed")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, apperror.Upstream(nil, "market data lookup failed with status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperror.Upstream(err, "market data read failed")
	}

	var data dexScreenerResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, apperror.Upstream(err, "market data decode failed")
	}

	// First Solana pair is the most liquid one; DexScreener orders them.
	for _, pair := range data.Pairs {
		if pair.ChainID != "solana" {
			continue
		}

		price, _ := strconv.ParseFloat(pair.PriceUsd, 64)
		mcap := pair.Fdv
		if mcap == 0 {
			mcap = pair.MarketCap
		}

		return &MarketData{
			PriceUSD:    price,
			Volume24H:   pair.Volume.H24,
			MarketCap:   mcap,
			PairAddress: pair.PairAddress,
			BaseName:    pair.BaseToken.Name,
			BaseSymbol:  pair.BaseToken.Symbol,
			ImageURL:    pair.Info.ImageURL,
		}, nil
	}

	return nil, apperror.NotFound("no tracked solana market for %s", mint)
}

// Market returns cached market data for a mint, fetching on miss.
func (c *DexScreenerClient) Market(ctx context.Context, mint string) (*MarketData, error) {
	key := fmt.Sprintf("meta:dexscreener:solana:%s", mint)

	if cached, err := c.cache.Get(ctx, key); err == nil {
		var data MarketData
		if err := json.Unmarshal([]byte(cached), &data); err == nil {
			return &data, nil
		}
	}

	data, err := c.fetch(ctx, mint)
	if err != nil {
		return nil, err
	}

	if bt, err := json.Marshal(data); err == nil {
		if err := c.cache.Set(ctx, key, string(bt), dexScreenerCacheTTL); err != nil {
			logger.Logrus.WithFields(logrus.Fields{"Mint": mint, "ErrMsg": err}).Warn("dexscreener cache set failed")
		}
	}

	return data, nil
}
