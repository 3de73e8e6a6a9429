package token

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tekrabyte/tekraswap/core/apperror"
	"github.com/tekrabyte/tekraswap/core/cache"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

const (
	testWallet  = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	unknownMint = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
)

func TestMain(m *testing.M) {
	logger.Init("")
	os.Exit(m.Run())
}

// fakeUpstream serves DexScreener, GeckoTerminal and the Helius endpoint
// (DAS getAsset plus plain Solana RPC) from one mux.
type fakeUpstream struct {
	server *httptest.Server

	dexPairs    map[string]string
	dasAssets   map[string]string
	solBalance  uint64
	tokenAccts  string
	geckoOHLCV  string
	geckoStatus int
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	f := &fakeUpstream{
		dexPairs:    map[string]string{},
		dasAssets:   map[string]string{},
		geckoStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/latest/dex/tokens/", func(w http.ResponseWriter, r *http.Request) {
		mint := r.URL.Path[len("/latest/dex/tokens/"):]
		body, ok := f.dexPairs[mint]
		if !ok {
			body = `{"pairs": null}`
		}
		fmt.Fprint(w, body)
	})
	mux.HandleFunc("/api/v2/networks/solana/pools/", func(w http.ResponseWriter, r *http.Request) {
		if f.geckoStatus != http.StatusOK {
			w.WriteHeader(f.geckoStatus)
			return
		}
		fmt.Fprint(w, f.geckoOHLCV)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     json.RawMessage   `json:"id"`
		}
		// DAS requests carry params as an object, RPC ones as an array
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.Unmarshal(raw["method"], &req.Method)

		switch req.Method {
		case "getAsset":
			var params struct {
				ID string `json:"id"`
			}
			json.Unmarshal(raw["params"], &params)
			body, ok := f.dasAssets[params.ID]
			if !ok {
				body = `{"jsonrpc":"2.0","id":"metadata","error":{"code":-32000,"message":"asset not found"}}`
			}
			fmt.Fprint(w, body)
		case "getBalance":
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":%d}}`, f.solBalance)
		case "getTokenAccountsByOwner":
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":%s}}`, f.tokenAccts)
		default:
			http.Error(w, "unexpected method "+req.Method, http.StatusBadRequest)
		}
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeUpstream) service() *Service {
	mem := cache.NewMemoryCache()
	helius := NewHeliusClient(f.server.URL, mem)
	dex := NewDexScreenerClient(f.server.URL, cache.NewMemoryCache())
	gecko := NewGeckoTerminalClient(f.server.URL)
	return NewService(helius, dex, gecko)
}

func dexBody(mint, name, symbol string, price float64) string {
	return fmt.Sprintf(`{"pairs":[
		{"chainId":"bsc","pairAddress":"wrongchain","priceUsd":"99"},
		{"chainId":"solana","pairAddress":"pool111","priceUsd":"%g",
		 "volume":{"h24":12345.5},"fdv":1000000,
		 "baseToken":{"address":"%s","name":"%s","symbol":"%s"},
		 "info":{"imageUrl":"https://img.example/x.png"}}
	]}`, price, mint, name, symbol)
}

func tokenAccountJSON(mint, amount string, decimals int, uiAmount float64) string {
	return fmt.Sprintf(`{"pubkey":"%s","account":{"lamports":2039280,"owner":"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA","executable":false,"rentEpoch":0,
		"data":{"program":"spl-token","space":165,"parsed":{"type":"account","info":{
			"mint":"%s","owner":"%s","isNative":false,
			"tokenAmount":{"amount":"%s","decimals":%d,"uiAmount":%g,"uiAmountString":"%g"}}}}}}`,
		testWallet, mint, testWallet, amount, decimals, uiAmount, uiAmount)
}

func TestListStableOrder(t *testing.T) {
	svc := newFakeUpstream(t).service()

	tokens := svc.List()
	require.Len(t, tokens, 5)
	assert.Equal(t, "SOL", tokens[0].Symbol)
	assert.Equal(t, "USDC", tokens[1].Symbol)
	assert.Equal(t, "USDT", tokens[2].Symbol)
	assert.Equal(t, Tekra1Mint, tokens[3].Address)
	assert.Equal(t, Tekra2Mint, tokens[4].Address)
}

func TestMetadataMergesMarketDataIntoDefaults(t *testing.T) {
	f := newFakeUpstream(t)
	f.dexPairs[SOLMint] = dexBody(SOLMint, "Wrapped SOL", "WSOL", 150.25)
	svc := f.service()

	meta, err := svc.Metadata(context.Background(), SOLMint)
	require.NoError(t, err)

	// static identity wins, market fields come from the pair
	assert.Equal(t, "SOL", meta.Symbol)
	assert.Equal(t, "Solana", meta.Name)
	assert.Equal(t, 9, meta.Decimals)
	assert.Equal(t, 150.25, meta.PriceUSD)
	assert.Equal(t, 12345.5, meta.Volume24H)
	assert.Equal(t, float64(1000000), meta.MarketCap)
}

func TestMetadataUnknownMintUsesPairIdentity(t *testing.T) {
	f := newFakeUpstream(t)
	f.dexPairs[unknownMint] = dexBody(unknownMint, "Mystery", "MYST", 0.042)
	svc := f.service()

	meta, err := svc.Metadata(context.Background(), unknownMint)
	require.NoError(t, err)

	assert.Equal(t, "MYST", meta.Symbol)
	assert.Equal(t, "Mystery", meta.Name)
	assert.Equal(t, "https://img.example/x.png", meta.LogoURI)
	assert.Equal(t, 0.042, meta.PriceUSD)
}

func TestMetadataFallsBackToIndexer(t *testing.T) {
	f := newFakeUpstream(t)
	f.dasAssets[unknownMint] = `{"jsonrpc":"2.0","id":"metadata","result":{
		"content":{"metadata":{"name":"Indexed Token","symbol":"IDX"},"links":{"image":"https://img.example/idx.png"}},
		"token_info":{"decimals":6}}}`
	svc := f.service()

	meta, err := svc.Metadata(context.Background(), unknownMint)
	require.NoError(t, err)

	assert.Equal(t, "IDX", meta.Symbol)
	assert.Equal(t, "Indexed Token", meta.Name)
	assert.Equal(t, 6, meta.Decimals)
	assert.Zero(t, meta.PriceUSD)
}

func TestMetadataUnknownEverywhere(t *testing.T) {
	svc := newFakeUpstream(t).service()

	_, err := svc.Metadata(context.Background(), unknownMint)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestMetadataRejectsMalformedMint(t *testing.T) {
	svc := newFakeUpstream(t).service()

	_, err := svc.Metadata(context.Background(), "not-base58!!")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestBalanceNative(t *testing.T) {
	f := newFakeUpstream(t)
	f.solBalance = 2_500_000_000
	svc := f.service()

	bal, err := svc.Balance(context.Background(), testWallet, SOLMint)
	require.NoError(t, err)

	assert.Equal(t, uint64(2_500_000_000), bal.Amount)
	assert.Equal(t, 9, bal.Decimals)
	assert.Equal(t, 2.5, bal.UIAmount)
}

func TestBalanceSPL(t *testing.T) {
	f := newFakeUpstream(t)
	f.tokenAccts = "[" + tokenAccountJSON(USDCMint, "1500000", 6, 1.5) + "]"
	svc := f.service()

	bal, err := svc.Balance(context.Background(), testWallet, USDCMint)
	require.NoError(t, err)

	assert.Equal(t, uint64(1500000), bal.Amount)
	assert.Equal(t, 6, bal.Decimals)
	assert.Equal(t, 1.5, bal.UIAmount)
}

func TestBalanceNoAccountIsZero(t *testing.T) {
	f := newFakeUpstream(t)
	f.tokenAccts = "[]"
	svc := f.service()

	bal, err := svc.Balance(context.Background(), testWallet, USDCMint)
	require.NoError(t, err)
	assert.Zero(t, bal.Amount)
	assert.Zero(t, bal.UIAmount)
}

func TestBalancesPartialFailureDegradesToZero(t *testing.T) {
	f := newFakeUpstream(t)
	f.solBalance = 1_000_000_000
	f.tokenAccts = "[]"
	svc := f.service()

	out, err := svc.Balances(context.Background(), testWallet, []string{SOLMint, "bad-mint", USDCMint})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, 1.0, out[SOLMint].UIAmount)
	assert.Zero(t, out["bad-mint"].UIAmount)
	assert.Zero(t, out[USDCMint].UIAmount)
}

func TestValidate(t *testing.T) {
	f := newFakeUpstream(t)
	f.dexPairs[unknownMint] = dexBody(unknownMint, "Mystery", "MYST", 0.01)
	svc := f.service()

	ok, err := svc.Validate(context.Background(), "short")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Validate(context.Background(), USDCMint)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Validate(context.Background(), unknownMint)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Validate(context.Background(), "3yFwqXBfZY4jBVUafQ1YEXw189y2dN3V5KQq9uzBDy1E")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPriceChartLive(t *testing.T) {
	f := newFakeUpstream(t)
	f.dexPairs[unknownMint] = dexBody(unknownMint, "Mystery", "MYST", 3.5)
	// newest first on purpose, the client must sort ascending
	f.geckoOHLCV = `{"data":{"attributes":{"ohlcv_list":[
		[1700003600, 3.1, 3.6, 3.0, 3.5, 900.0],
		[1700000000, 3.0, 3.2, 2.9, 3.1, 1200.0]
	]}}}`
	svc := f.service()

	chart, err := svc.PriceChart(context.Background(), unknownMint, "1h")
	require.NoError(t, err)

	assert.False(t, chart.Synthetic)
	assert.Equal(t, 3.5, chart.CurrentPrice)
	require.Len(t, chart.Data, 2)
	assert.Equal(t, int64(1700000000000), chart.Data[0].Timestamp)
	assert.Equal(t, 3.1, chart.Data[0].Price)
	assert.Equal(t, int64(1700003600000), chart.Data[1].Timestamp)
	assert.Equal(t, 3.5, chart.Data[1].Price)
}

func TestPriceChartSyntheticWhenNoMarket(t *testing.T) {
	svc := newFakeUpstream(t).service()

	chart, err := svc.PriceChart(context.Background(), unknownMint, "1h")
	require.NoError(t, err)

	assert.True(t, chart.Synthetic)
	require.Len(t, chart.Data, 24)
	for i := 1; i < len(chart.Data); i++ {
		assert.Greater(t, chart.Data[i].Timestamp, chart.Data[i-1].Timestamp)
	}
}

func TestPriceChartSyntheticWhenCandlesFail(t *testing.T) {
	f := newFakeUpstream(t)
	f.dexPairs[unknownMint] = dexBody(unknownMint, "Mystery", "MYST", 2.0)
	f.geckoStatus = http.StatusTooManyRequests
	svc := f.service()

	chart, err := svc.PriceChart(context.Background(), unknownMint, "1d")
	require.NoError(t, err)

	assert.True(t, chart.Synthetic)
	assert.Equal(t, 2.0, chart.CurrentPrice)
	require.Len(t, chart.Data, 30)
	assert.Equal(t, 2.0, chart.Data[0].Price)
}

func TestPortfolio(t *testing.T) {
	f := newFakeUpstream(t)
	f.solBalance = 2_000_000_000
	f.dexPairs[SOLMint] = dexBody(SOLMint, "Wrapped SOL", "WSOL", 100)
	f.dexPairs[USDCMint] = dexBody(USDCMint, "USD Coin", "USDC", 1)
	f.tokenAccts = "[" +
		tokenAccountJSON(USDCMint, "50000000", 6, 50) + "," +
		tokenAccountJSON(unknownMint, "7000000000", 9, 7) + "," +
		tokenAccountJSON(USDTMint, "0", 6, 0) +
		"]"
	f.dasAssets[unknownMint] = `{"jsonrpc":"2.0","id":"metadata","result":{
		"content":{"metadata":{"name":"Dust","symbol":"DST"},"links":{}},
		"token_info":{"decimals":9}}}`
	svc := f.service()

	snap, err := svc.Portfolio(context.Background(), testWallet)
	require.NoError(t, err)

	// zero-balance USDT account is skipped, zero-price DST stays
	require.Equal(t, 3, snap.TokenCount)
	assert.Equal(t, testWallet, snap.Wallet)
	assert.InDelta(t, 250.0, snap.TotalUSD, 1e-9)

	// sorted by USD value desc
	assert.Equal(t, SOLMint, snap.Tokens[0].Address)
	assert.InDelta(t, 200.0, snap.Tokens[0].ValueUSD, 1e-9)
	assert.Equal(t, USDCMint, snap.Tokens[1].Address)
	assert.Equal(t, unknownMint, snap.Tokens[2].Address)
	assert.Equal(t, "DST", snap.Tokens[2].Symbol)
	assert.Zero(t, snap.Tokens[2].ValueUSD)
}
