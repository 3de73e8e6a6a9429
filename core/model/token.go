package model

// Token is the normalized metadata record served to clients. Identity is
// the mint address; the market fields are best-effort enrichment and stay
// zero when no tracked market exists.
type Token struct {
	Address  string   `json:"address"`
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	Decimals int      `json:"decimals"`
	LogoURI  string   `json:"logoURI,omitempty"`
	Tags     []string `json:"tags,omitempty"`

	PriceUSD  float64 `json:"price_usd"`
	Volume24H float64 `json:"volume_24h"`
	MarketCap float64 `json:"market_cap"`
}

// TokenBalance mirrors the RPC token-amount triple.
type TokenBalance struct {
	Amount   uint64  `json:"amount"`
	Decimals int     `json:"decimals"`
	UIAmount float64 `json:"uiAmount"`
}

// PortfolioToken is one holding inside a portfolio snapshot.
type PortfolioToken struct {
	Address   string  `json:"address"`
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Balance   float64 `json:"balance"`
	Decimals  int     `json:"decimals"`
	PriceUSD  float64 `json:"price_usd"`
	ValueUSD  float64 `json:"value_usd"`
	LogoURI   string  `json:"logoURI,omitempty"`
	Volume24H float64 `json:"volume_24h"`
	MarketCap float64 `json:"market_cap"`
}

// PortfolioSnapshot is derived per request, never persisted.
type PortfolioSnapshot struct {
	Wallet     string           `json:"wallet"`
	TotalUSD   float64          `json:"total_usd"`
	TokenCount int              `json:"token_count"`
	Tokens     []PortfolioToken `json:"tokens"`
}

// ChartPoint is one sample of a price history series. Timestamp is in
// milliseconds since epoch.
type ChartPoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
}

// PriceChart distinguishes live data from the empty fallback: Synthetic is
// true only when no tracked market exists and the series was generated.
type PriceChart struct {
	Data         []ChartPoint `json:"data"`
	CurrentPrice float64      `json:"current_price"`
	Synthetic    bool         `json:"synthetic"`
}
