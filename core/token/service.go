package token

import (
	"context"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tekrabyte/tekraswap/core/apperror"
	"github.com/tekrabyte/tekraswap/core/model"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

// base58, 32-44 characters
var solanaAddressPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// ValidAddress reports whether s is structurally a Solana address.
func ValidAddress(s string) bool {
	return solanaAddressPattern.MatchString(s)
}

// Service merges static token metadata, DexScreener market data, Helius
// DAS lookups and RPC balance reads behind one API.
type Service struct {
	helius   *HeliusClient
	dex      *DexScreenerClient
	gecko    *GeckoTerminalClient
	defaults map[string]model.Token
}

func NewService(helius *HeliusClient, dex *DexScreenerClient, gecko *GeckoTerminalClient) *Service {
	return &Service{
		helius:   helius,
		dex:      dex,
		gecko:    gecko,
		defaults: DefaultTokens(),
	}
}

var defaultListOrder = []string{SOLMint, USDCMint, USDTMint, Tekra1Mint, Tekra2Mint}

// List returns the pre-configured tokens used by the selection UI, in a
// stable order.
func (s *Service) List() []model.Token {
	tokens := make([]model.Token, 0, len(s.defaults))
	for _, mint := range defaultListOrder {
		if t, ok := s.defaults[mint]; ok {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Metadata merges static metadata with live market data. Market fields
// fail soft and stay zero; NotFound is returned only when the mint is
// unknown to every source.
func (s *Service) Metadata(ctx context.Context, mint string) (*model.Token, error) {
	if !ValidAddress(mint) {
		return nil, apperror.Validation("invalid mint address %q", mint)
	}

	meta := model.Token{
		Address:  mint,
		Name:     "Unknown Token",
		Symbol:   "UNK",
		Decimals: 9,
	}

	known := false
	if def, ok := s.defaults[mint]; ok {
		meta = def
		known = true
	}

	market, err := s.dex.Market(ctx, mint)
	if err != nil && !apperror.IsKind(err, apperror.KindNotFound) {
		logger.Logrus.WithFields(logrus.Fields{"Mint": mint, "ErrMsg": err}).Warn("Metadata market fetch failed")
	}

	if market != nil {
		meta.PriceUSD = market.PriceUSD
		meta.Volume24H = market.Volume24H
		meta.MarketCap = market.MarketCap
		if !known {
			meta.Name = market.BaseName
			meta.Symbol = market.BaseSymbol
			meta.LogoURI = market.ImageURL
		}
		return &meta, nil
	}

	if known {
		return &meta, nil
	}

	asset, err := s.helius.Asset(ctx, mint)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("token %s not found", mint)
		}
		return nil, err
	}

	meta.Name = asset.Name
	meta.Symbol = asset.Symbol
	meta.Decimals = asset.Decimals
	meta.LogoURI = asset.LogoURI
	return &meta, nil
}

// Balance reads a wallet's balance for one mint. A wallet with no token
// account for the mint returns a zero balance, not an error.
func (s *Service) Balance(ctx context.Context, wallet, mint string) (*model.TokenBalance, error) {
	if !ValidAddress(wallet) {
		return nil, apperror.Validation("invalid wallet address %q", wallet)
	}
	if !ValidAddress(mint) {
		return nil, apperror.Validation("invalid mint address %q", mint)
	}

	if mint == SOLMint {
		lamports, err := s.helius.NativeBalance(ctx, wallet)
		if err != nil {
			return nil, err
		}
		return &model.TokenBalance{
			Amount:   lamports,
			Decimals: 9,
			UIAmount: float64(lamports) / 1e9,
		}, nil
	}

	accounts, err := s.helius.TokenAccounts(ctx, wallet, mint)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return &model.TokenBalance{}, nil
	}

	acc := accounts[0]
	return &model.TokenBalance{
		Amount:   acc.Amount,
		Decimals: acc.Decimals,
		UIAmount: acc.UIAmount,
	}, nil
}

// Balances batches Balance over several mints. A failed mint degrades to
// a zero-balance entry instead of failing the batch.
func (s *Service) Balances(ctx context.Context, wallet string, mints []string) (map[string]model.TokenBalance, error) {
	if !ValidAddress(wallet) {
		return nil, apperror.Validation("invalid wallet address %q", wallet)
	}

	out := make(map[string]model.TokenBalance, len(mints))
	for _, mint := range mints {
		bal, err := s.Balance(ctx, wallet, mint)
		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"Wallet": wallet, "Mint": mint, "ErrMsg": err}).Warn("Balances mint lookup failed")
			out[mint] = model.TokenBalance{}
			continue
		}
		out[mint] = *bal
	}
	return out, nil
}

// Validate checks a mint structurally, then confirms it resolves against
// the default table, a tracked market or the indexer. Used as a
// pre-flight gate before swaps and user-entered custom addresses.
func (s *Service) Validate(ctx context.Context, mint string) (bool, error) {
	if !ValidAddress(mint) {
		return false, nil
	}
	if _, ok := s.defaults[mint]; ok {
		return true, nil
	}

	if _, err := s.dex.Market(ctx, mint); err == nil {
		return true, nil
	}

	if _, err := s.helius.Asset(ctx, mint); err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PriceChart returns a close-price series for the mint's most liquid
// pair. When the token has no tracked market, or candles cannot be
// fetched, a flat series at the last known price is generated and marked
// synthetic so callers never mistake it for live data.
func (s *Service) PriceChart(ctx context.Context, mint, interval string) (*model.PriceChart, error) {
	if !ValidAddress(mint) {
		return nil, apperror.Validation("invalid mint address %q", mint)
	}

	market, err := s.dex.Market(ctx, mint)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			logger.Logrus.WithFields(logrus.Fields{"Mint": mint}).Warn("PriceChart no tracked market")
			return syntheticChart(0, interval), nil
		}
		return nil, err
	}

	points, err := s.gecko.Candles(ctx, market.PairAddress, interval)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"Mint": mint, "Pair": market.PairAddress, "ErrMsg": err}).Error("PriceChart candle fetch failed")
		return syntheticChart(market.PriceUSD, interval), nil
	}

	return &model.PriceChart{
		Data:         points,
		CurrentPrice: market.PriceUSD,
		Synthetic:    false,
	}, nil
}

// syntheticChart builds a deterministic flat series ending at the top of
// the current interval.
func syntheticChart(price float64, interval string) *model.PriceChart {
	tf, limit := timeframe(interval)

	step := 24 * time.Hour
	if tf == "hour" {
		step = time.Hour
	}
	end := time.Now().UTC().Truncate(step)

	points := make([]model.ChartPoint, 0, limit)
	for i := limit - 1; i >= 0; i-- {
		ts := end.Add(-time.Duration(i) * step)
		points = append(points, model.ChartPoint{
			Timestamp: ts.UnixMilli(),
			Price:     price,
		})
	}

	return &model.PriceChart{
		Data:         points,
		CurrentPrice: price,
		Synthetic:    true,
	}
}

// Portfolio enumerates all holdings of a wallet, enriches each with
// metadata and price, and sums the USD value. Zero-price tokens are
// included; zero-balance accounts are skipped.
func (s *Service) Portfolio(ctx context.Context, wallet string) (*model.PortfolioSnapshot, error) {
	if !ValidAddress(wallet) {
		return nil, apperror.Validation("invalid wallet address %q", wallet)
	}

	snapshot := &model.PortfolioSnapshot{
		Wallet: wallet,
		Tokens: []model.PortfolioToken{},
	}

	type holding struct {
		mint     string
		balance  float64
		decimals int
	}
	holdings := make([]holding, 0, 8)

	lamports, err := s.helius.NativeBalance(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if lamports > 0 {
		holdings = append(holdings, holding{mint: SOLMint, balance: float64(lamports) / 1e9, decimals: 9})
	}

	accounts, err := s.helius.TokenAccounts(ctx, wallet, "")
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		if acc.UIAmount <= 0 {
			continue
		}
		holdings = append(holdings, holding{mint: acc.Mint, balance: acc.UIAmount, decimals: acc.Decimals})
	}

	semaphore := make(chan struct{}, 5)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, h := range holdings {
		semaphore <- struct{}{}
		wg.Add(1)

		go func(h holding) {
			defer wg.Done()
			defer func() { <-semaphore }()

			entry := model.PortfolioToken{
				Address:  h.mint,
				Symbol:   "UNK",
				Name:     "Unknown Token",
				Balance:  h.balance,
				Decimals: h.decimals,
			}

			meta, err := s.Metadata(ctx, h.mint)
			if err != nil {
				logger.Logrus.WithFields(logrus.Fields{"Wallet": wallet, "Mint": h.mint, "ErrMsg": err}).Warn("Portfolio metadata fetch failed")
			} else {
				entry.Symbol = meta.Symbol
				entry.Name = meta.Name
				entry.LogoURI = meta.LogoURI
				entry.PriceUSD = meta.PriceUSD
				entry.Volume24H = meta.Volume24H
				entry.MarketCap = meta.MarketCap
				entry.ValueUSD = h.balance * meta.PriceUSD
			}

			mu.Lock()
			snapshot.Tokens = append(snapshot.Tokens, entry)
			snapshot.TotalUSD += entry.ValueUSD
			mu.Unlock()
		}(h)
	}
	wg.Wait()

	sort.Slice(snapshot.Tokens, func(i, j int) bool {
		return snapshot.Tokens[i].ValueUSD > snapshot.Tokens[j].ValueUSD
	})
	snapshot.TokenCount = len(snapshot.Tokens)

	return snapshot, nil
}
