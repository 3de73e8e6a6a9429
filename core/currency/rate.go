// Package currency serves the USD to IDR exchange rate used for display
// conversion. The rate is advisory, never used for settlement, so stale
// reads under the refresh TTL are fine.
package currency

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

const (
	// FallbackRate is used when every provider fails.
	FallbackRate = 15800.0

	cacheDuration = time.Hour
	fetchTimeout  = 5 * time.Second

	defaultPrimaryURL   = "https://api.exchangerate-api.com/v4/latest/USD"
	defaultSecondaryURL = "https://api.frankfurter.app/latest?from=USD&to=IDR"
)

// ExchangeRate is one resolved rate with its provenance.
type ExchangeRate struct {
	Rate         float64   `json:"rate"`
	LastUpdate   time.Time `json:"last_update"`
	Source       string    `json:"source"`
	CurrencyPair string    `json:"currency_pair"`
}

// Service caches the rate process-wide for an hour and refreshes it in
// the background. Provider order: exchangerate-api.com, frankfurter.app,
// then the hardcoded fallback.
type Service struct {
	primaryURL   string
	secondaryURL string
	httpClient   *http.Client

	mu     sync.RWMutex
	cached *ExchangeRate
}

func NewService() *Service {
	return &Service{
		primaryURL:   defaultPrimaryURL,
		secondaryURL: defaultSecondaryURL,
		httpClient:   &http.Client{Timeout: fetchTimeout},
	}
}

// NewServiceWithProviders overrides the provider endpoints, for tests.
func NewServiceWithProviders(primaryURL, secondaryURL string) *Service {
	s := NewService()
	s.primaryURL = primaryURL
	s.secondaryURL = secondaryURL
	return s
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func (s *Service) fetchProvider(ctx context.Context, url, source string) *ExchangeRate {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}

	res, err := s.httpClient.Do(req)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"Source": source, "ErrMsg": err}).Warn("exchange rate fetch failed")
		return nil
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		logger.Logrus.WithFields(logrus.Fields{"Source": source, "Status": res.StatusCode}).Warn("exchange rate fetch failed")
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil
	}

	var data ratesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}

	rate, ok := data.Rates["IDR"]
	if !ok || rate <= 0 {
		return nil
	}

	return &ExchangeRate{
		Rate:         rate,
		LastUpdate:   time.Now().UTC(),
		Source:       source,
		CurrencyPair: "USD/IDR",
	}
}

func (s *Service) fetch(ctx context.Context) *ExchangeRate {
	if rate := s.fetchProvider(ctx, s.primaryURL, "exchangerate-api.com"); rate != nil {
		return rate
	}
	if rate := s.fetchProvider(ctx, s.secondaryURL, "frankfurter.app"); rate != nil {
		return rate
	}
	return nil
}

// Rate returns the cached rate, refreshing when it is older than an hour.
// Every failure path still yields a usable rate via the fallback.
func (s *Service) Rate(ctx context.Context) *ExchangeRate {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()

	if cached != nil && time.Since(cached.LastUpdate) < cacheDuration {
		return cached
	}

	rate := s.fetch(ctx)
	if rate == nil {
		logger.Logrus.Warn("all exchange rate providers failed, using fallback")
		rate = &ExchangeRate{
			Rate:         FallbackRate,
			LastUpdate:   time.Now().UTC(),
			Source:       "fallback",
			CurrencyPair: "USD/IDR",
		}
	}

	s.mu.Lock()
	s.cached = rate
	s.mu.Unlock()
	return rate
}

// StartRefresher refreshes the cache on a fixed interval until the
// context is cancelled.
func (s *Service) StartRefresher(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if rate := s.fetch(ctx); rate != nil {
					s.mu.Lock()
					s.cached = rate
					s.mu.Unlock()
					logger.Logrus.WithFields(logrus.Fields{"Rate": rate.Rate, "Source": rate.Source}).Info("exchange rate refreshed")
				}
			}
		}
	}()
}

// ConvertUSDToIDR converts a USD amount using the given rate.
func ConvertUSDToIDR(usd, rate float64) float64 {
	return usd * rate
}
