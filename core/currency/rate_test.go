package currency

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init("")
	os.Exit(m.Run())
}

func rateServer(t *testing.T, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRatePrimaryProvider(t *testing.T) {
	primary := rateServer(t, http.StatusOK, `{"rates":{"IDR":16250.5}}`)
	secondary := rateServer(t, http.StatusOK, `{"rates":{"IDR":99999}}`)

	svc := NewServiceWithProviders(primary.URL, secondary.URL)
	rate := svc.Rate(context.Background())

	assert.Equal(t, 16250.5, rate.Rate)
	assert.Equal(t, "exchangerate-api.com", rate.Source)
	assert.Equal(t, "USD/IDR", rate.CurrencyPair)
	assert.False(t, rate.LastUpdate.IsZero())
}

func TestRateFallsBackToSecondary(t *testing.T) {
	primary := rateServer(t, http.StatusServiceUnavailable, "")
	secondary := rateServer(t, http.StatusOK, `{"rates":{"IDR":15900}}`)

	svc := NewServiceWithProviders(primary.URL, secondary.URL)
	rate := svc.Rate(context.Background())

	assert.Equal(t, 15900.0, rate.Rate)
	assert.Equal(t, "frankfurter.app", rate.Source)
}

func TestRateFallsBackToHardcoded(t *testing.T) {
	primary := rateServer(t, http.StatusServiceUnavailable, "")
	secondary := rateServer(t, http.StatusOK, `{"rates":{}}`)

	svc := NewServiceWithProviders(primary.URL, secondary.URL)
	rate := svc.Rate(context.Background())

	assert.Equal(t, FallbackRate, rate.Rate)
	assert.Equal(t, "fallback", rate.Source)
}

func TestRateIsCached(t *testing.T) {
	calls := 0
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"rates":{"IDR":16000}}`)
	}))
	t.Cleanup(primary.Close)
	secondary := rateServer(t, http.StatusServiceUnavailable, "")

	svc := NewServiceWithProviders(primary.URL, secondary.URL)

	first := svc.Rate(context.Background())
	second := svc.Rate(context.Background())

	require.Equal(t, first.Rate, second.Rate)
	assert.Equal(t, 1, calls)
}

func TestConvertUSDToIDR(t *testing.T) {
	assert.Equal(t, 1580000.0, ConvertUSDToIDR(100, 15800))
	assert.Zero(t, ConvertUSDToIDR(0, 15800))
}
