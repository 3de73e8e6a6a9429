package swap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tekrabyte/tekraswap/core/apperror"
)

const (
	SwapModeExactIn  = "ExactIn"
	SwapModeExactOut = "ExactOut"

	jupiterTimeout = 30 * time.Second
)

// JupiterClient talks to the aggregator's quote and swap endpoints.
type JupiterClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewJupiterClient(baseURL, apiKey string) *JupiterClient {
	return &JupiterClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: jupiterTimeout},
	}
}

type QuoteParams struct {
	InputMint        string
	OutputMint       string
	Amount           int64
	SlippageBps      int
	SwapMode         string
	PlatformFeeBps   int64
	OnlyDirectRoutes bool
}

type RoutePlan struct {
	SwapInfo struct {
		AmmKey     string `json:"ammKey"`
		Label      string `json:"label"`
		InputMint  string `json:"inputMint"`
		OutputMint string `json:"outputMint"`
		InAmount   string `json:"inAmount"`
		OutAmount  string `json:"outAmount"`
		FeeAmount  string `json:"feeAmount"`
		FeeMint    string `json:"feeMint"`
	} `json:"swapInfo"`
	Percent int `json:"percent"`
}

type QuoteResponse struct {
	InputMint            string       `json:"inputMint"`
	InAmount             string       `json:"inAmount"`
	OutputMint           string       `json:"outputMint"`
	OutAmount            string       `json:"outAmount"`
	OtherAmountThreshold string       `json:"otherAmountThreshold"`
	SwapMode             string       `json:"swapMode"`
	SlippageBps          int          `json:"slippageBps"`
	PlatformFee          *PlatformFee `json:"platformFee,omitempty"`
	PriceImpactPct       string       `json:"priceImpactPct"`
	RoutePlan            []RoutePlan  `json:"routePlan"`
	ContextSlot          int64        `json:"contextSlot,omitempty"`
	TimeTaken            float64      `json:"timeTaken,omitempty"`
}

// PlatformFee is the fee attached to a quote, in the output token's
// smallest unit.
type PlatformFee struct {
	Amount     string  `json:"amount,omitempty"`
	FeeBps     int64   `json:"feeBps"`
	Percentage float64 `json:"percentage,omitempty"`
	Account    string  `json:"account,omitempty"`
}

type SwapParams struct {
	QuoteResponse           *QuoteResponse `json:"quoteResponse"`
	UserPublicKey           string         `json:"userPublicKey"`
	WrapAndUnwrapSol        bool           `json:"wrapAndUnwrapSol"`
	DynamicComputeUnitLimit bool           `json:"dynamicComputeUnitLimit"`
	FeeAccount              string         `json:"feeAccount,omitempty"`
}

type SwapResponse struct {
	SwapTransaction           string `json:"swapTransaction"`
	LastValidBlockHeight      int64  `json:"lastValidBlockHeight"`
	PrioritizationFeeLamports int64  `json:"prioritizationFeeLamports,omitempty"`
	ComputeUnitLimit          int    `json:"computeUnitLimit,omitempty"`
}

type jupiterError struct {
	Error     string `json:"error"`
	ErrorCode string `json:"errorCode"`
}

// classifyError maps aggregator failures onto the API error taxonomy. A
// missing route means the pair has no liquidity at the requested size,
// which callers should surface as an adjustable condition, not a 5xx.
func classifyError(status int, body []byte) error {
	var je jupiterError
	_ = json.Unmarshal(body, &je)

	if je.ErrorCode == "COULD_NOT_FIND_ANY_ROUTE" ||
		strings.Contains(strings.ToLower(je.Error), "no route") {
		return apperror.InsufficientLiquidity("no route found, try a smaller amount or higher slippage")
	}

	return apperror.Upstream(fmt.Errorf("status %d: %s", status, string(body)), "aggregator request failed")
}

func (c *JupiterClient) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}

// GetQuote fetches the best route for the pair and amount.
func (c *JupiterClient) GetQuote(ctx context.Context, params *QuoteParams) (*QuoteResponse, error) {
	query := url.Values{}
	query.Set("inputMint", params.InputMint)
	query.Set("outputMint", params.OutputMint)
	query.Set("amount", strconv.FormatInt(params.Amount, 10))
	query.Set("slippageBps", strconv.Itoa(params.SlippageBps))
	if params.SwapMode != "" {
		query.Set("swapMode", params.SwapMode)
	}
	if params.PlatformFeeBps > 0 {
		query.Set("platformFeeBps", strconv.FormatInt(params.PlatformFeeBps, 10))
	}
	if params.OnlyDirectRoutes {
		query.Set("onlyDirectRoutes", "true")
	}

	requestURL := fmt.Sprintf("%s/quote?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Upstream(err, "aggregator unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Upstream(err, "aggregator read failed")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyError(resp.StatusCode, body)
	}

	var quote QuoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, apperror.Upstream(err, "aggregator decode failed")
	}

	return &quote, nil
}

// BuildSwapTransaction returns a serialized unsigned transaction for the
// quote, ready for client-side signing.
func (c *JupiterClient) BuildSwapTransaction(ctx context.Context, params *SwapParams) (*SwapResponse, error) {
	jsonBody, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/swap", c.baseURL), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Upstream(err, "aggregator unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.Upstream(err, "aggregator read failed")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyError(resp.StatusCode, body)
	}

	var swapResp SwapResponse
	if err := json.Unmarshal(body, &swapResp); err != nil {
		return nil, apperror.Upstream(err, "aggregator decode failed")
	}

	if swapResp.SwapTransaction == "" {
		return nil, apperror.Upstream(nil, "aggregator returned no transaction")
	}

	return &swapResp, nil
}
