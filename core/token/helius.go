package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
	"github.com/tekrabyte/tekraswap/core/apperror"
	"github.com/tekrabyte/tekraswap/core/cache"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

const assetCacheTTL = 10 * time.Minute

// AssetMeta is the normalized DAS getAsset record.
type AssetMeta struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	LogoURI  string `json:"logo_uri"`
}

// TokenAccountInfo is one parsed SPL token account row.
type TokenAccountInfo struct {
	Mint     string
	Amount   uint64
	Decimals int
	UIAmount float64
}

// HeliusClient talks to a Helius endpoint twice over: DAS getAsset for
// token metadata and the plain Solana RPC surface for balances.
type HeliusClient struct {
	rpcURL     string
	httpClient *http.Client
	rpcClient  *rpc.Client
	cache      cache.Cache
}

func NewHeliusClient(rpcURL string, c cache.Cache) *HeliusClient {
	return &HeliusClient{
		rpcURL:     rpcURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		rpcClient:  rpc.New(rpcURL),
		cache:      c,
	}
}

type dasAssetResponse struct {
	Result *struct {
		Content struct {
			Metadata struct {
				Name   string `json:"name"`
				Symbol string `json:"symbol"`
			} `json:"metadata"`
			Links struct {
				Image string `json:"image"`
			} `json:"links"`
		} `json:"content"`
		TokenInfo struct {
			Decimals int `json:"decimals"`
		} `json:"token_info"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *HeliusClient) fetchAsset(ctx context.Context, mint string) (*AssetMeta, error) {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      "metadata",
		"method":  "getAsset",
		"params":  map[string]string{"id": mint},
	}

	bt, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(bt))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Upstream(err, "indexer lookup failed")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, apperror.Upstream(nil, "indexer lookup failed with status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperror.Upstream(err, "indexer read failed")
	}

	var data dasAssetResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, apperror.Upstream(err, "indexer decode failed")
	}

	if data.Error != nil || data.Result == nil {
		return nil, apperror.NotFound("asset %s not found", mint)
	}

	decimals := data.Result.TokenInfo.Decimals
	if decimals == 0 && mint == SOLMint {
		decimals = 9
	}

	return &AssetMeta{
		Address:  mint,
		Name:     data.Result.Content.Metadata.Name,
		Symbol:   data.Result.Content.Metadata.Symbol,
		Decimals: decimals,
		LogoURI:  data.Result.Content.Links.Image,
	}, nil
}

// Asset returns cached DAS metadata for a mint, fetching on miss.
func (c *HeliusClient) Asset(ctx context.Context, mint string) (*AssetMeta, error) {
	key := fmt.Sprintf("meta:helius:solana:%s", mint)

	if cached, err := c.cache.Get(ctx, key); err == nil {
		var data AssetMeta
		if err := json.Unmarshal([]byte(cached), &data); err == nil {
			return &data, nil
		}
	}

	data, err := c.fetchAsset(ctx, mint)
	if err != nil {
		return nil, err
	}

	if bt, err := json.Marshal(data); err == nil {
		if err := c.cache.Set(ctx, key, string(bt), assetCacheTTL); err != nil {
			logger.Logrus.WithFields(logrus.Fields{"Mint": mint, "ErrMsg": err}).Warn("helius cache set failed")
		}
	}

	return data, nil
}

// NativeBalance returns the wallet's SOL balance in lamports.
func (c *HeliusClient) NativeBalance(ctx context.Context, wallet string) (uint64, error) {
	pubkey, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return 0, apperror.Validation("invalid wallet address %q", wallet)
	}

	out, err := c.rpcClient.GetBalance(ctx, pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, apperror.Upstream(err, "rpc balance lookup failed")
	}

	return out.Value, nil
}

type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			TokenAmount struct {
				Amount   string  `json:"amount"`
				Decimals int     `json:"decimals"`
				UIAmount float64 `json:"uiAmount"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

// TokenAccounts lists the wallet's SPL token accounts. A non-nil mint
// restricts the query to that mint; a wallet with no matching account
// yields an empty slice, not an error.
func (c *HeliusClient) TokenAccounts(ctx context.Context, wallet string, mint string) ([]TokenAccountInfo, error) {
	owner, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return nil, apperror.Validation("invalid wallet address %q", wallet)
	}

	conf := &rpc.GetTokenAccountsConfig{}
	if mint != "" {
		mintKey, err := solana.PublicKeyFromBase58(mint)
		if err != nil {
			return nil, apperror.Validation("invalid mint address %q", mint)
		}
		conf.Mint = &mintKey
	} else {
		conf.ProgramId = &solana.TokenProgramID
	}

	out, err := c.rpcClient.GetTokenAccountsByOwner(ctx, owner, conf, &rpc.GetTokenAccountsOpts{
		Encoding: solana.EncodingJSONParsed,
	})
	if err != nil {
		return nil, apperror.Upstream(err, "rpc token accounts lookup failed")
	}

	accounts := make([]TokenAccountInfo, 0, len(out.Value))
	for _, acc := range out.Value {
		raw := acc.Account.Data.GetRawJSON()
		if raw == nil {
			continue
		}

		var parsed parsedTokenAccount
		if err := json.Unmarshal(raw, &parsed); err != nil {
			logger.Logrus.WithFields(logrus.Fields{"Wallet": wallet, "ErrMsg": err}).Warn("token account parse failed")
			continue
		}

		amount, _ := strconv.ParseUint(parsed.Parsed.Info.TokenAmount.Amount, 10, 64)
		accounts = append(accounts, TokenAccountInfo{
			Mint:     parsed.Parsed.Info.Mint,
			Amount:   amount,
			Decimals: parsed.Parsed.Info.TokenAmount.Decimals,
			UIAmount: parsed.Parsed.Info.TokenAmount.UIAmount,
		})
	}

	return accounts, nil
}
