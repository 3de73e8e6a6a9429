package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/tekrabyte/tekraswap/core/apperror"
	"github.com/tekrabyte/tekraswap/core/model"
)

// TokenService is the token-facing surface the handlers need.
type TokenService interface {
	List() []model.Token
	Metadata(ctx context.Context, mint string) (*model.Token, error)
	Balance(ctx context.Context, wallet, mint string) (*model.TokenBalance, error)
	Balances(ctx context.Context, wallet string, mints []string) (map[string]model.TokenBalance, error)
	Validate(ctx context.Context, mint string) (bool, error)
	PriceChart(ctx context.Context, mint, interval string) (*model.PriceChart, error)
	Portfolio(ctx context.Context, wallet string) (*model.PortfolioSnapshot, error)
}

type TokenHandler struct {
	tokens TokenService
}

func NewTokenHandler(tokens TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

func (h *TokenHandler) TokenList(c *gin.Context) {
	writeSuccess(c, gin.H{"tokens": h.tokens.List()})
}

func (h *TokenHandler) TokenMetadata(c *gin.Context) {
	meta, err := h.tokens.Metadata(c.Request.Context(), c.Param("mint"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, meta)
}

func (h *TokenHandler) TokenBalance(c *gin.Context) {
	wallet := c.Query("wallet")
	mint := c.Query("token_mint")
	if wallet == "" || mint == "" {
		writeError(c, apperror.Validation("wallet and token_mint are required"))
		return
	}

	bal, err := h.tokens.Balance(c.Request.Context(), wallet, mint)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, bal)
}

type balancesRequest struct {
	Wallet     string   `json:"wallet"`
	TokenMints []string `json:"token_mints"`
}

func (h *TokenHandler) TokenBalances(c *gin.Context) {
	var req balancesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperror.Validation("invalid request body: %v", err))
		return
	}
	if req.Wallet == "" || len(req.TokenMints) == 0 {
		writeError(c, apperror.Validation("wallet and token_mints are required"))
		return
	}

	balances, err := h.tokens.Balances(c.Request.Context(), req.Wallet, req.TokenMints)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, gin.H{"balances": balances})
}

func (h *TokenHandler) ValidateToken(c *gin.Context) {
	valid, err := h.tokens.Validate(c.Request.Context(), c.Param("mint"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, gin.H{"valid": valid})
}

func (h *TokenHandler) WalletPortfolio(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		writeError(c, apperror.Validation("wallet is required"))
		return
	}

	snap, err := h.tokens.Portfolio(c.Request.Context(), wallet)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, snap)
}

func (h *TokenHandler) PriceChart(c *gin.Context) {
	mint := c.Query("token")
	if mint == "" {
		writeError(c, apperror.Validation("token is required"))
		return
	}

	interval := c.DefaultQuery("interval", "1h")
	if interval != "1h" && interval != "1d" {
		writeError(c, apperror.Validation("interval must be 1h or 1d"))
		return
	}

	chart, err := h.tokens.PriceChart(c.Request.Context(), mint, interval)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, chart)
}
