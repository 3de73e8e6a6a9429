package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tekrabyte/tekraswap/core/apperror"
	"github.com/tekrabyte/tekraswap/core/model"
	"github.com/tekrabyte/tekraswap/core/swap"
)

// SwapService is the orchestrator surface the handlers need.
type SwapService interface {
	GetQuote(ctx context.Context, req *swap.QuoteRequest) (*swap.QuoteResponse, error)
	Execute(ctx context.Context, req *swap.ExecuteRequest) (*swap.ExecuteResult, error)
	Confirm(ctx context.Context, id, signature string) (*model.SwapRecord, error)
	History(ctx context.Context, userPublicKey string, limit int) ([]model.SwapRecord, error)
}

type SwapHandler struct {
	swaps SwapService
}

func NewSwapHandler(swaps SwapService) *SwapHandler {
	return &SwapHandler{swaps: swaps}
}

func (h *SwapHandler) Quote(c *gin.Context) {
	amount, err := strconv.ParseInt(c.Query("amount"), 10, 64)
	if err != nil {
		writeError(c, apperror.Validation("amount must be an integer in the input token's smallest unit"))
		return
	}

	slippageBps := 0
	if raw := c.Query("slippageBps"); raw != "" {
		slippageBps, err = strconv.Atoi(raw)
		if err != nil {
			writeError(c, apperror.Validation("slippageBps must be an integer"))
			return
		}
	}

	quote, err := h.swaps.GetQuote(c.Request.Context(), &swap.QuoteRequest{
		InputMint:   c.Query("inputMint"),
		OutputMint:  c.Query("outputMint"),
		Amount:      amount,
		SlippageBps: slippageBps,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, quote)
}

func (h *SwapHandler) Execute(c *gin.Context) {
	var req swap.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperror.Validation("invalid request body: %v", err))
		return
	}

	res, err := h.swaps.Execute(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, res)
}

func (h *SwapHandler) Confirm(c *gin.Context) {
	rec, err := h.swaps.Confirm(c.Request.Context(), c.Param("id"), c.Query("signature"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, rec)
}

func (h *SwapHandler) History(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		writeError(c, apperror.Validation("wallet is required"))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil {
			writeError(c, apperror.Validation("limit must be an integer"))
			return
		}
	}

	recs, err := h.swaps.History(c.Request.Context(), wallet, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, gin.H{"swaps": recs, "total": len(recs)})
}
