package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tekrabyte/tekraswap/core/currency"
)

type CurrencyHandler struct {
	rates *currency.Service
}

func NewCurrencyHandler(rates *currency.Service) *CurrencyHandler {
	return &CurrencyHandler{rates: rates}
}

func (h *CurrencyHandler) ExchangeRate(c *gin.Context) {
	writeSuccess(c, h.rates.Rate(c.Request.Context()))
}

func Health(c *gin.Context) {
	writeSuccess(c, gin.H{"status": "ok"})
}
