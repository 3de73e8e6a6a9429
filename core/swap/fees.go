package swap

import "github.com/tekrabyte/tekraswap/config"

// FeePolicy resolves the platform fee rate and the per-mint collection
// accounts. The rate is static configuration, never negotiated per call.
type FeePolicy struct {
	bps      int64
	accounts map[string]string
}

func NewFeePolicy(conf config.JupiterConfig) *FeePolicy {
	accounts := make(map[string]string, len(conf.FeeWallets))
	for _, fw := range conf.FeeWallets {
		accounts[fw.Mint] = fw.Account
	}
	return &FeePolicy{bps: conf.PlatformFeeBps, accounts: accounts}
}

func (p *FeePolicy) Bps() int64 {
	return p.bps
}

func (p *FeePolicy) Percentage() float64 {
	return float64(p.bps) / 100
}

// CalculateFee returns the fee in the output token's smallest unit,
// truncated toward zero.
func (p *FeePolicy) CalculateFee(outputAmount int64) int64 {
	return outputAmount * p.bps / 10000
}

// FeeAccount returns the collection account for an output mint, or empty
// when no fee wallet is configured for that token.
func (p *FeePolicy) FeeAccount(outputMint string) string {
	return p.accounts[outputMint]
}
