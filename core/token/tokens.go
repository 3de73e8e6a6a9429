package token

import "github.com/tekrabyte/tekraswap/core/model"

// Well-known mint addresses (mainnet).
const (
	SOLMint  = "So11111111111111111111111111111111111111112"
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDTMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"

	// Platform tokens.
	Tekra1Mint = "4ymWDE5kwxZ5rxN3mWLvJEBHESbZSiqBuvWmSVcGqZdj"
	Tekra2Mint = "FShCGqGUWRZkqovteJBGegUJAcjRzHZiBmHYGgSqpump"
)

const solLogoURI = "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/So11111111111111111111111111111111111111112/logo.png"

// DefaultTokens returns the pre-configured popular tokens used by the
// selection UI and as static metadata fallback.
func DefaultTokens() map[string]model.Token {
	return map[string]model.Token{
		SOLMint: {
			Address:  SOLMint,
			Symbol:   "SOL",
			Name:     "Solana",
			Decimals: 9,
			LogoURI:  solLogoURI,
			Tags:     []string{"native"},
		},
		USDCMint: {
			Address:  USDCMint,
			Symbol:   "USDC",
			Name:     "USD Coin",
			Decimals: 6,
			LogoURI:  "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v/logo.png",
			Tags:     []string{"stablecoin"},
		},
		USDTMint: {
			Address:  USDTMint,
			Symbol:   "USDT",
			Name:     "USDT",
			Decimals: 6,
			LogoURI:  "https://raw.githubusercontent.com/solana-labs/token-list/main/assets/mainnet/Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB/logo.png",
			Tags:     []string{"stablecoin"},
		},
		Tekra1Mint: {
			Address:  Tekra1Mint,
			Symbol:   "TEKRA",
			Name:     "TEKRA Token 1",
			Decimals: 9,
			Tags:     []string{"platform"},
		},
		Tekra2Mint: {
			Address:  Tekra2Mint,
			Symbol:   "TEKRA",
			Name:     "TEKRA Token 2",
			Decimals: 9,
			Tags:     []string{"platform"},
		},
	}
}
