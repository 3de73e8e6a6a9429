package model

import (
	"time"

	"github.com/uptrace/bun"
)

// Swap lifecycle states. A record only ever moves pending -> confirmed or
// pending -> failed; both end states are final.
const (
	SwapStatusPending   = "pending"
	SwapStatusConfirmed = "confirmed"
	SwapStatusFailed    = "failed"
)

type SwapRecord struct {
	bun.BaseModel `bun:"table:swap_records,alias:sr"`

	ID            string `bun:"id,pk" json:"id"`
	UserPublicKey string `bun:"user_public_key,notnull" json:"userPublicKey"`
	InputMint     string `bun:"input_mint,notnull" json:"inputMint"`
	OutputMint    string `bun:"output_mint,notnull" json:"outputMint"`
	InputAmount   int64  `bun:"input_amount" json:"inputAmount"`
	OutputAmount  int64  `bun:"output_amount" json:"outputAmount"`
	PlatformFee   int64  `bun:"platform_fee" json:"platformFee"`
	FeeAccount    string `bun:"fee_account" json:"feeAccount,omitempty"`
	Status        string `bun:"status,notnull" json:"status"`

	TransactionSignature string `bun:"transaction_signature" json:"transactionSignature,omitempty"`
	ErrorMessage         string `bun:"error_message" json:"errorMessage,omitempty"`

	CreatedAt time.Time `bun:"created_at,nullzero" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updatedAt"`
}

// FeeLedgerEntry is append-only: one row per confirmed swap that carried a
// nonzero platform fee.
type FeeLedgerEntry struct {
	bun.BaseModel `bun:"table:fee_ledger,alias:fl"`

	TransactionID string    `bun:"transaction_id,pk" json:"transactionId"`
	FeeAmount     int64     `bun:"fee_amount" json:"feeAmount"`
	TokenMint     string    `bun:"token_mint" json:"tokenMint"`
	FeeAccount    string    `bun:"fee_account" json:"feeAccount"`
	Timestamp     time.Time `bun:"timestamp,nullzero" json:"timestamp"`
}
