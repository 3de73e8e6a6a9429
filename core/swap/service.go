package swap

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tekrabyte/tekraswap/core/apperror"
	"github.com/tekrabyte/tekraswap/core/model"
	"github.com/tekrabyte/tekraswap/core/store"
	"github.com/tekrabyte/tekraswap/core/token"
	"github.com/tekrabyte/tekraswap/utils/logger"
)

const (
	defaultSlippageBps = 50
	maxSlippageBps     = 10000

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// MintValidator gates swaps on mint resolvability. Satisfied by the token
// service.
type MintValidator interface {
	Validate(ctx context.Context, mint string) (bool, error)
}

// Publisher emits confirmed swaps to downstream consumers. Publish
// failures must not fail the confirmation.
type Publisher interface {
	PublishSwapConfirmed(rec *model.SwapRecord)
}

// Service orchestrates the quote, execute and confirm pipeline. It never
// holds or uses a private key; signing is the caller's wallet's job.
type Service struct {
	jupiter *JupiterClient
	fees    *FeePolicy
	store   store.SwapStore
	tokens  MintValidator
	events  Publisher
}

// NewService wires the orchestrator. events may be nil when no broker is
// configured.
func NewService(jupiter *JupiterClient, fees *FeePolicy, st store.SwapStore, tokens MintValidator, events Publisher) *Service {
	return &Service{
		jupiter: jupiter,
		fees:    fees,
		store:   st,
		tokens:  tokens,
		events:  events,
	}
}

// QuoteRequest are the caller-supplied quote inputs. Amount is in the
// input token's smallest unit.
type QuoteRequest struct {
	InputMint   string
	OutputMint  string
	Amount      int64
	SlippageBps int
}

func (r *QuoteRequest) validate() error {
	if !token.ValidAddress(r.InputMint) {
		return apperror.Validation("invalid inputMint %q", r.InputMint)
	}
	if !token.ValidAddress(r.OutputMint) {
		return apperror.Validation("invalid outputMint %q", r.OutputMint)
	}
	if r.InputMint == r.OutputMint {
		return apperror.Validation("inputMint and outputMint must differ")
	}
	if r.Amount <= 0 {
		return apperror.Validation("amount must be positive")
	}
	if r.SlippageBps == 0 {
		r.SlippageBps = defaultSlippageBps
	}
	if r.SlippageBps < 0 || r.SlippageBps > maxSlippageBps {
		return apperror.Validation("slippageBps must be between 1 and %d", maxSlippageBps)
	}
	return nil
}

// GetQuote forwards to the aggregator and attaches the platform fee to
// the returned route. Side-effect free: quotes are never persisted.
func (s *Service) GetQuote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	feeAccount := s.fees.FeeAccount(req.OutputMint)

	params := &QuoteParams{
		InputMint:   req.InputMint,
		OutputMint:  req.OutputMint,
		Amount:      req.Amount,
		SlippageBps: req.SlippageBps,
		SwapMode:    SwapModeExactIn,
	}
	if feeAccount != "" {
		params.PlatformFeeBps = s.fees.Bps()
	}

	quote, err := s.jupiter.GetQuote(ctx, params)
	if err != nil {
		return nil, err
	}

	outAmount, _ := strconv.ParseInt(quote.OutAmount, 10, 64)
	if quote.PlatformFee == nil {
		quote.PlatformFee = &PlatformFee{
			Amount: strconv.FormatInt(s.fees.CalculateFee(outAmount), 10),
			FeeBps: s.fees.Bps(),
		}
	}
	quote.PlatformFee.Percentage = s.fees.Percentage()
	quote.PlatformFee.Account = feeAccount

	return quote, nil
}

// ExecuteRequest keys a swap build on a previously obtained quote.
type ExecuteRequest struct {
	Quote         *QuoteResponse `json:"quoteResponse"`
	UserPublicKey string         `json:"userPublicKey"`
	FeeAccount    string         `json:"feeAccount,omitempty"`
}

type ExecuteResult struct {
	TransactionID        string       `json:"transactionId"`
	SwapTransaction      string       `json:"swapTransaction"`
	LastValidBlockHeight int64        `json:"lastValidBlockHeight"`
	PlatformFee          *PlatformFee `json:"platformFee"`
}

// Execute validates both mints, requests an unsigned transaction from the
// aggregator and persists a pending record before returning. The record
// exists even if the client never confirms.
func (s *Service) Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResult, error) {
	if req.Quote == nil {
		return nil, apperror.Validation("quoteResponse is required")
	}
	if !token.ValidAddress(req.UserPublicKey) {
		return nil, apperror.Validation("invalid userPublicKey %q", req.UserPublicKey)
	}

	for _, mint := range []string{req.Quote.InputMint, req.Quote.OutputMint} {
		ok, err := s.tokens.Validate(ctx, mint)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.Validation("unknown mint %q", mint)
		}
	}

	feeAccount := req.FeeAccount
	if feeAccount == "" {
		feeAccount = s.fees.FeeAccount(req.Quote.OutputMint)
	}

	swapResp, err := s.jupiter.BuildSwapTransaction(ctx, &SwapParams{
		QuoteResponse:           req.Quote,
		UserPublicKey:           req.UserPublicKey,
		WrapAndUnwrapSol:        true,
		DynamicComputeUnitLimit: true,
		FeeAccount:              feeAccount,
	})
	if err != nil {
		return nil, err
	}

	inAmount, _ := strconv.ParseInt(req.Quote.InAmount, 10, 64)
	outAmount, _ := strconv.ParseInt(req.Quote.OutAmount, 10, 64)
	feeAmount := s.fees.CalculateFee(outAmount)

	rec := &model.SwapRecord{
		ID:            uuid.NewString(),
		UserPublicKey: req.UserPublicKey,
		InputMint:     req.Quote.InputMint,
		OutputMint:    req.Quote.OutputMint,
		InputAmount:   inAmount,
		OutputAmount:  outAmount,
		PlatformFee:   feeAmount,
		FeeAccount:    feeAccount,
		Status:        model.SwapStatusPending,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, err
	}

	logger.Logrus.WithFields(logrus.Fields{"TransactionID": rec.ID, "User": req.UserPublicKey, "InputMint": rec.InputMint, "OutputMint": rec.OutputMint}).Info("Execute swap record created")

	return &ExecuteResult{
		TransactionID:        rec.ID,
		SwapTransaction:      swapResp.SwapTransaction,
		LastValidBlockHeight: swapResp.LastValidBlockHeight,
		PlatformFee: &PlatformFee{
			Amount:     strconv.FormatInt(feeAmount, 10),
			FeeBps:     s.fees.Bps(),
			Percentage: s.fees.Percentage(),
			Account:    feeAccount,
		},
	}, nil
}

// Confirm marks a pending record confirmed with the client-reported
// signature. The chain is not polled; the signature is trusted as-is.
// Idempotent: a repeat call returns the stored record and writes no
// second fee ledger entry.
func (s *Service) Confirm(ctx context.Context, id, signature string) (*model.SwapRecord, error) {
	if signature == "" {
		return nil, apperror.Validation("signature is required")
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperror.NotFound("transaction %s not found", id)
		}
		return nil, err
	}
	if current.Status == model.SwapStatusConfirmed {
		return current, nil
	}

	rec, err := s.store.Confirm(ctx, id, signature)
	if err != nil {
		return nil, err
	}

	if rec.PlatformFee > 0 && rec.FeeAccount != "" {
		entry := &model.FeeLedgerEntry{
			TransactionID: rec.ID,
			FeeAmount:     rec.PlatformFee,
			TokenMint:     rec.OutputMint,
			FeeAccount:    rec.FeeAccount,
			Timestamp:     time.Now().UTC(),
		}
		if err := s.store.InsertFee(ctx, entry); err != nil {
			logger.Logrus.WithFields(logrus.Fields{"TransactionID": rec.ID, "ErrMsg": err}).Error("Confirm fee ledger insert failed")
		}
	}

	if s.events != nil {
		s.events.PublishSwapConfirmed(rec)
	}

	logger.Logrus.WithFields(logrus.Fields{"TransactionID": rec.ID, "Signature": signature}).Info("Confirm swap confirmed")
	return rec, nil
}

// Fail marks a pending record failed with a reason.
func (s *Service) Fail(ctx context.Context, id, reason string) (*model.SwapRecord, error) {
	rec, err := s.store.Fail(ctx, id, reason)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperror.NotFound("transaction %s not found", id)
		}
		return nil, err
	}
	return rec, nil
}

// History returns a wallet's swap records, most recent first.
func (s *Service) History(ctx context.Context, userPublicKey string, limit int) ([]model.SwapRecord, error) {
	if !token.ValidAddress(userPublicKey) {
		return nil, apperror.Validation("invalid wallet address %q", userPublicKey)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.store.History(ctx, userPublicKey, limit)
}
