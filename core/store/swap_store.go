package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tekrabyte/tekraswap/core/apperror"
	"github.com/tekrabyte/tekraswap/core/model"
	"github.com/uptrace/bun"
)

// BunSwapStore is the postgres-backed SwapStore.
type BunSwapStore struct {
	db *bun.DB
}

func NewBunSwapStore(db *bun.DB) *BunSwapStore {
	return &BunSwapStore{db: db}
}

func (s *BunSwapStore) Insert(ctx context.Context, rec *model.SwapRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	res, err := s.db.NewInsert().Model(rec).On("CONFLICT DO NOTHING").Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert swap record failed, %v", err)
	}

	num, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert swap record failed, %v", err)
	}
	if num == 0 {
		return fmt.Errorf("swap record %s already exists", rec.ID)
	}

	return nil
}

func (s *BunSwapStore) Get(ctx context.Context, id string) (*model.SwapRecord, error) {
	rec := new(model.SwapRecord)
	err := s.db.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select swap record failed, %v", err)
	}
	return rec, nil
}

func (s *BunSwapStore) Confirm(ctx context.Context, id, signature string) (*model.SwapRecord, error) {
	return s.finish(ctx, id, model.SwapStatusConfirmed, signature, "")
}

func (s *BunSwapStore) Fail(ctx context.Context, id, reason string) (*model.SwapRecord, error) {
	return s.finish(ctx, id, model.SwapStatusFailed, "", reason)
}

func (s *BunSwapStore) finish(ctx context.Context, id, status, signature, reason string) (*model.SwapRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Terminal states are final.
	if rec.Status == status {
		return rec, nil
	}
	if rec.Status != model.SwapStatusPending {
		return nil, apperror.Conflict("transaction %s is already %s", id, rec.Status)
	}

	rec.Status = status
	rec.UpdatedAt = time.Now().UTC()
	if signature != "" {
		rec.TransactionSignature = signature
	}
	if reason != "" {
		rec.ErrorMessage = reason
	}

	_, err = s.db.NewUpdate().Model(rec).
		Column("status", "transaction_signature", "error_message", "updated_at").
		Where("id = ?", id).
		Where("status = ?", model.SwapStatusPending).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update swap record failed, %v", err)
	}

	return rec, nil
}

func (s *BunSwapStore) History(ctx context.Context, userPublicKey string, limit int) ([]model.SwapRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	recs := make([]model.SwapRecord, 0, limit)
	err := s.db.NewSelect().Model(&recs).
		Where("user_public_key = ?", userPublicKey).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select swap history failed, %v", err)
	}

	return recs, nil
}

func (s *BunSwapStore) InsertFee(ctx context.Context, entry *model.FeeLedgerEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	_, err := s.db.NewInsert().Model(entry).On("CONFLICT (transaction_id) DO NOTHING").Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert fee ledger entry failed, %v", err)
	}
	return nil
}

func (s *BunSwapStore) FeeEntries(ctx context.Context, feeAccount string) ([]model.FeeLedgerEntry, error) {
	entries := make([]model.FeeLedgerEntry, 0)
	q := s.db.NewSelect().Model(&entries).Order("timestamp DESC")
	if feeAccount != "" {
		q = q.Where("fee_account = ?", feeAccount)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select fee ledger failed, %v", err)
	}
	return entries, nil
}
