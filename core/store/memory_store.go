package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tekrabyte/tekraswap/core/apperror"
	"github.com/tekrabyte/tekraswap/core/model"
)

// MemorySwapStore keeps everything in maps. It backs the tests and local
// runs without postgres.
type MemorySwapStore struct {
	mu    sync.RWMutex
	swaps map[string]model.SwapRecord
	fees  map[string]model.FeeLedgerEntry
}

func NewMemorySwapStore() *MemorySwapStore {
	return &MemorySwapStore{
		swaps: make(map[string]model.SwapRecord),
		fees:  make(map[string]model.FeeLedgerEntry),
	}
}

func (s *MemorySwapStore) Insert(ctx context.Context, rec *model.SwapRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.swaps[rec.ID]; ok {
		return fmt.Errorf("swap record %s already exists", rec.ID)
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	s.swaps[rec.ID] = *rec
	return nil
}

func (s *MemorySwapStore) Get(ctx context.Context, id string) (*model.SwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.swaps[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemorySwapStore) Confirm(ctx context.Context, id, signature string) (*model.SwapRecord, error) {
	return s.finish(id, model.SwapStatusConfirmed, signature, "")
}

func (s *MemorySwapStore) Fail(ctx context.Context, id, reason string) (*model.SwapRecord, error) {
	return s.finish(id, model.SwapStatusFailed, "", reason)
}

func (s *MemorySwapStore) finish(id, status, signature, reason string) (*model.SwapRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.swaps[id]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Status == status {
		return &rec, nil
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
	s.swaps[id] = rec
	return &rec, nil
}

func (s *MemorySwapStore) History(ctx context.Context, userPublicKey string, limit int) ([]model.SwapRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]model.SwapRecord, 0)
	for _, rec := range s.swaps {
		if rec.UserPublicKey == userPublicKey {
			recs = append(recs, rec)
		}
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})

	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (s *MemorySwapStore) InsertFee(ctx context.Context, entry *model.FeeLedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fees[entry.TransactionID]; ok {
		return nil
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	s.fees[entry.TransactionID] = *entry
	return nil
}

func (s *MemorySwapStore) FeeEntries(ctx context.Context, feeAccount string) ([]model.FeeLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.FeeLedgerEntry, 0)
	for _, e := range s.fees {
		if feeAccount == "" || e.FeeAccount == feeAccount {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}
