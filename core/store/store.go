// Package store persists swap records and the fee ledger. The database is
// the system of record for swap lifecycle state; records are never deleted.
package store

import (
	"context"
	"errors"

	"github.com/tekrabyte/tekraswap/core/model"
)

var ErrNotFound = errors.New("swap record not found")

type SwapStore interface {
	// Insert stores a new pending record. Inserting an id twice is an error;
	// uniqueness is enforced by the primary key.
	Insert(ctx context.Context, rec *model.SwapRecord) error

	Get(ctx context.Context, id string) (*model.SwapRecord, error)

	// Confirm moves a pending record to confirmed and attaches the
	// client-reported signature. Confirming an already-confirmed record is
	// a no-op returning the stored record.
	Confirm(ctx context.Context, id, signature string) (*model.SwapRecord, error)

	// Fail moves a pending record to failed with a reason.
	Fail(ctx context.Context, id, reason string) (*model.SwapRecord, error)

	// History returns a wallet's records, most recent first.
	History(ctx context.Context, userPublicKey string, limit int) ([]model.SwapRecord, error)

	// InsertFee appends a ledger entry; a second insert for the same
	// transaction id is silently ignored.
	InsertFee(ctx context.Context, entry *model.FeeLedgerEntry) error

	FeeEntries(ctx context.Context, feeAccount string) ([]model.FeeLedgerEntry, error)
}
