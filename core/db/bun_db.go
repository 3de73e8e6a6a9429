package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/tekrabyte/tekraswap/config"
	"github.com/tekrabyte/tekraswap/core/model"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var db *bun.DB
var once sync.Once

// GetDB get postgressql db instance by sync.Once
func GetDB() *bun.DB {
	once.Do(func() {
		host := config.GetPostgresqlConfig().Host
		port := config.GetPostgresqlConfig().Port
		account := config.GetPostgresqlConfig().Account
		password := config.GetPostgresqlConfig().Password
		dbname := config.GetPostgresqlConfig().DBName
		schemaname := config.GetPostgresqlConfig().SchemaName
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&connect_timeout=10", account, password, host, port, dbname)
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithConnParams(map[string]interface{}{
			"search_path": schemaname,
		})))

		sqldb.SetMaxOpenConns(10)
		sqldb.SetMaxIdleConns(5)
		sqldb.SetConnMaxLifetime(time.Hour)

		db = bun.NewDB(sqldb, pgdialect.New())
	})
	return db
}

// EnsureSchema creates the swap tables when they do not exist yet.
func EnsureSchema(ctx context.Context) error {
	models := []interface{}{
		(*model.SwapRecord)(nil),
		(*model.FeeLedgerEntry)(nil),
	}

	for _, m := range models {
		if _, err := GetDB().NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table failed, %v", err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_swap_records_user_created ON swap_records(user_public_key, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_swap_records_signature ON swap_records(transaction_signature)",
		"CREATE INDEX IF NOT EXISTS idx_fee_ledger_timestamp ON fee_ledger(timestamp)",
	}
	for _, stmt := range indexes {
		if _, err := GetDB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index failed, %v", err)
		}
	}

	return nil
}
