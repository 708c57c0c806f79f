package storage

// sqlite.go — log persistente de transacciones y último portfolio conocido.
//
// Dos tablas:
//   - `transactions`: histórico append-only keyed por la clave de
//     identidad. Fuente del feed publicado y del set "ya visto" que
//     detecta actividad nueva. Las canceladas también se guardan; solo
//     el feed las excluye.
//   - `portfolios`: último snapshot bueno por participante (upsert).
//     Fallback cuando el fetch de un ciclo falla.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adelgado/vsetrack/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Histórico completo de transacciones, una fila por clave de identidad
CREATE TABLE IF NOT EXISTS transactions (
    tx_key           TEXT PRIMARY KEY,
    public_id        TEXT NOT NULL,
    symbol           TEXT NOT NULL,
    order_date       TEXT NOT NULL DEFAULT '',
    transaction_date TEXT NOT NULL DEFAULT '',
    action           TEXT NOT NULL,
    amount           INTEGER NOT NULL DEFAULT 0,
    price            TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT 'Completed',
    first_seen       DATETIME NOT NULL
);

-- Último snapshot bueno por participante
CREATE TABLE IF NOT EXISTS portfolios (
    public_id      TEXT PRIMARY KEY,
    value          REAL NOT NULL DEFAULT 0,
    return_pct     REAL NOT NULL DEFAULT 0,
    return_dollars REAL NOT NULL DEFAULT 0,
    observed_at    DATETIME NOT NULL,
    updated_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tx_public ON transactions(public_id);
CREATE INDEX IF NOT EXISTS idx_tx_seen   ON transactions(first_seen DESC);
`

// SQLiteLog implementa ports.TransactionLog usando SQLite (pure Go, sin CGo).
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLiteLog abre (o crea) la base de datos en la ruta dada y aplica
// el schema.
func NewSQLiteLog(path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteLog: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteLog: apply schema: %w", err)
	}
	return &SQLiteLog{db: db}, nil
}

// RecordTransactions inserta las transacciones no vistas (INSERT OR
// IGNORE sobre la clave de identidad) y devuelve exactamente las que
// eran nuevas, en el orden de entrada.
func (s *SQLiteLog) RecordTransactions(ctx context.Context, txs []domain.Transaction) ([]domain.Transaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("storage.RecordTransactions: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions
		(tx_key, public_id, symbol, order_date, transaction_date, action, amount, price, status, first_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("storage.RecordTransactions: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	var added []domain.Transaction
	for _, t := range txs {
		res, err := stmt.ExecContext(ctx,
			t.Key(), t.PublicID, t.Symbol, t.OrderDate, t.TransactionDate,
			string(t.Action), t.Amount, t.Price, string(t.Status), now,
		)
		if err != nil {
			return nil, fmt.Errorf("storage.RecordTransactions: insert %s: %w", t.Key(), err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added = append(added, t)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("storage.RecordTransactions: commit: %w", err)
	}
	return added, nil
}

// RecentTransactions devuelve hasta limit transacciones no canceladas,
// las descubiertas más recientemente primero. rowid desempata dentro de
// un mismo batch (todas comparten first_seen).
func (s *SQLiteLog) RecentTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT public_id, symbol, order_date, transaction_date, action, amount, price, status
		FROM transactions
		WHERE status != ?
		ORDER BY first_seen DESC, rowid DESC
		LIMIT ?`, string(domain.StatusCanceled), limit)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentTransactions: query: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var action, status string
		if err := rows.Scan(&t.PublicID, &t.Symbol, &t.OrderDate, &t.TransactionDate,
			&action, &t.Amount, &t.Price, &status); err != nil {
			return nil, fmt.Errorf("storage.RecentTransactions: scan: %w", err)
		}
		t.Action = domain.Action(action)
		t.Status = domain.Status(status)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.RecentTransactions: rows: %w", err)
	}
	return txs, nil
}

// SavePortfolio hace upsert del último snapshot bueno del participante.
func (s *SQLiteLog) SavePortfolio(ctx context.Context, snap domain.PortfolioSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO portfolios (public_id, value, return_pct, return_dollars, observed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(public_id) DO UPDATE SET
			value          = excluded.value,
			return_pct     = excluded.return_pct,
			return_dollars = excluded.return_dollars,
			observed_at    = excluded.observed_at,
			updated_at     = excluded.updated_at`,
		snap.PublicID, snap.Value, snap.ReturnPercent, snap.ReturnDollars,
		snap.ObservedAt.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage.SavePortfolio: %s: %w", snap.PublicID, err)
	}
	return nil
}

// LastPortfolio devuelve el último snapshot guardado del participante.
// ok=false si nunca hubo un fetch exitoso.
func (s *SQLiteLog) LastPortfolio(ctx context.Context, publicID string) (domain.PortfolioSnapshot, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT value, return_pct, return_dollars, observed_at
		FROM portfolios WHERE public_id = ?`, publicID)

	snap := domain.PortfolioSnapshot{PublicID: publicID}
	err := row.Scan(&snap.Value, &snap.ReturnPercent, &snap.ReturnDollars, &snap.ObservedAt)
	if err == sql.ErrNoRows {
		return domain.PortfolioSnapshot{}, false, nil
	}
	if err != nil {
		return domain.PortfolioSnapshot{}, false, fmt.Errorf("storage.LastPortfolio: %s: %w", publicID, err)
	}
	return snap, true, nil
}

// Close cierra la base de datos.
func (s *SQLiteLog) Close() error {
	return s.db.Close()
}
