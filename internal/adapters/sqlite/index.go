package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/csg33k/payslip-verify/internal/adapters/qst"
	"github.com/csg33k/payslip-verify/internal/domain"
)

const schema = `
CREATE TABLE brackets (
	tariff    TEXT    NOT NULL,
	pos       INTEGER NOT NULL,
	threshold INTEGER NOT NULL,
	step      INTEGER NOT NULL,
	PRIMARY KEY (tariff, pos)
);
CREATE INDEX brackets_range ON brackets (tariff, threshold);`

// BracketIndex is a qst.BracketFinder backed by an in-memory SQLite table.
// Amounts are stored in Rappen so range queries stay in integers. Nothing is
// written to disk.
type BracketIndex struct {
	db     *sql.DB
	mu     sync.Mutex
	loaded map[string]bool
}

var _ qst.BracketFinder = (*BracketIndex)(nil)

// New opens a private in-memory database.
func New() (*BracketIndex, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	// every pooled connection would get its own empty :memory: database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create bracket schema: %w", err)
	}
	return &BracketIndex{db: db, loaded: make(map[string]bool)}, nil
}

func (x *BracketIndex) Close() error { return x.db.Close() }

// FindBracket loads brackets on first use and returns the first one in file
// order whose closed interval holds income.
func (x *BracketIndex) FindBracket(ctx context.Context, brackets []qst.Bracket, income decimal.Decimal) (qst.Bracket, error) {
	if len(brackets) == 0 {
		return qst.Bracket{}, fmt.Errorf("income %s: %w", income, domain.ErrNoBracket)
	}
	key := tariffKey(brackets)
	if err := x.ensure(ctx, key, brackets); err != nil {
		return qst.Bracket{}, err
	}

	cents := income.Shift(2)
	var pos int
	err := x.db.QueryRowContext(ctx, `
		SELECT pos FROM brackets
		WHERE tariff = ? AND threshold <= ? AND threshold + step >= ?
		ORDER BY pos LIMIT 1`,
		key, cents.Floor().IntPart(), cents.Ceil().IntPart(),
	).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return qst.Bracket{}, fmt.Errorf("income %s: %w", income, domain.ErrNoBracket)
	}
	if err != nil {
		return qst.Bracket{}, err
	}
	return brackets[pos], nil
}

func (x *BracketIndex) ensure(ctx context.Context, key string, brackets []qst.Bracket) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.loaded[key] {
		return nil
	}
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO brackets (tariff, pos, threshold, step) VALUES (?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, b := range brackets {
		if _, err := stmt.ExecContext(ctx, key, i, b.IncomeFrom.Shift(2).IntPart(), b.Step.Shift(2).IntPart()); err != nil {
			return fmt.Errorf("index bracket at line %d: %w", b.Line, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	x.loaded[key] = true
	return nil
}

// tariffKey identifies one filtered tariff table.
func tariffKey(brackets []qst.Bracket) string {
	first, last := brackets[0], brackets[len(brackets)-1]
	return fmt.Sprintf("%s/%s/%s/%d-%d/%d", first.Canton, first.TaxClassCode, first.ValidFrom, first.Line, last.Line, len(brackets))
}
