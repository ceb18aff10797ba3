package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// ErrPersistFailed marks a ledger write that did not reach durable storage.
// The in-memory balance is not advanced when this is returned.
var ErrPersistFailed = errors.New("ledger persist failed")

const timeLayout = time.RFC3339

// Store is the append-only trade ledger backed by sqlite. It maintains the
// invariant that the running balance equals the fold of all net results, and
// reloads that fold from the last persisted row on open.
type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	loc     *time.Location
	balance decimal.Decimal
	count   int
}

type Summary struct {
	Date       string
	TradeCount int
	WinCount   int
	Net        decimal.Decimal
}

func Open(path string, loc *time.Location) (*Store, error) {
	if loc == nil {
		loc = time.Local
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		pair TEXT NOT NULL,
		side TEXT NOT NULL,
		price TEXT NOT NULL,
		quantity TEXT NOT NULL,
		fee TEXT NOT NULL,
		net_result TEXT NOT NULL,
		running_balance TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS daily_summaries (
		date TEXT PRIMARY KEY,
		net_balance TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	store := &Store{db: db, loc: loc}
	if err := store.reload(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) reload() error {
	var raw string
	err := s.db.QueryRow(`SELECT running_balance FROM trades ORDER BY rowid DESC LIMIT 1`).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		s.balance = decimal.Zero
	case err != nil:
		return err
	default:
		balance, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("corrupt running_balance %q: %w", raw, err)
		}
		s.balance = balance
	}
	return s.db.QueryRow(`SELECT COUNT(*) FROM trades`).Scan(&s.count)
}

// Record appends the trade and advances the running balance. On persistence
// failure nothing is advanced and the caller must not treat the trade as
// recorded.
func (s *Store) Record(t *Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.balance.Add(t.NetResult)
	_, err := s.db.Exec(
		`INSERT INTO trades (id, timestamp, pair, side, price, quantity, fee, net_result, running_balance)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Time.In(s.loc).Format(timeLayout),
		t.Pair,
		string(t.Side),
		t.Price.String(),
		t.Quantity.String(),
		t.Fee.String(),
		t.NetResult.String(),
		next.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	t.RunningBalance = next
	s.balance = next
	s.count++
	return nil
}

func (s *Store) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// SummarizeDay aggregates trades whose local timestamp falls on the given
// date (YYYY-MM-DD).
func (s *Store) SummarizeDay(date string) (Summary, error) {
	rows, err := s.db.Query(`SELECT net_result FROM trades WHERE substr(timestamp, 1, 10) = ?`, date)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	summary := Summary{Date: date, Net: decimal.Zero}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return Summary{}, err
		}
		net, err := decimal.NewFromString(raw)
		if err != nil {
			return Summary{}, fmt.Errorf("corrupt net_result %q: %w", raw, err)
		}
		summary.TradeCount++
		if net.IsPositive() {
			summary.WinCount++
		}
		summary.Net = summary.Net.Add(net)
	}
	return summary, rows.Err()
}

// RecordSummary upserts the daily summary row for the date.
func (s *Store) RecordSummary(date string, netBalance decimal.Decimal) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO daily_summaries (date, net_balance) VALUES (?, ?)`,
		date, netBalance.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
