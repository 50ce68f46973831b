// Package history keeps a local record of committed transfers so the
// transfer form can suggest recent receivers. It is a cache, not a ledger:
// rows are written only after the backend has accepted a commit, and
// nothing here is ever used to compute a balance.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store wraps the local sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Entry is one committed transfer.
type Entry struct {
	ID              string
	ReceiverAccount string
	ReceiverName    string
	Amount          decimal.Decimal
	CreatedAt       time.Time
}

// Record inserts a committed transfer. The ID is assigned when empty.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO transfers_log(id, receiver_account, receiver_name, amount, created_at)
	VALUES (?, ?, ?, ?, ?);
	`, e.ID, e.ReceiverAccount, e.ReceiverName, e.Amount.String(), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record transfer: %w", err)
	}
	return nil
}

// Receiver is a counterparty seen in past transfers.
type Receiver struct {
	AccountNumber string
	Name          string
	LastUsed      time.Time
}

// RecentReceivers lists distinct counterparties, most recently used first.
func (s *Store) RecentReceivers(ctx context.Context, limit int) ([]Receiver, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT receiver_account, receiver_name, MAX(created_at) AS last_used
	FROM transfers_log
	GROUP BY receiver_account
	ORDER BY last_used DESC
	LIMIT ?;
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Receiver
	for rows.Next() {
		var r Receiver
		var lastUsed string
		if err := rows.Scan(&r.AccountNumber, &r.Name, &lastUsed); err != nil {
			return nil, err
		}
		// MAX() strips the column's declared type, so the driver hands the
		// timestamp back as text.
		r.LastUsed = parseTimestamp(lastUsed)
		out = append(out, r)
	}
	return out, rows.Err()
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SuggestReceivers ranks recent counterparties against what the user has
// typed so far. Prefix matches win outright; the rest are ordered by edit
// distance between the query and the account number or name.
func (s *Store) SuggestReceivers(ctx context.Context, query string, limit int) ([]Receiver, error) {
	recent, err := s.RecentReceivers(ctx, 50)
	if err != nil {
		return nil, err
	}
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		if len(recent) > limit {
			recent = recent[:limit]
		}
		return recent, nil
	}
	type scored struct {
		r     Receiver
		score int
	}
	ranked := make([]scored, 0, len(recent))
	for _, r := range recent {
		account := strings.ToUpper(r.AccountNumber)
		name := strings.ToUpper(r.Name)
		score := levenshtein.ComputeDistance(query, account)
		if d := levenshtein.ComputeDistance(query, name); d < score {
			score = d
		}
		if strings.HasPrefix(account, query) || strings.HasPrefix(name, query) {
			score = 0
		}
		ranked = append(ranked, scored{r: r, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score < ranked[j].score })
	out := make([]Receiver, 0, limit)
	for _, sc := range ranked {
		if len(out) >= limit {
			break
		}
		out = append(out, sc.r)
	}
	return out, nil
}
