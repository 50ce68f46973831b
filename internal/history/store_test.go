package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(t *testing.T, s *Store, account, name string, at time.Time) {
	t.Helper()
	require.NoError(t, s.Record(context.Background(), Entry{
		ReceiverAccount: account,
		ReceiverName:    name,
		Amount:          decimal.RequireFromString("10"),
		CreatedAt:       at,
	}))
}

func TestRecordAndRecentReceivers(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	record(t, s, "BG-001", "Alice", now.Add(-3*time.Hour))
	record(t, s, "BG-002", "Bob", now.Add(-1*time.Hour))
	record(t, s, "BG-001", "Alice", now) // deduped, newest wins

	rs, err := s.RecentReceivers(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	require.Equal(t, "BG-001", rs[0].AccountNumber)
	require.Equal(t, "BG-002", rs[1].AccountNumber)
}

func TestSuggestReceiversPrefixWins(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()
	record(t, s, "BG-100", "Grocer", now.Add(-2*time.Hour))
	record(t, s, "XX-900", "Bagel Shop", now.Add(-1*time.Hour))

	rs, err := s.SuggestReceivers(context.Background(), "bg-1", 5)
	require.NoError(t, err)
	require.NotEmpty(t, rs)
	require.Equal(t, "BG-100", rs[0].AccountNumber, "prefix match outranks recency")
}

func TestSuggestReceiversMatchesNames(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()
	record(t, s, "BG-100", "Grocer", now.Add(-2*time.Hour))
	record(t, s, "BG-200", "Pharmacy", now.Add(-1*time.Hour))

	rs, err := s.SuggestReceivers(context.Background(), "pharm", 5)
	require.NoError(t, err)
	require.Equal(t, "BG-200", rs[0].AccountNumber)
}

func TestSuggestReceiversEmptyQueryIsRecency(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()
	record(t, s, "BG-001", "Alice", now.Add(-2*time.Hour))
	record(t, s, "BG-002", "Bob", now.Add(-1*time.Hour))

	rs, err := s.SuggestReceivers(context.Background(), "   ", 1)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	require.Equal(t, "BG-002", rs[0].AccountNumber)
}

func TestRecordAssignsID(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Record(context.Background(), Entry{
		ReceiverAccount: "BG-001",
		ReceiverName:    "Alice",
		Amount:          decimal.RequireFromString("5.25"),
	}))
	rs, err := s.RecentReceivers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rs, 1)
}

func TestOpenIsIdempotentOnExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	record(t, s, "BG-001", "Alice", time.Now().UTC())
	require.NoError(t, s.Close())

	// Reopening runs migrations again; ErrNoChange must be tolerated.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	rs, err := s2.RecentReceivers(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rs, 1)
}
