package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testUser() User {
	return User{
		Name:                  "Lyubomir Dimov",
		AccountNumber:         "BG-001",
		Balance:               decimal.RequireFromString("900.00"),
		Role:                  "business",
		Status:                "active",
		TransactionKey:        "tx-key",
		TransactionKeyEnabled: true,
		FiscalKey:             "fi-key",
		Token:                 "secret-bearer-token",
	}
}

func TestReplaceAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewStore(path)
	require.NoError(t, s.Replace(testUser()))

	reloaded := NewStore(path)
	require.NoError(t, reloaded.Load())
	u, ok := reloaded.Current()
	require.True(t, ok)
	want := testUser()
	require.True(t, u.Balance.Equal(want.Balance))
	u.Balance, want.Balance = decimal.Decimal{}, decimal.Decimal{}
	require.Equal(t, want, u)
	require.Equal(t, "secret-bearer-token", reloaded.Token())
}

func TestTokenNotStoredInClearText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewStore(path)
	require.NoError(t, s.Replace(testUser()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-bearer-token")

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, s.Load())
	_, ok := s.Current()
	require.False(t, ok)
	require.Empty(t, s.Token())
}

func TestReplaceKeepsTokenWhenRefreshCarriesNone(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, s.Replace(testUser()))

	refresh := testUser()
	refresh.Token = ""
	refresh.Balance = decimal.RequireFromString("850.00")
	require.NoError(t, s.Replace(refresh))

	require.Equal(t, "secret-bearer-token", s.Token())
	u, _ := s.Current()
	require.True(t, u.Balance.Equal(decimal.RequireFromString("850.00")))
}

func TestApplyBalanceUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewStore(path)
	require.NoError(t, s.Replace(testUser()))

	var seen []string
	s.OnChange(func(u User) { seen = append(seen, u.Balance.String()) })

	require.NoError(t, s.ApplyBalanceUpdate(decimal.RequireFromString("842.50")))
	u, _ := s.Current()
	require.True(t, u.Balance.Equal(decimal.RequireFromString("842.50")))
	require.Equal(t, []string{"842.5"}, seen)

	// Persisted too.
	reloaded := NewStore(path)
	require.NoError(t, reloaded.Load())
	r, _ := reloaded.Current()
	require.True(t, r.Balance.Equal(decimal.RequireFromString("842.50")))
}

func TestApplyBalanceUpdateWithoutSession(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.json"))
	err := s.ApplyBalanceUpdate(decimal.Zero)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "no active session"))
}

func TestClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewStore(path)
	require.NoError(t, s.Replace(testUser()))
	require.NoError(t, s.Clear())

	_, ok := s.Current()
	require.False(t, ok)
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Clearing twice is fine.
	require.NoError(t, s.Clear())
}
