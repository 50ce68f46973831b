// Package session owns the authenticated-identity state shared across
// screens: who is logged in, their balance and keys, and the bearer token.
//
// All writes go through the store. Screens never mutate a User they were
// handed; they ask the store to Replace it or to apply a narrower update
// such as ApplyBalanceUpdate. The store persists to a single JSON file
// (0600) with the token obfuscated at rest.
package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"
)

// User is the authenticated account as the backend reports it.
type User struct {
	Name                  string          `json:"name"`
	AccountNumber         string          `json:"account_number"`
	Balance               decimal.Decimal `json:"balance"`
	Role                  string          `json:"role"`
	Status                string          `json:"status"`
	TransactionKey        string          `json:"transaction_key"`
	TransactionKeyEnabled bool            `json:"transaction_key_enabled"`
	FiscalKey             string          `json:"fiscal_key"`
	FiscalKeyEnabled      bool            `json:"fiscal_key_enabled"`
	Token                 string          `json:"token,omitempty"`
}

type sessionFile struct {
	User     User   `json:"user"`
	TokenEnc string `json:"token_enc,omitempty"`
}

// Store holds the current session and persists it across runs.
type Store struct {
	mu       sync.Mutex
	path     string
	user     *User
	onChange func(User)
}

// NewStore returns a store persisting to path. Call Load to restore a
// previous session.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// OnChange registers a hook invoked (outside the lock) after every
// successful write. Used by the UI to re-render dependent views.
func (s *Store) OnChange(fn func(User)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Load restores the persisted session. A missing file is not an error; it
// just means nobody is logged in.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read session: %w", err)
	}
	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse session: %w", err)
	}
	u := sf.User
	u.Token = ""
	if sf.TokenEnc != "" {
		raw, err := base64.StdEncoding.DecodeString(sf.TokenEnc)
		if err != nil {
			return fmt.Errorf("decode session token: %w", err)
		}
		tok, err := decrypt(raw)
		if err != nil {
			return fmt.Errorf("decrypt session token: %w", err)
		}
		u.Token = string(tok)
	}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return nil
}

// Current returns a copy of the logged-in user, if any.
func (s *Store) Current() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.Token
}

// Replace installs a new user record (login, or a full refresh from the
// backend). A refresh that carries no token keeps the existing one.
func (s *Store) Replace(u User) error {
	s.mu.Lock()
	if u.Token == "" && s.user != nil {
		u.Token = s.user.Token
	}
	s.user = &u
	err := s.saveLocked()
	hook := s.onChange
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		hook(u)
	}
	return nil
}

// ApplyBalanceUpdate overwrites the balance with a value the backend
// returned. This is the only balance write path; callers must never pass a
// locally computed figure.
func (s *Store) ApplyBalanceUpdate(balance decimal.Decimal) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return fmt.Errorf("no active session")
	}
	s.user.Balance = balance
	u := *s.user
	err := s.saveLocked()
	hook := s.onChange
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		hook(u)
	}
	return nil
}

// Clear logs out and removes the persisted session.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *Store) saveLocked() error {
	if s.user == nil {
		return nil
	}
	u := *s.user
	sf := sessionFile{User: u}
	sf.User.Token = ""
	if u.Token != "" {
		ct, err := encrypt([]byte(u.Token))
		if err != nil {
			return fmt.Errorf("encrypt session token: %w", err)
		}
		sf.TokenEnc = base64.StdEncoding.EncodeToString(ct)
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("mkdir session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, s.path)
}
