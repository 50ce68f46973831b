// Package transfer implements the preview → confirm → commit protocol for
// moving value between accounts.
//
// The coordinator is a small state machine. A transfer starts as a draft,
// is previewed (the receiver account number is resolved to a display
// identity, no money moves), must be explicitly confirmed against that
// identity, and only then is committed. The backend stays authoritative
// for the balance: the only balance the coordinator ever publishes is the
// one the commit response carried.
package transfer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// State is the coordinator's position in the protocol.
type State int

const (
	// StateIdle accepts draft edits and a new preview.
	StateIdle State = iota
	// StatePreviewing has a resolve call in flight.
	StatePreviewing
	// StateAwaitingConfirmation shows the resolved identity and waits for
	// an explicit confirm or cancel.
	StateAwaitingConfirmation
	// StateCommitting has the commit call in flight.
	StateCommitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreviewing:
		return "previewing"
	case StateAwaitingConfirmation:
		return "awaiting-confirmation"
	case StateCommitting:
		return "committing"
	}
	return "unknown"
}

var (
	// ErrBusy means a preview or commit is already in flight.
	ErrBusy = errors.New("transfer: operation already in flight")
	// ErrIncompleteDraft means a required draft field is empty.
	ErrIncompleteDraft = errors.New("transfer: draft is incomplete")
	// ErrBadAmount means the amount is not a positive number.
	ErrBadAmount = errors.New("transfer: amount must be a positive number")
	// ErrNotPreviewed means confirm was called without a fresh preview.
	ErrNotPreviewed = errors.New("transfer: nothing to confirm")
)

// Draft is the in-progress transfer input. It lives only in memory and is
// consumed atomically by a successful commit.
type Draft struct {
	ReceiverAccount string
	PIN             string
	Amount          string
}

// complete reports whether every field has a non-empty trimmed value.
func (d Draft) complete() bool {
	return strings.TrimSpace(d.ReceiverAccount) != "" &&
		strings.TrimSpace(d.PIN) != "" &&
		strings.TrimSpace(d.Amount) != ""
}

// Receiver is the counterparty identity a preview resolved.
type Receiver struct {
	Name          string
	AccountNumber string
}

// Receipt is the commit outcome. Balance is nil when the backend response
// carried none; the session is then left untouched.
type Receipt struct {
	Balance *decimal.Decimal
}

// Gateway is the backend surface the coordinator needs.
type Gateway interface {
	ResolveReceiver(ctx context.Context, accountNumber string) (Receiver, error)
	CommitTransfer(ctx context.Context, receiverAccount, pin string, amount decimal.Decimal) (Receipt, error)
}

// BalanceSink receives the authoritative post-transfer balance. In the app
// this is the session store's single balance write path.
type BalanceSink interface {
	ApplyBalanceUpdate(balance decimal.Decimal) error
}

// Recorder is notified of committed transfers, best effort.
type Recorder interface {
	RecordTransfer(ctx context.Context, receiverAccount, receiverName string, amount decimal.Decimal) error
}

const defaultTimeout = 10 * time.Second

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithTimeout bounds each network call. A stalled call surfaces as a
// deadline error instead of hanging the form.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRecorder registers a recorder for committed transfers.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// Coordinator drives one transfer form. Two forms would each get their
// own coordinator; the only shared resource is the balance sink.
type Coordinator struct {
	mu       sync.Mutex
	gw       Gateway
	balances BalanceSink
	recorder Recorder
	timeout  time.Duration

	state   State
	draft   Draft
	preview *Receiver
}

// New returns an idle coordinator.
func New(gw Gateway, balances BalanceSink, opts ...Option) *Coordinator {
	c := &Coordinator{gw: gw, balances: balances, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current protocol state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a network call is in flight. The UI disables the
// trigger controls while true.
func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StatePreviewing || c.state == StateCommitting
}

// Draft returns a copy of the current draft.
func (c *Coordinator) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraft replaces the draft. Edits are ignored while a call is in
// flight or a confirmation is pending.
func (c *Coordinator) SetDraft(d Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return
	}
	c.draft = d
}

// Preview returns the resolved receiver while a confirmation is pending.
func (c *Coordinator) Preview() (Receiver, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.preview == nil {
		return Receiver{}, false
	}
	return *c.preview, true
}

// StartPreview resolves the draft's receiver account to a display identity
// and, on success, transitions to awaiting-confirmation. The draft is
// preserved verbatim on every failure path so the user can correct and
// retry.
func (c *Coordinator) StartPreview(ctx context.Context) (Receiver, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return Receiver{}, ErrBusy
	}
	d := c.draft
	if !d.complete() {
		c.mu.Unlock()
		return Receiver{}, ErrIncompleteDraft
	}
	if _, err := parseAmount(d.Amount); err != nil {
		c.mu.Unlock()
		return Receiver{}, err
	}
	c.state = StatePreviewing
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	rcv, err := c.gw.ResolveReceiver(ctx, strings.TrimSpace(d.ReceiverAccount))

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateIdle
		return Receiver{}, err
	}
	c.preview = &rcv
	c.state = StateAwaitingConfirmation
	return rcv, nil
}

// Confirm commits the previewed transfer. On success the returned balance
// (when present) is pushed through the balance sink, the commit is
// recorded, and the draft resets to empty. On failure the draft survives
// but the preview is discarded, so a retry must re-resolve the receiver.
func (c *Coordinator) Confirm(ctx context.Context) (Receipt, error) {
	c.mu.Lock()
	if c.state == StatePreviewing || c.state == StateCommitting {
		c.mu.Unlock()
		return Receipt{}, ErrBusy
	}
	if c.state != StateAwaitingConfirmation || c.preview == nil {
		c.mu.Unlock()
		return Receipt{}, ErrNotPreviewed
	}
	d := c.draft
	rcv := *c.preview
	amount, err := parseAmount(d.Amount)
	if err != nil {
		c.mu.Unlock()
		return Receipt{}, err
	}
	c.state = StateCommitting
	c.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	receipt, err := c.gw.CommitTransfer(callCtx, strings.TrimSpace(d.ReceiverAccount), d.PIN, amount)

	c.mu.Lock()
	defer c.mu.Unlock()
	// The confirmation surface closes on both outcomes; a retry after
	// failure must go through a fresh preview.
	c.preview = nil
	c.state = StateIdle
	if err != nil {
		return Receipt{}, err
	}
	if receipt.Balance != nil {
		// In-memory state updates even if persisting to disk fails; the
		// next successful write catches the file up.
		_ = c.balances.ApplyBalanceUpdate(*receipt.Balance)
	}
	if c.recorder != nil {
		_ = c.recorder.RecordTransfer(ctx, rcv.AccountNumber, rcv.Name, amount)
	}
	c.draft = Draft{}
	return receipt, nil
}

// Cancel dismisses a pending confirmation. No backend contact, and the
// draft fields stay untouched for an immediate re-preview.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAwaitingConfirmation {
		c.preview = nil
		c.state = StateIdle
	}
}

// IsTimeout reports whether err is a request deadline expiry.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.Sign() <= 0 {
		return decimal.Decimal{}, ErrBadAmount
	}
	return d, nil
}
