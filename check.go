package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/ldimov09/mocksys-tui/internal/history"
	"github.com/ldimov09/mocksys-tui/internal/session"
	"github.com/ldimov09/mocksys-tui/internal/transfer"
	"github.com/ldimov09/mocksys-tui/internal/validate"
)

type checkGateway struct{}

func (checkGateway) ResolveReceiver(ctx context.Context, accountNumber string) (transfer.Receiver, error) {
	return transfer.Receiver{Name: "Check Receiver", AccountNumber: accountNumber}, nil
}

func (checkGateway) CommitTransfer(ctx context.Context, receiverAccount, pin string, amount decimal.Decimal) (transfer.Receipt, error) {
	balance := decimal.RequireFromString("100").Sub(amount)
	return transfer.Receipt{Balance: &balance}, nil
}

// runSelfCheck executes a non-TUI path through the validation engine, the
// transfer protocol and the local stores, using a temporary data dir. Used
// as a quick smoke test of a fresh build against no backend.
func runSelfCheck(w io.Writer) error {
	dir, err := os.MkdirTemp("", "mocksys-check-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	// Validation engine: a required empty field must block, a corrected one
	// must pass, and the pass must clear the stale error.
	value := ""
	engine := validate.New()
	scope := validate.NewScope(
		validate.Field{Name: "amount", Required: true, Rules: []validate.RuleFunc{validate.PositiveAmount}, Value: func() string { return value }},
	)
	if engine.ValidateAll(scope) {
		return fmt.Errorf("empty required field passed validation")
	}
	if !engine.FieldProps("amount").Invalid {
		return fmt.Errorf("no error recorded for empty required field")
	}
	value = "12.50"
	if !engine.ValidateAll(scope) {
		return fmt.Errorf("valid amount rejected: %v", engine.Errors())
	}
	if engine.FieldProps("amount").Invalid {
		return fmt.Errorf("stale error survived revalidation")
	}
	fmt.Fprintln(w, "validate: ok")

	// Session + coordinator: preview, confirm, and the committed balance
	// must land in the session store.
	sess := session.NewStore(filepath.Join(dir, "session.json"))
	if err := sess.Replace(session.User{Name: "Check User", AccountNumber: "CHK-1", Balance: decimal.RequireFromString("100"), Token: "check-token"}); err != nil {
		return fmt.Errorf("seed session: %w", err)
	}

	hist, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		return fmt.Errorf("open history db: %w", err)
	}
	defer hist.Close()

	coord := transfer.New(checkGateway{}, sess, transfer.WithRecorder(historyRecorder{store: hist}))
	coord.SetDraft(transfer.Draft{ReceiverAccount: "CHK-2", PIN: "0000", Amount: "12.50"})

	ctx := context.Background()
	rcv, err := coord.StartPreview(ctx)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if rcv.AccountNumber != "CHK-2" {
		return fmt.Errorf("preview resolved wrong account: %s", rcv.AccountNumber)
	}
	if coord.State() != transfer.StateAwaitingConfirmation {
		return fmt.Errorf("state after preview = %s", coord.State())
	}
	if _, err := coord.Confirm(ctx); err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	u, ok := sess.Current()
	if !ok {
		return fmt.Errorf("session lost after commit")
	}
	if want := decimal.RequireFromString("87.50"); !u.Balance.Equal(want) {
		return fmt.Errorf("balance = %s, want %s", u.Balance, want)
	}
	fmt.Fprintln(w, "transfer: ok")

	// The commit must be visible to the suggestion cache.
	receivers, err := hist.SuggestReceivers(ctx, "CHK", 5)
	if err != nil {
		return fmt.Errorf("suggest: %w", err)
	}
	if len(receivers) != 1 || receivers[0].AccountNumber != "CHK-2" {
		return fmt.Errorf("recorded transfer missing from suggestions: %+v", receivers)
	}
	fmt.Fprintln(w, "history: ok")
	return nil
}
