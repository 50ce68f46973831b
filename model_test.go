package main

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/ldimov09/mocksys-tui/internal/api"
	"github.com/ldimov09/mocksys-tui/internal/config"
	"github.com/ldimov09/mocksys-tui/internal/session"
	"github.com/ldimov09/mocksys-tui/internal/transfer"
)

type stubGateway struct {
	resolveCalls int
	commitCalls  int
	resolveErr   error
	commitErr    error
	balance      *decimal.Decimal
}

func (g *stubGateway) ResolveReceiver(ctx context.Context, accountNumber string) (transfer.Receiver, error) {
	g.resolveCalls++
	if g.resolveErr != nil {
		return transfer.Receiver{}, g.resolveErr
	}
	return transfer.Receiver{Name: "Ivan Dimov", AccountNumber: accountNumber}, nil
}

func (g *stubGateway) CommitTransfer(ctx context.Context, receiverAccount, pin string, amount decimal.Decimal) (transfer.Receipt, error) {
	g.commitCalls++
	if g.commitErr != nil {
		return transfer.Receipt{}, g.commitErr
	}
	return transfer.Receipt{Balance: g.balance}, nil
}

// newTestModel builds a logged-in model wired to a stub gateway. The API
// client points at an unroutable address so any accidental network call in
// a command would fail loudly if executed.
func newTestModel(t *testing.T, gw transfer.Gateway) *model {
	t.Helper()
	cfg := config.Config{
		API:  config.APIConfig{BaseURL: "http://127.0.0.1:1", RequestTimeout: time.Second},
		UI:   config.UIConfig{CurrencyCode: "PSU"},
		Data: config.DataConfig{Dir: t.TempDir()},
	}
	sess := session.NewStore(cfg.SessionPath())
	if err := sess.Replace(session.User{
		Name:          "Tester",
		AccountNumber: "BG-1",
		Balance:       decimal.RequireFromString("900.00"),
		Token:         "tok",
	}); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	client := api.NewClient(cfg.API.BaseURL, sess.Token)
	coord := transfer.New(gw, sess, transfer.WithTimeout(time.Second))
	return newModel(cfg, sess, client, coord, nil)
}

func pressKey(m *model, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func runCmd(m *model, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	_, next := m.Update(cmd())
	return next
}

func fillTransferForm(m *model) {
	m.xfer.receiver.set("BG-042")
	m.xfer.amount.set("57.50")
	m.xfer.pin.set("1234")
}

func TestInvalidTransferFormBlocksPreview(t *testing.T) {
	gw := &stubGateway{}
	m := newTestModel(t, gw)
	m.tab = tabTransfer

	cmd := pressKey(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("invalid form must not produce a network command")
	}
	if gw.resolveCalls != 0 {
		t.Fatalf("resolve calls = %d, want 0", gw.resolveCalls)
	}
	if m.xfer.busy {
		t.Fatal("form must stay editable")
	}
	for _, name := range []string{"receiver_account", "amount", "pin"} {
		if !m.xfer.engine.FieldProps(name).Invalid {
			t.Fatalf("field %s not flagged", name)
		}
	}
	if m.notice.level != noticeWarning {
		t.Fatalf("notice level = %d, want warning", m.notice.level)
	}
}

func TestTransferPreviewConfirmFlow(t *testing.T) {
	balance := decimal.RequireFromString("842.50")
	gw := &stubGateway{balance: &balance}
	m := newTestModel(t, gw)
	m.tab = tabTransfer
	fillTransferForm(m)

	cmd := pressKey(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("valid form must start a preview")
	}
	if !m.xfer.busy {
		t.Fatal("preview in flight should mark the form busy")
	}
	runCmd(m, cmd)

	if !m.xfer.confirmOpen {
		t.Fatal("confirmation modal should open after a successful preview")
	}
	if m.xfer.pending.Name != "Ivan Dimov" {
		t.Fatalf("pending receiver = %q", m.xfer.pending.Name)
	}
	if m.scope() != scopeConfirmModal {
		t.Fatalf("scope = %s, want %s", m.scope(), scopeConfirmModal)
	}

	cmd = pressKey(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("confirm must start the commit")
	}
	runCmd(m, cmd)

	if gw.commitCalls != 1 {
		t.Fatalf("commit calls = %d, want 1", gw.commitCalls)
	}
	u, _ := m.sess.Current()
	if !u.Balance.Equal(balance) {
		t.Fatalf("balance = %s, want %s", u.Balance, balance)
	}
	if m.xfer.receiver.Value != "" || m.xfer.amount.Value != "" || m.xfer.pin.Value != "" {
		t.Fatal("fields must clear after a successful commit")
	}
	if m.notice.level != noticeSuccess {
		t.Fatalf("notice = %+v, want success", m.notice)
	}
}

func TestConfirmModalShowsNormalizedAmount(t *testing.T) {
	gw := &stubGateway{}
	m := newTestModel(t, gw)
	m.tab = tabTransfer
	m.xfer.receiver.set("BG-042")
	m.xfer.amount.set("50")
	m.xfer.pin.set("1234")

	runCmd(m, pressKey(m, tea.KeyMsg{Type: tea.KeyEnter}))
	if !m.xfer.confirmOpen {
		t.Fatal("expected pending confirmation")
	}
	if view := m.viewConfirmModal(); !strings.Contains(view, "50.00 PSU") {
		t.Fatalf("modal must show the amount with two decimals:\n%s", view)
	}
}

func TestSuggestWithoutHistoryStore(t *testing.T) {
	m := newTestModel(t, &stubGateway{})
	m.tab = tabTransfer

	cmd := pressKey(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd != nil {
		t.Fatal("no history store, no command")
	}
	if m.xfer.suggestOpen {
		t.Fatal("picker must not open without a history store")
	}
	if m.notice.level != noticeWarning {
		t.Fatalf("notice = %+v, want warning", m.notice)
	}
}

func TestConfirmModalCancelKeepsDraft(t *testing.T) {
	gw := &stubGateway{}
	m := newTestModel(t, gw)
	m.tab = tabTransfer
	fillTransferForm(m)

	runCmd(m, pressKey(m, tea.KeyMsg{Type: tea.KeyEnter}))
	if !m.xfer.confirmOpen {
		t.Fatal("expected pending confirmation")
	}

	pressKey(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.xfer.confirmOpen {
		t.Fatal("esc must close the modal")
	}
	if gw.commitCalls != 0 {
		t.Fatal("cancel must not commit")
	}
	if m.xfer.receiver.Value != "BG-042" || m.xfer.amount.Value != "57.50" {
		t.Fatal("cancel must keep the form values")
	}
	if m.coord.State() != transfer.StateIdle {
		t.Fatalf("coordinator state = %s, want idle", m.coord.State())
	}
}

func TestCommitFailureShowsServerDetailVerbatim(t *testing.T) {
	gw := &stubGateway{commitErr: &api.Error{Status: 400, Detail: "Invalid transaction key"}}
	m := newTestModel(t, gw)
	m.tab = tabTransfer
	fillTransferForm(m)

	runCmd(m, pressKey(m, tea.KeyMsg{Type: tea.KeyEnter}))
	runCmd(m, pressKey(m, tea.KeyMsg{Type: tea.KeyEnter}))

	if m.notice.level != noticeError {
		t.Fatalf("notice level = %d, want error", m.notice.level)
	}
	if m.notice.text != "Invalid transaction key" {
		t.Fatalf("notice text = %q, want the server detail verbatim", m.notice.text)
	}
	if m.xfer.receiver.Value != "BG-042" {
		t.Fatal("failed commit must keep the form values")
	}
	u, _ := m.sess.Current()
	if !u.Balance.Equal(decimal.RequireFromString("900.00")) {
		t.Fatal("failed commit must not touch the balance")
	}
}

func TestPreviewFailureSurfacesError(t *testing.T) {
	gw := &stubGateway{resolveErr: &api.Error{Status: 404, Detail: "User not found"}}
	m := newTestModel(t, gw)
	m.tab = tabTransfer
	fillTransferForm(m)

	runCmd(m, pressKey(m, tea.KeyMsg{Type: tea.KeyEnter}))

	if m.xfer.confirmOpen {
		t.Fatal("failed preview must not open the modal")
	}
	if m.notice.text != "User not found" {
		t.Fatalf("notice = %q", m.notice.text)
	}
	if m.xfer.busy {
		t.Fatal("form must be editable again")
	}
}

func TestStartsOnLoginWithoutSession(t *testing.T) {
	m := newTestModel(t, &stubGateway{})
	if err := m.sess.Clear(); err != nil {
		t.Fatal(err)
	}
	fresh := newModel(m.cfg, m.sess, m.client, m.coord, nil)
	if fresh.screen != screenLogin {
		t.Fatalf("screen = %d, want login", fresh.screen)
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	m := newTestModel(t, &stubGateway{})
	m.tab = tabTransfer

	pressKey(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.screen != screenLogin {
		t.Fatalf("screen = %d, want login", m.screen)
	}
	if _, ok := m.sess.Current(); ok {
		t.Fatal("session must be cleared on logout")
	}
}

func TestOverlayPrecedence(t *testing.T) {
	m := newTestModel(t, &stubGateway{})
	m.tab = tabManager
	m.mgr.detailsOpen = true
	if got := m.activeOverlay(); got != overlayManagerDetails {
		t.Fatalf("overlay = %d, want details", got)
	}
	m.mgr.formOpen = true
	if got := m.activeOverlay(); got != overlayManagerForm {
		t.Fatalf("overlay = %d, want form over details", got)
	}
	m.mgr.deleteOpen = true
	if got := m.activeOverlay(); got != overlayManagerDelete {
		t.Fatalf("overlay = %d, want delete on top", got)
	}
}

func TestErrText(t *testing.T) {
	if got := errText(context.DeadlineExceeded, "x"); got != "Request timed out" {
		t.Fatalf("timeout text = %q", got)
	}
	if got := errText(&api.Error{Status: 400, Detail: "Receiver account is blocked"}, "x"); got != "Receiver account is blocked" {
		t.Fatalf("detail text = %q", got)
	}
	if got := errText(&api.Error{Status: 500}, "Transfer failed"); got != "Transfer failed" {
		t.Fatalf("fallback text = %q", got)
	}
	if got := errText(nil, "x"); got != "" {
		t.Fatalf("nil error text = %q", got)
	}
}
