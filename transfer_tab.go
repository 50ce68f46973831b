package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/ldimov09/mocksys-tui/internal/api"
	"github.com/ldimov09/mocksys-tui/internal/history"
	"github.com/ldimov09/mocksys-tui/internal/transfer"
	"github.com/ldimov09/mocksys-tui/internal/validate"
)

type receiverItem struct {
	rcv history.Receiver
}

func (r receiverItem) Title() string       { return r.rcv.AccountNumber }
func (r receiverItem) Description() string { return r.rcv.Name }
func (r receiverItem) FilterValue() string { return r.rcv.AccountNumber + " " + r.rcv.Name }

type receiverDelegate struct{}

func (d receiverDelegate) Height() int                         { return 1 }
func (d receiverDelegate) Spacing() int                        { return 0 }
func (d receiverDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d receiverDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(receiverItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = cursorStyle.Render("> ")
	}
	line := prefix + entry.rcv.AccountNumber
	if entry.rcv.Name != "" {
		line += "  " + fieldMutedStyle.Render(entry.rcv.Name)
	}
	fmt.Fprint(w, padRight(line, m.Width()))
}

type historySide int

const (
	sideReceived historySide = iota
	sideSent
)

// transferTab owns the transfer form, the pending-confirmation modal, the
// recent-receiver picker and the history panel. The protocol itself lives in
// the coordinator; this struct only mirrors enough state to draw.
type transferTab struct {
	receiver textField
	amount   textField
	pin      textField
	nav      formNav
	engine   *validate.Engine
	scope    *validate.Scope

	busy        bool
	confirmOpen bool
	pending     transfer.Receiver

	suggestOpen  bool
	suggestList  list.Model
	suggestReady bool

	side          historySide
	history       api.TransferHistory
	historyLoaded bool
}

func newTransferTab() *transferTab {
	picker := list.New([]list.Item{}, receiverDelegate{}, 40, 8)
	picker.SetShowTitle(false)
	picker.SetShowStatusBar(false)
	picker.SetFilteringEnabled(false)
	picker.SetShowHelp(false)
	picker.DisableQuitKeybindings()
	picker.Styles.NoItems = lipgloss.NewStyle()

	t := &transferTab{
		pin:         textField{Mask: true},
		nav:         formNav{Count: 3},
		engine:      validate.New(),
		suggestList: picker,
	}
	t.scope = validate.NewScope(
		validate.Field{Name: "receiver_account", Required: true, Value: func() string { return t.receiver.Value }},
		validate.Field{Name: "amount", Required: true, Rules: []validate.RuleFunc{validate.PositiveAmount}, Value: func() string { return t.amount.Value }},
		validate.Field{Name: "pin", Required: true, Value: func() string { return t.pin.Value }},
	)
	return t
}

func (t *transferTab) field(i int) *textField {
	switch i {
	case 0:
		return &t.receiver
	case 1:
		return &t.amount
	}
	return &t.pin
}

func (t *transferTab) records() []api.TransferRecord {
	if t.side == sideReceived {
		return t.history.AsReceiver
	}
	return t.history.AsSender
}

// ---------------------------------------------------------------------------
// Key handling
// ---------------------------------------------------------------------------

func (m *model) updateTransfer(msg tea.KeyMsg) tea.Cmd {
	t := m.xfer
	if t.busy {
		return nil
	}
	if b := m.keys.lookup(msg.String(), scopeTransfer); b != nil {
		switch b.Action {
		case actionSubmit:
			return m.startPreview()
		case actionNavigate:
			t.nav.handleNav(msg)
			return nil
		case actionSuggest:
			if m.hist == nil {
				m.setNotice(noticeWarning, "Recent receivers unavailable")
				return nil
			}
			t.suggestOpen = true
			t.suggestReady = false
			t.suggestList.SetItems(nil)
			return m.suggestCmd(t.receiver.Value)
		case actionHistorySide:
			if t.side == sideReceived {
				t.side = sideSent
			} else {
				t.side = sideReceived
			}
			return nil
		case actionNextTab, actionPrevTab, actionLogout:
			return nil // handled by dispatch
		}
	}
	t.field(t.nav.Idx).handleKey(msg)
	return nil
}

// startPreview gates on local validation first: an invalid draft never
// reaches the network.
func (m *model) startPreview() tea.Cmd {
	t := m.xfer
	if !t.engine.ValidateAll(t.scope) {
		m.setNotice(noticeWarning, "Fix the highlighted fields")
		return nil
	}
	m.coord.SetDraft(transfer.Draft{
		ReceiverAccount: strings.TrimSpace(t.receiver.Value),
		PIN:             t.pin.Value,
		Amount:          strings.TrimSpace(t.amount.Value),
	})
	t.busy = true
	m.setNotice(noticeInfo, "Looking up receiver…")
	coord := m.coord
	return func() tea.Msg {
		rcv, err := coord.StartPreview(context.Background())
		return previewDoneMsg{receiver: rcv, err: err}
	}
}

func (m *model) handlePreviewDone(msg previewDoneMsg) tea.Cmd {
	t := m.xfer
	t.busy = false
	if msg.err != nil {
		m.setNotice(noticeError, errText(msg.err, "Could not look up receiver"))
		return nil
	}
	t.pending = msg.receiver
	t.confirmOpen = true
	m.setNotice(noticeNone, "")
	return nil
}

func (m *model) updateConfirmModal(msg tea.KeyMsg) tea.Cmd {
	t := m.xfer
	b := m.keys.lookup(msg.String(), scopeConfirmModal)
	if b == nil {
		return nil
	}
	switch b.Action {
	case actionCancel:
		m.coord.Cancel()
		t.confirmOpen = false
		m.setNotice(noticeInfo, "Transfer cancelled")
	case actionConfirm:
		t.confirmOpen = false
		t.busy = true
		m.setNotice(noticeInfo, "Sending transfer…")
		coord := m.coord
		return func() tea.Msg {
			_, err := coord.Confirm(context.Background())
			return confirmDoneMsg{err: err}
		}
	}
	return nil
}

func (m *model) handleConfirmDone(msg confirmDoneMsg) tea.Cmd {
	t := m.xfer
	t.busy = false
	if msg.err != nil {
		m.setNotice(noticeError, errText(msg.err, "Transfer failed"))
		return nil
	}
	t.receiver = textField{}
	t.amount = textField{}
	t.pin = textField{Mask: true}
	t.nav.Idx = 0
	t.engine.Clear()
	if u, ok := m.sess.Current(); ok {
		m.setNotice(noticeSuccess, fmt.Sprintf("Transfer sent — balance %s %s", u.Balance.StringFixed(2), m.cfg.UI.CurrencyCode))
	} else {
		m.setNotice(noticeSuccess, "Transfer sent")
	}
	return m.loadHistoryCmd()
}

func (m *model) updateSuggestions(msg tea.KeyMsg) tea.Cmd {
	t := m.xfer
	b := m.keys.lookup(msg.String(), scopeSuggestions)
	if b == nil {
		return nil
	}
	switch b.Action {
	case actionClose:
		t.suggestOpen = false
	case actionNavigate:
		switch msg.String() {
		case "down":
			t.suggestList.CursorDown()
		case "up":
			t.suggestList.CursorUp()
		}
	case actionSelect:
		if item, ok := t.suggestList.SelectedItem().(receiverItem); ok {
			t.receiver.set(item.rcv.AccountNumber)
			t.nav.Idx = 1 // move on to amount
		}
		t.suggestOpen = false
	}
	return nil
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (m *model) loadHistoryCmd() tea.Cmd {
	client := m.client
	timeout := m.cfg.API.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		h, err := client.Transfers(ctx)
		return historyLoadedMsg{history: h, err: err}
	}
}

func (m *model) handleHistoryLoaded(msg historyLoadedMsg) {
	t := m.xfer
	if msg.err != nil {
		m.setNotice(noticeWarning, errText(msg.err, "Could not load transfer history"))
		return
	}
	t.history = msg.history
	t.historyLoaded = true
}

func (m *model) suggestCmd(query string) tea.Cmd {
	if m.hist == nil {
		return nil
	}
	hist := m.hist
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		rs, err := hist.SuggestReceivers(ctx, query, 8)
		return suggestionsMsg{receivers: rs, err: err}
	}
}

func (m *model) handleSuggestions(msg suggestionsMsg) {
	t := m.xfer
	if msg.err != nil {
		t.suggestOpen = false
		m.setNotice(noticeWarning, "Could not load recent receivers")
		return
	}
	items := make([]list.Item, 0, len(msg.receivers))
	for _, r := range msg.receivers {
		items = append(items, receiverItem{rcv: r})
	}
	t.suggestList.SetItems(items)
	t.suggestList.ResetSelected()
	t.suggestReady = true
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func (m *model) viewTransfer() string {
	t := m.xfer
	w := m.sectionContentWidth()

	formLines := []string{
		renderFormField("Receiver account", &t.receiver, t.nav.Idx == 0 && !t.busy, t.engine.FieldProps("receiver_account"), w),
		renderFormField("Amount", &t.amount, t.nav.Idx == 1 && !t.busy, t.engine.FieldProps("amount"), w),
		renderFormField("PIN", &t.pin, t.nav.Idx == 2 && !t.busy, t.engine.FieldProps("pin"), w),
	}
	if t.busy {
		formLines = append(formLines, "", fieldMutedStyle.Render("Working…"))
	}
	form := m.renderSection("New transfer", strings.Join(formLines, "\n"))

	return "\n" + form + "\n" + m.renderSection(m.historyTitle(), m.renderHistory(w))
}

func (m *model) historyTitle() string {
	if m.xfer.side == sideReceived {
		return "History — received (ctrl+t for sent)"
	}
	return "History — sent (ctrl+t for received)"
}

func (m *model) renderHistory(width int) string {
	t := m.xfer
	if !t.historyLoaded {
		return fieldMutedStyle.Render("Loading…")
	}
	rows := t.records()
	if len(rows) == 0 {
		return fieldMutedStyle.Render("No transfers in the last 30 days.")
	}
	dateWidth, amountWidth, statusWidth := 19, 12, 10
	header := fmt.Sprintf("%-*s  %*s  %-*s", dateWidth, "Date", amountWidth, "Amount", statusWidth, "Status")
	lines := []string{tableHeaderStyle.Render(header)}
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for _, r := range rows[:limit] {
		amountText := r.Amount.StringFixed(2)
		amountField := fmt.Sprintf("%*s", amountWidth, amountText)
		if t.side == sideReceived {
			amountField = creditStyle.Render(amountField)
		} else {
			amountField = debitStyle.Render(amountField)
		}
		status := r.Status
		if r.Error != "" {
			status = truncate(r.Error, statusWidth+8)
		}
		line := padRight(truncate(r.CreatedAt, dateWidth), dateWidth) + "  " + amountField + "  " + status
		lines = append(lines, truncate(line, width))
	}
	return strings.Join(lines, "\n")
}

func (m *model) viewConfirmModal() string {
	t := m.xfer
	amount := strings.TrimSpace(t.amount.Value)
	if d, err := decimal.NewFromString(amount); err == nil {
		amount = d.StringFixed(2)
	}
	lines := []string{
		titleStyle.Render("Confirm transfer"),
		"",
		renderStaticField("To", t.pending.Name),
		renderStaticField("Account", t.pending.AccountNumber),
		renderStaticField("Amount", amount+" "+m.cfg.UI.CurrencyCode),
		"",
		fieldMutedStyle.Render("enter to confirm, esc to cancel"),
	}
	return strings.Join(lines, "\n")
}

func (m *model) viewSuggestions() string {
	t := m.xfer
	lines := []string{titleStyle.Render("Recent receivers"), ""}
	switch {
	case !t.suggestReady:
		lines = append(lines, fieldMutedStyle.Render("Loading…"))
	case len(t.suggestList.Items()) == 0:
		lines = append(lines, fieldMutedStyle.Render("Nothing here yet."))
	default:
		lines = append(lines, strings.TrimRight(t.suggestList.View(), "\n"))
	}
	lines = append(lines, "", fieldMutedStyle.Render("enter to use, esc to close"))
	return strings.Join(lines, "\n")
}
