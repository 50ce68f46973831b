package main

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldimov09/mocksys-tui/internal/api"
	"github.com/ldimov09/mocksys-tui/internal/validate"
)

// dashboardTab shows the logged-in identity, the two account keys and the
// company record. Key actions and company edits run against the backend and
// fold their responses back into the session store.
type dashboardTab struct {
	keyBusy     string // key type with an action in flight, "" when idle
	refreshBusy bool

	companyLoaded bool
	companyFound  bool
	company       api.Company

	companyOpen       bool
	companyBusy       bool
	companyDeleteOpen bool
	cManager          textField
	cName             textField
	cAddress          textField
	cLegal            textField
	cNav              formNav
	cEngine           *validate.Engine
	cScope            *validate.Scope
}

func newDashboardTab() *dashboardTab {
	d := &dashboardTab{
		cNav:    formNav{Count: 4},
		cEngine: validate.New(),
	}
	d.cScope = validate.NewScope(
		validate.Field{Name: "manager_name", Required: true, Value: func() string { return d.cManager.Value }},
		validate.Field{Name: "name", Required: true, Value: func() string { return d.cName.Value }},
		validate.Field{Name: "address", Required: true, Value: func() string { return d.cAddress.Value }},
		validate.Field{Name: "legal_form", Required: true, Rules: []validate.RuleFunc{validate.OneOf(legalForms...)}, Value: func() string { return d.cLegal.Value }},
	)
	return d
}

func (d *dashboardTab) companyField(i int) *textField {
	switch i {
	case 0:
		return &d.cManager
	case 1:
		return &d.cName
	case 2:
		return &d.cAddress
	}
	return &d.cLegal
}

func (d *dashboardTab) openCompanyModal() {
	d.cEngine.Clear()
	d.cNav.Idx = 0
	if d.companyFound {
		d.cManager.set(d.company.ManagerName)
		d.cName.set(d.company.Name)
		d.cAddress.set(d.company.Address)
		d.cLegal.set(d.company.LegalForm)
	} else {
		d.cManager = textField{}
		d.cName = textField{}
		d.cAddress = textField{}
		d.cLegal = textField{}
	}
	d.companyOpen = true
}

// ---------------------------------------------------------------------------
// Key handling
// ---------------------------------------------------------------------------

func (m *model) updateDashboard(msg tea.KeyMsg) tea.Cmd {
	d := m.dash
	b := m.keys.lookup(msg.String(), scopeDashboard)
	if b == nil {
		return nil
	}
	switch b.Action {
	case actionRefresh:
		if d.refreshBusy {
			return nil
		}
		d.refreshBusy = true
		m.setNotice(noticeInfo, "Refreshing…")
		return tea.Batch(m.refreshUserCmd(), m.loadCompanyCmd())
	case actionToggleTxKey:
		return m.keyActionCmd("transaction", "toggle")
	case actionToggleFiKey:
		return m.keyActionCmd("fiscal", "toggle")
	case actionRegenTxKey:
		return m.keyActionCmd("transaction", "reset")
	case actionRegenFiKey:
		return m.keyActionCmd("fiscal", "reset")
	case actionCompany:
		if !d.companyLoaded {
			m.setNotice(noticeInfo, "Company still loading, try again in a moment")
			return nil
		}
		d.openCompanyModal()
	case actionDelete:
		if d.companyFound {
			d.companyDeleteOpen = true
		}
	}
	return nil
}

func (m *model) updateCompanyModal(msg tea.KeyMsg) tea.Cmd {
	d := m.dash
	if d.companyBusy {
		return nil
	}
	if b := m.keys.lookup(msg.String(), scopeCompanyModal); b != nil {
		switch b.Action {
		case actionClose:
			d.companyOpen = false
			return nil
		case actionNavigate:
			d.cNav.handleNav(msg)
			return nil
		case actionSubmit:
			if !d.cEngine.ValidateAll(d.cScope) {
				return nil
			}
			d.companyBusy = true
			return m.saveCompanyCmd(api.Company{
				ManagerName: strings.TrimSpace(d.cManager.Value),
				Name:        strings.TrimSpace(d.cName.Value),
				Address:     strings.TrimSpace(d.cAddress.Value),
				LegalForm:   strings.ToUpper(strings.TrimSpace(d.cLegal.Value)),
			}, d.companyFound)
		}
	}
	d.companyField(d.cNav.Idx).handleKey(msg)
	return nil
}

func (m *model) updateCompanyDelete(msg tea.KeyMsg) tea.Cmd {
	d := m.dash
	b := m.keys.lookup(msg.String(), scopeCompanyDelete)
	if b == nil {
		return nil
	}
	switch b.Action {
	case actionClose:
		d.companyDeleteOpen = false
	case actionConfirm:
		d.companyDeleteOpen = false
		return m.deleteCompanyCmd()
	}
	return nil
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (m *model) refreshUserCmd() tea.Cmd {
	u, ok := m.sess.Current()
	if !ok {
		return nil
	}
	client := m.client
	timeout := m.cfg.API.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		fresh, err := client.User(ctx, u.AccountNumber)
		return userRefreshedMsg{user: fresh, err: err}
	}
}

func (m *model) handleUserRefreshed(msg userRefreshedMsg) {
	m.dash.refreshBusy = false
	if msg.err != nil {
		m.setNotice(noticeWarning, errText(msg.err, "Could not refresh account"))
		return
	}
	if err := m.sess.Replace(msg.user); err != nil {
		m.setNotice(noticeError, "Could not persist session: "+err.Error())
		return
	}
	m.setNotice(noticeSuccess, "Account refreshed")
}

func (m *model) keyActionCmd(keyType, action string) tea.Cmd {
	d := m.dash
	if d.keyBusy != "" {
		return nil
	}
	d.keyBusy = keyType
	m.setNotice(noticeInfo, "Updating "+keyType+" key…")
	client := m.client
	timeout := m.cfg.API.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		update, err := client.KeyAction(ctx, keyType, action)
		return keyActionDoneMsg{keyType: keyType, update: update, err: err}
	}
}

func (m *model) handleKeyActionDone(msg keyActionDoneMsg) {
	m.dash.keyBusy = ""
	if msg.err != nil {
		m.setNotice(noticeError, errText(msg.err, "Key update failed"))
		return
	}
	u, ok := m.sess.Current()
	if !ok {
		return
	}
	if err := m.sess.Replace(msg.update.Merge(u)); err != nil {
		m.setNotice(noticeError, "Could not persist session: "+err.Error())
		return
	}
	m.setNotice(noticeSuccess, "Updated "+msg.keyType+" key")
}

func (m *model) loadCompanyCmd() tea.Cmd {
	client := m.client
	timeout := m.cfg.API.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		company, err := client.Company(ctx)
		if err != nil {
			// 404 just means no record yet.
			var apiErr *api.Error
			if errors.As(err, &apiErr) && apiErr.Status == 404 {
				return companyLoadedMsg{found: false}
			}
			return companyLoadedMsg{err: err}
		}
		return companyLoadedMsg{company: company, found: true}
	}
}

func (m *model) handleCompanyLoaded(msg companyLoadedMsg) {
	d := m.dash
	if msg.err != nil {
		m.setNotice(noticeWarning, errText(msg.err, "Could not load company"))
		return
	}
	d.companyLoaded = true
	d.companyFound = msg.found
	d.company = msg.company
}

func (m *model) saveCompanyCmd(company api.Company, exists bool) tea.Cmd {
	client := m.client
	timeout := m.cfg.API.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		saved, err := client.SaveCompany(ctx, company, exists)
		return companySavedMsg{company: saved, err: err}
	}
}

func (m *model) handleCompanySaved(msg companySavedMsg) tea.Cmd {
	d := m.dash
	d.companyBusy = false
	if msg.err != nil {
		if fields := fieldErrors(msg.err); fields != nil {
			d.cEngine.SetErrors(fields)
		}
		m.setNotice(noticeError, errText(msg.err, "Could not save company"))
		return nil
	}
	d.companyOpen = false
	d.companyFound = true
	d.company = msg.company
	m.setNotice(noticeSuccess, "Company saved")
	// Manager name feeds the session's display name; refresh to pick it up.
	return m.refreshUserCmd()
}

func (m *model) deleteCompanyCmd() tea.Cmd {
	client := m.client
	timeout := m.cfg.API.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return companyDeletedMsg{err: client.DeleteCompany(ctx)}
	}
}

func (m *model) handleCompanyDeleted(msg companyDeletedMsg) {
	d := m.dash
	if msg.err != nil {
		m.setNotice(noticeError, errText(msg.err, "Could not delete company"))
		return
	}
	d.companyFound = false
	d.company = api.Company{}
	m.setNotice(noticeSuccess, "Company deleted")
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func (m *model) viewDashboard() string {
	u, ok := m.sess.Current()
	if !ok {
		return "\n" + m.renderSection("Account", fieldMutedStyle.Render("Not logged in."))
	}

	account := strings.Join([]string{
		renderStaticField("Name", u.Name),
		renderStaticField("Account", u.AccountNumber),
		renderStaticField("Role", u.Role),
		renderStaticField("Status", u.Status),
		fieldLabelStyle.Render(padRight("Balance", 18)) + balanceValueStyle.Render(u.Balance.StringFixed(2)+" "+m.cfg.UI.CurrencyCode),
	}, "\n")

	keys := strings.Join([]string{
		renderKeyRow("Transaction key", u.TransactionKey, u.TransactionKeyEnabled, m.dash.keyBusy == "transaction"),
		renderKeyRow("Fiscal key", u.FiscalKey, u.FiscalKeyEnabled, m.dash.keyBusy == "fiscal"),
	}, "\n")

	return "\n" + m.renderSection("Account", account) +
		"\n" + m.renderSection("Keys", keys) +
		"\n" + m.renderSection("Company", m.renderCompanyPanel())
}

func renderKeyRow(label, value string, enabled, busy bool) string {
	state := keyDisabledStyle.Render("disabled")
	if enabled {
		state = keyEnabledStyle.Render("enabled")
	}
	if busy {
		state = fieldMutedStyle.Render("updating…")
	}
	if value == "" {
		value = fieldMutedStyle.Render("(not set)")
	}
	return fieldLabelStyle.Render(padRight(label, 18)) + fieldValueStyle.Render(value) + "  " + state
}

func (m *model) renderCompanyPanel() string {
	d := m.dash
	if !d.companyLoaded {
		return fieldMutedStyle.Render("Loading…")
	}
	if !d.companyFound {
		return fieldMutedStyle.Render("No company record. Press c to create one.")
	}
	return strings.Join([]string{
		renderStaticField("Name", d.company.Name),
		renderStaticField("Manager", d.company.ManagerName),
		renderStaticField("Number", d.company.Number),
		renderStaticField("Address", d.company.Address),
		renderStaticField("Legal form", legalFormText(d.company.LegalForm)),
	}, "\n")
}

func (m *model) viewCompanyModal() string {
	d := m.dash
	w := 48
	title := "Create company"
	if d.companyFound {
		title = "Edit company"
	}
	lines := []string{
		titleStyle.Render(title),
		"",
		renderFormField("Manager name", &d.cManager, d.cNav.Idx == 0, d.cEngine.FieldProps("manager_name"), w),
		renderFormField("Company name", &d.cName, d.cNav.Idx == 1, d.cEngine.FieldProps("name"), w),
		renderFormField("Address", &d.cAddress, d.cNav.Idx == 2, d.cEngine.FieldProps("address"), w),
		renderFormField("Legal form", &d.cLegal, d.cNav.Idx == 3, d.cEngine.FieldProps("legal_form"), w),
		"",
		fieldMutedStyle.Render("Legal forms: " + strings.Join(legalForms, ", ")),
		fieldMutedStyle.Render("enter to save, esc to cancel"),
	}
	if d.companyBusy {
		lines = append(lines, fieldMutedStyle.Render("Saving…"))
	}
	return strings.Join(lines, "\n")
}

func (m *model) viewCompanyDelete() string {
	return strings.Join([]string{
		titleStyle.Render("Delete company"),
		"",
		"Delete the company record " + fieldValueStyle.Render(m.dash.company.Name) + "?",
		fieldErrorStyle.Render("This cannot be undone."),
		"",
		fieldMutedStyle.Render("enter to delete, esc to keep"),
	}, "\n")
}
