package main

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldimov09/mocksys-tui/internal/api"
)

// ---------------------------------------------------------------------------
// Overlay precedence
// ---------------------------------------------------------------------------

type overlayID int

const (
	overlayNone overlayID = iota
	overlayConfirm
	overlaySuggestions
	overlayCompanyForm
	overlayCompanyDelete
	overlayManagerForm
	overlayManagerDetails
	overlayManagerDelete
)

// activeOverlay resolves which modal, if any, owns the screen. Order matters:
// a delete confirmation always wins over the form or details view beneath it.
func (m *model) activeOverlay() overlayID {
	if m.screen != screenHome {
		return overlayNone
	}
	switch m.tab {
	case tabDashboard:
		if m.dash.companyDeleteOpen {
			return overlayCompanyDelete
		}
		if m.dash.companyOpen {
			return overlayCompanyForm
		}
	case tabTransfer:
		if m.xfer.confirmOpen {
			return overlayConfirm
		}
		if m.xfer.suggestOpen {
			return overlaySuggestions
		}
	case tabManager:
		if m.mgr.deleteOpen {
			return overlayManagerDelete
		}
		if m.mgr.formOpen {
			return overlayManagerForm
		}
		if m.mgr.detailsOpen {
			return overlayManagerDetails
		}
	}
	return overlayNone
}

// scope maps the current UI state to the key scope whose bindings apply.
func (m *model) scope() string {
	switch m.screen {
	case screenLogin:
		return scopeLogin
	case screenRegister:
		return scopeRegister
	}
	switch m.activeOverlay() {
	case overlayConfirm:
		return scopeConfirmModal
	case overlaySuggestions:
		return scopeSuggestions
	case overlayCompanyForm:
		return scopeCompanyModal
	case overlayCompanyDelete:
		return scopeCompanyDelete
	case overlayManagerForm:
		return scopeManagerModal
	case overlayManagerDetails:
		return scopeManagerDetails
	case overlayManagerDelete:
		return scopeManagerDelete
	}
	switch m.tab {
	case tabDashboard:
		return scopeDashboard
	case tabTransfer:
		if m.xfer.busy {
			return scopeTransferWait
		}
		return scopeTransfer
	case tabManager:
		return scopeManager
	}
	return scopeGlobal
}

// overlayView renders the active modal's content, or "" when none is open.
func (m *model) overlayView() string {
	switch m.activeOverlay() {
	case overlayConfirm:
		return m.viewConfirmModal()
	case overlaySuggestions:
		return m.viewSuggestions()
	case overlayCompanyForm:
		return m.viewCompanyModal()
	case overlayCompanyDelete:
		return m.viewCompanyDelete()
	case overlayManagerForm:
		return m.viewManagerForm()
	case overlayManagerDetails:
		return m.viewManagerDetails()
	case overlayManagerDelete:
		return m.viewManagerDelete()
	}
	return ""
}

// dispatchKey routes a key press. Quit is handled before anything else, then
// the active overlay, then the screen or tab underneath.
func (m *model) dispatchKey(msg tea.KeyMsg) tea.Cmd {
	if b := m.keys.lookup(msg.String(), m.scope()); b != nil && b.Action == actionQuit {
		return tea.Quit
	}

	switch m.activeOverlay() {
	case overlayConfirm:
		return m.updateConfirmModal(msg)
	case overlaySuggestions:
		return m.updateSuggestions(msg)
	case overlayCompanyForm:
		return m.updateCompanyModal(msg)
	case overlayCompanyDelete:
		return m.updateCompanyDelete(msg)
	case overlayManagerForm:
		return m.updateManagerForm(msg)
	case overlayManagerDetails:
		return m.updateManagerDetails(msg)
	case overlayManagerDelete:
		return m.updateManagerDelete(msg)
	}

	switch m.screen {
	case screenLogin:
		return m.updateLogin(msg)
	case screenRegister:
		return m.updateRegister(msg)
	}

	// Home screen: tab switching is shared across tabs without text input
	// focus conflicts; the transfer form never sees tab/shift+tab because
	// the registry binds them there too.
	if b := m.keys.lookup(msg.String(), m.scope()); b != nil {
		switch b.Action {
		case actionNextTab:
			m.switchTab(1)
			return m.tabEnterCmd()
		case actionPrevTab:
			m.switchTab(-1)
			return m.tabEnterCmd()
		case actionLogout:
			return m.logout()
		}
	}

	switch m.tab {
	case tabDashboard:
		return m.updateDashboard(msg)
	case tabTransfer:
		return m.updateTransfer(msg)
	case tabManager:
		return m.updateManager(msg)
	}
	return nil
}

func (m *model) switchTab(delta int) {
	n := len(tabTitles)
	m.tab = tabID((int(m.tab) + delta + n) % n)
}

// tabEnterCmd fires the lazy load for the tab being entered.
func (m *model) tabEnterCmd() tea.Cmd {
	switch m.tab {
	case tabDashboard:
		return m.loadCompanyCmd()
	case tabTransfer:
		return m.loadHistoryCmd()
	case tabManager:
		return m.loadManagerCmd()
	}
	return nil
}

func (m *model) logout() tea.Cmd {
	if err := m.sess.Clear(); err != nil {
		m.setNotice(noticeError, "Logout failed: "+err.Error())
		return nil
	}
	m.screen = screenLogin
	m.login = newLoginForm()
	m.setNotice(noticeInfo, "Logged out")
	return nil
}

// ---------------------------------------------------------------------------
// Error surfacing
// ---------------------------------------------------------------------------

// errText turns a request error into the status-bar message. The backend's
// own error detail is shown verbatim when present; timeouts get a fixed
// message; anything else falls back to the caller's generic text.
func errText(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out"
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// fieldErrors extracts per-field validation messages from a 422 response,
// or nil when the error carries none.
func fieldErrors(err error) map[string]string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		return apiErr.Fields
	}
	return nil
}
