package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type action string

type binding struct {
	Action action
	Keys   []string
	Help   string
}

// keyRegistry maps key names to actions per scope, with a global fallback.
// Footers render straight from the scope's bindings so help text can never
// drift from what the keys actually do.
type keyRegistry struct {
	bindingsByScope map[string][]*binding
	indexByScope    map[string]map[string]*binding
}

const (
	scopeGlobal         = "global"
	scopeLogin          = "login"
	scopeRegister       = "register"
	scopeDashboard      = "dashboard"
	scopeCompanyModal   = "company_modal"
	scopeCompanyDelete  = "company_delete"
	scopeTransfer       = "transfer"
	scopeTransferWait   = "transfer_wait"
	scopeConfirmModal   = "confirm_modal"
	scopeSuggestions    = "suggestions"
	scopeManager        = "manager"
	scopeManagerModal   = "manager_modal"
	scopeManagerDetails = "manager_details"
	scopeManagerDelete  = "manager_delete"
)

const (
	actionQuit        action = "quit"
	actionNextTab     action = "next_tab"
	actionPrevTab     action = "prev_tab"
	actionNavigate    action = "navigate"
	actionSubmit      action = "submit"
	actionBack        action = "back"
	actionCancel      action = "cancel"
	actionConfirm     action = "confirm"
	actionClose       action = "close"
	actionLogout      action = "logout"
	actionRegister    action = "register"
	actionRefresh     action = "refresh"
	actionSuggest     action = "suggest"
	actionHistorySide action = "history_side"
	actionToggleTxKey action = "toggle_tx_key"
	actionToggleFiKey action = "toggle_fi_key"
	actionRegenTxKey  action = "regen_tx_key"
	actionRegenFiKey  action = "regen_fi_key"
	actionCompany     action = "company"
	actionKind        action = "kind"
	actionAdd         action = "add"
	actionEdit        action = "edit"
	actionDelete      action = "delete"
	actionSelect      action = "select"
	actionToggle      action = "toggle"
)

func newKeyRegistry() *keyRegistry {
	r := &keyRegistry{
		bindingsByScope: make(map[string][]*binding),
		indexByScope:    make(map[string]map[string]*binding),
	}

	reg := func(scope string, act action, keys []string, help string) {
		r.register(scope, binding{Action: act, Keys: keys, Help: help})
	}

	// Global fallback lookup.
	reg(scopeGlobal, actionQuit, []string{"ctrl+c"}, "quit")

	// Login footer: up/down, enter, ctrl+n, ctrl+c
	reg(scopeLogin, actionNavigate, []string{"up", "down", "tab", "shift+tab"}, "field")
	reg(scopeLogin, actionSubmit, []string{"enter"}, "log in")
	reg(scopeLogin, actionRegister, []string{"ctrl+n"}, "register")

	// Register wizard footer.
	reg(scopeRegister, actionNavigate, []string{"up", "down", "tab", "shift+tab"}, "field")
	reg(scopeRegister, actionSubmit, []string{"enter"}, "next step")
	reg(scopeRegister, actionBack, []string{"esc"}, "back")

	// Dashboard footer: letter keys are free, no text input on this tab.
	reg(scopeDashboard, actionRefresh, []string{"r"}, "refresh")
	reg(scopeDashboard, actionToggleTxKey, []string{"t"}, "toggle tx key")
	reg(scopeDashboard, actionToggleFiKey, []string{"f"}, "toggle fiscal key")
	reg(scopeDashboard, actionRegenTxKey, []string{"T"}, "regen tx key")
	reg(scopeDashboard, actionRegenFiKey, []string{"F"}, "regen fiscal key")
	reg(scopeDashboard, actionCompany, []string{"c"}, "company")
	reg(scopeDashboard, actionDelete, []string{"D"}, "delete company")
	reg(scopeDashboard, actionNextTab, []string{"tab"}, "next tab")
	reg(scopeDashboard, actionPrevTab, []string{"shift+tab"}, "prev tab")
	reg(scopeDashboard, actionLogout, []string{"ctrl+l"}, "logout")
	reg(scopeDashboard, actionQuit, []string{"q", "ctrl+c"}, "quit")

	reg(scopeCompanyModal, actionNavigate, []string{"up", "down"}, "field")
	reg(scopeCompanyModal, actionSubmit, []string{"enter"}, "save")
	reg(scopeCompanyModal, actionClose, []string{"esc"}, "cancel")
	reg(scopeCompanyDelete, actionConfirm, []string{"enter"}, "delete")
	reg(scopeCompanyDelete, actionClose, []string{"esc"}, "keep")

	// Transfer footer: the form owns the letter keys, so everything else is
	// a ctrl combo.
	reg(scopeTransfer, actionNavigate, []string{"up", "down"}, "field")
	reg(scopeTransfer, actionSubmit, []string{"enter"}, "preview")
	reg(scopeTransfer, actionSuggest, []string{"ctrl+r"}, "recents")
	reg(scopeTransfer, actionHistorySide, []string{"ctrl+t"}, "received/sent")
	reg(scopeTransfer, actionNextTab, []string{"tab"}, "next tab")
	reg(scopeTransfer, actionPrevTab, []string{"shift+tab"}, "prev tab")
	reg(scopeTransfer, actionLogout, []string{"ctrl+l"}, "logout")
	reg(scopeTransferWait, actionQuit, []string{"ctrl+c"}, "quit")

	reg(scopeConfirmModal, actionConfirm, []string{"enter"}, "confirm")
	reg(scopeConfirmModal, actionCancel, []string{"esc"}, "cancel")

	reg(scopeSuggestions, actionNavigate, []string{"up", "down"}, "navigate")
	reg(scopeSuggestions, actionSelect, []string{"enter"}, "use")
	reg(scopeSuggestions, actionClose, []string{"esc"}, "close")

	// Manager footer.
	reg(scopeManager, actionKind, []string{"h", "l", "left", "right"}, "items/devices")
	reg(scopeManager, actionNavigate, []string{"j", "k", "up", "down"}, "navigate")
	reg(scopeManager, actionSelect, []string{"enter"}, "details")
	reg(scopeManager, actionAdd, []string{"a"}, "add")
	reg(scopeManager, actionEdit, []string{"e"}, "edit")
	reg(scopeManager, actionDelete, []string{"d"}, "delete")
	reg(scopeManager, actionRefresh, []string{"r"}, "refresh")
	reg(scopeManager, actionNextTab, []string{"tab"}, "next tab")
	reg(scopeManager, actionPrevTab, []string{"shift+tab"}, "prev tab")
	reg(scopeManager, actionQuit, []string{"q", "ctrl+c"}, "quit")

	reg(scopeManagerModal, actionNavigate, []string{"up", "down"}, "field")
	reg(scopeManagerModal, actionToggle, []string{"space", " "}, "toggle")
	reg(scopeManagerModal, actionSubmit, []string{"enter"}, "save")
	reg(scopeManagerModal, actionClose, []string{"esc"}, "cancel")

	reg(scopeManagerDetails, actionEdit, []string{"e"}, "edit")
	reg(scopeManagerDetails, actionDelete, []string{"d"}, "delete")
	reg(scopeManagerDetails, actionClose, []string{"esc"}, "close")

	reg(scopeManagerDelete, actionConfirm, []string{"enter"}, "delete")
	reg(scopeManagerDelete, actionClose, []string{"esc"}, "keep")

	return r
}

func (r *keyRegistry) register(scope string, b binding) {
	keys := normalizeKeyList(b.Keys)
	if scope == "" || len(keys) == 0 {
		return
	}
	if _, ok := r.indexByScope[scope]; !ok {
		r.indexByScope[scope] = make(map[string]*binding)
	}
	copied := b
	copied.Keys = keys
	r.bindingsByScope[scope] = append(r.bindingsByScope[scope], &copied)
	for _, k := range copied.Keys {
		r.indexByScope[scope][k] = &copied
	}
}

// lookup resolves a key name in the given scope, falling back to global.
func (r *keyRegistry) lookup(keyName, scope string) *binding {
	keyName = normalizeKeyName(keyName)
	if keyName == "" {
		return nil
	}
	if b := r.indexByScope[scope][keyName]; b != nil {
		return b
	}
	if scope != scopeGlobal {
		return r.indexByScope[scopeGlobal][keyName]
	}
	return nil
}

// helpBindings returns the scope's bindings as bubbles help entries for the
// footer, first key listed as the display key.
func (r *keyRegistry) helpBindings(scope string) []key.Binding {
	items := r.bindingsByScope[scope]
	out := make([]key.Binding, 0, len(items))
	for _, b := range items {
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Help)))
	}
	return out
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if len(trimmed) == 1 && trimmed[0] >= 'A' && trimmed[0] <= 'Z' {
		// Uppercase and lowercase single runes stay distinct bindings.
		return trimmed
	}
	return strings.ToLower(trimmed)
}
