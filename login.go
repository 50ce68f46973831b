package main

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldimov09/mocksys-tui/internal/validate"
)

// loginForm holds the two-field login screen. The rule table is built once;
// the engine re-reads the field values on every validation pass.
type loginForm struct {
	account  textField
	password textField
	nav      formNav
	engine   *validate.Engine
	scope    *validate.Scope
	busy     bool
}

func newLoginForm() *loginForm {
	f := &loginForm{
		password: textField{Mask: true},
		nav:      formNav{Count: 2},
		engine:   validate.New(),
	}
	f.scope = validate.NewScope(
		validate.Field{Name: "account_number", Required: true, Value: func() string { return f.account.Value }},
		validate.Field{Name: "password", Required: true, Value: func() string { return f.password.Value }},
	)
	return f
}

func (f *loginForm) field(i int) *textField {
	if i == 0 {
		return &f.account
	}
	return &f.password
}

func (m *model) updateLogin(msg tea.KeyMsg) tea.Cmd {
	f := m.login
	if f.busy {
		return nil
	}
	if b := m.keys.lookup(msg.String(), scopeLogin); b != nil {
		switch b.Action {
		case actionSubmit:
			if !f.engine.ValidateAll(f.scope) {
				m.setNotice(noticeWarning, "Fix the highlighted fields")
				return nil
			}
			f.busy = true
			m.setNotice(noticeInfo, "Logging in…")
			return m.loginCmd(strings.TrimSpace(f.account.Value), f.password.Value)
		case actionRegister:
			m.screen = screenRegister
			m.register = newRegisterForm()
			m.setNotice(noticeNone, "")
			return nil
		case actionNavigate:
			f.nav.handleNav(msg)
			return nil
		}
	}
	f.field(f.nav.Idx).handleKey(msg)
	return nil
}

func (m *model) loginCmd(account, password string) tea.Cmd {
	client := m.client
	timeout := m.cfg.API.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		user, err := client.Login(ctx, account, password)
		return loginDoneMsg{user: user, err: err}
	}
}

func (m *model) handleLoginDone(msg loginDoneMsg) tea.Cmd {
	f := m.login
	f.busy = false
	if msg.err != nil {
		if fields := fieldErrors(msg.err); fields != nil {
			f.engine.SetErrors(fields)
		}
		m.setNotice(noticeError, errText(msg.err, "Login failed"))
		return nil
	}
	if err := m.sess.Replace(msg.user); err != nil {
		m.setNotice(noticeError, "Could not persist session: "+err.Error())
		return nil
	}
	m.screen = screenHome
	m.tab = tabDashboard
	m.setNotice(noticeSuccess, "Welcome, "+msg.user.Name)
	return m.tabEnterCmd()
}

func (m *model) viewLogin() string {
	f := m.login
	w := m.sectionContentWidth()
	lines := []string{
		renderFormField("Account number", &f.account, f.nav.Idx == 0, f.engine.FieldProps("account_number"), w),
		renderFormField("Password", &f.password, f.nav.Idx == 1, f.engine.FieldProps("password"), w),
		"",
		fieldMutedStyle.Render("No account yet? Press ctrl+n to register."),
	}
	if f.busy {
		lines = append(lines, "", fieldMutedStyle.Render("Contacting server…"))
	}
	return "\n" + m.renderSection("Log in", strings.Join(lines, "\n"))
}
