package main

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldimov09/mocksys-tui/internal/api"
	"github.com/ldimov09/mocksys-tui/internal/validate"
)

var legalForms = []string{"ET", "EOOD", "OOD", "AD", "EAD"}

// Bulgarian commercial-register codes; shown next to the raw code wherever a
// company is displayed.
var legalFormLabels = map[string]string{
	"ET":   "Sole trader",
	"EOOD": "Single-member LLC",
	"OOD":  "Limited liability company",
	"AD":   "Joint-stock company",
	"EAD":  "Single-member joint-stock company",
}

func legalFormText(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if label, ok := legalFormLabels[code]; ok {
		return code + " — " + label
	}
	return code
}

var registerStepTitles = []string{
	"Register 1/3 — personal account",
	"Register 2/3 — business account",
	"Register 3/3 — company",
}

// registerForm is the three-step registration wizard. Each step has its own
// validation scope; the payload is submitted once, after the last step.
type registerForm struct {
	step   int
	fields map[string]*textField
	order  [3][]string
	labels map[string]string
	navs   [3]formNav
	engine *validate.Engine
	scopes [3]*validate.Scope
	busy   bool
}

func newRegisterForm() *registerForm {
	f := &registerForm{
		engine: validate.New(),
		fields: map[string]*textField{},
		labels: map[string]string{
			"user_name":         "Full name",
			"user_username":     "Username",
			"user_password":     "Password",
			"business_name":     "Business name",
			"business_username": "Business username",
			"business_password": "Business password",
			"manager_name":      "Manager name",
			"company_name":      "Company name",
			"company_address":   "Company address",
			"legal_form":        "Legal form",
		},
	}
	f.order = [3][]string{
		{"user_name", "user_username", "user_password"},
		{"business_name", "business_username", "business_password"},
		{"manager_name", "company_name", "company_address", "legal_form"},
	}
	for step, names := range f.order {
		scope := validate.NewScope()
		for _, name := range names {
			tf := &textField{Mask: strings.HasSuffix(name, "password")}
			f.fields[name] = tf
			field := validate.Field{Name: name, Required: true, Value: func() string { return tf.Value }}
			if name == "legal_form" {
				field.Rules = []validate.RuleFunc{validate.OneOf(legalForms...)}
			}
			scope.Add(field)
		}
		f.scopes[step] = scope
		f.navs[step] = formNav{Count: len(names)}
	}
	return f
}

func (f *registerForm) focusedField() *textField {
	names := f.order[f.step]
	return f.fields[names[f.navs[f.step].Idx]]
}

func (f *registerForm) payload() api.RegistrationForm {
	get := func(name string) string { return strings.TrimSpace(f.fields[name].Value) }
	return api.RegistrationForm{
		UserName:         get("user_name"),
		UserUsername:     get("user_username"),
		UserPassword:     f.fields["user_password"].Value,
		BusinessName:     get("business_name"),
		BusinessUsername: get("business_username"),
		BusinessPassword: f.fields["business_password"].Value,
		ManagerName:      get("manager_name"),
		CompanyName:      get("company_name"),
		CompanyAddress:   get("company_address"),
		LegalForm:        strings.ToUpper(get("legal_form")),
	}
}

// stepWithError returns the earliest step containing a flagged field, or -1.
func (f *registerForm) stepWithError() int {
	for step, names := range f.order {
		for _, name := range names {
			if f.engine.FieldProps(name).Invalid {
				return step
			}
		}
	}
	return -1
}

func (m *model) updateRegister(msg tea.KeyMsg) tea.Cmd {
	f := m.register
	if f.busy {
		return nil
	}
	if b := m.keys.lookup(msg.String(), scopeRegister); b != nil {
		switch b.Action {
		case actionBack:
			if f.step > 0 {
				f.step--
			} else {
				m.screen = screenLogin
				m.setNotice(noticeNone, "")
			}
			return nil
		case actionSubmit:
			if !f.engine.ValidateAll(f.scopes[f.step]) {
				m.setNotice(noticeWarning, "Fix the highlighted fields")
				return nil
			}
			if f.step < 2 {
				f.step++
				m.setNotice(noticeNone, "")
				return nil
			}
			f.busy = true
			m.setNotice(noticeInfo, "Registering…")
			return m.registerCmd(f.payload())
		case actionNavigate:
			f.navs[f.step].handleNav(msg)
			return nil
		}
	}
	f.focusedField().handleKey(msg)
	return nil
}

func (m *model) registerCmd(form api.RegistrationForm) tea.Cmd {
	client := m.client
	timeout := m.cfg.API.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		user, err := client.RegisterFull(ctx, form)
		return registerDoneMsg{user: user, err: err}
	}
}

func (m *model) handleRegisterDone(msg registerDoneMsg) tea.Cmd {
	f := m.register
	f.busy = false
	if msg.err != nil {
		if fields := fieldErrors(msg.err); fields != nil {
			f.engine.SetErrors(fields)
			if step := f.stepWithError(); step >= 0 {
				f.step = step
			}
		}
		m.setNotice(noticeError, errText(msg.err, "Registration failed"))
		return nil
	}
	if err := m.sess.Replace(msg.user); err != nil {
		m.setNotice(noticeError, "Could not persist session: "+err.Error())
		return nil
	}
	m.screen = screenHome
	m.tab = tabDashboard
	m.setNotice(noticeSuccess, "Account created — welcome, "+msg.user.Name)
	return m.tabEnterCmd()
}

func (m *model) viewRegister() string {
	f := m.register
	w := m.sectionContentWidth()
	names := f.order[f.step]
	lines := make([]string, 0, len(names)+3)
	for i, name := range names {
		lines = append(lines, renderFormField(f.labels[name], f.fields[name], f.navs[f.step].Idx == i, f.engine.FieldProps(name), w))
	}
	if f.step == 2 {
		lines = append(lines, "", fieldMutedStyle.Render("Legal forms: "+strings.Join(legalForms, ", ")))
		if label, ok := legalFormLabels[strings.ToUpper(strings.TrimSpace(f.fields["legal_form"].Value))]; ok {
			lines = append(lines, fieldMutedStyle.Render(label))
		}
	}
	if f.busy {
		lines = append(lines, "", fieldMutedStyle.Render("Contacting server…"))
	}
	return "\n" + m.renderSection(registerStepTitles[f.step], strings.Join(lines, "\n"))
}
