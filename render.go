package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/ldimov09/mocksys-tui/internal/validate"
)

// ---------------------------------------------------------------------------
// Styles — Catppuccin Mocha themed
// ---------------------------------------------------------------------------

var (
	// Section titles
	titleStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)

	// Header bar (spans full width)
	headerBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorMantle).
			Padding(0, 2)

	// App name in header
	headerAppStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true)

	// Tab styles
	activeTabStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Background(colorSurface0).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorOverlay1).
				Background(colorMantle).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(colorOverlay0).
			Background(colorMantle)

	// Footer bar
	footerStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorMantle).
			Padding(0, 2)

	// Status bar (above footer)
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Background(colorSurface0).
			Padding(0, 2)

	// Section containers
	listBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)

	// Modal overlay
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	// Help key styling
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0)

	// Form fields
	fieldLabelStyle   = lipgloss.NewStyle().Foreground(colorSubtext0)
	fieldFocusStyle   = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	fieldErrorStyle   = lipgloss.NewStyle().Foreground(colorError)
	fieldMutedStyle   = lipgloss.NewStyle().Foreground(colorOverlay1)
	fieldValueStyle   = lipgloss.NewStyle().Foreground(colorText)
	creditStyle       = lipgloss.NewStyle().Foreground(colorSuccess)
	debitStyle        = lipgloss.NewStyle().Foreground(colorError)
	cursorStyle       = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	tableHeaderStyle  = lipgloss.NewStyle().Foreground(colorSubtext0).Bold(true)
	keyEnabledStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	keyDisabledStyle  = lipgloss.NewStyle().Foreground(colorOverlay1)
	balanceValueStyle = lipgloss.NewStyle().Foreground(colorPeach).Bold(true)
)

var noticeStyles = map[noticeLevel]lipgloss.Style{
	noticeInfo:    lipgloss.NewStyle().Foreground(colorInfo).Background(colorSurface0),
	noticeSuccess: lipgloss.NewStyle().Foreground(colorSuccess).Background(colorSurface0),
	noticeWarning: lipgloss.NewStyle().Foreground(colorWarning).Background(colorSurface0),
	noticeError:   lipgloss.NewStyle().Foreground(colorError).Background(colorSurface0),
}

// ---------------------------------------------------------------------------
// Top-level view
// ---------------------------------------------------------------------------

func (m *model) View() string {
	switch m.screen {
	case screenLogin:
		return m.placeWithFooter(m.viewLogin(), m.renderStatus(), m.renderFooter(m.keys.helpBindings(scopeLogin)))
	case screenRegister:
		return m.placeWithFooter(m.viewRegister(), m.renderStatus(), m.renderFooter(m.keys.helpBindings(scopeRegister)))
	}

	header := renderHeader("mocksys", int(m.tab), m.width)
	var body string
	switch m.tab {
	case tabDashboard:
		body = m.viewDashboard()
	case tabTransfer:
		body = m.viewTransfer()
	case tabManager:
		body = m.viewManager()
	}
	base := header + "\n" + body
	view := m.placeWithFooter(base, m.renderStatus(), m.renderFooter(m.keys.helpBindings(m.scope())))

	if modal := m.overlayView(); modal != "" {
		view = m.composeModal(view, modal)
	}
	return view
}

// ---------------------------------------------------------------------------
// Section & chrome rendering
// ---------------------------------------------------------------------------

func renderHeader(appName string, activeTab, width int) string {
	name := headerAppStyle.Render(appName)

	var tabs []string
	for i, tab := range tabTitles {
		if i == activeTab {
			tabs = append(tabs, activeTabStyle.Render(tab))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(tab))
		}
	}
	tabBar := tabSepStyle.Render(" ") + strings.Join(tabs, tabSepStyle.Render("│"))

	content := name + "  " + tabBar
	if width <= 0 {
		return headerBarStyle.Render(content)
	}
	return headerBarStyle.Width(width).Render(content)
}

func (m *model) sectionWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 90 {
		w = 90
	}
	return w
}

func (m *model) sectionContentWidth() int {
	return m.sectionWidth() - 4
}

func (m *model) renderSection(title, content string) string {
	contentWidth := m.sectionContentWidth()
	header := padRight(titleStyle.Render(title), contentWidth)
	sepStyle := lipgloss.NewStyle().Foreground(colorSurface2)
	separator := sepStyle.Render(strings.Repeat("─", contentWidth))
	sectionContent := header + "\n" + separator + "\n" + content
	section := listBoxStyle.Width(m.sectionWidth()).Render(sectionContent)
	if m.width == 0 {
		return section
	}
	return lipgloss.Place(m.width, lipgloss.Height(section), lipgloss.Center, lipgloss.Top, section)
}

func (m *model) renderFooter(bindings []key.Binding) string {
	// Build help text where every character carries the footer background.
	bg := colorMantle
	keyStyle := helpKeyStyle.Background(bg)
	descStyle := helpDescStyle.Background(bg)
	space := lipgloss.NewStyle().Background(bg).Render(" ")
	sep := lipgloss.NewStyle().Background(bg).Render("  ")

	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(help.Key)+space+descStyle.Render(help.Desc))
	}
	content := strings.Join(parts, sep)

	if m.width == 0 {
		return footerStyle.Render(content)
	}
	return footerStyle.Width(m.width).Render(content)
}

func (m *model) renderStatus() string {
	text := strings.ReplaceAll(m.notice.text, "\n", " ")
	style := statusBarStyle
	if s, ok := noticeStyles[m.notice.level]; ok {
		style = s.Padding(0, 2)
	}
	if m.width == 0 {
		return style.Render(text)
	}
	return style.Width(m.width).Render(text)
}

func (m *model) placeWithFooter(body, statusLine, footer string) string {
	if m.height == 0 {
		return body + "\n\n" + statusLine + "\n" + footer
	}
	contentHeight := m.height - 2
	if contentHeight < 1 {
		contentHeight = 1
	}
	if lipgloss.Height(body) >= contentHeight {
		return body + "\n" + statusLine + "\n" + footer
	}
	main := lipgloss.Place(m.width, contentHeight, lipgloss.Left, lipgloss.Top, body)
	// Ensure every line is full-width to prevent ghosting from previous frames
	lines := splitLines(main)
	for i, line := range lines {
		lines[i] = padRight(line, m.width)
	}
	main = strings.Join(lines, "\n")
	return main + "\n" + statusLine + "\n" + footer
}

// ---------------------------------------------------------------------------
// Modal overlay
// ---------------------------------------------------------------------------

func (m *model) composeModal(baseView, content string) string {
	if m.height == 0 || m.width == 0 {
		return baseView + "\n\n" + content
	}
	modal := modalStyle.Render(content)
	lines := splitLines(modal)
	modalWidth := maxLineWidth(lines)
	modalHeight := len(lines)

	targetHeight := m.height - 2
	if targetHeight < 1 {
		targetHeight = 1
	}
	x := (m.width - modalWidth) / 2
	if x < 0 {
		x = 0
	}
	y := (targetHeight - modalHeight) / 2
	if y < 0 {
		y = 0
	}
	return overlayAt(baseView, modal, x, y, m.width, targetHeight)
}

// ---------------------------------------------------------------------------
// Form field rendering
// ---------------------------------------------------------------------------

// renderFormField draws one labeled input line plus an error line when the
// field is flagged invalid. The label column is fixed so values align.
func renderFormField(label string, f *textField, focused bool, props validate.FieldProps, width int) string {
	labelWidth := 18
	lbl := padRight(label, labelWidth)
	if focused {
		lbl = fieldFocusStyle.Render(lbl)
	} else {
		lbl = fieldLabelStyle.Render(lbl)
	}
	value := fieldValueStyle.Render(f.render(focused))
	line := lbl + value
	if props.Invalid {
		line += "\n" + strings.Repeat(" ", labelWidth) + fieldErrorStyle.Render(truncate(props.Message, width-labelWidth))
	}
	return line
}

// renderStaticField draws a read-only labeled value in the same layout as
// renderFormField.
func renderStaticField(label, value string) string {
	return fieldLabelStyle.Render(padRight(label, 18)) + fieldValueStyle.Render(value)
}
