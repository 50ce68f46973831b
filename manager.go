package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/ldimov09/mocksys-tui/internal/api"
	"github.com/ldimov09/mocksys-tui/internal/validate"
)

type managerKind int

const (
	kindItems managerKind = iota
	kindDevices
)

func (k managerKind) String() string {
	if k == kindDevices {
		return "devices"
	}
	return "items"
}

var deviceStatuses = []string{"active", "inactive"}

// managerTab is the items/devices CRUD surface. One list per kind, one
// generic modal form whose rule table is rebuilt when the form opens.
type managerTab struct {
	kind    managerKind
	items   []api.Item
	devices []api.Device
	cursor  int
	loaded  [2]bool
	busy    bool

	formOpen    bool
	detailsOpen bool
	deleteOpen  bool

	editID int64 // 0 means create
	fields map[string]*textField
	order  []string
	labels map[string]string
	newKey bool
	nav    formNav
	engine *validate.Engine
	scope  *validate.Scope
}

func newManagerTab() *managerTab {
	return &managerTab{
		engine: validate.New(),
		labels: map[string]string{
			"name":        "Name",
			"short_name":  "Short name",
			"price":       "Price",
			"number":      "Quantity",
			"unit":        "Unit",
			"address":     "Address",
			"dev_number":  "Number",
			"status":      "Status",
			"description": "Description",
		},
	}
}

func (t *managerTab) listLen() int {
	if t.kind == kindItems {
		return len(t.items)
	}
	return len(t.devices)
}

func (t *managerTab) clampCursor() {
	if n := t.listLen(); t.cursor >= n {
		t.cursor = n - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

func (t *managerTab) currentItem() (api.Item, bool) {
	if t.kind != kindItems || t.cursor >= len(t.items) {
		return api.Item{}, false
	}
	return t.items[t.cursor], true
}

func (t *managerTab) currentDevice() (api.Device, bool) {
	if t.kind != kindDevices || t.cursor >= len(t.devices) {
		return api.Device{}, false
	}
	return t.devices[t.cursor], true
}

// openForm rebuilds the field set and rule table for the current kind and
// seeds values when editing.
func (t *managerTab) openForm(edit bool) {
	t.engine.Clear()
	t.fields = map[string]*textField{}
	t.newKey = false
	t.editID = 0

	scope := validate.NewScope()
	add := func(name string, required bool, rules ...validate.RuleFunc) {
		tf := &textField{}
		t.fields[name] = tf
		scope.Add(validate.Field{Name: name, Required: required, Rules: rules, Value: func() string { return tf.Value }})
	}

	if t.kind == kindItems {
		t.order = []string{"name", "short_name", "price", "number", "unit"}
		add("name", true)
		add("short_name", true)
		add("price", true, validate.PositiveAmount)
		add("number", true, validate.Decimal)
		add("unit", true)
		if item, ok := t.currentItem(); edit && ok {
			t.editID = item.ID
			t.fields["name"].set(item.Name)
			t.fields["short_name"].set(item.ShortName)
			t.fields["price"].set(item.Price.String())
			t.fields["number"].set(item.Number.String())
			t.fields["unit"].set(item.Unit)
		}
	} else {
		t.order = []string{"name", "address", "dev_number", "status", "description"}
		add("name", true)
		add("address", true)
		add("dev_number", true)
		add("status", true, validate.OneOf(deviceStatuses...))
		add("description", false)
		if dev, ok := t.currentDevice(); edit && ok {
			t.editID = dev.ID
			t.fields["name"].set(dev.Name)
			t.fields["address"].set(dev.Address)
			t.fields["dev_number"].set(dev.Number)
			t.fields["status"].set(dev.Status)
			t.fields["description"].set(dev.Description)
		} else {
			t.fields["status"].set("active")
		}
	}
	t.scope = scope
	t.nav = formNav{Count: len(t.order)}
	t.formOpen = true
}

// ---------------------------------------------------------------------------
// Key handling
// ---------------------------------------------------------------------------

func (m *model) updateManager(msg tea.KeyMsg) tea.Cmd {
	t := m.mgr
	b := m.keys.lookup(msg.String(), scopeManager)
	if b == nil {
		return nil
	}
	switch b.Action {
	case actionKind:
		if t.kind == kindItems {
			t.kind = kindDevices
		} else {
			t.kind = kindItems
		}
		t.cursor = 0
	case actionNavigate:
		switch msg.String() {
		case "j", "down":
			t.cursor++
		case "k", "up":
			t.cursor--
		}
		t.clampCursor()
	case actionAdd:
		t.openForm(false)
	case actionEdit:
		if t.listLen() > 0 {
			t.openForm(true)
		}
	case actionSelect:
		if t.listLen() > 0 {
			t.detailsOpen = true
		}
	case actionDelete:
		if t.listLen() > 0 {
			t.deleteOpen = true
		}
	case actionRefresh:
		return m.loadManagerCmd()
	}
	return nil
}

func (m *model) updateManagerForm(msg tea.KeyMsg) tea.Cmd {
	t := m.mgr
	if t.busy {
		return nil
	}
	if b := m.keys.lookup(msg.String(), scopeManagerModal); b != nil {
		switch b.Action {
		case actionClose:
			t.formOpen = false
			return nil
		case actionNavigate:
			t.nav.handleNav(msg)
			return nil
		case actionToggle:
			// Space only toggles the device-key regeneration flag; in text
			// fields it is a regular character.
			if t.kind == kindDevices && t.editID != 0 {
				t.newKey = !t.newKey
				return nil
			}
		case actionSubmit:
			if !t.engine.ValidateAll(t.scope) {
				return nil
			}
			t.busy = true
			return m.saveEntityCmd()
		}
	}
	t.fields[t.order[t.nav.Idx]].handleKey(msg)
	return nil
}

func (m *model) updateManagerDetails(msg tea.KeyMsg) tea.Cmd {
	t := m.mgr
	b := m.keys.lookup(msg.String(), scopeManagerDetails)
	if b == nil {
		return nil
	}
	switch b.Action {
	case actionClose:
		t.detailsOpen = false
	case actionEdit:
		t.detailsOpen = false
		t.openForm(true)
	case actionDelete:
		t.detailsOpen = false
		t.deleteOpen = true
	}
	return nil
}

func (m *model) updateManagerDelete(msg tea.KeyMsg) tea.Cmd {
	t := m.mgr
	b := m.keys.lookup(msg.String(), scopeManagerDelete)
	if b == nil {
		return nil
	}
	switch b.Action {
	case actionClose:
		t.deleteOpen = false
	case actionConfirm:
		t.deleteOpen = false
		return m.deleteEntityCmd()
	}
	return nil
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (m *model) loadManagerCmd() tea.Cmd {
	client := m.client
	timeout := m.cfg.API.RequestTimeout
	items := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		out, err := client.Items(ctx)
		return itemsLoadedMsg{items: out, err: err}
	}
	devices := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		out, err := client.Devices(ctx)
		return devicesLoadedMsg{devices: out, err: err}
	}
	return tea.Batch(items, devices)
}

func (m *model) handleItemsLoaded(msg itemsLoadedMsg) {
	t := m.mgr
	if msg.err != nil {
		m.setNotice(noticeWarning, errText(msg.err, "Could not load items"))
		return
	}
	t.items = msg.items
	t.loaded[kindItems] = true
	t.clampCursor()
}

func (m *model) handleDevicesLoaded(msg devicesLoadedMsg) {
	t := m.mgr
	if msg.err != nil {
		m.setNotice(noticeWarning, errText(msg.err, "Could not load devices"))
		return
	}
	t.devices = msg.devices
	t.loaded[kindDevices] = true
	t.clampCursor()
}

func (m *model) saveEntityCmd() tea.Cmd {
	t := m.mgr
	client := m.client
	timeout := m.cfg.API.RequestTimeout
	kind := t.kind
	get := func(name string) string { return strings.TrimSpace(t.fields[name].Value) }

	if kind == kindItems {
		item := api.Item{
			ID:        t.editID,
			Name:      get("name"),
			ShortName: get("short_name"),
			Unit:      get("unit"),
		}
		// Validated as decimals already.
		item.Price, _ = decimal.NewFromString(get("price"))
		item.Number, _ = decimal.NewFromString(get("number"))
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return entitySavedMsg{kind: kind, err: client.SaveItem(ctx, item)}
		}
	}

	device := api.Device{
		ID:          t.editID,
		Name:        get("name"),
		Address:     get("address"),
		Number:      get("dev_number"),
		Status:      get("status"),
		Description: get("description"),
		NewKey:      t.newKey,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return entitySavedMsg{kind: kind, err: client.SaveDevice(ctx, device)}
	}
}

func (m *model) handleEntitySaved(msg entitySavedMsg) tea.Cmd {
	t := m.mgr
	t.busy = false
	if msg.err != nil {
		if fields := fieldErrors(msg.err); fields != nil {
			t.engine.SetErrors(remapDeviceFields(fields))
		}
		m.setNotice(noticeError, errText(msg.err, "Could not save "+msg.kind.String()))
		return nil
	}
	t.formOpen = false
	m.setNotice(noticeSuccess, "Saved")
	return m.loadManagerCmd()
}

func (m *model) deleteEntityCmd() tea.Cmd {
	t := m.mgr
	client := m.client
	timeout := m.cfg.API.RequestTimeout
	kind := t.kind
	var id int64
	if item, ok := t.currentItem(); ok {
		id = item.ID
	} else if dev, ok := t.currentDevice(); ok {
		id = dev.ID
	} else {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		var err error
		if kind == kindItems {
			err = client.DeleteItem(ctx, id)
		} else {
			err = client.DeleteDevice(ctx, id)
		}
		return entityDeletedMsg{kind: kind, err: err}
	}
}

func (m *model) handleEntityDeleted(msg entityDeletedMsg) tea.Cmd {
	if msg.err != nil {
		m.setNotice(noticeError, errText(msg.err, "Could not delete "+msg.kind.String()))
		return nil
	}
	m.setNotice(noticeSuccess, "Deleted")
	return m.loadManagerCmd()
}

// remapDeviceFields translates the backend's "number" field error onto the
// form's key for it, which is renamed to avoid clashing with items.
func remapDeviceFields(fields map[string]string) map[string]string {
	if msg, ok := fields["number"]; ok {
		out := make(map[string]string, len(fields))
		for k, v := range fields {
			out[k] = v
		}
		out["dev_number"] = msg
		return out
	}
	return fields
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func (m *model) viewManager() string {
	t := m.mgr
	w := m.sectionContentWidth()
	title := fmt.Sprintf("Manager — %s (h/l to switch)", t.kind)
	var content string
	if !t.loaded[t.kind] {
		content = fieldMutedStyle.Render("Loading…")
	} else if t.kind == kindItems {
		content = renderItemList(t.items, t.cursor, w)
	} else {
		content = renderDeviceList(t.devices, t.cursor, w)
	}
	return "\n" + m.renderSection(title, content)
}

func renderItemList(items []api.Item, cursor, width int) string {
	if len(items) == 0 {
		return fieldMutedStyle.Render("No items. Press a to add one.")
	}
	nameWidth, priceWidth := 24, 10
	header := fmt.Sprintf("  %-*s  %*s  %s", nameWidth, "Name", priceWidth, "Price", "Qty")
	lines := []string{tableHeaderStyle.Render(header)}
	for i, item := range items {
		prefix := "  "
		if i == cursor {
			prefix = cursorStyle.Render("> ")
		}
		line := prefix + padRight(truncate(item.Name, nameWidth), nameWidth) + "  " +
			fmt.Sprintf("%*s", priceWidth, item.Price.StringFixed(2)) + "  " +
			item.Number.String() + " " + item.Unit
		lines = append(lines, truncate(line, width))
	}
	return strings.Join(lines, "\n")
}

func renderDeviceList(devices []api.Device, cursor, width int) string {
	if len(devices) == 0 {
		return fieldMutedStyle.Render("No devices. Press a to add one.")
	}
	nameWidth, statusWidth := 24, 10
	header := fmt.Sprintf("  %-*s  %-*s  %s", nameWidth, "Name", statusWidth, "Status", "Number")
	lines := []string{tableHeaderStyle.Render(header)}
	for i, dev := range devices {
		prefix := "  "
		if i == cursor {
			prefix = cursorStyle.Render("> ")
		}
		status := keyDisabledStyle.Render(padRight(dev.Status, statusWidth))
		if dev.Status == "active" {
			status = keyEnabledStyle.Render(padRight(dev.Status, statusWidth))
		}
		line := prefix + padRight(truncate(dev.Name, nameWidth), nameWidth) + "  " + status + "  " + dev.Number
		lines = append(lines, truncate(line, width))
	}
	return strings.Join(lines, "\n")
}

func (m *model) viewManagerForm() string {
	t := m.mgr
	w := 48
	verb := "Add"
	if t.editID != 0 {
		verb = "Edit"
	}
	noun := "item"
	if t.kind == kindDevices {
		noun = "device"
	}
	lines := []string{titleStyle.Render(verb + " " + noun), ""}
	for i, name := range t.order {
		lines = append(lines, renderFormField(t.labels[name], t.fields[name], t.nav.Idx == i, t.engine.FieldProps(name), w))
	}
	if t.kind == kindDevices {
		lines = append(lines, "", fieldMutedStyle.Render("Statuses: "+strings.Join(deviceStatuses, ", ")))
		if t.editID != 0 {
			mark := "[ ]"
			if t.newKey {
				mark = "[x]"
			}
			lines = append(lines, fieldValueStyle.Render(mark+" regenerate device key (space)"))
		}
	}
	lines = append(lines, "", fieldMutedStyle.Render("enter to save, esc to cancel"))
	if t.busy {
		lines = append(lines, fieldMutedStyle.Render("Saving…"))
	}
	return strings.Join(lines, "\n")
}

func (m *model) viewManagerDetails() string {
	t := m.mgr
	if item, ok := t.currentItem(); ok {
		return strings.Join([]string{
			titleStyle.Render("Item details"),
			"",
			renderStaticField("Name", item.Name),
			renderStaticField("Short name", item.ShortName),
			renderStaticField("Price", item.Price.StringFixed(2)+" "+m.cfg.UI.CurrencyCode),
			renderStaticField("Quantity", item.Number.String()+" "+item.Unit),
			"",
			fieldMutedStyle.Render("e to edit, d to delete, esc to close"),
		}, "\n")
	}
	dev, ok := t.currentDevice()
	if !ok {
		return fieldMutedStyle.Render("Nothing selected.")
	}
	key := dev.DeviceKey
	if key == "" {
		key = fieldMutedStyle.Render("(hidden)")
	}
	return strings.Join([]string{
		titleStyle.Render("Device details"),
		"",
		renderStaticField("Name", dev.Name),
		renderStaticField("Address", dev.Address),
		renderStaticField("Number", dev.Number),
		renderStaticField("Status", dev.Status),
		renderStaticField("Device key", key),
		renderStaticField("Last seen", dev.LastSeen),
		renderStaticField("Last IP", dev.LastIP),
		renderStaticField("Description", dev.Description),
		"",
		fieldMutedStyle.Render("e to edit, d to delete, esc to close"),
	}, "\n")
}

func (m *model) viewManagerDelete() string {
	t := m.mgr
	name := ""
	if item, ok := t.currentItem(); ok {
		name = item.Name
	} else if dev, ok := t.currentDevice(); ok {
		name = dev.Name
	}
	return strings.Join([]string{
		titleStyle.Render("Delete " + strings.TrimSuffix(t.kind.String(), "s")),
		"",
		"Delete " + fieldValueStyle.Render(name) + "?",
		"",
		fieldMutedStyle.Render("enter to delete, esc to keep"),
	}, "\n")
}
