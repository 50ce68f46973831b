package main

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m *model) Init() tea.Cmd {
	if m.screen == screenHome {
		return m.tabEnterCmd()
	}
	return nil
}

// Update routes messages: window geometry, key presses through the dispatch
// table, and typed done-messages from async commands back to their owners.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m, m.dispatchKey(msg)

	case loginDoneMsg:
		return m, m.handleLoginDone(msg)
	case registerDoneMsg:
		return m, m.handleRegisterDone(msg)

	case previewDoneMsg:
		return m, m.handlePreviewDone(msg)
	case confirmDoneMsg:
		return m, m.handleConfirmDone(msg)
	case historyLoadedMsg:
		m.handleHistoryLoaded(msg)
		return m, nil
	case suggestionsMsg:
		m.handleSuggestions(msg)
		return m, nil

	case userRefreshedMsg:
		m.handleUserRefreshed(msg)
		return m, nil
	case keyActionDoneMsg:
		m.handleKeyActionDone(msg)
		return m, nil
	case companyLoadedMsg:
		m.handleCompanyLoaded(msg)
		return m, nil
	case companySavedMsg:
		return m, m.handleCompanySaved(msg)
	case companyDeletedMsg:
		m.handleCompanyDeleted(msg)
		return m, nil

	case itemsLoadedMsg:
		m.handleItemsLoaded(msg)
		return m, nil
	case devicesLoadedMsg:
		m.handleDevicesLoaded(msg)
		return m, nil
	case entitySavedMsg:
		return m, m.handleEntitySaved(msg)
	case entityDeletedMsg:
		return m, m.handleEntityDeleted(msg)
	}
	return m, nil
}
