package main

import (
	"github.com/ldimov09/mocksys-tui/internal/api"
	"github.com/ldimov09/mocksys-tui/internal/config"
	"github.com/ldimov09/mocksys-tui/internal/history"
	"github.com/ldimov09/mocksys-tui/internal/session"
	"github.com/ldimov09/mocksys-tui/internal/transfer"
)

type screenID int

const (
	screenLogin screenID = iota
	screenRegister
	screenHome
)

type tabID int

const (
	tabDashboard tabID = iota
	tabTransfer
	tabManager
)

var tabTitles = []string{"Dashboard", "Transfer", "Manager"}

type noticeLevel int

const (
	noticeNone noticeLevel = iota
	noticeInfo
	noticeSuccess
	noticeWarning
	noticeError
)

// notice is the status-bar notification. One at a time; each new notice
// replaces the previous one.
type notice struct {
	level noticeLevel
	text  string
}

type model struct {
	cfg    config.Config
	sess   *session.Store
	client *api.Client
	coord  *transfer.Coordinator
	hist   *history.Store

	screen screenID
	tab    tabID
	width  int
	height int
	notice notice

	login    *loginForm
	register *registerForm
	xfer     *transferTab
	dash     *dashboardTab
	mgr      *managerTab

	keys *keyRegistry
}

func newModel(cfg config.Config, sess *session.Store, client *api.Client, coord *transfer.Coordinator, hist *history.Store) *model {
	m := &model{
		cfg:      cfg,
		sess:     sess,
		client:   client,
		coord:    coord,
		hist:     hist,
		screen:   screenLogin,
		login:    newLoginForm(),
		register: newRegisterForm(),
		xfer:     newTransferTab(),
		dash:     newDashboardTab(),
		mgr:      newManagerTab(),
		keys:     newKeyRegistry(),
	}
	if _, ok := sess.Current(); ok {
		m.screen = screenHome
	}
	return m
}

func (m *model) setNotice(level noticeLevel, text string) {
	m.notice = notice{level: level, text: text}
}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

type loginDoneMsg struct {
	user session.User
	err  error
}

type registerDoneMsg struct {
	user session.User
	err  error
}

type previewDoneMsg struct {
	receiver transfer.Receiver
	err      error
}

type confirmDoneMsg struct {
	err error
}

type historyLoadedMsg struct {
	history api.TransferHistory
	err     error
}

type suggestionsMsg struct {
	receivers []history.Receiver
	err       error
}

type keyActionDoneMsg struct {
	keyType string
	update  api.KeyUpdate
	err     error
}

type companyLoadedMsg struct {
	company api.Company
	found   bool
	err     error
}

type companySavedMsg struct {
	company api.Company
	err     error
}

type companyDeletedMsg struct {
	err error
}

type userRefreshedMsg struct {
	user session.User
	err  error
}

type itemsLoadedMsg struct {
	items []api.Item
	err   error
}

type devicesLoadedMsg struct {
	devices []api.Device
	err     error
}

type entitySavedMsg struct {
	kind managerKind
	err  error
}

type entityDeletedMsg struct {
	kind managerKind
	err  error
}
