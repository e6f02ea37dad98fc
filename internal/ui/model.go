// Package ui renders the asset list as a Bubble Tea program.
package ui

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"editor-assets/internal/infra/logx"
	"editor-assets/internal/store"
)

type statusKind int

const (
	statusNone statusKind = iota
	statusOK
	statusWarn
	statusError
)

// mount is shared by every copy of the model so that Init and Unmount
// act on the same lifecycle.
type mount struct {
	ctx     context.Context
	cancel  context.CancelFunc
	updates <-chan store.State
	unsub   func()
	fetched atomic.Bool
	defunct atomic.Bool
}

type confirmState struct {
	key    string
	name   string
	prompt string
}

// AssetList is the top level model.
type AssetList struct {
	deps Deps
	mnt  *mount
	log  logx.Logger

	state  store.State
	rows   []AssetRow
	cursor int // focused row, -1 when nothing has focus

	confirm    *confirmState
	status     string
	statusKind statusKind

	spinner  spinner.Model
	spinning bool
	viewport viewport.Model
	width    int
	height   int
}

func New(deps Deps) AssetList {
	ctx, cancel := context.WithCancel(context.Background())
	ch, unsub := deps.Store.Subscribe()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = subtleStyle

	m := AssetList{
		deps:     deps,
		mnt:      &mount{ctx: ctx, cancel: cancel, updates: ch, unsub: unsub},
		log:      logx.With(logx.Fields{"component": "ui"}),
		cursor:   -1,
		spinner:  sp,
		viewport: viewport.New(0, 0),
	}
	m.applyState(deps.Store.Snapshot())
	return m
}

// Init fetches the collection on the first call only.
func (m AssetList) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle(m.t("AssetList.Title")),
		listenState(m.mnt.updates),
	}
	if m.mnt.fetched.CompareAndSwap(false, true) {
		m.log.Debugf("initial fetch")
		cmds = append(cmds, fetchCmd(m.mnt.ctx, m.deps.Store))
	}
	return tea.Batch(cmds...)
}

// Unmount aborts in-flight requests and stops reacting to the store.
// It is safe to call more than once.
func (m AssetList) Unmount() {
	if m.mnt.defunct.Swap(true) {
		return
	}
	m.mnt.cancel()
	m.mnt.unsub()
}

// Defunct reports whether Unmount was called.
func (m AssetList) Defunct() bool { return m.mnt.defunct.Load() }

func (m AssetList) t(key string, args ...any) string {
	return m.deps.Translator.T(key, args...)
}

func (m *AssetList) setStatus(kind statusKind, s string) {
	m.statusKind = kind
	m.status = s
}

// applyState replaces the rows, keeping dropdown and focus state of rows
// whose key survives.
func (m *AssetList) applyState(st store.State) {
	focusedKey := ""
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		focusedKey = m.rows[m.cursor].Key()
	}
	prev := make(map[string]AssetRow, len(m.rows))
	for _, r := range m.rows {
		prev[r.Key()] = r
	}

	rows := make([]AssetRow, 0, len(st.Assets.List))
	cursor := -1
	for _, a := range st.Assets.List {
		r := NewAssetRow(a, st.User.Username)
		if old, ok := prev[a.Key]; ok {
			r.focused = old.focused
			r.optionsOpen = old.optionsOpen
			if !r.has(r.focused) {
				r.focused = elemNone
			}
		}
		if a.Key == focusedKey {
			cursor = len(rows)
		}
		rows = append(rows, r)
	}

	// focused row went away: hand focus to its neighbour
	if focusedKey != "" && cursor == -1 && len(rows) > 0 {
		cursor = min(m.cursor, len(rows)-1)
		rows[cursor].Focus(elemName)
	}

	m.state = st
	m.rows = rows
	m.cursor = cursor
}
