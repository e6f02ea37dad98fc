package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"editor-assets/internal/store"
)

// ---------- Update ----------
func (m AssetList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.refreshViewport()
	return m, cmd
}

func (m AssetList) update(msg tea.Msg) (AssetList, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}
		if m.confirm != nil {
			return m.handleConfirmKey(key)
		}
		if key == "q" {
			return m, tea.Quit
		}
		return m.handleListKey(key)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		// title, divider, footer and help
		const chrome = 8
		m.viewport.Width = m.width
		m.viewport.Height = max(m.height-chrome, 3)

	case stateMsg:
		if m.Defunct() {
			return m, nil
		}
		m.applyState(store.State(msg))
		cmds := []tea.Cmd{listenState(m.mnt.updates)}
		if m.state.Loading && !m.spinning {
			m.spinning = true
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case fetchDoneMsg:
		if m.Defunct() {
			return m, nil
		}
		if msg.err != nil {
			m.setStatus(statusError, m.t("AssetList.FetchFailed", msg.err.Error()))
		}
		return m, nil

	case deleteDoneMsg:
		if m.Defunct() {
			return m, nil
		}
		if msg.err != nil {
			m.setStatus(statusError, m.t("AssetList.DeleteFailed", msg.err.Error()))
			return m, nil
		}
		m.setStatus(statusOK, m.t("AssetList.Deleted", msg.name))
		return m, nil

	case openDoneMsg:
		if m.Defunct() {
			return m, nil
		}
		switch {
		case msg.err == nil:
			m.setStatus(statusNone, "")
		case msg.copied:
			m.setStatus(statusWarn, m.t("AssetList.LinkCopied", msg.url))
		default:
			m.setStatus(statusError, m.t("AssetList.OpenFailed", msg.url, msg.err.Error()))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// ---------- Handlers ----------

func (m AssetList) handleConfirmKey(key string) (AssetList, tea.Cmd) {
	switch key {
	case "y", "Y":
		c := m.confirm
		m.confirm = nil
		m.log.Infof("delete confirmed for %s", c.key)
		return m, deleteCmd(m.mnt.ctx, m.deps.Store, c.key, c.name)
	case "n", "N", "esc":
		m.confirm = nil
	}
	return m, nil
}

func (m AssetList) handleListKey(key string) (AssetList, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.moveFocus(m.rows[m.cursor-1].target(elemName))
		} else if m.cursor == -1 {
			m.moveFocus(m.rows[0].target(elemName))
		}
	case "down", "j":
		next := min(m.cursor+1, len(m.rows)-1)
		m.moveFocus(m.rows[next].target(elemName))
	case "tab":
		m.cycleFocus(1)
	case "shift+tab":
		m.cycleFocus(-1)
	case "esc":
		if r := m.focusedRow(); r != nil {
			r.Close()
		}
	case "enter", " ":
		return m.activate()
	}
	return m, nil
}

func (m *AssetList) focusedRow() *AssetRow {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[m.cursor]
}

// moveFocus tells the row losing focus where focus goes before handing it over.
func (m *AssetList) moveFocus(next FocusTarget) {
	if r := m.focusedRow(); r != nil {
		r.FocusOut(next)
	}
	for i := range m.rows {
		if m.rows[i].Key() == next.Key {
			m.rows[i].Focus(next.El)
			m.cursor = i
			return
		}
	}
	m.cursor = -1
}

// cycleFocus steps through the focusable elements of all rows, wrapping.
func (m *AssetList) cycleFocus(step int) {
	var order []FocusTarget
	at := -1
	for i := range m.rows {
		for _, el := range m.rows[i].Focusables() {
			if i == m.cursor && el == m.rows[i].Focused() {
				at = len(order)
			}
			order = append(order, m.rows[i].target(el))
		}
	}
	if len(order) == 0 {
		return
	}
	var idx int
	switch {
	case at == -1 && step > 0:
		idx = 0
	case at == -1:
		idx = len(order) - 1
	default:
		idx = (at + step + len(order)) % len(order)
	}
	m.moveFocus(order[idx])
}

func (m AssetList) activate() (AssetList, tea.Cmd) {
	r := m.focusedRow()
	if r == nil {
		return m, nil
	}
	switch r.Focused() {
	case elemName:
		return m, m.openURL(r.NameLink().Href)
	case elemSketch:
		link, _ := r.SketchLink()
		href := link.Href
		if m.deps.SketchURL != nil {
			href = m.deps.SketchURL(href)
		}
		return m, m.openURL(href)
	case elemToggle:
		r.Toggle()
	case elemDelete:
		a := r.Asset()
		m.confirm = &confirmState{key: a.Key, name: a.Name, prompt: r.RequestDelete(m.deps.Translator)}
	case elemOpen:
		return m, m.openURL(r.Asset().URL)
	}
	return m, nil
}

func (m AssetList) openURL(url string) tea.Cmd {
	if m.deps.Opener == nil || url == "" {
		return nil
	}
	return openCmd(m.deps.Opener, m.deps.Clipboard, url)
}
