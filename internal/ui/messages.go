package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"editor-assets/internal/store"
)

// stateMsg carries a store snapshot into the event loop.
type stateMsg store.State

type fetchDoneMsg struct {
	err error
}

type deleteDoneMsg struct {
	key  string
	name string
	err  error
}

// openDoneMsg reports a navigation attempt. copied is set when the opener
// failed and the URL went to the clipboard instead.
type openDoneMsg struct {
	url    string
	copied bool
	err    error
}

// listenState waits for the next store snapshot. A closed channel ends
// the listen loop.
func listenState(ch <-chan store.State) tea.Cmd {
	return func() tea.Msg {
		if ch == nil {
			return nil
		}
		st, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(st)
	}
}

func fetchCmd(ctx context.Context, s AssetStore) tea.Cmd {
	return func() tea.Msg {
		return fetchDoneMsg{err: s.GetAssets(ctx)}
	}
}

func deleteCmd(ctx context.Context, s AssetStore, key, name string) tea.Cmd {
	return func() tea.Msg {
		err := s.DeleteAssetRequest(ctx, key)
		return deleteDoneMsg{key: key, name: name, err: err}
	}
}

func openCmd(o Opener, c Clipboard, url string) tea.Cmd {
	return func() tea.Msg {
		err := o.Open(url)
		if err == nil {
			return openDoneMsg{url: url}
		}
		if c != nil && c.WriteAll(url) == nil {
			return openDoneMsg{url: url, copied: true, err: err}
		}
		return openDoneMsg{url: url, err: err}
	}
}
