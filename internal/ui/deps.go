package ui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"

	"editor-assets/internal/store"
)

// AssetStore is the part of the store the list needs.
type AssetStore interface {
	Snapshot() store.State
	Subscribe() (<-chan store.State, func())
	GetAssets(ctx context.Context) error
	DeleteAssetRequest(ctx context.Context, key string) error
}

// Translator maps message identifiers to localized strings.
type Translator interface {
	T(key string, args ...any) string
}

// Opener navigates to a URL outside the terminal.
type Opener interface {
	Open(url string) error
}

// Clipboard receives a URL when no browser could be launched.
type Clipboard interface {
	WriteAll(text string) error
}

// Deps are the collaborators of the asset list.
type Deps struct {
	Store      AssetStore
	Translator Translator
	Opener     Opener
	Clipboard  Clipboard

	// SketchURL turns a sketch path like /ada/sketches/42 into an
	// absolute editor URL. Nil leaves the path as is.
	SketchURL func(path string) string
}

// BrowserOpener hands URLs to the platform's default browser. The
// launcher's own output is dropped so it cannot draw over the TUI.
type BrowserOpener struct{}

var quietBrowser = sync.OnceFunc(func() {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
})

func (BrowserOpener) Open(url string) error {
	quietBrowser()
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }
