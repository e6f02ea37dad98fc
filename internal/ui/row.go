package ui

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"editor-assets/internal/store"
)

// element identifies a focusable part of a row.
type element int

const (
	elemNone element = iota
	elemName
	elemSketch
	elemToggle
	elemDelete
	elemOpen
)

// FocusTarget names the element that receives focus.
type FocusTarget struct {
	Key string // asset key of the owning row
	El  element
}

// Link is a navigation target with its visible label.
type Link struct {
	Label string
	Href  string
}

// AssetRow renders one asset and owns its dropdown menu state.
type AssetRow struct {
	asset       store.Asset
	username    string
	focused     element
	optionsOpen bool
}

func NewAssetRow(a store.Asset, username string) AssetRow {
	return AssetRow{asset: a, username: username}
}

func (r *AssetRow) Key() string        { return r.asset.Key }
func (r *AssetRow) Asset() store.Asset { return r.asset }
func (r *AssetRow) OptionsOpen() bool  { return r.optionsOpen }
func (r *AssetRow) Focused() element   { return r.focused }
func (r *AssetRow) IsFocused() bool    { return r.focused != elemNone }
func (r *AssetRow) hasSketch() bool    { return r.asset.SketchID != "" }

// NameLink points at the file itself.
func (r *AssetRow) NameLink() Link { return Link{Label: r.asset.Name, Href: r.asset.URL} }

// SizeText is the human readable size, e.g. "1.0 kB".
func (r *AssetRow) SizeText() string { return humanize.Bytes(uint64(max(r.asset.Size, 0))) }

// SketchLink returns the owning sketch link, if the asset has one.
func (r *AssetRow) SketchLink() (Link, bool) {
	if !r.hasSketch() {
		return Link{}, false
	}
	return Link{
		Label: r.asset.SketchName,
		Href:  fmt.Sprintf("/%s/sketches/%s", r.username, r.asset.SketchID),
	}, true
}

// Toggle flips the menu between open and closed.
func (r *AssetRow) Toggle() {
	if r.optionsOpen {
		r.Close()
		return
	}
	r.optionsOpen = true
}

// Close closes the menu. Focus on a menu entry falls back to the toggle.
func (r *AssetRow) Close() {
	r.optionsOpen = false
	if r.focused == elemDelete || r.focused == elemOpen {
		r.focused = elemToggle
	}
}

// Focus moves focus to el within this row. Elements that are not
// currently rendered are ignored.
func (r *AssetRow) Focus(el element) {
	if r.has(el) {
		r.focused = el
	}
}

// FocusOut is called on the row that currently holds focus before focus
// moves to next. The menu stays open only while focus remains inside the row.
func (r *AssetRow) FocusOut(next FocusTarget) {
	if next.Key == r.asset.Key && r.has(next.El) {
		return
	}
	r.focused = elemNone
	r.optionsOpen = false
}

// Focusables lists the row's focusable elements in tab order.
func (r *AssetRow) Focusables() []element {
	els := []element{elemName}
	if r.hasSketch() {
		els = append(els, elemSketch)
	}
	els = append(els, elemToggle)
	if r.optionsOpen {
		els = append(els, elemDelete, elemOpen)
	}
	return els
}

func (r *AssetRow) has(el element) bool {
	for _, e := range r.Focusables() {
		if e == el {
			return true
		}
	}
	return false
}

// RequestDelete closes the menu and returns the confirmation prompt.
func (r *AssetRow) RequestDelete(t Translator) string {
	r.Close()
	return t.T("Common.DeleteConfirmation", r.asset.Name)
}

// Cells returns the name, size, sketch and action column texts.
func (r *AssetRow) Cells() []string {
	sketch := ""
	if link, ok := r.SketchLink(); ok {
		sketch = link.Label
	}
	toggle := "▾"
	if r.optionsOpen {
		toggle = "▴"
	}
	return []string{r.asset.Name, r.SizeText(), sketch, toggle}
}
