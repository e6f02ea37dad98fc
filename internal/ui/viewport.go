package ui

// ensureCursorInViewport adjusts the viewport Y offset so that cursorLine
// is within the visible window with a scroll margin.
func (m *AssetList) ensureCursorInViewport(cursorLine int) {
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1

	margin := 2
	if m.viewport.Height < 8 {
		margin = 1
	}

	switch {
	case cursorLine < top+margin:
		m.viewport.SetYOffset(max(cursorLine-margin, 0))
	case cursorLine > bottom-margin:
		m.viewport.SetYOffset(max(cursorLine-m.viewport.Height+margin+1, 0))
	}
}
