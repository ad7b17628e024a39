// Package render positions overlays on the screen.
package render

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// CenterRect returns a rectangle centered within the screen bounds.
// Width/height are clamped to the screen size before centering.
func CenterRect(panelW, panelH, screenW, screenH int) (x, y, w, h int) {
	screenW = max(screenW, 0)
	screenH = max(screenH, 0)
	w = min(max(panelW, 0), screenW)
	h = min(max(panelH, 0), screenH)
	return ClampRect((screenW-w)/2, (screenH-h)/2, w, h, screenW, screenH)
}

// ClampRect clamps a rectangle to the screen bounds.
func ClampRect(x, y, w, h, screenW, screenH int) (int, int, int, int) {
	screenW = max(screenW, 0)
	screenH = max(screenH, 0)
	x = min(max(x, 0), screenW)
	y = min(max(y, 0), screenH)
	w = max(min(max(w, 0), screenW-x), 0)
	h = max(min(max(h, 0), screenH-y), 0)
	return x, y, w, h
}

// BodyHeight is the screen height left after the one-line header.
func BodyHeight(height int) int {
	if height <= 1 {
		return 0
	}
	return height - 1
}

// CropView cuts view to at most w columns and h rows.
func CropView(view string, w, h int) string {
	lines := strings.Split(view, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for i, line := range lines {
		if ansi.StringWidth(line) > w {
			lines[i] = ansi.Truncate(line, w, "")
		}
	}
	return strings.Join(lines, "\n")
}

// AddOverlay centers view on the screen as a new layer at depth z.
func AddOverlay(layers []*lipgloss.Layer, view string, screenW, screenH, z int) []*lipgloss.Layer {
	if view == "" {
		return layers
	}
	x, y, w, h := CenterRect(lipgloss.Width(view), lipgloss.Height(view), screenW, screenH)
	if w == 0 || h == 0 {
		return layers
	}
	layer := lipgloss.NewLayer(CropView(view, w, h)).X(x).Y(y).Z(z)
	return append(layers, layer)
}
