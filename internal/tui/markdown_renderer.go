package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const minMarkdownWidth = 24

// markdownRenderer renders task descriptions for the info overlay. The glamour renderer is rebuilt
// only when the wrap width changes.
type markdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// render returns the styled description, or the raw text when glamour fails.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	width = max(width, minMarkdownWidth)
	if r.renderer == nil || r.width != width {
		style := r.style
		if style == "" {
			style = "dark"
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = width
	}
	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(rendered, "\n")
}
