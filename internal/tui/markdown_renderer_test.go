package tui

import (
	"strings"
	"testing"

	"github.com/hylla/taskify/internal/app"
)

func TestMarkdownRendererCachesByWidth(t *testing.T) {
	r := &markdownRenderer{style: "ascii"}
	if got := r.render("   ", 40); got != "" {
		t.Fatalf("expected empty render, got %q", got)
	}

	out := r.render("# Heading\n\nbody text", 10)
	if !strings.Contains(out, "body text") {
		t.Fatalf("expected body in output, got %q", out)
	}
	if r.width != minMarkdownWidth {
		t.Fatalf("expected width clamped to %d, got %d", minMarkdownWidth, r.width)
	}
	first := r.renderer
	r.render("again", 12)
	if r.renderer != first {
		t.Fatal("expected renderer reused for the same clamped width")
	}
	r.render("again", 60)
	if r.renderer == first || r.width != 60 {
		t.Fatal("expected renderer rebuilt for a new width")
	}
}

func TestWithMarkdownStyleFeedsTaskInfo(t *testing.T) {
	store := newTestStore(t)
	mustAdd(t, store, app.AddTaskInput{Title: "Styled", Description: "**bold** note"})

	m := newReadyModel(t, store, WithMarkdownStyle("ascii"))
	if m.markdown == nil || m.markdown.style != "ascii" {
		t.Fatalf("expected ascii markdown style, got %#v", m.markdown)
	}
	m = applyMsg(t, m, keyRune('i'))
	if out := m.renderBoard(); !strings.Contains(out, "note") {
		t.Fatalf("expected rendered description in task info\n%s", out)
	}
	if m.markdown.renderer == nil {
		t.Fatal("expected glamour renderer built for the configured style")
	}
}
