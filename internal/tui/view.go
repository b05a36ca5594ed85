package tui

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/sift/internal/model"
	"github.com/nikbrunner/sift/internal/taxonomy"
	"github.com/nikbrunner/sift/internal/view"
)

// View implements tea.Model.
func (a App) View() string {
	switch a.mode {
	case modeError:
		return a.renderError()
	case modeScanning:
		return a.renderScanning()
	default:
		return a.renderList()
	}
}

func (a App) renderError() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("sift"))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Error.Render(fmt.Sprintf("Error: %v", a.fatalErr)))
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render("r retry · q quit"))
	return a.styles.App.Render(b.String())
}

func (a App) renderScanning() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("sift"))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Status.Render(a.scanStatus))
	b.WriteString("\n\n")
	b.WriteString(a.renderRows())
	return a.styles.App.Render(b.String())
}

func (a App) renderList() string {
	p := a.app.Projection()

	var b strings.Builder
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		a.styles.Title.Render("sift"),
		"  ",
		a.styles.Count.Render(fmt.Sprintf("%d results found", p.Total)),
	)
	b.WriteString(header)
	b.WriteString("\n\n")

	b.WriteString(a.renderPills(p.Pills))
	b.WriteString("\n\n")

	if a.mode == modeSearch || a.mode == modeAddCategory {
		b.WriteString(a.input.View())
		b.WriteString("\n\n")
	}

	b.WriteString(a.renderRows())

	if a.notice != "" {
		b.WriteString("\n")
		b.WriteString(a.styles.Status.Render(a.notice))
	}

	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render(a.renderHelp()))

	return a.styles.App.Render(b.String())
}

func (a App) renderPills(pills []view.Pill) string {
	parts := make([]string, 0, len(pills))
	for i, p := range pills {
		style := a.styles.Pill
		if i == a.pillIdx {
			style = a.styles.PillActive
		}
		parts = append(parts, style.Render(fmt.Sprintf("%s (%d)", pillLabel(p.ID), p.Count)))
	}
	return strings.Join(parts, " ")
}

func pillLabel(id string) string {
	switch id {
	case view.FilterAll:
		return "All"
	case view.FilterImportant:
		return "Important"
	default:
		return id
	}
}

func (a App) renderRows() string {
	p := a.app.Projection()
	if len(p.Rows) == 0 {
		if a.app.PendingCount() > 0 {
			return a.styles.Count.Render(
				fmt.Sprintf("%d new bookmarks to scan. Press s to analyze them.", a.app.PendingCount()))
		}
		return a.styles.Count.Render("Nothing here.")
	}

	tax := a.app.Taxonomy()

	// Viewport: two lines per row plus a blank separator
	perRow := 3
	visible := (a.height - 12) / perRow
	if visible < 3 {
		visible = 3
	}
	start := 0
	if a.cursor >= visible {
		start = a.cursor - visible + 1
	}
	end := start + visible
	if end > len(p.Rows) {
		end = len(p.Rows)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		item := p.Rows[i]
		b.WriteString(a.renderRow(item, tax, i == a.cursor))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	if end < len(p.Rows) {
		b.WriteString("\n\n")
		b.WriteString(a.styles.Count.Render(fmt.Sprintf("… %d more", len(p.Rows)-end)))
	}
	return b.String()
}

func (a App) renderRow(item model.Item, tax taxonomy.Snapshot, selected bool) string {
	rowStyle := a.styles.Row
	if item.IsViewed {
		rowStyle = a.styles.RowViewed
	}
	if selected {
		rowStyle = a.styles.RowCursor
	}

	flags := ""
	if item.IsImportant {
		flags += a.styles.Important.Render("★") + " "
	}
	if item.IsViewed {
		flags += "✓ "
	}

	title := item.Title
	if title == "" {
		title = item.URL
	}

	badges := make([]string, 0, 2)
	for _, c := range view.Badges(item, tax) {
		badges = append(badges, a.styles.Badge.Render("["+c+"]"))
	}

	meta := hostOf(item.URL)
	if !item.CreatedAt.IsZero() {
		meta += " · " + item.CreatedAt.Format("2006-01-02")
	}

	first := rowStyle.Render(flags+title) + " " + strings.Join(badges, " ") + " " + a.styles.Date.Render(meta)

	summary := item.Summary
	if summary == "" {
		summary = "No summary available."
	}
	second := a.styles.Summary.Render(truncate(summary, a.width-6))

	return first + "\n" + second
}

func (a App) renderHelp() string {
	return "j/k move · h/l category · v viewed filter · / search · s scan · i important · m viewed · Y copy · d delete · e export · +/- categories · t theme · q quit"
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func truncate(s string, max int) string {
	if max < 8 {
		max = 8
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
