// Package tui renders the triage view. It holds no business state; every
// mutation goes through the app controller.
package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/sift/internal/ai"
	"github.com/nikbrunner/sift/internal/app"
	"github.com/nikbrunner/sift/internal/model"
	"github.com/nikbrunner/sift/internal/view"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeAddCategory
	modeScanning
	modeError
)

// App is the main bubbletea model for the triage view.
type App struct {
	app    *app.App
	keys   KeyMap
	styles Styles
	dark   bool

	mode        mode
	cursor      int
	pillIdx     int
	lastKeyWasG bool

	input      textinput.Model
	scanStatus string
	notice     string
	fatalErr   error

	progressCh chan tea.Msg

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	App  *app.App
	Keys *KeyMap // optional, uses default if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	input := textinput.New()
	input.Placeholder = "Search title, summary, URL..."
	input.CharLimit = 128
	input.Width = 40

	dark := params.App.Theme() != "light"
	styles := LightStyles()
	if dark {
		styles = DarkStyles()
	}

	return App{
		app:        params.App,
		keys:       keys,
		styles:     styles,
		dark:       dark,
		input:      input,
		progressCh: make(chan tea.Msg, 16),
		width:      80,
		height:     24,
	}
}

// Messages produced by background work.
type (
	scanProgressMsg struct{ done, total int }
	modelEventMsg   ai.ProgressEvent
	scanDoneMsg     struct{ err error }
)

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// startScan launches the batch in the background. Progress flows back to
// Update through progressCh; sends never block the batch.
func (a App) startScan() tea.Cmd {
	ch := a.progressCh
	ctrl := a.app
	return func() tea.Msg {
		events := make(chan ai.ProgressEvent, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for ev := range events {
				send(ch, modelEventMsg(ev))
			}
		}()

		err := ctrl.Scan(context.Background(), app.ScanParams{
			Progress: func(d, t int) { send(ch, scanProgressMsg{d, t}) },
			Events:   events,
		})
		close(events)
		<-done
		return scanDoneMsg{err: err}
	}
}

// waitProgress forwards the next background message to Update.
func (a App) waitProgress() tea.Cmd {
	ch := a.progressCh
	return func() tea.Msg {
		return <-ch
	}
}

func send(ch chan<- tea.Msg, msg tea.Msg) {
	select {
	case ch <- msg:
	default:
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case scanProgressMsg:
		a.scanStatus = fmt.Sprintf("Analyzing new items: %d / %d", msg.done, msg.total)
		a.clampCursor()
		return a, a.waitProgress()

	case modelEventMsg:
		if msg.Phase == ai.PhaseDownload && msg.Total > 0 {
			a.scanStatus = fmt.Sprintf("Downloading AI model: %d%%", msg.Completed*100/msg.Total)
		} else if msg.Phase == ai.PhaseLoad {
			a.scanStatus = "Loading model into memory..."
		}
		return a, a.waitProgress()

	case scanDoneMsg:
		a.scanStatus = ""
		if msg.err != nil {
			a.fatalErr = msg.err
			a.mode = modeError
			return a, nil
		}
		a.mode = modeList
		a.notice = "All bookmarks scanned"
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case modeSearch:
			return a.updateSearch(msg)
		case modeAddCategory:
			return a.updateAddCategory(msg)
		case modeError:
			return a.updateError(msg)
		case modeScanning:
			// Batch runs to completion; no mid-batch cancellation.
			return a, nil
		default:
			return a.updateList(msg)
		}
	}

	return a, nil
}

func (a App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := a.app.Projection().Rows
	a.notice = ""

	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = 0
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if len(rows) > 0 && a.cursor < len(rows)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Bottom):
		if len(rows) > 0 {
			a.cursor = len(rows) - 1
		}

	case key.Matches(msg, a.keys.NextPill):
		a.movePill(1)

	case key.Matches(msg, a.keys.PrevPill):
		a.movePill(-1)

	case key.Matches(msg, a.keys.CycleStatus):
		f := a.app.Filters()
		switch f.ViewStatus {
		case view.StatusAll:
			f.ViewStatus = view.StatusUnviewed
		case view.StatusUnviewed:
			f.ViewStatus = view.StatusViewed
		default:
			f.ViewStatus = view.StatusAll
		}
		a.app.SetFilters(f)
		a.clampCursor()

	case key.Matches(msg, a.keys.Sort):
		f := a.app.Filters()
		f.SortAscending = !f.SortAscending
		a.app.SetFilters(f)

	case key.Matches(msg, a.keys.Search):
		a.mode = modeSearch
		a.input.Placeholder = "Search title, summary, URL..."
		a.input.SetValue(a.app.Filters().Search)
		a.input.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Scan):
		// The trigger stays locked while a scan runs or nothing is pending.
		if a.app.Scanning() || a.app.PendingCount() == 0 {
			a.notice = "All bookmarks scanned"
			return a, nil
		}
		a.mode = modeScanning
		a.scanStatus = "Initializing AI session..."
		return a, tea.Batch(a.startScan(), a.waitProgress())

	case key.Matches(msg, a.keys.Important):
		if item, ok := a.selected(rows); ok {
			if err := a.app.ToggleImportant(item.URL); err != nil {
				a.notice = err.Error()
			}
			a.clampCursor()
		}

	case key.Matches(msg, a.keys.Viewed):
		if item, ok := a.selected(rows); ok {
			if err := a.app.ToggleViewed(item.URL); err != nil {
				a.notice = err.Error()
			}
			a.clampCursor()
		}

	case key.Matches(msg, a.keys.YankURL):
		if item, ok := a.selected(rows); ok {
			if err := clipboard.WriteAll(item.URL); err != nil {
				a.notice = "Copy failed"
			} else {
				a.notice = "Copied!"
			}
		}

	case key.Matches(msg, a.keys.Delete):
		if item, ok := a.selected(rows); ok {
			if err := a.app.Delete(context.Background(), item.ID); err != nil {
				a.notice = err.Error()
			}
			a.clampCursor()
		}

	case key.Matches(msg, a.keys.Export):
		a.notice = a.export()

	case key.Matches(msg, a.keys.AddCategory):
		a.mode = modeAddCategory
		a.input.Placeholder = "New category name..."
		a.input.SetValue("")
		a.input.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.RemoveCategory):
		pill := a.currentPill()
		if pill != view.FilterAll && pill != view.FilterImportant {
			if err := a.app.RemoveCategory(pill); err != nil {
				a.notice = err.Error()
			} else {
				a.pillIdx = 0
				a.app.SetFilters(resetCategory(a.app.Filters()))
				a.clampCursor()
			}
		}

	case key.Matches(msg, a.keys.Theme):
		a.dark = !a.dark
		if a.dark {
			a.styles = DarkStyles()
			a.app.SetTheme("dark")
		} else {
			a.styles = LightStyles()
			a.app.SetTheme("light")
		}
	}

	return a, nil
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		if msg.String() == "esc" {
			a.input.SetValue("")
		}
		f := a.app.Filters()
		f.Search = a.input.Value()
		a.app.SetFilters(f)
		a.input.Blur()
		a.mode = modeList
		a.clampCursor()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)

	// Live filtering while typing
	f := a.app.Filters()
	f.Search = a.input.Value()
	a.app.SetFilters(f)
	a.clampCursor()
	return a, cmd
}

func (a App) updateAddCategory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.input.Blur()
		a.mode = modeList
		return a, nil
	case "enter":
		name := a.input.Value()
		a.input.Blur()
		a.mode = modeList
		if err := a.app.AddCategory(name); err != nil {
			a.notice = err.Error()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) updateError(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The error state is not auto-dismissed; the user retries or quits.
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "r":
		a.fatalErr = nil
		a.mode = modeList
		return a, nil
	}
	return a, nil
}

func (a *App) movePill(delta int) {
	pills := a.app.Projection().Pills
	if len(pills) == 0 {
		return
	}
	a.pillIdx += delta
	if a.pillIdx < 0 {
		a.pillIdx = 0
	}
	if a.pillIdx >= len(pills) {
		a.pillIdx = len(pills) - 1
	}
	f := a.app.Filters()
	f.Category = pills[a.pillIdx].ID
	a.app.SetFilters(f)
	a.clampCursor()
}

func (a App) currentPill() string {
	pills := a.app.Projection().Pills
	if a.pillIdx >= 0 && a.pillIdx < len(pills) {
		return pills[a.pillIdx].ID
	}
	return view.FilterAll
}

func (a *App) clampCursor() {
	n := len(a.app.Projection().Rows)
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) selected(rows []model.Item) (model.Item, bool) {
	if len(rows) == 0 || a.cursor >= len(rows) {
		return model.Item{}, false
	}
	return rows[a.cursor], true
}

func (a App) export() string {
	f, err := os.Create(app.ExportFilename)
	if err != nil {
		return fmt.Sprintf("Export failed: %v", err)
	}
	defer f.Close()

	if err := a.app.ExportJSON(f); err != nil {
		return fmt.Sprintf("Export failed: %v", err)
	}
	return fmt.Sprintf("Exported to %s", app.ExportFilename)
}

func resetCategory(f view.Filters) view.Filters {
	f.Category = view.FilterAll
	return f
}
