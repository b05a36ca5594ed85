package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up             key.Binding
	Down           key.Binding
	Top            key.Binding
	Bottom         key.Binding
	PrevPill       key.Binding
	NextPill       key.Binding
	CycleStatus    key.Binding
	Search         key.Binding
	Scan           key.Binding
	Sort           key.Binding
	Important      key.Binding
	Viewed         key.Binding
	YankURL        key.Binding
	Delete         key.Binding
	Export         key.Binding
	AddCategory    key.Binding
	RemoveCategory key.Binding
	Theme          key.Binding
	Quit           key.Binding
}

// DefaultKeyMap returns the default vim-style key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "go to bottom"),
		),
		PrevPill: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "previous category"),
		),
		NextPill: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "next category"),
		),
		CycleStatus: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "cycle viewed filter"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Scan: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "scan new bookmarks"),
		),
		Sort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "toggle sort order"),
		),
		Important: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "toggle important"),
		),
		Viewed: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle viewed"),
		),
		YankURL: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy URL"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete bookmark"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export JSON"),
		),
		AddCategory: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "add category"),
		),
		RemoveCategory: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "remove selected category"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle theme"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
