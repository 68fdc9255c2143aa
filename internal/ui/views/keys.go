package views

import "github.com/charmbracelet/bubbles/key"

// KeyMap definiuje skróty klawiszowe
type KeyMap struct {
	Scroll    key.Binding
	Page      key.Binding
	Next      key.Binding
	Previous  key.Binding
	Command   key.Binding
	Execute   key.Binding
	Cancel    key.Binding
	Theme     key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap zwraca domyślne ustawienia klawiszy
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Scroll: key.NewBinding(
			key.WithKeys("up", "down"),
			key.WithHelp("↑↓", "scroll"),
		),
		Page: key.NewBinding(
			key.WithKeys("pgup", "pgdown"),
			key.WithHelp("PgUp/PgDn", "page"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "right"),
			key.WithHelp("Tab/→", "next panel"),
		),
		Previous: key.NewBinding(
			key.WithKeys("left", "shift+tab"),
			key.WithHelp("←", "prev panel"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command"),
		),
		Execute: key.NewBinding(
			key.WithKeys("enter"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
		),
		Theme: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "theme"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q/^c", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

// footer lists the bindings shown in the key table, in order.
func (k KeyMap) footer() []key.Binding {
	return []key.Binding{k.Scroll, k.Page, k.Next, k.Previous, k.Command, k.Theme, k.Quit}
}
