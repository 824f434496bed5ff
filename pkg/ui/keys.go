package ui

import "github.com/charmbracelet/bubbles/key"

// appKeys are the shortcuts handled above the active table. They are only
// consulted while the table is not capturing input.
type appKeys struct {
	NextScreen key.Binding
	PrevScreen key.Binding
	New        key.Binding
	CopyID     key.Binding
	CopyPhone  key.Binding
	CopyURL    key.Binding
	Close      key.Binding
	Quit       key.Binding
}

func defaultAppKeys() appKeys {
	return appKeys{
		NextScreen: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next screen")),
		PrevScreen: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev screen")),
		New:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		CopyID:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		CopyPhone:  key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy phone")),
		CopyURL:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "copy recording url")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
