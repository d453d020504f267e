package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding the UI responds to outside the search overlay.
type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	Search     key.Binding
	NextPanel  key.Binding
	PrevPanel  key.Binding
	Toggle     key.Binding
	Stop       key.Binding
	Next       key.Binding
	Prev       key.Binding
	SeekBack   key.Binding
	SeekFwd    key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Repeat     key.Binding
	Refresh    key.Binding

	// Queue panel
	Up       key.Binding
	Down     key.Binding
	PlayHere key.Binding
	Remove   key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		NextPanel:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		PrevPanel:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev panel")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Stop:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Next:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		Prev:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev")),
		SeekBack:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "-5s")),
		SeekFwd:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "+5s")),
		VolumeUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		VolumeDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		Repeat:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat mode")),
		Refresh:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh history")),

		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		PlayHere: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play selected")),
		Remove:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "remove")),
		MoveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help, k.Search, k.Toggle, k.Next, k.Prev, k.VolumeUp, k.VolumeDown, k.Repeat}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Help, k.Search, k.NextPanel, k.PrevPanel, k.Refresh},
		{k.Toggle, k.Stop, k.Next, k.Prev, k.SeekBack, k.SeekFwd, k.VolumeUp, k.VolumeDown, k.Repeat},
		{k.Up, k.Down, k.PlayHere, k.Remove, k.MoveUp, k.MoveDown},
	}
}
