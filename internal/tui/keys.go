package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the mapping view's bindings. Row navigation (arrows, j/k, paging)
// is left to the pane lists.
type keyMap struct {
	SwitchPane key.Binding
	Toggle     key.Binding
	ToggleAll  key.Binding

	PickUp     key.Binding
	DropCenter key.Binding
	DropAbove  key.Binding
	DropBelow  key.Binding
	Cancel     key.Binding

	Disconnect    key.Binding
	DisconnectAll key.Binding

	Delete       key.Binding
	Undo         key.Binding
	Copy         key.Binding
	Paste        key.Binding
	Rename       key.Binding
	SetValue     key.Binding
	EditExternal key.Binding
	AddChild     key.Binding
	AddAbove     key.Binding
	AddBelow     key.Binding
	Select       key.Binding
	Concat       key.Binding

	Yank    key.Binding
	Preview key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		SwitchPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Toggle:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/collapse")),
		ToggleAll:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand/collapse all")),

		PickUp:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "pick up")),
		DropCenter: key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "drop on")),
		DropAbove:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "drop above")),
		DropBelow:  key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "drop below")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		Disconnect:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove latest link")),
		DisconnectAll: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "remove all links")),

		Delete:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Undo:         key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo delete")),
		Copy:         key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Paste:        key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "paste")),
		Rename:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		SetValue:     key.NewBinding(key.WithKeys("="), key.WithHelp("=", "set value")),
		EditExternal: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "edit value in $EDITOR")),
		AddChild:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add child")),
		AddAbove:     key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add above")),
		AddBelow:     key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "add below")),
		Select:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "select")),
		Concat:       key.NewBinding(key.WithKeys("*"), key.WithHelp("*", "concat")),

		Yank:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy script")),
		Preview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "script preview")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchPane, k.PickUp, k.DropCenter, k.Disconnect, k.Preview, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SwitchPane, k.Toggle, k.ToggleAll, k.Help, k.Quit},
		{k.PickUp, k.DropCenter, k.DropAbove, k.DropBelow, k.Cancel, k.Disconnect, k.DisconnectAll},
		{k.Delete, k.Undo, k.Copy, k.Paste, k.Rename, k.SetValue, k.EditExternal},
		{k.AddChild, k.AddAbove, k.AddBelow, k.Select, k.Concat, k.Yank, k.Preview},
	}
}
