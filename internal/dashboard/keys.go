package dashboard

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Switch   key.Binding
	Advance  key.Binding
	Cancel   key.Binding
	Delete   key.Binding
	Confirm  key.Binding
	Abort    key.Binding
	NewOrder key.Binding
	Refresh  key.Binding
	Dismiss  key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Switch:   key.NewBinding(key.WithKeys("tab", "left", "right", "h", "l"), key.WithHelp("tab", "switch section")),
		Advance:  key.NewBinding(key.WithKeys("enter", "a"), key.WithHelp("enter", "advance")),
		Cancel:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cancel order")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Confirm:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Abort:    key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "keep")),
		NewOrder: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new order")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss error")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) boardHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Switch, k.Advance, k.Cancel, k.Delete, k.NewOrder, k.Refresh, k.Dismiss, k.Quit}
}

func (k keyMap) confirmHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Abort}
}

type formKeyMap struct {
	Next       key.Binding
	Prev       key.Binding
	AddItem    key.Binding
	RemoveItem key.Binding
	Toggle     key.Binding
	Submit     key.Binding
	Close      key.Binding
}

func defaultFormKeyMap() formKeyMap {
	return formKeyMap{
		Next:       key.NewBinding(key.WithKeys("tab", "down", "enter"), key.WithHelp("tab", "next field")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
		AddItem:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "add item")),
		RemoveItem: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "remove item")),
		Toggle:     key.NewBinding(key.WithKeys("left", "right", " "), key.WithHelp("←/→/space", "change")),
		Submit:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "create order")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

func (k formKeyMap) help() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.AddItem, k.RemoveItem, k.Toggle, k.Submit, k.Close}
}
