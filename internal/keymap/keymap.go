package keymap

import (
	"strings"

	"charm.land/bubbles/v2/key"

	"github.com/andyrewlee/scrollwin/internal/config"
)

// Action identifies a configurable keybinding.
type Action string

const (
	ActionLineUp   Action = "line_up"
	ActionLineDown Action = "line_down"
	ActionHalfUp   Action = "half_page_up"
	ActionHalfDown Action = "half_page_down"
	ActionPageUp   Action = "page_up"
	ActionPageDown Action = "page_down"
	ActionTop      Action = "top"
	ActionFollow   Action = "follow"
	ActionReset    Action = "reset"
	ActionCopy     Action = "copy"
	ActionHelp     Action = "help"
	ActionQuit     Action = "quit"
)

type bindingDef struct {
	action Action
	keys   []string
	desc   string
}

var defaults = []bindingDef{
	{ActionLineUp, []string{"k", "up"}, "up"},
	{ActionLineDown, []string{"j", "down"}, "down"},
	{ActionHalfUp, []string{"ctrl+u"}, "half page up"},
	{ActionHalfDown, []string{"ctrl+d"}, "half page down"},
	{ActionPageUp, []string{"pgup", "b"}, "page up"},
	{ActionPageDown, []string{"pgdown", "space"}, "page down"},
	{ActionTop, []string{"g", "home"}, "oldest"},
	{ActionFollow, []string{"G", "end", "f"}, "follow"},
	{ActionReset, []string{"ctrl+l"}, "reset"},
	{ActionCopy, []string{"y"}, "copy window"},
	{ActionHelp, []string{"?"}, "help"},
	{ActionQuit, []string{"q", "ctrl+c"}, "quit"},
}

// KeyMap defines all keybindings for the viewer.
type KeyMap struct {
	LineUp   key.Binding
	LineDown key.Binding
	HalfUp   key.Binding
	HalfDown key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Follow   key.Binding
	Reset    key.Binding
	Copy     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// New builds a keymap from defaults, applying any user overrides.
func New(cfg config.KeyMapConfig) KeyMap {
	var km KeyMap
	for _, def := range defaults {
		*km.slot(def.action) = bindingFromDef(cfg, def)
	}
	return km
}

func (km *KeyMap) slot(action Action) *key.Binding {
	switch action {
	case ActionLineUp:
		return &km.LineUp
	case ActionLineDown:
		return &km.LineDown
	case ActionHalfUp:
		return &km.HalfUp
	case ActionHalfDown:
		return &km.HalfDown
	case ActionPageUp:
		return &km.PageUp
	case ActionPageDown:
		return &km.PageDown
	case ActionTop:
		return &km.Top
	case ActionFollow:
		return &km.Follow
	case ActionReset:
		return &km.Reset
	case ActionCopy:
		return &km.Copy
	case ActionHelp:
		return &km.Help
	case ActionQuit:
		return &km.Quit
	}
	return &key.Binding{}
}

// BindingForAction returns the binding for the given action.
func BindingForAction(km KeyMap, action Action) key.Binding {
	return *km.slot(action)
}

// Actions returns every action in display order.
func Actions() []Action {
	out := make([]Action, 0, len(defaults))
	for _, def := range defaults {
		out = append(out, def.action)
	}
	return out
}

// ShortHelp implements help.KeyMap.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.LineUp, km.LineDown, km.PageUp, km.Top, km.Follow, km.Copy, km.Help, km.Quit}
}

// FullHelp implements help.KeyMap.
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.LineUp, km.LineDown, km.HalfUp, km.HalfDown},
		{km.PageUp, km.PageDown, km.Top, km.Follow},
		{km.Reset, km.Copy, km.Help, km.Quit},
	}
}

func bindingFromDef(cfg config.KeyMapConfig, def bindingDef) key.Binding {
	keys, ok := cfg.BindingFor(string(def.action))
	if !ok || len(keys) == 0 {
		keys = def.keys
	}
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(strings.Join(keys, "/"), def.desc),
	)
}

// PrimaryKey returns the first key in the binding, if present.
func PrimaryKey(binding key.Binding) string {
	keys := binding.Keys()
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}
