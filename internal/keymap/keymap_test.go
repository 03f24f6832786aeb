package keymap

import (
	"testing"

	"github.com/andyrewlee/scrollwin/internal/config"
)

func TestNewUsesDefaults(t *testing.T) {
	km := New(config.KeyMapConfig{})
	if got := PrimaryKey(km.Follow); got != "G" {
		t.Fatalf("expected follow on G, got %q", got)
	}
	if got := km.Quit.Help().Key; got != "q/ctrl+c" {
		t.Fatalf("unexpected quit help key %q", got)
	}
	for _, action := range Actions() {
		if len(BindingForAction(km, action).Keys()) == 0 {
			t.Errorf("action %s has no keys", action)
		}
	}
}

func TestNewAppliesOverrides(t *testing.T) {
	km := New(config.KeyMapConfig{Bindings: map[string][]string{
		"follow": {"F"},
		"copy":   {},
	}})
	if keys := km.Follow.Keys(); len(keys) != 1 || keys[0] != "F" {
		t.Fatalf("expected override F, got %v", keys)
	}
	if got := PrimaryKey(km.Copy); got != "y" {
		t.Fatalf("expected empty override to keep default, got %q", got)
	}
}

func TestHelpCoversEveryAction(t *testing.T) {
	km := New(config.KeyMapConfig{})
	seen := map[string]bool{}
	for _, group := range km.FullHelp() {
		for _, b := range group {
			seen[b.Help().Desc] = true
		}
	}
	if len(seen) != len(Actions()) {
		t.Fatalf("expected %d help entries, got %d", len(Actions()), len(seen))
	}
}

func TestUnknownActionIsEmpty(t *testing.T) {
	km := New(config.KeyMapConfig{})
	if len(BindingForAction(km, Action("nope")).Keys()) != 0 {
		t.Fatal("expected empty binding for unknown action")
	}
}
