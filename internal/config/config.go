package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// KeyMapConfig holds user overrides for keybindings.
type KeyMapConfig struct {
	Bindings map[string][]string `json:"bindings,omitempty"`
}

// BindingFor returns the configured keys for an action, if present.
func (k KeyMapConfig) BindingFor(action string) ([]string, bool) {
	if len(k.Bindings) == 0 {
		return nil, false
	}
	if keys, ok := k.Bindings[action]; ok {
		return keys, true
	}
	if keys, ok := k.Bindings[strings.ToLower(action)]; ok {
		return keys, true
	}
	return nil, false
}

// WindowConfig tunes the virtualized line window.
type WindowConfig struct {
	VisibleCount    int  // lines kept materialized in steady state
	ExpandDistance  int  // geometry units from an edge that trigger growth
	StickyThreshold int  // geometry units from the bottom that count as the tail
	RowHeight       int  // geometry units per terminal row
	Follow          bool // start in follow mode
}

// HistoryConfig bounds the retained line buffer.
type HistoryConfig struct {
	MaxLines int // 0 keeps everything
}

// Config holds the application configuration
type Config struct {
	Paths         *Paths
	Window        WindowConfig
	History       HistoryConfig
	FrameInterval time.Duration
	TailBytes     int64 // bytes of an existing file to show on start; <0 reads it all
	LogLevel      string
	KeyMap        KeyMapConfig
	UI            UISettings
}

// DefaultConfig returns the default configuration
func DefaultConfig() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return defaultsWithPaths(paths), nil
}

func defaultsWithPaths(paths *Paths) *Config {
	return &Config{
		Paths: paths,
		Window: WindowConfig{
			VisibleCount:    50,
			ExpandDistance:  200,
			StickyThreshold: 10,
			RowHeight:       16,
			Follow:          true,
		},
		History: HistoryConfig{
			MaxLines: 100_000,
		},
		FrameInterval: 16 * time.Millisecond,
		TailBytes:     64 * 1024,
		LogLevel:      "info",
		KeyMap:        KeyMapConfig{},
		UI:            defaultUISettings(),
	}
}

type fileConfig struct {
	Window struct {
		VisibleCount    *int  `json:"visible_count"`
		ExpandDistance  *int  `json:"expand_distance"`
		StickyThreshold *int  `json:"sticky_threshold"`
		RowHeight       *int  `json:"row_height"`
		Follow          *bool `json:"follow"`
	} `json:"window"`
	History struct {
		MaxLines *int `json:"max_lines"`
	} `json:"history"`
	FrameIntervalMs *int         `json:"frame_interval_ms"`
	TailBytes       *int64       `json:"tail_bytes"`
	LogLevel        *string      `json:"log_level"`
	KeyMap          KeyMapConfig `json:"keymap,omitempty"`
}

// Load loads config overrides from the config file if present.
func Load() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return LoadFrom(paths)
}

// LoadFrom loads defaults and overlays paths.ConfigPath.
func LoadFrom(paths *Paths) (*Config, error) {
	cfg := defaultsWithPaths(paths)

	data, err := os.ReadFile(paths.ConfigPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", paths.ConfigPath, err)
	}
	cfg.apply(raw)
	cfg.UI = loadUISettings(paths.ConfigPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", paths.ConfigPath, err)
	}
	return cfg, nil
}

func (c *Config) apply(raw fileConfig) {
	if v := raw.Window.VisibleCount; v != nil {
		c.Window.VisibleCount = *v
	}
	if v := raw.Window.ExpandDistance; v != nil {
		c.Window.ExpandDistance = *v
	}
	if v := raw.Window.StickyThreshold; v != nil {
		c.Window.StickyThreshold = *v
	}
	if v := raw.Window.RowHeight; v != nil {
		c.Window.RowHeight = *v
	}
	if v := raw.Window.Follow; v != nil {
		c.Window.Follow = *v
	}
	if v := raw.History.MaxLines; v != nil {
		c.History.MaxLines = *v
	}
	if v := raw.FrameIntervalMs; v != nil {
		c.FrameInterval = time.Duration(*v) * time.Millisecond
	}
	if v := raw.TailBytes; v != nil {
		c.TailBytes = *v
	}
	if v := raw.LogLevel; v != nil {
		c.LogLevel = *v
	}
	if len(raw.KeyMap.Bindings) > 0 {
		c.KeyMap = raw.KeyMap
	}
}

// Validate rejects settings the window cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.VisibleCount <= 0 {
		errs = append(errs, fmt.Errorf("window.visible_count must be positive, got %d", c.Window.VisibleCount))
	}
	if c.Window.ExpandDistance <= 0 {
		errs = append(errs, fmt.Errorf("window.expand_distance must be positive, got %d", c.Window.ExpandDistance))
	}
	if c.Window.StickyThreshold <= 0 {
		errs = append(errs, fmt.Errorf("window.sticky_threshold must be positive, got %d", c.Window.StickyThreshold))
	}
	if c.Window.RowHeight <= 0 {
		errs = append(errs, fmt.Errorf("window.row_height must be positive, got %d", c.Window.RowHeight))
	}
	if c.History.MaxLines < 0 {
		errs = append(errs, fmt.Errorf("history.max_lines must not be negative, got %d", c.History.MaxLines))
	}
	if c.History.MaxLines > 0 && c.History.MaxLines < 2*c.Window.VisibleCount {
		errs = append(errs, fmt.Errorf("history.max_lines (%d) must hold at least two windows (%d)",
			c.History.MaxLines, 2*c.Window.VisibleCount))
	}
	if c.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("frame_interval_ms must be positive"))
	}
	return errors.Join(errs...)
}

// Effective returns the settings as the JSON document Load understands.
func (c *Config) Effective() ([]byte, error) {
	doc := map[string]any{
		"window": map[string]any{
			"visible_count":    c.Window.VisibleCount,
			"expand_distance":  c.Window.ExpandDistance,
			"sticky_threshold": c.Window.StickyThreshold,
			"row_height":       c.Window.RowHeight,
			"follow":           c.Window.Follow,
		},
		"history": map[string]any{
			"max_lines": c.History.MaxLines,
		},
		"frame_interval_ms": c.FrameInterval.Milliseconds(),
		"tail_bytes":        c.TailBytes,
		"log_level":         c.LogLevel,
		"ui": map[string]any{
			"show_help": c.UI.ShowHelp,
		},
	}
	if len(c.KeyMap.Bindings) > 0 {
		doc["keymap"] = c.KeyMap
	}
	return json.MarshalIndent(doc, "", "  ")
}
