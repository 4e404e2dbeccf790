// Package timer provides classroom countdown timer presets.
//
// Built-in presets are available without authentication so the timer can be
// embedded in shared displays. Saved presets are per-tenant like every other
// resource.
package timer

import (
	"errors"
	"time"
)

// Duration bounds for presets and embed requests, in seconds.
const (
	MinDurationSeconds = 5
	MaxDurationSeconds = 4 * 60 * 60
)

// Themes the timer UI understands.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ErrPresetNotFound is returned for absent or cross-tenant presets.
var ErrPresetNotFound = errors.New("preset not found")

// Preset is a saved timer configuration.
type Preset struct {
	ID              string    `json:"id"`
	TenantID        string    `json:"-"` // scoping only, never serialised
	CreatedBy       string    `json:"-"`
	Name            string    `json:"name"`
	DurationSeconds int       `json:"duration_seconds"`
	Theme           string    `json:"theme"`
	Sound           string    `json:"sound,omitempty"`
	AutoStart       bool      `json:"auto_start"`
	CreatedAt       time.Time `json:"created_at"`
}

// Valid reports whether the preset is well-formed.
func (p Preset) Valid() bool {
	return p.Name != "" &&
		p.DurationSeconds >= MinDurationSeconds &&
		p.DurationSeconds <= MaxDurationSeconds &&
		(p.Theme == ThemeLight || p.Theme == ThemeDark)
}

// DefaultPresets are the built-in timers served without authentication.
// IDs are stable so embedding clients can reference them.
func DefaultPresets() []Preset {
	return []Preset{
		{ID: "default-5min", Name: "Quick Activity", DurationSeconds: 5 * 60, Theme: ThemeLight},
		{ID: "default-10min", Name: "Group Work", DurationSeconds: 10 * 60, Theme: ThemeLight},
		{ID: "default-15min", Name: "Independent Reading", DurationSeconds: 15 * 60, Theme: ThemeLight},
		{ID: "default-pomodoro", Name: "Pomodoro", DurationSeconds: 25 * 60, Theme: ThemeDark, Sound: "bell"},
	}
}
