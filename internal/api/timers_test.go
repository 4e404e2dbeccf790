package api

import (
	"net/http"
	"testing"
)

func TestDefaultPresets_Public(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/timers/presets/default", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("default presets status = %d", resp.StatusCode)
	}

	var out struct {
		Presets []struct {
			ID              string `json:"id"`
			DurationSeconds int    `json:"duration_seconds"`
		} `json:"presets"`
	}
	decode(t, resp, &out)
	if len(out.Presets) == 0 {
		t.Fatal("expected built-in presets")
	}
	for _, p := range out.Presets {
		if p.ID == "" || p.DurationSeconds <= 0 {
			t.Errorf("malformed preset: %+v", p)
		}
	}
}

func TestTimerEmbed(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/timers/embed?duration=600&theme=dark&autostart=1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("embed status = %d", resp.StatusCode)
	}
	var out struct {
		DurationSeconds int    `json:"duration_seconds"`
		Theme           string `json:"theme"`
		AutoStart       bool   `json:"auto_start"`
	}
	decode(t, resp, &out)
	if out.DurationSeconds != 600 || out.Theme != "dark" || !out.AutoStart {
		t.Errorf("embed config = %+v", out)
	}

	// Defaults apply with no parameters.
	plain := env.do(t, http.MethodGet, "/api/v1/timers/embed", "", nil)
	decode(t, requireOK(t, plain), &out)
	if out.DurationSeconds != 300 || out.Theme != "light" || out.AutoStart {
		t.Errorf("default embed config = %+v", out)
	}

	// Bad parameters are rejected.
	for _, q := range []string{"?duration=0", "?duration=abc", "?duration=999999", "?theme=neon"} {
		bad := env.do(t, http.MethodGet, "/api/v1/timers/embed"+q, "", nil)
		if bad.StatusCode != http.StatusBadRequest {
			t.Errorf("embed%s status = %d, want 400", q, bad.StatusCode)
		}
	}
}

func TestPresets_CRUD(t *testing.T) {
	env := newTestEnv(t)
	pair, _ := env.registerAndLogin(t, "teacher@school.edu")

	resp := env.do(t, http.MethodPost, "/api/v1/timers/presets/", pair.AccessToken, map[string]any{
		"name":             "Exit Ticket",
		"duration_seconds": 180,
		"theme":            "dark",
		"sound":            "chime",
		"auto_start":       true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create preset status = %d, body = %s", resp.StatusCode, readBody(t, resp))
	}
	var preset struct {
		ID    string `json:"id"`
		Theme string `json:"theme"`
	}
	decode(t, resp, &preset)
	if preset.Theme != "dark" {
		t.Errorf("theme = %q", preset.Theme)
	}

	list := env.do(t, http.MethodGet, "/api/v1/timers/presets/", pair.AccessToken, nil)
	var listed struct {
		Presets []any `json:"presets"`
	}
	decode(t, requireOK(t, list), &listed)
	if len(listed.Presets) != 1 {
		t.Errorf("list has %d presets, want 1", len(listed.Presets))
	}

	del := env.do(t, http.MethodDelete, "/api/v1/timers/presets/"+preset.ID, pair.AccessToken, nil)
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", del.StatusCode)
	}

	// Invalid presets are rejected.
	bad := env.do(t, http.MethodPost, "/api/v1/timers/presets/", pair.AccessToken, map[string]any{
		"name":             "Blink",
		"duration_seconds": 1,
	})
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid preset status = %d, want 400", bad.StatusCode)
	}
}

func TestPresets_TenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.registerAndLogin(t, "alice@school.edu")
	bob, _ := env.registerAndLogin(t, "bob@school.edu")

	resp := env.do(t, http.MethodPost, "/api/v1/timers/presets/", alice.AccessToken, map[string]any{
		"name":             "Alice's Timer",
		"duration_seconds": 300,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create preset status = %d", resp.StatusCode)
	}
	var preset struct {
		ID string `json:"id"`
	}
	decode(t, resp, &preset)

	del := env.do(t, http.MethodDelete, "/api/v1/timers/presets/"+preset.ID, bob.AccessToken, nil)
	if del.StatusCode != http.StatusNotFound {
		t.Errorf("cross-tenant delete status = %d, want 404", del.StatusCode)
	}
}
