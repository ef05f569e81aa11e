package render

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Tests run from web/internal/render; templates are at web/templates
func testTemplatesPath() string {
	return filepath.Join("..", "..", "templates")
}

func TestLoadTemplates(t *testing.T) {
	ts, err := LoadTemplates(testTemplatesPath())
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}

	required := []string{
		"landing.html",
		"login.html",
		"complete-profile.html",
		"activation.html",
		"dashboard.html",
		"jobs.html",
		"job.html",
		"wallet.html",
		"messages.html",
		"profile.html",
		"loading.html",
		"notfound.html",
	}
	for _, name := range required {
		if !ts.Has(name) {
			t.Errorf("required template %q not loaded (have %v)", name, ts.Names())
		}
	}
}

func TestExecuteUnknownTemplate(t *testing.T) {
	ts, err := LoadTemplates(testTemplatesPath())
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}

	var buf bytes.Buffer
	if err := ts.Execute(&buf, "no-such-page.html", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestExecuteLanding(t *testing.T) {
	ts, err := LoadTemplates(testTemplatesPath())
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}

	var buf bytes.Buffer
	data := map[string]interface{}{}
	if err := ts.Execute(&buf, "landing.html", data); err != nil {
		t.Fatalf("failed to render landing: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"<!DOCTYPE html>", "Freelance Kenya", "/login"} {
		if !strings.Contains(out, want) {
			t.Errorf("landing output missing %q", want)
		}
	}
}

func TestTemplateHelpers(t *testing.T) {
	ts, err := LoadTemplates(testTemplatesPath())
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}

	// The login page exercises the base layout and flash component
	var buf bytes.Buffer
	data := map[string]interface{}{
		"Flashes":       []string{"Invalid email or password"},
		"GoogleEnabled": true,
	}
	if err := ts.Execute(&buf, "login.html", data); err != nil {
		t.Fatalf("failed to render login: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Invalid email or password") {
		t.Error("flash message not rendered")
	}
	if !strings.Contains(out, "/auth/google") {
		t.Error("google sign-in link not rendered")
	}
}

func TestRelativeTime(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{2 * time.Minute, "2m ago"},
		{2 * time.Hour, "2h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tc := range cases {
		got := relativeTime(tc.d)
		if got != tc.want {
			t.Errorf("relativeTime(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
