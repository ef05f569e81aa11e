package render

import (
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/freelancekenya/kazi/internal/api"
)

// TemplateSet holds all parsed page templates.
// Each page is stored as a completely separate template.Template
// to avoid {{define "content"}} block collisions.
type TemplateSet struct {
	pages map[string]*template.Template
	mu    sync.RWMutex
}

// Execute renders the specified page template.
// pageName should be the filename like "dashboard.html".
// This method always executes the "base" layout, which will use the
// {{define "content"}}, {{define "title"}}, etc. blocks from the specific page.
func (ts *TemplateSet) Execute(w io.Writer, pageName string, data interface{}) error {
	ts.mu.RLock()
	tmpl, ok := ts.pages[pageName]
	ts.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", pageName)
	}

	return tmpl.ExecuteTemplate(w, "base", data)
}

// Has checks if a template exists
func (ts *TemplateSet) Has(pageName string) bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	_, ok := ts.pages[pageName]
	return ok
}

// Names returns all available template names
func (ts *TemplateSet) Names() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	names := make([]string, 0, len(ts.pages))
	for name := range ts.pages {
		names = append(names, name)
	}
	return names
}

// LoadTemplates parses and loads all HTML templates with custom functions.
// If path is empty, defaults to "web/templates".
// Returns a TemplateSet where each page is completely isolated.
func LoadTemplates(path string) (*TemplateSet, error) {
	if path == "" {
		path = "web/templates"
	}

	funcMap := template.FuncMap{
		"renderMarkdown": Markdown,
		"ksh": func(amount float64) string {
			return "KSh " + strconv.FormatFloat(amount, 'f', 2, 64)
		},
		"stars": func(rating interface{}) string {
			var r float64
			switch v := rating.(type) {
			case float64:
				r = v
			case int:
				r = float64(v)
			}
			full := int(r + 0.5)
			if full > 5 {
				full = 5
			}
			return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
		},
		"timeago": func(timestamp string) string {
			t := api.ParseTimestamp(timestamp)
			if t.IsZero() {
				return ""
			}
			return relativeTime(time.Since(t))
		},
		"date": func(timestamp string) string {
			t := api.ParseTimestamp(timestamp)
			if t.IsZero() {
				return ""
			}
			return t.Format("2 Jan 2006")
		},
		"initials": func(name string) string {
			words := strings.Fields(name)
			if len(words) == 0 {
				return "?"
			}

			var result strings.Builder
			for i, word := range words {
				if i >= 2 { // Maximum of 2 initials
					break
				}
				result.WriteString(strings.ToUpper(string(word[0])))
			}
			return result.String()
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"title": func(s string) string {
			if s == "" {
				return ""
			}
			return strings.ToUpper(string(s[0])) + strings.ToLower(s[1:])
		},
		"assetURL": func(filename string) string {
			return "/static/" + filename
		},
	}

	baseFile := filepath.Join(path, "layouts", "base.html")
	componentFiles, err := filepath.Glob(filepath.Join(path, "components", "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list component templates: %w", err)
	}

	pageFiles, err := filepath.Glob(filepath.Join(path, "pages", "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list page templates: %w", err)
	}

	if len(pageFiles) == 0 {
		return nil, fmt.Errorf("no page templates found in %s/pages", path)
	}

	ts := &TemplateSet{
		pages: make(map[string]*template.Template),
	}

	// Parse each page into its OWN completely isolated template
	for _, pageFile := range pageFiles {
		pageName := filepath.Base(pageFile)

		filesToParse := []string{baseFile}
		filesToParse = append(filesToParse, componentFiles...)
		filesToParse = append(filesToParse, pageFile)

		pageTemplate, err := template.New("base").Funcs(funcMap).ParseFiles(filesToParse...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", pageName, err)
		}

		ts.pages[pageName] = pageTemplate
	}

	return ts, nil
}

// relativeTime renders a duration as a short "ago" phrase
func relativeTime(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
