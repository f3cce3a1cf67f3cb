package main

import (
	"html/template"
	"strings"
)

// initial is the avatar letter shown for a user with no profile picture.
func initial(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// mediaURL resolves the relative attachment paths the feed returns against
// the platform's media host. Absolute URLs pass through untouched.
func mediaURL(base string) func(string) string {
	base = strings.TrimRight(base, "/")
	return func(path string) string {
		if path == "" {
			return ""
		}
		if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
			return path
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return base + path
	}
}

func loadTemplates(mediaBaseURL string) map[string]*template.Template {
	templates := make(map[string]*template.Template)
	pages := []string{"login.html", "dashboard.html", "user.html"}

	funcs := template.FuncMap{
		"initial":  initial,
		"mediaURL": mediaURL(mediaBaseURL),
	}

	for _, page := range pages {
		templates[page] = template.Must(
			template.New("").Funcs(funcs).ParseFiles(
				"templates/base.html",
				"templates/"+page,
			))
	}

	return templates
}
