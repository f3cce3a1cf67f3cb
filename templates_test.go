package main

import "testing"

func TestLoadTemplates(t *testing.T) {
	templates := loadTemplates("http://media.test")

	for _, page := range []string{"login.html", "dashboard.html", "user.html"} {
		if templates[page] == nil {
			t.Errorf("expected template %s to load", page)
		}
	}
}

func TestInitial(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"asha", "A"},
		{"Ben", "B"},
		{"éclair", "É"},
		{"", "?"},
	}

	for _, tt := range tests {
		if got := initial(tt.name); got != tt.want {
			t.Errorf("initial(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestMediaURL(t *testing.T) {
	resolve := mediaURL("http://media.test/")

	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"/uploads/a.jpg", "http://media.test/uploads/a.jpg"},
		{"uploads/a.jpg", "http://media.test/uploads/a.jpg"},
		{"https://cdn.test/a.jpg", "https://cdn.test/a.jpg"},
	}

	for _, tt := range tests {
		if got := resolve(tt.path); got != tt.want {
			t.Errorf("mediaURL(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
