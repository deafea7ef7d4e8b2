package webloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestIsURL(t *testing.T) {
	valid := []string{
		"https://example.com",
		"http://example.com/page?x=1",
		"  https://example.com/docs  ",
	}
	for _, s := range valid {
		if !IsURL(s) {
			t.Errorf("IsURL(%q) = false, want true", s)
		}
	}

	invalid := []string{
		"",
		"what is a url",
		"ftp://example.com",
		"example.com",
		"https://",
	}
	for _, s := range invalid {
		if IsURL(s) {
			t.Errorf("IsURL(%q) = true, want false", s)
		}
	}
}

func TestLoadExtractsTextAndTitle(t *testing.T) {
	const page = `<html><head><title>Release Notes</title>
<script>var noise = 1;</script></head>
<body><nav>menu</nav><h1>Version 2</h1><p>Faster indexing.</p></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	l := NewLoader(5 * time.Second)
	got, err := l.Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	if got.Title != "Release Notes" {
		t.Errorf("Title = %q", got.Title)
	}
	if !strings.Contains(got.Text, "Faster indexing.") {
		t.Errorf("body text missing: %q", got.Text)
	}
	if strings.Contains(got.Text, "noise") {
		t.Errorf("script content leaked into text: %q", got.Text)
	}
	if strings.Contains(got.Text, "menu") {
		t.Errorf("nav content leaked into text: %q", got.Text)
	}
}

func TestLoadRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	l := NewLoader(5 * time.Second)
	if _, err := l.Load(context.Background(), srv.URL); err == nil {
		t.Error("expected error for 404 response")
	}
}
