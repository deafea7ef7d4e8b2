// Package webloader fetches a web page and reduces it to readable text so it
// can be ingested like any other document.
package webloader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Loader downloads pages for ingestion.
type Loader struct {
	client *http.Client
}

func NewLoader(timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Loader{
		client: &http.Client{Timeout: timeout},
	}
}

// Page is the extracted content of one URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

// IsURL reports whether the input looks like an absolute http(s) URL.
// The question box doubles as a URL box: a URL triggers ingestion instead
// of a query.
func IsURL(s string) bool {
	u, err := url.ParseRequestURI(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load fetches the URL and strips it down to title and body text.
func (l *Loader) Load(ctx context.Context, pageURL string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "docqa/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse page: %w", err)
	}

	doc.Find("script, style, noscript, nav, footer, iframe").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = pageURL
	}

	var sb strings.Builder
	doc.Find("h1, h2, h3, h4, p, li, td, pre").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	})

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		// Fall back to whatever the body holds.
		text = strings.TrimSpace(doc.Find("body").Text())
	}
	if text == "" {
		return Page{}, fmt.Errorf("no text extracted from %s", pageURL)
	}

	return Page{URL: pageURL, Title: title, Text: text}, nil
}
