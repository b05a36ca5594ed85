// Package pagetext fetches and flattens page content used to enrich
// classification prompts. Failures here are never fatal; callers proceed
// without enrichment.
package pagetext

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// MaxChars caps the extracted text handed to the classifier.
const MaxChars = 4000

// Provider returns page text for a URL.
type Provider interface {
	Text(ctx context.Context, url string) (string, error)
}

// HTTPProvider fetches pages over HTTP and extracts their visible text.
type HTTPProvider struct {
	httpClient *http.Client
}

// NewHTTPProvider creates a provider with a bounded request timeout.
func NewHTTPProvider() *HTTPProvider {
	return &HTTPProvider{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Text fetches url and returns its whitespace-collapsed visible text,
// truncated to MaxChars.
func (p *HTTPProvider) Text(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "text/html") {
		return "", fmt.Errorf("fetch page: unsupported content type %q", ct)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	return Extract(doc), nil
}

// Extract flattens a parsed document into collapsed text, skipping
// non-content elements, truncated to MaxChars.
func Extract(doc *html.Node) string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "script", "style", "noscript", "template", "svg":
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return Collapse(sb.String())
}

// Collapse trims text to single spaces and at most MaxChars runes.
func Collapse(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if runes := []rune(collapsed); len(runes) > MaxChars {
		collapsed = string(runes[:MaxChars])
	}
	return collapsed
}
