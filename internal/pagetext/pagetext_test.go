package pagetext_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/nikbrunner/sift/internal/pagetext"
)

func TestCollapse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "hello world", "hello world"},
		{"runs of whitespace", "hello \n\t  world ", "hello world"},
		{"empty", "", ""},
		{"only whitespace", "  \n\t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pagetext.Collapse(tt.in); got != tt.want {
				t.Errorf("Collapse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCollapse_Truncates(t *testing.T) {
	long := strings.Repeat("a", pagetext.MaxChars+500)
	got := pagetext.Collapse(long)
	if len(got) != pagetext.MaxChars {
		t.Errorf("len = %d, want %d", len(got), pagetext.MaxChars)
	}
}

func TestCollapse_TruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", pagetext.MaxChars+10)
	got := pagetext.Collapse(long)

	if !utf8.ValidString(got) {
		t.Error("truncation split a rune")
	}
	if n := utf8.RuneCountInString(got); n != pagetext.MaxChars {
		t.Errorf("rune count = %d, want %d", n, pagetext.MaxChars)
	}
}

func TestExtract_SkipsNonContent(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<html><head>
		<style>body { color: red }</style>
		<script>var x = 1;</script>
	</head><body>
		<h1>Title</h1>
		<noscript>enable javascript</noscript>
		<p>Some   body text.</p>
		<svg><text>icon label</text></svg>
	</body></html>`))
	if err != nil {
		t.Fatal(err)
	}

	got := pagetext.Extract(doc)

	if got != "Title Some body text." {
		t.Errorf("Extract = %q", got)
	}
}

func TestHTTPProvider_Text(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><p>Hello   page</p><script>nope()</script></body></html>`))
	}))
	defer srv.Close()

	p := pagetext.NewHTTPProvider()
	got, err := p.Text(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if got != "Hello page" {
		t.Errorf("Text = %q, want %q", got, "Hello page")
	}
}

func TestHTTPProvider_RejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	p := pagetext.NewHTTPProvider()
	if _, err := p.Text(context.Background(), srv.URL); err == nil {
		t.Error("expected error for non-HTML content type")
	}
}

func TestHTTPProvider_RejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := pagetext.NewHTTPProvider()
	if _, err := p.Text(context.Background(), srv.URL); err == nil {
		t.Error("expected error for 404 response")
	}
}
