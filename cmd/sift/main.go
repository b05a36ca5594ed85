package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/sift/internal/ai"
	"github.com/nikbrunner/sift/internal/app"
	"github.com/nikbrunner/sift/internal/kv"
	"github.com/nikbrunner/sift/internal/model"
	"github.com/nikbrunner/sift/internal/pagetext"
	"github.com/nikbrunner/sift/internal/search"
	"github.com/nikbrunner/sift/internal/source"
	"github.com/nikbrunner/sift/internal/tui"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "scan":
			runScan()
			return
		case "add":
			if len(os.Args) < 3 {
				fmt.Fprintf(os.Stderr, "Usage: sift add <url> [title]\n")
				os.Exit(1)
			}
			title := ""
			if len(os.Args) >= 4 {
				title = strings.Join(os.Args[3:], " ")
			}
			runAdd(os.Args[2], title)
			return
		case "export":
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			runExport(outputPath)
			return
		case "reset":
			runReset()
			return
		default:
			// Treat as search query (join all remaining args)
			query := strings.Join(os.Args[1:], " ")
			runQuickSearch(query)
			return
		}
	}

	// No args - run full TUI
	runTUI()
}

func printHelp() {
	help := `sift - AI bookmark triage

Usage:
  sift                  Open interactive TUI
  sift <query>          Quick search → print matches
  sift scan             Classify all pending bookmarks
  sift add <url> [t]    Bookmark and classify a page
  sift export [path]    Export analyzed bookmarks as JSON
  sift reset            Clear cached analysis and categories
  sift help             Show this help

TUI Keybindings:
  j/k         Move down/up
  h/l         Previous/next category pill
  v           Cycle viewed filter (all/unviewed/viewed)
  /           Search title, summary, URL
  o           Toggle sort order

  s           Scan new bookmarks
  i           Toggle important
  m           Toggle viewed
  Y           Copy URL to clipboard
  d           Delete bookmark
  e           Export JSON
  +/-         Add / remove category
  t           Toggle theme
  q           Quit

Environment:
  SIFT_DB           Bookmark database path (default ~/.config/sift/bookmarks.db)
  SIFT_DATA_DIR     Cache/taxonomy directory (default ~/.config/sift/data)
  SIFT_OLLAMA_HOST  Ollama server (default http://localhost:11434)
  SIFT_MODEL        Model name (default llama3.2:3b)
`
	fmt.Print(help)
}

// buildApp wires the capabilities into a controller.
func buildApp() (*app.App, func()) {
	dbPath := os.Getenv("SIFT_DB")
	if dbPath == "" {
		var err error
		dbPath, err = source.DefaultSQLitePath()
		if err != nil {
			fatal("Error getting database path", err)
		}
	}

	dataDir := os.Getenv("SIFT_DATA_DIR")
	if dataDir == "" {
		var err error
		dataDir, err = kv.DefaultDataDir()
		if err != nil {
			fatal("Error getting data directory", err)
		}
	}

	store, err := kv.OpenDiskv(dataDir)
	if err != nil {
		fatal("Error opening data store", err)
	}

	src, err := source.NewSQLiteSource(dbPath)
	if err != nil {
		fatal("Error opening bookmark database", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	a := app.New(app.Params{
		KV:         store,
		Source:     src,
		Classifier: ai.NewOllama(os.Getenv("SIFT_OLLAMA_HOST"), os.Getenv("SIFT_MODEL")),
		Pages:      pagetext.NewHTTPProvider(),
		Logger:     logger,
	})

	return a, func() { _ = src.Close() }
}

// runTUI runs the full interactive TUI.
func runTUI() {
	a, closeApp := buildApp()
	defer closeApp()

	if err := a.Load(context.Background()); err != nil {
		fatal("Error loading bookmarks", err)
	}

	program := tea.NewProgram(tui.NewApp(tui.AppParams{App: a}), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fatal("Error running app", err)
	}
}

// runScan classifies all pending bookmarks without the TUI.
func runScan() {
	a, closeApp := buildApp()
	defer closeApp()

	ctx := context.Background()
	if err := a.Load(ctx); err != nil {
		fatal("Error loading bookmarks", err)
	}

	pending := a.PendingCount()
	if pending == 0 {
		fmt.Println("All bookmarks scanned!")
		return
	}

	fmt.Printf("Scanning %d new bookmarks...\n", pending)
	err := a.Scan(ctx, app.ScanParams{
		Progress: func(done, total int) {
			fmt.Printf("\rAnalyzing new items: %d / %d", done, total)
		},
	})
	fmt.Println()
	if err != nil {
		fatal("Scan failed", err)
	}
	fmt.Println("Done.")
}

// runAdd bookmarks a page and classifies it immediately.
func runAdd(url, title string) {
	a, closeApp := buildApp()
	defer closeApp()

	ctx := context.Background()
	if err := a.Load(ctx); err != nil {
		fatal("Error loading bookmarks", err)
	}

	if err := a.AddPage(ctx, title, url); err != nil {
		fatal("Error adding bookmark", err)
	}

	items := a.Items()
	fmt.Printf("Bookmarked and analyzed: %s\n", url)
	if len(items) > 0 && items[0].URL == url {
		fmt.Printf("  %s — %s\n", strings.Join(items[0].Categories, ", "), items[0].Summary)
	}
}

// runExport writes the analyzed working set as JSON.
func runExport(outputPath string) {
	if outputPath == "" {
		outputPath = app.ExportFilename
	}

	a, closeApp := buildApp()
	defer closeApp()

	if err := a.Load(context.Background()); err != nil {
		fatal("Error loading bookmarks", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		fatal("Error creating file", err)
	}
	defer f.Close()

	if err := a.ExportJSON(f); err != nil {
		fatal("Error exporting", err)
	}
	fmt.Printf("Exported %d bookmarks to %s\n", len(a.Items()), outputPath)
}

// runReset clears cached analysis and the category list.
func runReset() {
	a, closeApp := buildApp()
	defer closeApp()

	if err := a.Reset(); err != nil {
		fatal("Error resetting", err)
	}
	fmt.Println("Cleared cached analysis and categories. Bookmarks will be re-scanned.")
}

// runQuickSearch performs a fuzzy search and prints matching bookmarks.
func runQuickSearch(query string) {
	a, closeApp := buildApp()
	defer closeApp()

	if err := a.Load(context.Background()); err != nil {
		fatal("Error loading bookmarks", err)
	}

	results := search.FuzzySearchItems(a.Items(), query)
	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		return
	}

	for _, r := range results {
		printItem(*r.Item)
	}

	if len(results) == 1 {
		openURL(results[0].Item.URL)
	}
}

func printItem(item model.Item) {
	title := item.Title
	if title == "" {
		title = item.URL
	}
	fmt.Printf("%s\n  %s\n  %s\n", title, item.URL, item.Summary)
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
