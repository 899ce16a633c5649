package database

import (
	"context"
	"testing"
	"time"

	"github.com/docscrape/docscrape/internal/config"
	"github.com/docscrape/docscrape/internal/model"
)

func testSource() *config.Source {
	return &config.Source{
		Name:     "pytest",
		BaseURL:  "https://docs.pytest.org",
		IndexURL: "https://docs.pytest.org/reference.html",
		Version:  "8.0",
	}
}

func testEntries() []model.Entry {
	return []model.Entry{
		{
			ID:   "pytest",
			Type: model.TypeModule,
			Name: "pytest",
			Source: model.Provenance{
				ConfigName:    "pytest",
				URL:           "https://docs.pytest.org/reference.html#pytest",
				NormalizedURL: "https://docs.pytest.org/reference.html",
			},
			Examples: []model.Example{},
			Children: []string{"pytest.fixture"},
		},
		{
			ID:       "pytest.fixture",
			Type:     model.TypeFunction,
			Name:     "fixture",
			Parent:   "pytest",
			Examples: []model.Example{{Code: "@pytest.fixture", Language: "python"}},
		},
	}
}

func openTestDB(t *testing.T) *EntryDB {
	t.Helper()

	edb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = edb.Close() })
	return edb
}

// TestOpenRequiresExisting verifies CreateIfNotExists=false rejects a
// missing database.
func TestOpenRequiresExisting(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
	if err == nil {
		t.Fatal("expected error for missing database")
	}
}

// TestSaveCrawlRoundTrip verifies entries survive persistence intact.
func TestSaveCrawlRoundTrip(t *testing.T) {
	t.Parallel()

	edb := openTestDB(t)
	ctx := context.Background()

	crawlID, err := edb.SaveCrawl(ctx, testSource(), testEntries(), 12, false)
	if err != nil {
		t.Fatalf("save crawl: %v", err)
	}
	if crawlID == 0 {
		t.Fatal("crawl id not assigned")
	}

	entry, err := edb.GetEntry(ctx, crawlID, "pytest.fixture")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if entry == nil {
		t.Fatal("entry not found")
	}
	if entry.Name != "fixture" || entry.Parent != "pytest" {
		t.Errorf("entry = %+v", entry)
	}
	if len(entry.Examples) != 1 || entry.Examples[0].Language != "python" {
		t.Errorf("examples = %+v", entry.Examples)
	}

	missing, err := edb.GetEntry(ctx, crawlID, "pytest.absent")
	if err != nil {
		t.Fatalf("get missing entry: %v", err)
	}
	if missing != nil {
		t.Errorf("missing entry = %+v, want nil", missing)
	}
}

// TestEntriesByType verifies type filtering within a crawl.
func TestEntriesByType(t *testing.T) {
	t.Parallel()

	edb := openTestDB(t)
	ctx := context.Background()

	crawlID, err := edb.SaveCrawl(ctx, testSource(), testEntries(), 12, false)
	if err != nil {
		t.Fatalf("save crawl: %v", err)
	}

	functions, err := edb.EntriesByType(ctx, crawlID, model.TypeFunction)
	if err != nil {
		t.Fatalf("entries by type: %v", err)
	}
	if len(functions) != 1 || functions[0].ID != "pytest.fixture" {
		t.Errorf("functions = %+v", functions)
	}

	classes, err := edb.EntriesByType(ctx, crawlID, model.TypeClass)
	if err != nil {
		t.Fatalf("entries by type: %v", err)
	}
	if len(classes) != 0 {
		t.Errorf("classes = %+v, want none", classes)
	}
}

// TestListCrawls verifies metadata listing, newest first.
func TestListCrawls(t *testing.T) {
	t.Parallel()

	edb := openTestDB(t)
	ctx := context.Background()

	if _, err := edb.SaveCrawl(ctx, testSource(), testEntries(), 12, false); err != nil {
		t.Fatalf("save crawl 1: %v", err)
	}
	second, err := edb.SaveCrawl(ctx, testSource(), testEntries()[:1], 3, true)
	if err != nil {
		t.Fatalf("save crawl 2: %v", err)
	}

	crawls, err := edb.ListCrawls(ctx, "pytest")
	if err != nil {
		t.Fatalf("list crawls: %v", err)
	}
	if len(crawls) != 2 {
		t.Fatalf("crawls = %d, want 2", len(crawls))
	}
	if crawls[0].ID != second {
		t.Errorf("newest crawl id = %d, want %d", crawls[0].ID, second)
	}
	if !crawls[0].Interrupted || crawls[0].EntryCount != 1 || crawls[0].PagesVisited != 3 {
		t.Errorf("metadata = %+v", crawls[0])
	}

	none, err := edb.ListCrawls(ctx, "unknown")
	if err != nil {
		t.Fatalf("list crawls: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("crawls = %+v, want none", none)
	}
}

// TestLatestEntries verifies the most recent crawl wins.
func TestLatestEntries(t *testing.T) {
	t.Parallel()

	edb := openTestDB(t)
	ctx := context.Background()

	if _, err := edb.SaveCrawl(ctx, testSource(), testEntries(), 12, false); err != nil {
		t.Fatalf("save crawl 1: %v", err)
	}
	if _, err := edb.SaveCrawl(ctx, testSource(), testEntries()[:1], 3, false); err != nil {
		t.Fatalf("save crawl 2: %v", err)
	}

	entries, err := edb.LatestEntries(ctx, "pytest")
	if err != nil {
		t.Fatalf("latest entries: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "pytest" {
		t.Errorf("entries = %+v", entries)
	}

	absent, err := edb.LatestEntries(ctx, "unknown")
	if err != nil {
		t.Fatalf("latest entries: %v", err)
	}
	if absent != nil {
		t.Errorf("entries = %+v, want nil", absent)
	}
}

// TestListSources verifies distinct source listing.
func TestListSources(t *testing.T) {
	t.Parallel()

	edb := openTestDB(t)
	ctx := context.Background()

	other := testSource()
	other.Name = "mkdocs"

	if _, err := edb.SaveCrawl(ctx, testSource(), nil, 0, false); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := edb.SaveCrawl(ctx, other, nil, 0, false); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := edb.SaveCrawl(ctx, testSource(), nil, 0, false); err != nil {
		t.Fatalf("save: %v", err)
	}

	sources, err := edb.ListSources(ctx)
	if err != nil {
		t.Fatalf("list sources: %v", err)
	}
	if len(sources) != 2 || sources[0] != "mkdocs" || sources[1] != "pytest" {
		t.Errorf("sources = %v", sources)
	}
}

// TestParseTimestamp tests the SQLite timestamp format fallbacks.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "sqlite default",
			input: "2025-06-01 12:30:45",
			want:  time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC),
		},
		{
			name:  "iso with z",
			input: "2025-06-01T12:30:45Z",
			want:  time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC),
		},
		{
			name:  "unparseable",
			input: "not a time",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
