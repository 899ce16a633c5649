package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docscrape/docscrape/internal/config"
	"github.com/docscrape/docscrape/internal/database"
)

// NewHistoryCmd creates the history command.
// This command inspects crawls stored in the entry database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [source-name]",
		Short: "Show stored crawl history",
		Long: `History lists crawls persisted with 'docscrape crawl --db'.

Without arguments it lists every stored crawl, newest first. With a
source name it restricts the listing to that source.

Examples:
  # List all stored crawls
  docscrape history

  # List crawls for one source
  docscrape history pytest

  # List the source names with stored crawls
  docscrape history --list-sources

  # Show the entry identifiers from the latest crawl of a source
  docscrape history --entries pytest`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-sources", "L", false,
		"List all source names with stored crawls")
	cmd.Flags().BoolP("entries", "e", false,
		"Show entries from the most recent crawl of the specified source")
	cmd.Flags().String("db", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listSources, err := cmd.Flags().GetBool("list-sources")
	if err != nil {
		return err
	}
	showEntries, err := cmd.Flags().GetBool("entries")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	var sourceName string
	if len(args) > 0 {
		sourceName = args[0]
	}
	if showEntries && sourceName == "" {
		return errors.New("a source name is required with --entries (use --list-sources to see available sources)")
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if listSources {
		return listCrawledSources(ctx, db)
	}
	if showEntries {
		return listLatestEntries(ctx, db, sourceName)
	}
	return listCrawlHistory(ctx, db, sourceName)
}

// listCrawledSources lists all sources that have crawls in the database.
func listCrawledSources(ctx context.Context, db *database.EntryDB) error {
	sources, err := db.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		fmt.Println("No stored crawls found in the database.")
		fmt.Println("\nUse 'docscrape crawl --db <dir> <source.yaml>' to save a crawl.")
		return nil
	}

	fmt.Printf("Crawled sources (%d):\n\n", len(sources))
	for _, source := range sources {
		fmt.Printf("  • %s\n", source)
	}
	fmt.Println("\nUse 'docscrape history <source>' to see crawl history for a source.")

	return nil
}

// listCrawlHistory lists stored crawl records, newest first.
func listCrawlHistory(ctx context.Context, db *database.EntryDB, sourceName string) error {
	crawls, err := db.ListCrawls(ctx, sourceName)
	if err != nil {
		return fmt.Errorf("failed to get crawl history: %w", err)
	}

	if len(crawls) == 0 {
		if sourceName != "" {
			fmt.Printf("No crawl history found for %s\n", sourceName)
		} else {
			fmt.Println("No stored crawls found in the database.")
		}
		fmt.Println("\nUse 'docscrape crawl --db <dir> <source.yaml>' to save a crawl.")
		return nil
	}

	if sourceName != "" {
		fmt.Printf("Crawl history for %s (%d crawls):\n\n", sourceName, len(crawls))
	} else {
		fmt.Printf("Crawl history (%d crawls):\n\n", len(crawls))
	}
	fmt.Printf("  %-6s  %-16s  %-20s  %-8s  %-8s  %s\n",
		"ID", "Source", "Date", "Pages", "Entries", "Status")
	fmt.Println("  " + strings.Repeat("-", 72))

	for _, meta := range crawls {
		status := "complete"
		if meta.Interrupted {
			status = "interrupted"
		}
		fmt.Printf("  %-6d  %-16s  %-20s  %-8d  %-8d  %s\n",
			meta.ID,
			meta.SourceName,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.PagesVisited,
			meta.EntryCount,
			status,
		)
	}

	fmt.Println("\nUse 'docscrape history --entries <source>' to see the latest entry set.")

	return nil
}

// listLatestEntries prints the entries from the newest crawl of a source.
func listLatestEntries(ctx context.Context, db *database.EntryDB, sourceName string) error {
	entries, err := db.LatestEntries(ctx, sourceName)
	if err != nil {
		return fmt.Errorf("failed to get entries: %w", err)
	}

	if len(entries) == 0 {
		fmt.Printf("No entries found for %s\n", sourceName)
		return nil
	}

	fmt.Printf("Latest entries for %s (%d):\n\n", sourceName, len(entries))
	fmt.Printf("  %-10s  %s\n", "Type", "ID")
	fmt.Println("  " + strings.Repeat("-", 50))
	for _, entry := range entries {
		fmt.Printf("  %-10s  %s\n", entry.Type, entry.ID)
	}

	return nil
}
