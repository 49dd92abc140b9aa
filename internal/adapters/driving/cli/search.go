package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vconstore/internal/core/domain"
)

var (
	searchSubject string
	searchSince   string
	searchUntil   string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search vCon records",
	Long: `Searches stored vCon records by header criteria. Multiple criteria
combine with AND semantics; no criteria lists every record.`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchSubject, "subject", "", "case-insensitive subject substring")
	searchCmd.Flags().StringVar(&searchSince, "since", "", "creation time lower bound (RFC 3339 or YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchUntil, "until", "", "creation time upper bound (RFC 3339 or YYYY-MM-DD)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	if storageService == nil {
		return errors.New("storage service not configured")
	}

	query := domain.SearchQuery{Subject: searchSubject}

	var err error
	if searchSince != "" {
		if query.CreatedAfter, err = parseSearchTime(searchSince); err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}
	}
	if searchUntil != "" {
		if query.CreatedBefore, err = parseSearchTime(searchUntil); err != nil {
			return fmt.Errorf("parsing --until: %w", err)
		}
	}

	results := storageService.Search(context.Background(), query)

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No vCons found.")
		return nil
	}

	for _, vcon := range results {
		cmd.Printf("  %s\n", vcon.UUID)
		if vcon.Subject != "" {
			cmd.Printf("    Subject: %s\n", vcon.Subject)
		}
		cmd.Printf("    Created: %s\n", vcon.CreatedAt.Format(time.RFC3339))
		cmd.Printf("    Parties: %d  Dialog: %d  Analysis: %d  Attachments: %d\n",
			len(vcon.Parties), len(vcon.Dialog), len(vcon.Analysis), len(vcon.Attachments))
		cmd.Println()
	}
	cmd.Printf("Total: %d vCons\n", len(results))
	return nil
}

// parseSearchTime accepts a full RFC 3339 timestamp or a bare date.
func parseSearchTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
