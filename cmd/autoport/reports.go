package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyeh/autoport/internal/exitcode"
)

var reportsLimit int

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List recent report runs, newest first",
	RunE:  runReports,
}

func init() {
	reportsCmd.Flags().IntVar(&reportsLimit, "limit", 20, "Maximum number of records (0 for all)")
	rootCmd.AddCommand(reportsCmd)
}

func runReports(cmd *cobra.Command, args []string) error {
	log, closer := setupLogging()
	defer closer.Close()
	ctx := context.Background()

	st, err := openStore(ctx, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open metadata store")
		os.Exit(exitcode.StoreError)
	}
	defer st.Close()

	recs, err := st.Recent(ctx, reportsLimit)
	if err != nil {
		log.Error().Err(err).Msg("failed to read metadata")
		os.Exit(exitcode.StoreError)
	}

	if len(recs) == 0 {
		fmt.Println("No reports recorded.")
		return nil
	}
	fmt.Printf("%-6s %-28s %-20s %-8s %s\n", "ID", "TIMESTAMP", "NAME", "STATUS", "SOURCES")
	for _, r := range recs {
		fmt.Printf("%-6d %-28s %-20s %-8s %s\n", r.ID, r.Timestamp, r.Name, r.Status, strings.Join(r.SourceFiles, ","))
		if r.Details != "" {
			fmt.Printf("       %s\n", r.Details)
		}
	}
	return nil
}
