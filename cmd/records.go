package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/bestfit/internal/store"
)

var (
	recordsDataDir string
	keepLast       int
	olderThanDays  int
	forceClean     bool
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage fit records on disk",
	Long: `Manage the fit records written by "serve --data-dir", including listing,
showing and cleaning old records. A record's search trace is shown with it
and deleted with it.`,
}

var listRecordsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored records",
	Long:  `Display all records with their ID, kind, creation time, template, score and file size.`,
	RunE:  runListRecords,
}

var showRecordCmd = &cobra.Command{
	Use:   "show id",
	Short: "Show one stored record",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRecord,
}

var cleanRecordsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old records",
	Long: `Delete old records based on retention policy.
You can specify how many records to keep or delete records older than N days.`,
	RunE: runCleanRecords,
}

func init() {
	// Add records command to root
	rootCmd.AddCommand(recordsCmd)

	// Add subcommands
	recordsCmd.AddCommand(listRecordsCmd)
	recordsCmd.AddCommand(showRecordCmd)
	recordsCmd.AddCommand(cleanRecordsCmd)

	// Global flags for records command
	recordsCmd.PersistentFlags().StringVar(&recordsDataDir, "data-dir", "./data", "Directory holding the fit records")

	// Clean command flags
	cleanRecordsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N records (0 = keep all)")
	cleanRecordsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete records older than N days (0 = no age limit)")
	cleanRecordsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func openRecordStore() (*store.FSStore, error) {
	fs, err := store.NewFSStore(recordsDataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	return fs, nil
}

func runListRecords(cmd *cobra.Command, args []string) error {
	fs, err := openRecordStore()
	if err != nil {
		return err
	}

	records, err := fs.List()
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No records found.")
		return nil
	}

	sizes := make(map[string]int64, len(records))
	for _, rec := range records {
		if size, err := fs.Size(rec.ID); err == nil {
			sizes[rec.ID] = size
		}
	}
	printRecordTable(out, records, sizes)
	return nil
}

func runShowRecord(cmd *cobra.Command, args []string) error {
	fs, err := openRecordStore()
	if err != nil {
		return err
	}

	rec, err := fs.Load(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printRecord(out, rec)

	tracePath, err := fs.TracePath(rec.ID)
	if err != nil {
		return err
	}
	entries, err := readTrace(tracePath)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		printField(out, "Trace", fmt.Sprintf("%d improvements, last at trial %d (%s)", len(entries), last.Trial, tracePath))
	}
	return nil
}

// readTrace returns the entries of the trace at path, or none when the
// record has no trace.
func readTrace(path string) ([]store.TraceEntry, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	reader, err := store.NewTraceReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return reader.ReadAll()
}

func runCleanRecords(cmd *cobra.Command, args []string) error {
	// Validate flags
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	fs, err := openRecordStore()
	if err != nil {
		return err
	}

	records, err := fs.List()
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No records to clean.")
		return nil
	}

	// Determine which records to delete
	toDelete := selectRecordsForDeletion(records, keepLast, olderThanDays, time.Now())

	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No records match deletion criteria.")
		return nil
	}

	// Show what will be deleted
	fmt.Fprintf(out, "Found %d record(s) to delete:\n", len(toDelete))
	for _, rec := range toDelete {
		fmt.Fprintf(out, "  - %s (%s, %s)\n",
			rec.ID,
			rec.Template,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}

	// Ask for confirmation unless --force is set
	if !forceClean && !confirm(out, os.Stdin, "\nProceed with deletion? [y/N]: ") {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	deleted := 0
	failed := 0
	for _, rec := range toDelete {
		if err := fs.Delete(rec.ID); err != nil {
			slog.Error("Failed to delete record", "id", rec.ID, "error", err)
			failed++
		} else {
			slog.Info("Deleted record", "id", rec.ID)
			deleted++
		}
	}

	fmt.Fprintf(out, "\nDeleted %d record(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRecordsForDeletion picks records older than olderThanDays and, with
// keepLast set, every record but the newest keepLast. Each record appears at
// most once, oldest first.
func selectRecordsForDeletion(records []store.Record, keepLast, olderThanDays int, now time.Time) []store.Record {
	sorted := append([]store.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	cutoff := now.AddDate(0, 0, -olderThanDays)
	excess := 0
	if keepLast > 0 && len(sorted) > keepLast {
		excess = len(sorted) - keepLast
	}

	var toDelete []store.Record
	for i, rec := range sorted {
		byAge := olderThanDays > 0 && rec.CreatedAt.Before(cutoff)
		if byAge || i < excess {
			toDelete = append(toDelete, rec)
		}
	}
	return toDelete
}

func confirm(w io.Writer, r io.Reader, prompt string) bool {
	fmt.Fprint(w, prompt)
	line, _ := bufio.NewReader(r).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}
