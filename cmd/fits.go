package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/bestfit/internal/store"
)

var serverURL string

var fitsCmd = &cobra.Command{
	Use:   "fits [id]",
	Short: "Query fits recorded by a running server",
	Long: `Queries the server for recorded fits.
If no id is provided, lists all fits.
If an id is provided, shows the full record for that fit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFits,
}

func init() {
	fitsCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(fitsCmd)
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

func runFits(cmd *cobra.Command, args []string) error {
	base := strings.TrimRight(serverURL, "/")
	if len(args) == 0 {
		return listFits(cmd.OutOrStdout(), base+"/api/v1/fits")
	}
	return showFit(cmd.OutOrStdout(), base+"/api/v1/fits/"+args[0], args[0])
}

func getJSON(url string, v any) (int, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("server returned error: %s", strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func listFits(w io.Writer, url string) error {
	var records []store.Record
	if _, err := getJSON(url, &records); err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No fits found")
		return nil
	}
	printRecordTable(w, records, nil)
	return nil
}

func showFit(w io.Writer, url, id string) error {
	var rec store.Record
	status, err := getJSON(url, &rec)
	if status == http.StatusNotFound {
		return fmt.Errorf("fit not found: %s", id)
	}
	if err != nil {
		return err
	}

	printRecord(w, &rec)
	return nil
}

// printRecordTable lists records one per line. sizes, when given, adds the
// file size of each record.
func printRecordTable(w io.Writer, records []store.Record, sizes map[string]int64) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "ID\tKIND\tCREATED\tTEMPLATE\tSCORE"
	if sizes != nil {
		header += "\tSIZE"
	}
	fmt.Fprintln(tw, header)

	for _, rec := range records {
		line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s",
			rec.ID,
			rec.Kind,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Template,
			recordScore(rec.Score),
		)
		if sizes != nil {
			size, ok := sizes[rec.ID]
			sizeStr := "unknown"
			if ok {
				sizeStr = formatBytes(size)
			}
			line += "\t" + sizeStr
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nTotal fits: %d\n", len(records))
}

func printRecord(w io.Writer, rec *store.Record) {
	fmt.Fprintln(w, titleStyle.Render("Fit "+rec.ID))
	printField(w, "Kind", string(rec.Kind))
	printField(w, "Created", rec.CreatedAt.Format(time.RFC3339))
	printField(w, "Template", rec.Template)
	printField(w, "Values", formatValues(rec.Values))
	if rec.Formatted != "" {
		printField(w, "Formatted", rec.Formatted)
	}
	printField(w, "Score", recordScore(rec.Score))
	printField(w, "Points", fmt.Sprint(rec.Points))
	printField(w, "Trials", fmt.Sprint(rec.Trials))
	printField(w, "Converged", fmt.Sprint(rec.Converged))

	if len(rec.Candidates) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Candidates"))
		for _, c := range rec.Candidates {
			fmt.Fprintf(w, "  %-24s %-12s %s\n", c.Template, recordScore(c.Score), formatValues(c.Values))
		}
	}
}

func recordScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return formatScore(*score)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
