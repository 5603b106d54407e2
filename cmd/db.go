package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw33tLie/kwscope/pkg/storage"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the request history database",
}

func dbPathFor(cmd *cobra.Command) (string, error) {
	dbPath, _ := cmd.Flags().GetString("dbpath")
	if dbPath == "" {
		dbPath = viper.GetString("db.path")
	}
	if dbPath == "" {
		return "", fmt.Errorf("no history database configured (set db.path or --dbpath)")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("database file not found: %s", dbPath)
	}
	return dbPath, nil
}

func openDB(cmd *cobra.Command) (*storage.DB, error) {
	dbPath, err := dbPathFor(cmd)
	if err != nil {
		return nil, err
	}
	return storage.Open(dbPath)
}

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := dbPathFor(cmd)
		if err != nil {
			return err
		}

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, dbPath, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, dbPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints per-provider statistics from the request history.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(context.Background())
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No data in the database to generate stats.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "PROVIDER\tCALLS\tOK\tCACHED\tFAILED\tSKIPPED\tAVG LATENCY\t")

		var totalCalls, totalOK, totalCached, totalFailed, totalSkipped int
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%.0fms\t\n", s.Provider, s.Calls, s.OK, s.Cached, s.Failed, s.Skipped, s.AvgLatencyMS)
			totalCalls += s.Calls
			totalOK += s.OK
			totalCached += s.Cached
			totalFailed += s.Failed
			totalSkipped += s.Skipped
		}

		fmt.Fprintln(w, " \t \t \t \t \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\t%d\t%d\t \t\n", totalCalls, totalOK, totalCached, totalFailed, totalSkipped)

		return w.Flush()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent requests (default 50)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		keyword, _ := cmd.Flags().GetString("keyword")
		since, _ := cmd.Flags().GetDuration("since")

		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		opts := storage.ListOptions{Keyword: keyword, Limit: limit}
		if since > 0 {
			opts.Since = time.Now().Add(-since)
		}
		recs, err := db.ListRecent(context.Background(), opts)
		if err != nil {
			return err
		}
		for _, r := range recs {
			ts := r.OccurredAt.Format("2006-01-02 15:04:05")
			status := "ok"
			switch {
			case r.Failed:
				status = "failed"
			case r.Partial:
				status = "partial"
			}
			difficulty := "-"
			if r.Difficulty != nil {
				difficulty = fmt.Sprint(*r.Difficulty)
			}
			fmt.Printf("%s  %-7s  %s-%s  %q  keywords=%d volume=%d difficulty=%s\n", ts, status, r.Language, r.Country, r.Keyword, r.TotalKeywords, r.TotalVolume, difficulty)
		}
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete history older than a given age",
	RunE: func(cmd *cobra.Command, _ []string) error {
		age, _ := cmd.Flags().GetDuration("older-than")
		if age <= 0 {
			age = viper.GetDuration("db.retention")
		}
		if age <= 0 {
			return fmt.Errorf("nothing to prune: retention is not set")
		}

		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.Prune(context.Background(), age)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d requests older than %s\n", n, age)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(shellCmd)
	dbCmd.AddCommand(statsCmd)
	dbCmd.AddCommand(historyCmd)
	dbCmd.AddCommand(pruneCmd)
	dbCmd.PersistentFlags().String("dbpath", "", "Path to SQLite DB file (default: db.path from config)")

	historyCmd.Flags().Int("limit", 50, "Number of recent requests to show")
	historyCmd.Flags().String("keyword", "", "Only show requests whose keyword contains this text")
	historyCmd.Flags().Duration("since", 0, "Only show requests from the last duration (e.g. 24h)")

	pruneCmd.Flags().Duration("older-than", 0, "Age cutoff (default: db.retention from config)")
}
