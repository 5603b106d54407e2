package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sw33tLie/kwscope/internal/utils"
	"github.com/sw33tLie/kwscope/pkg/dispatch"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [keyword]",
	Short: "Aggregate suggestions for a keyword from every provider",
	Example: `  kwscope suggest "running shoes" --lang en --country US
  kwscope suggest "laufschuhe" -L de -c AT --providers amazon,google --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		country, _ := cmd.Flags().GetString("country")
		providerList, _ := cmd.Flags().GetString("providers")
		withDifficulty, _ := cmd.Flags().GetBool("difficulty")
		asJSON, _ := cmd.Flags().GetBool("json")

		req := suggest.Request{
			Keyword:        strings.Join(args, " "),
			Language:       lang,
			Country:        country,
			WithDifficulty: withDifficulty,
		}
		for _, id := range utils.SplitList(providerList) {
			req.Providers = append(req.Providers, suggest.ProviderID(id))
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		resp, err := a.Suggest(ctx, req)
		if err != nil {
			var nre *dispatch.NoResultsError
			if errors.As(err, &nre) {
				printStatuses(os.Stderr, nre.Providers)
			}
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}
		printResponse(os.Stdout, resp)
		if utils.Log.IsLevelEnabled(logrus.InfoLevel) {
			fmt.Fprintln(os.Stderr)
			printStatuses(os.Stderr, resp.Metadata.Providers)
		}
		return nil
	},
}

func printResponse(out io.Writer, resp *suggest.AggregatedResponse) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tKEYWORD\tSOURCES\tVOLUME\t")
	for _, cat := range suggest.Categories {
		for _, s := range resp.Categories[cat] {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t\n", cat, s.Keyword, len(s.Sources), s.EstimatedVolume)
		}
	}
	fmt.Fprintln(w, " \t \t \t \t")
	fmt.Fprintf(w, "TOTAL\t%d keywords\t \t%d\t\n", resp.Summary.TotalKeywords, resp.Summary.TotalEstimatedVolume)
	w.Flush()

	if d := resp.Difficulty; d != nil {
		fmt.Fprintf(out, "\nDifficulty: %d/100 (%s competition)\n", d.Value, d.Signals.EstimatedCompetition)
		for _, line := range d.Reasoning {
			fmt.Fprintf(out, "  - %s\n", line)
		}
	}
	if len(resp.Flagged) > 0 {
		fmt.Fprintf(out, "\nFlagged: %s\n", strings.Join(resp.Flagged, ", "))
	}
}

func printStatuses(out io.Writer, statuses []suggest.ProviderStatus) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tSTATUS\tERROR\tLATENCY\tITEMS\tMARKETPLACE\t")
	for _, p := range statuses {
		market := p.MarketplaceID
		if p.ViaFallback {
			market += " (fallback)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%dms\t%d\t%s\t\n", p.Provider, p.Status, p.Error, p.LatencyMS, p.Items, market)
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().StringP("lang", "L", "en", "ISO-639-1 language code")
	suggestCmd.Flags().StringP("country", "c", "US", "ISO-3166-1 alpha-2 country code")
	suggestCmd.Flags().StringP("providers", "p", "", "Comma separated provider ids (default: all allowed)")
	suggestCmd.Flags().BoolP("difficulty", "d", false, "Also score the seed keyword's difficulty")
	suggestCmd.Flags().Bool("json", false, "Print the full response as JSON")
}
