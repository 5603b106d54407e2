package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw33tLie/kwscope/internal/utils"
	"github.com/sw33tLie/kwscope/pkg/locale"
)

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "List the marketplace table, including fallbacks",
	RunE: func(cmd *cobra.Command, args []string) error {
		family, _ := cmd.Flags().GetString("family")
		check, _ := cmd.Flags().GetBool("check")

		table, err := locale.LoadTable(viper.GetString("locale.marketplaces"))
		if err != nil {
			return err
		}
		if check {
			if err := table.Validate(); err != nil {
				return fmt.Errorf("marketplace table has problems:\n%w", err)
			}
			utils.Log.Info("Marketplace table is valid")
			return nil
		}

		resolver := locale.New(table)
		for _, p := range resolver.Problems() {
			utils.Log.Warnf("Dropped: %v", p)
		}
		families := resolver.Families()
		if family != "" {
			families = []string{family}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FAMILY\tCOUNTRY\tHOST\tMARKETPLACE\tFALLBACK\t")
		for _, f := range families {
			for _, res := range resolver.Resolutions(f) {
				fallback := ""
				if res.ViaFallback {
					fallback = "-> " + res.ServedBy
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", f, res.Requested, res.Entry.Host, res.Entry.MarketplaceID, fallback)
			}
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(marketsCmd)
	marketsCmd.Flags().String("family", "", "Only show one family (amazon, ebay, app-store)")
	marketsCmd.Flags().Bool("check", false, "Validate the table and exit")
}
