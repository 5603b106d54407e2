package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [keyword]",
	Short: "Estimate how hard a keyword is to rank for",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		country, _ := cmd.Flags().GetString("country")
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		score, err := a.Score(context.Background(), strings.Join(args, " "), lang, country)
		if err != nil {
			return err
		}
		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(score)
		}
		fmt.Printf("%d/100 (%s competition)\n", score.Value, score.Signals.EstimatedCompetition)
		for _, line := range score.Reasoning {
			fmt.Printf("  - %s\n", line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringP("lang", "L", "en", "ISO-639-1 language code")
	scoreCmd.Flags().StringP("country", "c", "US", "ISO-3166-1 alpha-2 country code")
	scoreCmd.Flags().Bool("json", false, "Print the score as JSON")
}
