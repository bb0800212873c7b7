package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/starfeed/starfeed/domain/plan"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Show the plan catalog",
	RunE:  runPlansList,
}

func init() {
	rootCmd.AddCommand(plansCmd)
}

func runPlansList(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tQUOTA/MONTH\tPRICE")
	fmt.Fprintln(w, "--\t-----------\t-----")
	for _, t := range plan.Tiers() {
		price := "free"
		if !t.IsFree() {
			// PriceMinor is in paise.
			price = fmt.Sprintf("%d.%02d %s", t.PriceMinor/100, t.PriceMinor%100, t.Currency)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", t.ID, t.Quota, price)
	}
	w.Flush()
	return nil
}
