package main

import (
	"github.com/spf13/cobra"

	"gstrates/internal/app"
	"gstrates/internal/service"
)

var (
	resolvePrice     float64
	resolveInclusive bool
	resolveTopK      int
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <description>",
	Short: "Resolve a product description and calculate GST on a price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			if resolvePrice <= 0 {
				res, err := a.Rates.Lookup(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			}

			out, err := a.Rates.Calculate(cmd.Context(), service.CalcInput{
				Description: args[0],
				Price:       resolvePrice,
				Inclusive:   resolveInclusive,
				TopK:        resolveTopK,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		})
	},
}

func init() {
	resolveCmd.Flags().Float64Var(&resolvePrice, "price", 0, "price to calculate GST on (lookup only when unset)")
	resolveCmd.Flags().BoolVar(&resolveInclusive, "inclusive", false, "price already includes GST")
	resolveCmd.Flags().IntVar(&resolveTopK, "top-k", 0, "suggestions returned when nothing matches")
	rootCmd.AddCommand(resolveCmd)
}
