package main

import (
	"github.com/sangkips/clinic-billing/internal/domain/billing"
	"github.com/sangkips/clinic-billing/internal/domain/enum"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type totalsOutput struct {
	Amounts []float64      `json:"amounts"`
	Totals  billing.Totals `json:"totals"`
}

func newTotalsCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "totals [draft.json]",
		Short: "Compute the totals of an invoice draft",
		Example: `  billingctl totals draft.json
  billingctl totals --mode corrected - < draft.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := enum.ParseTotalsMode(mode)
			if err != nil {
				return err
			}
			d, err := readDraft(args[0])
			if err != nil {
				return err
			}

			calc := billing.NewCalculator(m)
			out := totalsOutput{
				Amounts: make([]float64, 0, len(d.LineItems)),
				Totals:  calc.Totals(d),
			}
			for _, item := range d.LineItems {
				out.Amounts = append(out.Amounts, calc.Amount(item))
			}
			log.Debug("totals computed", zap.Stringer("mode", m), zap.Int("items", len(d.LineItems)))

			data, err := encodeJSON(out)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), "", data)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "legacy", "totals mode (legacy or corrected)")
	return cmd
}
