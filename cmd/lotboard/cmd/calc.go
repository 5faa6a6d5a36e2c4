package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/lotboard/colorscale"
	"github.com/rustyeddy/lotboard/format"
	"github.com/rustyeddy/lotboard/lot"
	"github.com/rustyeddy/lotboard/metrics"
	"github.com/rustyeddy/lotboard/view"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute risk metrics for a hypothetical lot",
	Long: `Evaluate the metrics engine for one lot described by flags. Unset
prices are treated as missing.

Examples:
  lotboard calc --qty 10 --entry 50 --stop 45 --target 60
  lotboard calc --qty 10 --entry 50 --stop 45 --quote 52
  lotboard calc --qty 10 --entry 50 --stop 48 --status Disposed --disposed 47.5`,
	Args: cobra.NoArgs,
	RunE: runCalc,
}

var calcFlags struct {
	qty       float64
	short     bool
	status    string
	entry     float64
	limit     float64
	stop      float64
	target    float64
	costBasis float64
	quote     float64
	disposed  float64
}

func init() {
	rootCmd.AddCommand(calcCmd)

	f := calcCmd.Flags()
	f.Float64Var(&calcFlags.qty, "qty", 0, "share quantity")
	f.BoolVar(&calcFlags.short, "short", false, "short position")
	f.StringVar(&calcFlags.status, "status", "Open", "lot status (Pending, Open, Disposed, Canceled)")
	f.Float64Var(&calcFlags.entry, "entry", 0, "filled average price")
	f.Float64Var(&calcFlags.limit, "limit", 0, "limit price")
	f.Float64Var(&calcFlags.stop, "stop", 0, "stop price")
	f.Float64Var(&calcFlags.target, "target", 0, "target price")
	f.Float64Var(&calcFlags.costBasis, "cost-basis", 0, "supplied cost basis")
	f.Float64Var(&calcFlags.quote, "quote", 0, "latest trade price")
	f.Float64Var(&calcFlags.disposed, "disposed", 0, "disposal fill price")
	_ = calcCmd.MarkFlagRequired("qty")
}

// flagPrice returns nil for flags the user did not set.
func flagPrice(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func runCalc(cmd *cobra.Command, args []string) error {
	l := lot.Lot{
		Qty:               calcFlags.qty,
		PositionType:      lot.Long,
		Status:            lot.ParseStatus(calcFlags.status),
		FilledAvgPrice:    flagPrice(cmd, "entry", calcFlags.entry),
		LimitPrice:        flagPrice(cmd, "limit", calcFlags.limit),
		StopPrice:         flagPrice(cmd, "stop", calcFlags.stop),
		TargetPrice:       flagPrice(cmd, "target", calcFlags.target),
		CostBasis:         flagPrice(cmd, "cost-basis", calcFlags.costBasis),
		DisposedFillPrice: flagPrice(cmd, "disposed", calcFlags.disposed),
	}
	if calcFlags.short {
		l.PositionType = lot.Short
	}

	m := metrics.Compute(l, flagPrice(cmd, "quote", calcFlags.quote))
	printMetrics(cmd.OutOrStdout(), m)
	return nil
}

func printMetrics(w io.Writer, m metrics.RiskMetrics) {
	none := "-"
	val := func(v *float64, f func(float64) string) string {
		if v == nil {
			return none
		}
		return f(*v)
	}
	gl := func(g *metrics.GainLoss) string {
		if g == nil {
			return none
		}
		return fmt.Sprintf("%s (%s)", format.Currency(g.Amount), format.Percent(g.Percent))
	}
	oneDecimal := func(v float64) string { return format.Fixed(v, 1) }

	fmt.Fprintf(w, "Entry:          %s\n", val(m.EntryPrice, format.Currency))
	fmt.Fprintf(w, "Cost basis:     %s\n", val(m.CostBasis, format.Currency))
	fmt.Fprintf(w, "Risk/reward:    %s\n", val(m.RiskReward, oneDecimal))
	if m.MaxLoss != nil {
		fmt.Fprintf(w, "Max loss:       %s  %s\n", format.Currency(*m.MaxLoss), colorscale.MaxLossShade(*m.MaxLoss, view.DefaultMaxLossLimit))
	} else {
		fmt.Fprintf(w, "Max loss:       %s\n", none)
	}
	label := "Gain/loss:     "
	if m.Unrealized {
		label = "Unrealized:    "
	}
	fmt.Fprintf(w, "%s %s\n", label, gl(m.GainLoss))
	fmt.Fprintf(w, "Stop distance:  %s (%s)\n", val(m.StopDistance, format.Currency), val(m.StopPercent, format.Percent))
	if m.Elevation != nil {
		fmt.Fprintf(w, "Stop elevation: %s  %s\n", format.Percent(*m.Elevation), colorscale.Stop.CSS(*m.Elevation))
	} else {
		fmt.Fprintf(w, "Stop elevation: %s\n", none)
	}
	fmt.Fprintf(w, "Slippage:       %s\n", gl(m.Slippage))
}
