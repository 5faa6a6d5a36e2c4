package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/lotboard/broker/rest"
	"github.com/rustyeddy/lotboard/lot"
	"github.com/rustyeddy/lotboard/quotes"
	"github.com/rustyeddy/lotboard/store"
	"github.com/rustyeddy/lotboard/view"
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Print the lots table for a bucket",
	Long: `Render lots the way the dashboard does, fetching one quote per live
symbol from the upstream API.

Examples:
  lotboard rows
  lotboard rows --bucket 2 --relative`,
	Args: cobra.NoArgs,
	RunE: runRows,
}

var (
	rowsBucket   int64
	rowsRelative bool
	rowsOffline  bool
)

func init() {
	rootCmd.AddCommand(rowsCmd)

	rowsCmd.Flags().Int64VarP(&rowsBucket, "bucket", "b", 0, "bucket id (0 for all lots)")
	rowsCmd.Flags().BoolVar(&rowsRelative, "relative", false, "show stops relative to entry")
	rowsCmd.Flags().BoolVar(&rowsOffline, "offline", false, "skip fetching quotes")
}

func runRows(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.Log)

	opts, err := cfg.Display.ViewOptions()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("relative") {
		opts.RelativeStop = rowsRelative
	}

	st, err := store.NewSQLite(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	lots, err := st.ListLots(cmd.Context(), rowsBucket)
	if err != nil {
		return err
	}

	timeout, _ := cfg.Upstream.ParseTimeout()
	cache := quotes.NewCache(rest.NewClient(cfg.Upstream.URL, cfg.Upstream.Token, timeout), logger, nil)
	for _, l := range lots {
		if l.Status == lot.Open || l.Status == lot.Pending {
			cache.Track(l.Symbol)
		}
	}
	if !rowsOffline {
		p := &quotes.Poller{Cache: cache, Concurrency: cfg.Quotes.Concurrency, Log: logger}
		n := p.Refresh(cmd.Context())
		logger.Debug("quotes refreshed", slog.Int("applied", n))
	}

	rows := view.RenderAll(lots, cache.Get, opts)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tENTERED\tPOSITION\tCOST BASIS\tSTOP\tMAX LOSS\tTARGET\tRR\tLAST\tGAIN/LOSS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s %s @ %s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Status.Text, r.Entered.Text,
			r.Position.Qty, r.Position.Symbol, r.Position.Price,
			r.CostBasis.Text, r.Stop.Text, r.MaxLoss.Text, r.Target.Text,
			r.RiskReward.Text, r.Last.Text, r.GainLoss.Text,
		)
	}
	return tw.Flush()
}
