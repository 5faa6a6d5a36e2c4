package cmd

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/lotboard/config"
)

var rootCmd = &cobra.Command{
	Use:   "lotboard",
	Short: "Position lots dashboard backend with risk metrics",
	Long: `Lotboard tracks position lots grouped into buckets and derives their
risk metrics: risk/reward, cost basis, max loss, realized and unrealized
gain/loss, stop elevation and slippage.

It provides tools for:
  - Serving the lots dashboard API with live quotes over websocket
  - Rendering lot rows from the command line
  - Evaluating metrics for a hypothetical lot
  - Managing buckets`,
	SilenceUsage: true,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults plus LOTBOARD_* env when empty")
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
