package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/r04nx/soft-CAC/sim/erlang"
)

var (
	erlangThreshold float64
	erlangAirtime   float64
	erlangMinLoad   float64
	erlangMaxLoad   float64
	erlangPoints    int
)

// erlangCmd prints the analytical blocking curve for an airtime ceiling
var erlangCmd = &cobra.Command{
	Use:   "erlang",
	Short: "Print the Erlang-B blocking curve for an airtime ceiling",
	Run: func(cmd *cobra.Command, args []string) {
		if !(erlangAirtime > 0) || !(erlangThreshold > 0) {
			logrus.Fatalf("--airtime and --threshold must be > 0")
		}
		if erlangPoints <= 0 || erlangMaxLoad < erlangMinLoad {
			logrus.Fatalf("invalid load range [%v, %v] with %d points", erlangMinLoad, erlangMaxLoad, erlangPoints)
		}
		servers := erlang.Servers(erlangThreshold, erlangAirtime)
		loads := erlang.Loads(erlangMinLoad, erlangMaxLoad, erlangPoints)
		curve := erlang.BlockingCurve(loads, erlangThreshold, erlangAirtime)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# servers=%d threshold=%.2f airtime=%.4f\n", servers, erlangThreshold, erlangAirtime)
		fmt.Fprintln(out, "offered_load,blocking_pct")
		for i, a := range loads {
			fmt.Fprintf(out, "%.2f,%.4f\n", a, curve[i]*100)
		}
	},
}

func init() {
	erlangCmd.Flags().Float64Var(&erlangThreshold, "threshold", 0.80, "Utilization ceiling")
	erlangCmd.Flags().Float64Var(&erlangAirtime, "airtime", 0.05, "Average airtime per flow")
	erlangCmd.Flags().Float64Var(&erlangMinLoad, "min-load", 1, "Smallest offered load in Erlangs")
	erlangCmd.Flags().Float64Var(&erlangMaxLoad, "max-load", 50, "Largest offered load in Erlangs")
	erlangCmd.Flags().IntVar(&erlangPoints, "points", 50, "Number of load points")
}
