package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/r04nx/soft-CAC/sim/cac"
	"github.com/r04nx/soft-CAC/sim/erlang"
)

var (
	airtimeClass      string
	airtimePacketSize int
	airtimeRate       float64
	airtimeWidth      int
	airtimeNSS        int
	airtimeGI         int
	airtimeThreshold  float64
)

// airtimeCmd prices a single flow with the airtime cost model
var airtimeCmd = &cobra.Command{
	Use:   "airtime",
	Short: "Compute the airtime a flow requires",
	Run: func(cmd *cobra.Command, args []string) {
		class, err := cac.ParseTrafficClass(airtimeClass)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		phy := cac.PhyConfig{ChannelWidthMHz: airtimeWidth, GuardIntervalNs: airtimeGI, SpatialStreams: airtimeNSS}
		if err := phy.Validate(); err != nil {
			logrus.Fatalf("%v", err)
		}
		if !phy.HEGuardInterval() {
			logrus.Warnf("guard interval %d ns is not an HE value (800/1600/3200); symbol timing stays at 13.6 us", airtimeGI)
		}
		req := cac.FlowRequest{Class: class, PacketSizeBytes: airtimePacketSize, DataRateBps: airtimeRate}
		if err := req.Validate(); err != nil {
			logrus.Fatalf("%v", err)
		}

		airtime := cac.RequiredAirtime(req, phy)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Class            : %s (%s, priority %d)\n", class, class.AccessCategory(), class.Priority())
		fmt.Fprintf(out, "MAC Overhead     : %d bytes\n", cac.MACOverheadBytes(class))
		fmt.Fprintf(out, "Per-Packet Time  : %.1f us\n", cac.PerPacketTime(airtimePacketSize, class, phy)*1e6)
		fmt.Fprintf(out, "Required Airtime : %.6f\n", airtime)
		fmt.Fprintf(out, "Flows at %.2f    : %d\n", airtimeThreshold, erlang.Servers(airtimeThreshold, airtime))
	},
}

func init() {
	airtimeCmd.Flags().StringVar(&airtimeClass, "class", "voice", "Traffic class (voice, video, bursty, background)")
	airtimeCmd.Flags().IntVar(&airtimePacketSize, "packet-size", 160, "Average packet size in bytes")
	airtimeCmd.Flags().Float64Var(&airtimeRate, "rate", 64_000, "Data rate in bits per second")
	airtimeCmd.Flags().IntVar(&airtimeWidth, "channel-width", 80, "Channel width in MHz (20, 40, 80, 160)")
	airtimeCmd.Flags().IntVar(&airtimeNSS, "nss", 2, "Number of spatial streams")
	airtimeCmd.Flags().IntVar(&airtimeGI, "guard-interval", 800, "Guard interval in ns")
	airtimeCmd.Flags().Float64Var(&airtimeThreshold, "threshold", 0.80, "Utilization ceiling used for the flow count")
}
