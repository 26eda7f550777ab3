package scenario

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/r04nx/soft-CAC/sim/cac"
	"github.com/r04nx/soft-CAC/sim/trace"
)

// AdmissionRow is one admission decision as logged by the harness.
type AdmissionRow struct {
	AP              string           `json:"ap"`
	FlowID          cac.FlowID       `json:"flow_id"` // 0 when rejected
	Class           cac.TrafficClass `json:"class"`
	Time            float64          `json:"time_s"`
	Admitted        bool             `json:"admitted"`
	RequiredAirtime float64          `json:"required_airtime"`
	Threshold       float64          `json:"threshold"`
	Utilization     float64          `json:"utilization"` // before the decision
}

// APResult is the end-of-run state of one access point.
type APResult struct {
	ID          string       `json:"id"`
	Snapshot    cac.Snapshot `json:"snapshot"`
	TxPackets   uint64       `json:"tx_packets"`
	LostPackets uint64       `json:"lost_packets"`
	LossRate    float64      `json:"loss_rate"`
}

// Result is everything a run produces.
type Result struct {
	RunID        string              `json:"run_id"`
	Seed         int64               `json:"seed"`
	HorizonS     float64             `json:"horizon_s"`
	AccessPoints []APResult          `json:"access_points"`
	Admissions   []AdmissionRow      `json:"admissions"`
	Trace        *trace.TraceSummary `json:"trace,omitempty"`
}

// Print writes every access point report to w.
func (res *Result) Print(w io.Writer) {
	fmt.Fprintf(w, "Run %s (seed %d, horizon %.1fs)\n", res.RunID, res.Seed, res.HorizonS)
	for _, ap := range res.AccessPoints {
		ap.Snapshot.Print(w)
		fmt.Fprintf(w, "Packets              : tx=%d lost=%d (%.4f)\n", ap.TxPackets, ap.LostPackets, ap.LossRate)
	}
}

// SaveResults writes the result as indented JSON to path.
func (res *Result) SaveResults(path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	logrus.Infof("Results written to %s", path)
	return nil
}

var admissionHeader = []string{"AP", "FlowId", "TrafficType", "Time", "Admitted", "RequiredAirtime", "Threshold", "Utilization"}

// WriteAdmissionCSV writes one row per admission decision, in decision order.
func (res *Result) WriteAdmissionCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(admissionHeader); err != nil {
		return err
	}
	for _, row := range res.Admissions {
		record := []string{
			row.AP,
			strconv.FormatUint(uint64(row.FlowID), 10),
			row.Class.String(),
			strconv.FormatFloat(row.Time, 'f', 3, 64),
			strconv.FormatBool(row.Admitted),
			strconv.FormatFloat(row.RequiredAirtime, 'f', 6, 64),
			strconv.FormatFloat(row.Threshold, 'f', 2, 64),
			strconv.FormatFloat(row.Utilization, 'f', 6, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
