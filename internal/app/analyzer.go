package app

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/bft-labs/jointreplay/internal/domain"
)

// DefaultMovementThreshold is the range in radians above which a joint counts as active.
const DefaultMovementThreshold = 0.1

// JointStats describes the motion of one joint over a timeline.
type JointStats struct {
	Name          string  `json:"name"`
	Index         int     `json:"index"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Mean          float64 `json:"mean"`
	Std           float64 `json:"std"`
	Range         float64 `json:"range"`
	MaxStep       float64 `json:"max_step"`
	TotalMovement float64 `json:"total_movement"`
	Active        bool    `json:"active"`
}

// PartAnalysis holds the joint statistics of one part.
type PartAnalysis struct {
	Part    string       `json:"part"`
	DOF     int          `json:"dof"`
	Samples int          `json:"samples"`
	Joints  []JointStats `json:"joints"`
}

// ActiveCount returns the number of active joints.
func (p PartAnalysis) ActiveCount() int {
	n := 0
	for _, j := range p.Joints {
		if j.Active {
			n++
		}
	}
	return n
}

// AnalysisReport is the result of Analyze.
type AnalysisReport struct {
	Source     string                  `json:"source,omitempty"`
	Threshold  float64                 `json:"threshold"`
	Info       domain.TimelineInfo     `json:"info"`
	Parts      []PartAnalysis          `json:"parts"`
	Validation domain.ValidationReport `json:"validation"`
}

// ActiveJoint is one entry of MostActive.
type ActiveJoint struct {
	Part          string  `json:"part"`
	Joint         string  `json:"joint"`
	TotalMovement float64 `json:"total_movement"`
}

// Difference is a structural difference found by Compare.
type Difference struct {
	Part  string `json:"part"`
	Kind  string `json:"kind"`
	Left  int    `json:"left"`
	Right int    `json:"right"`
}

// Comparison is the result of Compare.
type Comparison struct {
	Left        string       `json:"left"`
	Right       string       `json:"right"`
	Differences []Difference `json:"differences"`
}

// Analyze computes per-joint statistics for every part of timeline. Joints
// are named after the mapping when mapper knows the part, otherwise joint_<i>.
// mapper may be nil, in which case no validation is reported.
func Analyze(timeline *domain.Timeline, mapper *Mapper, threshold float64) AnalysisReport {
	if threshold <= 0 {
		threshold = DefaultMovementThreshold
	}
	report := AnalysisReport{
		Threshold: threshold,
		Info:      timeline.Info(),
	}

	for _, part := range timeline.PartNames() {
		report.Parts = append(report.Parts, analyzePart(part, timeline.PositionsForPart(part), mapper, threshold))
	}
	if mapper != nil {
		report.Validation = mapper.ValidateDOF(timeline.PartDOFs())
	}
	return report
}

func analyzePart(part string, positions [][]float64, mapper *Mapper, threshold float64) PartAnalysis {
	pa := PartAnalysis{Part: part, Samples: len(positions)}
	if len(positions) == 0 {
		return pa
	}
	pa.DOF = len(positions[0])

	var names []string
	if mapper != nil {
		if pm, ok := mapper.Lookup(part); ok {
			names = pm.Joints
		}
	}

	series := make([]float64, len(positions))
	for j := 0; j < pa.DOF; j++ {
		for t, vec := range positions {
			series[t] = vec[j]
		}
		st := seriesStats(series)
		st.Index = j
		if j < len(names) {
			st.Name = names[j]
		} else {
			st.Name = fmt.Sprintf("joint_%d", j)
		}
		st.Active = st.Range > threshold
		pa.Joints = append(pa.Joints, st)
	}
	return pa
}

func seriesStats(xs []float64) JointStats {
	st := JointStats{Min: xs[0], Max: xs[0]}
	var sum float64
	for i, x := range xs {
		sum += x
		st.Min = math.Min(st.Min, x)
		st.Max = math.Max(st.Max, x)
		if i > 0 {
			step := math.Abs(x - xs[i-1])
			st.TotalMovement += step
			st.MaxStep = math.Max(st.MaxStep, step)
		}
	}
	st.Mean = sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		d := x - st.Mean
		sq += d * d
	}
	st.Std = math.Sqrt(sq / float64(len(xs)))
	st.Range = st.Max - st.Min
	return st
}

// Totals returns the total and active joint counts across all parts.
func (r AnalysisReport) Totals() (total, active int) {
	for _, p := range r.Parts {
		total += len(p.Joints)
		active += p.ActiveCount()
	}
	return total, active
}

// MostActive returns up to n active joints ordered by total movement, largest first.
func (r AnalysisReport) MostActive(n int) []ActiveJoint {
	var out []ActiveJoint
	for _, p := range r.Parts {
		for _, j := range p.Joints {
			if j.Active {
				out = append(out, ActiveJoint{Part: p.Part, Joint: j.Name, TotalMovement: j.TotalMovement})
			}
		}
	}
	sort.SliceStable(out, func(i, k int) bool {
		return out[i].TotalMovement > out[k].TotalMovement
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Compare reports parts whose joint count differs between r and other.
// A part missing on one side counts as zero joints there.
func (r AnalysisReport) Compare(other AnalysisReport) Comparison {
	left := make(map[string]int, len(r.Parts))
	right := make(map[string]int, len(other.Parts))
	parts := map[string]struct{}{}
	for _, p := range r.Parts {
		left[p.Part] = p.DOF
		parts[p.Part] = struct{}{}
	}
	for _, p := range other.Parts {
		right[p.Part] = p.DOF
		parts[p.Part] = struct{}{}
	}

	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	cmp := Comparison{Left: r.Source, Right: other.Source}
	for _, name := range names {
		if left[name] != right[name] {
			cmp.Differences = append(cmp.Differences, Difference{
				Part:  name,
				Kind:  "joint_count",
				Left:  left[name],
				Right: right[name],
			})
		}
	}
	return cmp
}

// WriteText renders the report as a human-readable text block.
func (r AnalysisReport) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("=", 80)

	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, "JOINT MOVEMENT ANALYSIS")
	if r.Source != "" {
		fmt.Fprintf(bw, "File: %s\n", r.Source)
	}
	fmt.Fprintf(bw, "Movement threshold: %.3f rad\n", r.Threshold)
	fmt.Fprintf(bw, "Entries: %d  Duration: %.3fs\n", r.Info.TotalEntries, r.Info.DurationSeconds)
	fmt.Fprintln(bw, rule)

	for _, p := range r.Parts {
		active := p.ActiveCount()
		fmt.Fprintf(bw, "\n%s\n", strings.ToUpper(p.Part))
		fmt.Fprintf(bw, "   Joints: %d\n", len(p.Joints))
		fmt.Fprintf(bw, "   Samples: %d\n", p.Samples)
		fmt.Fprintf(bw, "   Active: %d  Static: %d\n", active, len(p.Joints)-active)
		for _, j := range p.Joints {
			status := "STATIC"
			if j.Active {
				status = "ACTIVE"
			}
			fmt.Fprintf(bw, "     %s: %s\n", j.Name, status)
			fmt.Fprintf(bw, "       Range: %.4f rad (%.1f deg)\n", j.Range, j.Range*180/math.Pi)
			fmt.Fprintf(bw, "       Total movement: %.4f rad\n", j.TotalMovement)
			fmt.Fprintf(bw, "       Position: [%.4f, %.4f]\n", j.Min, j.Max)
		}
	}

	total, active := r.Totals()
	fmt.Fprintln(bw, "\nSUMMARY")
	fmt.Fprintf(bw, "   Total joints: %d\n", total)
	fmt.Fprintf(bw, "   Active joints: %d\n", active)
	fmt.Fprintf(bw, "   Static joints: %d\n", total-active)
	if total > 0 {
		fmt.Fprintf(bw, "   Activity rate: %.1f%%\n", float64(active)/float64(total)*100)
	}

	fmt.Fprintln(bw, "\nMAPPING VALIDATION")
	if r.Validation.OK() {
		fmt.Fprintln(bw, "   all parts match the mapping table")
	}
	for _, f := range r.Validation.Findings() {
		fmt.Fprintf(bw, "   %s\n", f)
	}

	return bw.Flush()
}
