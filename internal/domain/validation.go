package domain

import "fmt"

// FindingKind classifies a ValidationFinding.
type FindingKind int

const (
	FindingUnknownPart FindingKind = iota + 1
	FindingDOFMismatch
)

// String returns a human-readable representation of the kind.
func (k FindingKind) String() string {
	switch k {
	case FindingUnknownPart:
		return "unknown_part"
	case FindingDOFMismatch:
		return "dof_mismatch"
	default:
		return "unknown"
	}
}

// ValidationFinding is a non-fatal discrepancy between recorded data and the
// mapping table. Findings never block playback.
type ValidationFinding struct {
	Kind       FindingKind
	Part       string
	Configured int
	Observed   int
}

func (f ValidationFinding) String() string {
	if f.Kind == FindingDOFMismatch {
		return fmt.Sprintf("%s: configured %d joints, observed %d values", f.Part, f.Configured, f.Observed)
	}
	return fmt.Sprintf("%s: no mapping defined", f.Part)
}

// DOFMismatch is a part whose configured joint count differs from its value count.
type DOFMismatch struct {
	Part       string `json:"part"`
	Configured int    `json:"configured"`
	Observed   int    `json:"observed"`
}

// ValidationReport collects findings. Both lists are sorted by part name.
type ValidationReport struct {
	Unrecognized []string      `json:"unrecognized"`
	Mismatches   []DOFMismatch `json:"mismatches"`
}

// OK reports whether there are no findings.
func (r ValidationReport) OK() bool {
	return len(r.Unrecognized) == 0 && len(r.Mismatches) == 0
}

// Findings flattens the report, unrecognized parts first.
func (r ValidationReport) Findings() []ValidationFinding {
	out := make([]ValidationFinding, 0, len(r.Unrecognized)+len(r.Mismatches))
	for _, p := range r.Unrecognized {
		out = append(out, ValidationFinding{Kind: FindingUnknownPart, Part: p})
	}
	for _, m := range r.Mismatches {
		out = append(out, ValidationFinding{
			Kind:       FindingDOFMismatch,
			Part:       m.Part,
			Configured: m.Configured,
			Observed:   m.Observed,
		})
	}
	return out
}
