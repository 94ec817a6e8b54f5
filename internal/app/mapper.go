package app

import (
	"fmt"
	"sort"

	"github.com/bft-labs/jointreplay/internal/domain"
)

// Mapper translates a snapshot's part vectors into per-URDF joint values.
// It is immutable after construction and safe for concurrent use.
type Mapper struct {
	table     domain.MappingTable
	byPart    map[string]domain.PartMapping
	urdfNames []string
	urdfParts map[string][]domain.PartMapping
}

// NewMapper validates table and builds a Mapper from it.
func NewMapper(table domain.MappingTable) (*Mapper, error) {
	m := &Mapper{
		byPart:    make(map[string]domain.PartMapping, len(table.Parts)),
		urdfParts: map[string][]domain.PartMapping{},
	}
	jointOwner := map[string]map[string]string{}

	for i, pm := range table.Parts {
		if pm.Part == "" {
			return nil, fmt.Errorf("%w: mapping %d has no part name", domain.ErrInvalidConfig, i)
		}
		if pm.URDF == "" {
			return nil, fmt.Errorf("%w: part %s has no urdf", domain.ErrInvalidConfig, pm.Part)
		}
		if len(pm.Joints) == 0 {
			return nil, fmt.Errorf("%w: part %s has no joints", domain.ErrInvalidConfig, pm.Part)
		}
		if _, dup := m.byPart[pm.Part]; dup {
			return nil, fmt.Errorf("%w: part %s mapped twice", domain.ErrInvalidConfig, pm.Part)
		}

		owners, ok := jointOwner[pm.URDF]
		if !ok {
			owners = map[string]string{}
			jointOwner[pm.URDF] = owners
			m.urdfNames = append(m.urdfNames, pm.URDF)
		}
		for _, j := range pm.Joints {
			if j == "" {
				return nil, fmt.Errorf("%w: part %s has an empty joint name", domain.ErrInvalidConfig, pm.Part)
			}
			if other, taken := owners[j]; taken {
				return nil, fmt.Errorf("%w: joint %s of urdf %s bound by both %s and %s",
					domain.ErrInvalidConfig, j, pm.URDF, other, pm.Part)
			}
			owners[j] = pm.Part
		}

		pm.Joints = append([]string(nil), pm.Joints...)
		m.byPart[pm.Part] = pm
		m.urdfParts[pm.URDF] = append(m.urdfParts[pm.URDF], pm)
		m.table.Parts = append(m.table.Parts, pm)
	}
	return m, nil
}

// Table returns a copy of the mapping table.
func (m *Mapper) Table() domain.MappingTable {
	out := domain.MappingTable{Parts: make([]domain.PartMapping, len(m.table.Parts))}
	for i, pm := range m.table.Parts {
		pm.Joints = append([]string(nil), pm.Joints...)
		out.Parts[i] = pm
	}
	return out
}

// Lookup returns the mapping of a part.
func (m *Mapper) Lookup(part string) (domain.PartMapping, bool) {
	pm, ok := m.byPart[part]
	return pm, ok
}

// URDFNames returns every URDF name in order of first appearance in the table.
func (m *Mapper) URDFNames() []string {
	return append([]string(nil), m.urdfNames...)
}

// JointsForURDF zips the configured joint names of every part targeting urdf
// with the snapshot's values for that part. Missing trailing values default to
// 0.0 and surplus values are ignored. Parts absent from the snapshot contribute
// nothing.
func (m *Mapper) JointsForURDF(urdf string, snap domain.Snapshot) map[string]float64 {
	out := map[string]float64{}
	for _, pm := range m.urdfParts[urdf] {
		values, ok := snap.Parts[pm.Part]
		if !ok {
			continue
		}
		for i, joint := range pm.Joints {
			if i < len(values) {
				out[joint] = values[i]
			} else {
				out[joint] = 0.0
			}
		}
	}
	return out
}

// JointConfigs builds the joint configuration of every URDF with data in snap.
// URDFs without any mapped part in the snapshot are omitted.
func (m *Mapper) JointConfigs(snap domain.Snapshot) domain.JointConfigs {
	out := make(domain.JointConfigs, len(m.urdfNames))
	for _, urdf := range m.urdfNames {
		if cfg := m.JointsForURDF(urdf, snap); len(cfg) > 0 {
			out[urdf] = cfg
		}
	}
	return out
}

// ValidateAgainst cross-checks the parts of a snapshot with the table.
func (m *Mapper) ValidateAgainst(snap domain.Snapshot) domain.ValidationReport {
	dof := make(map[string]int, len(snap.Parts))
	for part, values := range snap.Parts {
		dof[part] = len(values)
	}
	return m.ValidateDOF(dof)
}

// ValidateDOF cross-checks observed per-part value counts with the table.
func (m *Mapper) ValidateDOF(observed map[string]int) domain.ValidationReport {
	var report domain.ValidationReport
	for part, n := range observed {
		pm, ok := m.byPart[part]
		if !ok {
			report.Unrecognized = append(report.Unrecognized, part)
			continue
		}
		if len(pm.Joints) != n {
			report.Mismatches = append(report.Mismatches, domain.DOFMismatch{
				Part:       part,
				Configured: len(pm.Joints),
				Observed:   n,
			})
		}
	}
	sort.Strings(report.Unrecognized)
	sort.Slice(report.Mismatches, func(i, j int) bool {
		return report.Mismatches[i].Part < report.Mismatches[j].Part
	})
	return report
}
