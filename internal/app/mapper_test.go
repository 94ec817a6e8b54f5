package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/jointreplay/internal/domain"
)

func TestNewMapper_DefaultTable(t *testing.T) {
	m, err := NewMapper(domain.DefaultMappingTable())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"infeed_and_squash_turner",
		"robot_gantry",
		"band_separator",
		"eoat_blade",
		"eoat_gripper",
		"eoat_ejector",
	}, m.URDFNames())

	pm, ok := m.Lookup("PEDESTAL")
	require.True(t, ok)
	assert.Len(t, pm.Joints, 2)
}

func TestNewMapper_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		parts []domain.PartMapping
	}{
		{"empty part", []domain.PartMapping{{URDF: "a", Joints: []string{"j"}}}},
		{"empty urdf", []domain.PartMapping{{Part: "P", Joints: []string{"j"}}}},
		{"no joints", []domain.PartMapping{{Part: "P", URDF: "a"}}},
		{"empty joint", []domain.PartMapping{{Part: "P", URDF: "a", Joints: []string{""}}}},
		{"duplicate part", []domain.PartMapping{
			{Part: "P", URDF: "a", Joints: []string{"j1"}},
			{Part: "P", URDF: "b", Joints: []string{"j2"}},
		}},
		{"joint bound twice", []domain.PartMapping{
			{Part: "P", URDF: "a", Joints: []string{"j"}},
			{Part: "Q", URDF: "a", Joints: []string{"j"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMapper(domain.MappingTable{Parts: tt.parts})
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestNewMapper_SameJointNameInDifferentURDFs(t *testing.T) {
	_, err := NewMapper(domain.MappingTable{Parts: []domain.PartMapping{
		{Part: "P", URDF: "a", Joints: []string{"j"}},
		{Part: "Q", URDF: "b", Joints: []string{"j"}},
	}})
	assert.NoError(t, err)
}

func TestMapper_JointsForURDF(t *testing.T) {
	m := newTestMapper(t)

	tests := []struct {
		name string
		urdf string
		snap domain.Snapshot
		want map[string]float64
	}{
		{
			name: "exact",
			urdf: "arm",
			snap: domain.Snapshot{Parts: map[string][]float64{"ARM": {1, 2, 3}}},
			want: map[string]float64{"shoulder": 1, "elbow": 2, "wrist": 3},
		},
		{
			name: "short vector zero fills",
			urdf: "arm",
			snap: domain.Snapshot{Parts: map[string][]float64{"ARM": {1}}},
			want: map[string]float64{"shoulder": 1, "elbow": 0, "wrist": 0},
		},
		{
			name: "surplus values ignored",
			urdf: "eoat",
			snap: domain.Snapshot{Parts: map[string][]float64{"GRIPPER": {0.4, 9, 9}}},
			want: map[string]float64{"finger": 0.4},
		},
		{
			name: "two parts share a urdf",
			urdf: "eoat",
			snap: domain.Snapshot{Parts: map[string][]float64{"GRIPPER": {0.4}, "BLADE": {0.7}}},
			want: map[string]float64{"finger": 0.4, "blade": 0.7},
		},
		{
			name: "part absent",
			urdf: "arm",
			snap: domain.Snapshot{Parts: map[string][]float64{"GRIPPER": {0.4}}},
			want: map[string]float64{},
		},
		{
			name: "unknown urdf",
			urdf: "nope",
			snap: domain.Snapshot{Parts: map[string][]float64{"ARM": {1, 2, 3}}},
			want: map[string]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.JointsForURDF(tt.urdf, tt.snap))
		})
	}
}

func TestMapper_JointConfigsOmitsEmpty(t *testing.T) {
	m := newTestMapper(t)

	got := m.JointConfigs(domain.Snapshot{Parts: map[string][]float64{
		"ARM":     {1, 2, 3},
		"UNKNOWN": {5},
	}})

	assert.Equal(t, domain.JointConfigs{
		"arm": {"shoulder": 1, "elbow": 2, "wrist": 3},
	}, got)
}

func TestMapper_ValidateAgainst(t *testing.T) {
	m := newTestMapper(t)

	report := m.ValidateAgainst(domain.Snapshot{Parts: map[string][]float64{
		"ARM":     {1, 2},
		"GRIPPER": {1},
		"ZED":     {1},
		"ALPHA":   {1, 2},
	}})

	assert.False(t, report.OK())
	assert.Equal(t, []string{"ALPHA", "ZED"}, report.Unrecognized)
	assert.Equal(t, []domain.DOFMismatch{{Part: "ARM", Configured: 3, Observed: 2}}, report.Mismatches)

	findings := report.Findings()
	require.Len(t, findings, 3)
	assert.Equal(t, domain.FindingUnknownPart, findings[0].Kind)
	assert.Equal(t, domain.FindingDOFMismatch, findings[2].Kind)
	assert.Equal(t, "ARM: configured 3 joints, observed 2 values", findings[2].String())
}

func TestMapper_ValidateClean(t *testing.T) {
	m := newTestMapper(t)

	report := m.ValidateDOF(map[string]int{"ARM": 3, "GRIPPER": 1})
	assert.True(t, report.OK())
	assert.Empty(t, report.Findings())
}

func TestMapper_TableIsCopy(t *testing.T) {
	m := newTestMapper(t)

	table := m.Table()
	table.Parts[0].Joints[0] = "changed"

	pm, _ := m.Lookup("ARM")
	assert.Equal(t, "shoulder", pm.Joints[0])
}
