package app

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/jointreplay/internal/domain"
)

func analyzerTimeline(t *testing.T) *domain.Timeline {
	t.Helper()
	return parseRecords(t, []domain.RawRecord{
		record(1, 0, part("ARM", 0, 1), part("PEDESTAL", 3)),
		record(2, 1_000_000_000, part("ARM", 0.5, 1), part("PEDESTAL", 3)),
		record(3, 2_000_000_000, part("ARM", 0.2, 1), part("PEDESTAL", 5)),
	}, 1)
}

func TestAnalyze(t *testing.T) {
	report := Analyze(analyzerTimeline(t), newTestMapper(t), 0.1)

	require.Len(t, report.Parts, 2)
	arm := report.Parts[0]
	assert.Equal(t, "ARM", arm.Part)
	assert.Equal(t, 2, arm.DOF)
	assert.Equal(t, 3, arm.Samples)
	require.Len(t, arm.Joints, 2)

	shoulder := arm.Joints[0]
	assert.Equal(t, "shoulder", shoulder.Name)
	assert.Equal(t, 0.0, shoulder.Min)
	assert.Equal(t, 0.5, shoulder.Max)
	assert.InDelta(t, 0.7/3, shoulder.Mean, 1e-12)
	assert.InDelta(t, 0.5, shoulder.Range, 1e-12)
	assert.InDelta(t, 0.5, shoulder.MaxStep, 1e-12)
	assert.InDelta(t, 0.8, shoulder.TotalMovement, 1e-12)
	wantStd := math.Sqrt((math.Pow(0-0.7/3, 2) + math.Pow(0.5-0.7/3, 2) + math.Pow(0.2-0.7/3, 2)) / 3)
	assert.InDelta(t, wantStd, shoulder.Std, 1e-12)
	assert.True(t, shoulder.Active)

	elbow := arm.Joints[1]
	assert.Equal(t, "elbow", elbow.Name)
	assert.Equal(t, 0.0, elbow.Range)
	assert.Equal(t, 0.0, elbow.Std)
	assert.False(t, elbow.Active)
	assert.Equal(t, 1, arm.ActiveCount())

	pedestal := report.Parts[1]
	assert.Equal(t, "joint_0", pedestal.Joints[0].Name)
	assert.True(t, pedestal.Joints[0].Active)

	assert.Equal(t, []string{"PEDESTAL"}, report.Validation.Unrecognized)
	assert.Equal(t, []domain.DOFMismatch{{Part: "ARM", Configured: 3, Observed: 2}}, report.Validation.Mismatches)
	assert.Equal(t, 3, report.Info.TotalEntries)

	total, active := report.Totals()
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, active)
}

func TestAnalyze_DefaultsAndNilMapper(t *testing.T) {
	report := Analyze(analyzerTimeline(t), nil, 0)

	assert.Equal(t, DefaultMovementThreshold, report.Threshold)
	assert.Equal(t, "joint_0", report.Parts[0].Joints[0].Name)
	assert.True(t, report.Validation.OK())
}

func TestAnalyze_SingleSample(t *testing.T) {
	tl := parseRecords(t, []domain.RawRecord{record(1, 0, part("ARM", 0.3))}, 1)

	report := Analyze(tl, nil, 0.1)

	j := report.Parts[0].Joints[0]
	assert.Equal(t, 0.3, j.Mean)
	assert.Equal(t, 0.0, j.MaxStep)
	assert.Equal(t, 0.0, j.TotalMovement)
	assert.False(t, j.Active)
}

func TestAnalysisReport_MostActive(t *testing.T) {
	report := Analyze(analyzerTimeline(t), newTestMapper(t), 0.1)

	all := report.MostActive(10)
	require.Len(t, all, 2)
	assert.Equal(t, ActiveJoint{Part: "PEDESTAL", Joint: "joint_0", TotalMovement: 2}, all[0])
	assert.Equal(t, "shoulder", all[1].Joint)

	assert.Len(t, report.MostActive(1), 1)
	assert.Empty(t, report.MostActive(0))
}

func TestAnalysisReport_Compare(t *testing.T) {
	left := Analyze(analyzerTimeline(t), nil, 0.1)
	left.Source = "a.json"
	right := Analyze(parseRecords(t, sampleRecords(3), 1), nil, 0.1)
	right.Source = "b.json"

	cmp := left.Compare(right)

	assert.Equal(t, "a.json", cmp.Left)
	assert.Equal(t, "b.json", cmp.Right)
	assert.Equal(t, []Difference{
		{Part: "ARM", Kind: "joint_count", Left: 2, Right: 3},
		{Part: "GRIPPER", Kind: "joint_count", Left: 0, Right: 1},
		{Part: "PEDESTAL", Kind: "joint_count", Left: 1, Right: 0},
	}, cmp.Differences)

	assert.Empty(t, left.Compare(left).Differences)
}

func TestAnalysisReport_WriteText(t *testing.T) {
	report := Analyze(analyzerTimeline(t), newTestMapper(t), 0.1)
	report.Source = "robot_status.data.json"

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf))
	out := buf.String()

	assert.Contains(t, out, "File: robot_status.data.json")
	assert.Contains(t, out, "Movement threshold: 0.100 rad")
	assert.Contains(t, out, "shoulder: ACTIVE")
	assert.Contains(t, out, "elbow: STATIC")
	assert.Contains(t, out, "Active joints: 2")
	assert.Contains(t, out, "Activity rate: 66.7%")
	assert.Contains(t, out, "PEDESTAL: no mapping defined")
	assert.Contains(t, out, "ARM: configured 3 joints, observed 2 values")
}
